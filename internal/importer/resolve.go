package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/productimport/internal/product"
)

// productObject resolves the product a row applies to.
//
//   - type given: the tag must be known; the product is built by the tag's
//     constructor. A non-zero id loads the stored product and switches it to
//     that type.
//   - only id given: the stored product is loaded as is.
//   - a negative id is read as its absolute value.
//   - neither: a new simple product.
func (im *Importer) productObject(ctx context.Context, row Row) (*product.Product, error) {
	id := row.ID.Value
	if id < 0 {
		id = -id
	}

	var p *product.Product
	switch {
	case row.Type.Valid:
		tag := product.Type(row.Type.Value)
		ctor, ok := im.registry.Constructor(tag)
		if !ok {
			return nil, newRowError(CodeInvalidType,
				map[string]any{"type": row.Type.Value},
				"Invalid product type %q.", row.Type.Value)
		}
		p = ctor()
		if id != 0 {
			existing, err := im.lookup(ctx, id)
			if err != nil {
				return nil, err
			}
			existing.Type = p.Type
			p = existing
		}

	case row.ID.Valid:
		existing, err := im.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		p = existing

	default:
		ctor, _ := im.registry.Constructor(product.TypeSimple)
		p = ctor()
	}

	return im.hooks.productObject(p, row), nil
}

func (im *Importer) lookup(ctx context.Context, id int64) (*product.Product, error) {
	p, err := im.products.Get(ctx, id)
	if errors.Is(err, product.ErrNotFound) {
		return nil, newRowError(CodeInvalidID,
			map[string]any{"id": id},
			"Invalid product ID %d.", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", id, err)
	}
	return p, nil
}
