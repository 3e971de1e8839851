package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/productimport/internal/product"
	"github.com/JonMunkholm/productimport/internal/sanitize"
)

// ParentUpdate is a change to a variation's parent that must be saved
// before the variation itself.
type ParentUpdate struct {
	// Parent is a copy of the stored parent with the reconciled attributes.
	Parent *product.Product
	// Enabled lists the keys of attributes that were switched to
	// "used for variations".
	Enabled []string
}

// mapVariation applies a row to a variation. It returns a non-nil
// ParentUpdate when the parent's attributes had to change.
func (im *Importer) mapVariation(ctx context.Context, v *product.Product, row Row, stockManaged bool) (*ParentUpdate, error) {
	parent, err := im.variationParent(ctx, row)
	if err != nil {
		return nil, err
	}
	v.ParentID = parent.ID

	mapStatus(v, row)

	if row.SKU.Valid {
		v.SKU = sanitize.Text(row.SKU.Value)
	}

	if row.ImageID.Valid {
		id, err := im.attachments.Resolve(ctx, row.ImageID.Value, v.ID)
		if err != nil {
			return nil, err
		}
		v.ImageID = id
	}

	mapShipping(v, row)
	im.mapDownloadable(v, row)
	mapVariationStock(v, row, stockManaged)

	setIf(&v.RegularPrice, row.RegularPrice)
	setIf(&v.SalePrice, row.SalePrice)

	// GMT values are applied last and win over the store-local ones.
	for _, d := range []struct {
		dst   **time.Time
		field string
		val   Opt[string]
		loc   *time.Location
	}{
		{&v.DateOnSaleFrom, "date_on_sale_from", row.DateOnSaleFrom, im.loc},
		{&v.DateOnSaleFrom, "date_on_sale_from_gmt", row.DateOnSaleFromGMT, time.UTC},
		{&v.DateOnSaleTo, "date_on_sale_to", row.DateOnSaleTo, im.loc},
		{&v.DateOnSaleTo, "date_on_sale_to_gmt", row.DateOnSaleToGMT, time.UTC},
	} {
		if err := applySaleDate(d.dst, d.field, d.val, d.loc); err != nil {
			return nil, err
		}
	}

	setIf(&v.TaxClass, row.TaxClass)

	if row.Description.Valid {
		v.Description = sanitize.PostContent(row.Description.Value)
	}

	var update *ParentUpdate
	if row.Attributes.Valid {
		var parentAttrs map[string]product.Attribute
		parentAttrs, update, err = im.reconcileParentAttributes(ctx, row.Attributes.Value, parent)
		if err != nil {
			return nil, err
		}
		attrs, err := im.variationAttributes(ctx, row.Attributes.Value, parentAttrs)
		if err != nil {
			return nil, err
		}
		v.VariationAttributes = attrs
	}

	applyMeta(v, row)
	v.SyncPrice(time.Now())

	return update, nil
}

func (im *Importer) variationParent(ctx context.Context, row Row) (*product.Product, error) {
	if !row.ParentID.Valid || row.ParentID.Value <= 0 {
		return nil, newRowError(CodeMissingParent, nil,
			"Missing parent ID or parent does not exist.")
	}

	parent, err := im.products.Get(ctx, row.ParentID.Value)
	if errors.Is(err, product.ErrNotFound) {
		return nil, newRowError(CodeMissingParent,
			map[string]any{"parent_id": row.ParentID.Value},
			"Missing parent ID or parent does not exist.")
	}
	if err != nil {
		return nil, fmt.Errorf("load parent %d: %w", row.ParentID.Value, err)
	}
	return parent, nil
}

// reconcileParentAttributes makes sure every attribute a variation row names
// is enabled for variations on the parent. Attributes the parent has but
// does not use for variations are cloned and flagged; the parent itself is
// not modified. It returns the parent's attributes keyed by stored key, with
// the flagged clones in place, and the update to save, or nil when nothing
// changed.
func (im *Importer) reconcileParentAttributes(ctx context.Context, in []AttributeInput, parent *product.Product) (map[string]product.Attribute, *ParentUpdate, error) {
	keyed := make(map[string]product.Attribute, len(parent.Attributes))
	order := make([]string, 0, len(parent.Attributes))
	for _, a := range parent.Attributes {
		key := storedAttributeKey(a)
		if _, dup := keyed[key]; !dup {
			order = append(order, key)
		}
		keyed[key] = a
	}

	var enabled []string
	for _, a := range in {
		key, err := im.attributeKey(ctx, a.Name)
		if err != nil {
			return nil, nil, err
		}
		pa, ok := keyed[key]
		if !ok || pa.Variation {
			continue
		}
		pa = pa.Clone()
		pa.Variation = true
		keyed[key] = pa
		enabled = append(enabled, key)
	}

	if len(enabled) == 0 {
		return keyed, nil, nil
	}

	updated := parent.Clone()
	updated.Attributes = make([]product.Attribute, 0, len(order))
	for _, key := range order {
		updated.Attributes = append(updated.Attributes, keyed[key])
	}
	return keyed, &ParentUpdate{Parent: updated, Enabled: enabled}, nil
}

// variationAttributes maps row attributes onto the parent's variation
// attributes. Taxonomy values are stored as term slugs.
func (im *Importer) variationAttributes(ctx context.Context, in []AttributeInput, parentAttrs map[string]product.Attribute) (map[string]string, error) {
	out := make(map[string]string)
	for _, a := range in {
		key, err := im.attributeKey(ctx, a.Name)
		if err != nil {
			return nil, err
		}
		pa, ok := parentAttrs[key]
		if !ok || !pa.Variation {
			continue
		}

		value := ""
		if len(a.Value.Value) > 0 {
			value = a.Value.Value[0]
		}
		if pa.IsTaxonomy() {
			if value, err = im.termSlug(ctx, pa.Name, value); err != nil {
				return nil, err
			}
		}

		out[sanitize.Title(pa.Name)] = value
	}
	return out, nil
}

func (im *Importer) saveParentUpdate(ctx context.Context, u *ParentUpdate) error {
	if _, err := im.products.Save(ctx, u.Parent); err != nil {
		return fmt.Errorf("save parent %d: %w", u.Parent.ID, err)
	}
	im.logger.Info("enabled parent attributes for variations",
		"parent_id", u.Parent.ID,
		"attributes", u.Enabled,
	)
	return nil
}
