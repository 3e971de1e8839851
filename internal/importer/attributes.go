package importer

import (
	"context"
	"fmt"
	"slices"

	"github.com/JonMunkholm/productimport/internal/product"
	"github.com/JonMunkholm/productimport/internal/sanitize"
)

// assembleAttributes builds the attribute list and default attribute map for
// a standard product. Attribute positions follow row order.
//
// Global (taxonomy) attributes get their options cleaned and resolved to term
// slugs, and are dropped when no option survives. Custom attributes keep
// their values verbatim and are kept whenever a value list is present, even
// an empty one.
func (im *Importer) assembleAttributes(ctx context.Context, in []AttributeInput) ([]product.Attribute, map[string]string, error) {
	attrs := make([]product.Attribute, 0, len(in))
	defaults := make(map[string]string)

	for position, a := range in {
		taxID, err := im.taxonomies.AttributeTaxonomyID(ctx, a.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve attribute %q: %w", a.Name, err)
		}

		visible := true
		if a.Visible.Valid {
			visible = a.Visible.Value
		}

		if taxID > 0 {
			taxName, err := im.taxonomies.AttributeTaxonomyName(ctx, taxID)
			if err != nil {
				return nil, nil, fmt.Errorf("resolve attribute taxonomy %d: %w", taxID, err)
			}

			var names []string
			for _, v := range a.Value.Value {
				if v = sanitize.TermText(v); v != "" {
					names = append(names, v)
				}
			}

			variation := false
			if a.Default != "" && slices.Contains(names, a.Default) {
				slug, err := im.termSlug(ctx, taxName, a.Default)
				if err != nil {
					return nil, nil, err
				}
				defaults[taxName] = slug
				variation = true
			}

			if len(names) == 0 {
				continue
			}

			options := make([]string, 0, len(names))
			for _, name := range names {
				slug, err := im.termSlug(ctx, taxName, name)
				if err != nil {
					return nil, nil, err
				}
				options = append(options, slug)
			}

			attrs = append(attrs, product.Attribute{
				ID:        taxID,
				Name:      taxName,
				Options:   options,
				Position:  position,
				Visible:   visible,
				Variation: variation,
			})
			continue
		}

		if !a.Value.Valid {
			continue
		}

		variation := false
		if a.Default != "" && slices.Contains(a.Value.Value, a.Default) {
			defaults[sanitize.Title(a.Name)] = a.Default
			variation = true
		}

		attrs = append(attrs, product.Attribute{
			Name:      a.Name,
			Options:   slices.Clone(a.Value.Value),
			Position:  position,
			Visible:   visible,
			Variation: variation,
		})
	}

	return attrs, defaults, nil
}

// termSlug returns the slug of the term named name in taxonomy, or the
// sanitized name when no such term exists.
func (im *Importer) termSlug(ctx context.Context, taxonomy, name string) (string, error) {
	slug, ok, err := im.taxonomies.TermSlug(ctx, taxonomy, name)
	if err != nil {
		return "", fmt.Errorf("resolve term %q in %s: %w", name, taxonomy, err)
	}
	if !ok {
		return sanitize.Title(name), nil
	}
	return slug, nil
}

// attributeKey returns the key an attribute named name is stored under on a
// product: the taxonomy name for global attributes, the slugged name for
// custom ones.
func (im *Importer) attributeKey(ctx context.Context, name string) (string, error) {
	taxID, err := im.taxonomies.AttributeTaxonomyID(ctx, name)
	if err != nil {
		return "", fmt.Errorf("resolve attribute %q: %w", name, err)
	}
	if taxID == 0 {
		return sanitize.Title(name), nil
	}
	taxName, err := im.taxonomies.AttributeTaxonomyName(ctx, taxID)
	if err != nil {
		return "", fmt.Errorf("resolve attribute taxonomy %d: %w", taxID, err)
	}
	return taxName, nil
}

// storedAttributeKey is attributeKey for an attribute already on a product.
func storedAttributeKey(a product.Attribute) string {
	if a.IsTaxonomy() {
		return a.Name
	}
	return sanitize.Title(a.Name)
}
