package importer

import (
	"context"
	"slices"
	"time"

	"github.com/JonMunkholm/productimport/internal/product"
	"github.com/JonMunkholm/productimport/internal/sanitize"
)

// mapProduct applies a row to a non-variation product. Fields absent from
// the row keep their current value.
func (im *Importer) mapProduct(ctx context.Context, p *product.Product, row Row, stockManaged bool) error {
	if row.Name.Valid {
		p.Name = sanitize.PostContent(row.Name.Value)
	}
	if row.Description.Valid {
		p.Description = sanitize.PostContent(row.Description.Value)
	}
	if row.ShortDescription.Valid {
		p.ShortDescription = sanitize.PostContent(row.ShortDescription.Value)
	}

	mapStatus(p, row)

	setIf(&p.Slug, row.Slug)
	setIf(&p.ReviewsAllowed, row.ReviewsAllowed)
	setIf(&p.TaxStatus, row.TaxStatus)
	setIf(&p.TaxClass, row.TaxClass)
	setIf(&p.CatalogVisibility, row.CatalogVisibility)
	setIf(&p.PurchaseNote, row.PurchaseNote)
	setIf(&p.Featured, row.Featured)

	mapShipping(p, row)

	setIf(&p.SKU, row.SKU)

	if row.Attributes.Valid {
		attrs, defaults, err := im.assembleAttributes(ctx, row.Attributes.Value)
		if err != nil {
			return err
		}
		p.Attributes = attrs
		if p.IsType(product.TypeVariable) {
			p.DefaultAttributes = defaults
		}
	}

	if err := im.mapPricing(p, row); err != nil {
		return err
	}

	setIf(&p.ParentID, row.ParentID)
	setIf(&p.SoldIndividually, row.SoldIndividually)

	im.mapStock(p, row, stockManaged)

	setIDs(&p.UpsellIDs, row.UpsellIDs)
	setIDs(&p.CrossSellIDs, row.CrossSellIDs)
	setIDs(&p.CategoryIDs, row.CategoryIDs)
	setIDs(&p.TagIDs, row.TagIDs)

	im.mapDownloadable(p, row)

	if p.IsType(product.TypeExternal) {
		setIf(&p.ProductURL, row.ExternalURL)
		setIf(&p.ButtonText, row.ButtonText)
	}

	if row.ImageID.Valid {
		id, err := im.attachments.Resolve(ctx, row.ImageID.Value, p.ID)
		if err != nil {
			return err
		}
		p.ImageID = id
	}
	if row.GalleryImageIDs.Valid {
		ids, err := im.attachments.ResolveAll(ctx, row.GalleryImageIDs.Value, p.ID)
		if err != nil {
			return err
		}
		p.GalleryImageIDs = ids
	}

	applyMeta(p, row)
	p.SyncPrice(time.Now())
	return nil
}

// mapPricing applies prices and the sale window. Variable and grouped
// products take their price from children, so theirs is always cleared.
func (im *Importer) mapPricing(p *product.Product, row Row) error {
	if p.IsType(product.TypeVariable) || p.IsType(product.TypeGrouped) {
		p.ClearPrices()
		return nil
	}

	setIf(&p.RegularPrice, row.RegularPrice)
	setIf(&p.SalePrice, row.SalePrice)

	if err := applySaleDate(&p.DateOnSaleFrom, "date_on_sale_from", row.DateOnSaleFrom, im.loc); err != nil {
		return err
	}
	return applySaleDate(&p.DateOnSaleTo, "date_on_sale_to", row.DateOnSaleTo, im.loc)
}

// mapStatus applies the published flag. A product that was never saved is
// published unless the row says otherwise.
func mapStatus(p *product.Product, row Row) {
	switch {
	case row.Published.Valid && row.Published.Value:
		p.Status = product.StatusPublish
	case row.Published.Valid:
		p.Status = product.StatusDraft
	case p.Status == product.StatusImporting:
		p.Status = product.StatusPublish
	}
}

// applyMeta upserts metadata entries in row order; a repeated key keeps the
// last value.
func applyMeta(p *product.Product, row Row) {
	if !row.MetaData.Valid {
		return
	}
	for _, m := range row.MetaData.Value {
		p.UpdateMeta(m.Key, m.Value)
	}
}

func setIDs(dst *[]int64, v Opt[[]int64]) {
	if v.Valid {
		*dst = slices.Clone(v.Value)
	}
}
