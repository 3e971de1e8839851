package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/productimport/internal/product"
)

// productColumns lists the stored product columns in the order used by
// productArgs and scanProduct. id is handled separately.
var productColumns = []string{
	"type", "status", "parent_id",
	"name", "slug", "sku", "description", "short_description", "purchase_note",
	"featured", "catalog_visibility", "tax_status", "tax_class",
	"reviews_allowed", "sold_individually", "virtual", "downloadable",
	"regular_price", "sale_price", "price", "date_on_sale_from", "date_on_sale_to",
	"manage_stock", "stock_quantity", "stock_status", "backorders",
	"weight", "length", "width", "height", "shipping_class_id",
	"category_ids", "tag_ids", "upsell_ids", "cross_sell_ids",
	"image_id", "gallery_image_ids",
	"attributes", "default_attributes", "variation_attributes",
	"downloads", "download_limit", "download_expiry",
	"product_url", "button_text", "meta",
}

var (
	selectProductSQL = "SELECT id, " + strings.Join(productColumns, ", ") + " FROM products WHERE id = $1"
	insertProductSQL = buildInsert()
	updateProductSQL = buildUpdate()
)

func buildInsert() string {
	params := make([]string, len(productColumns))
	for i := range productColumns {
		params[i] = "$" + strconv.Itoa(i+1)
	}
	return fmt.Sprintf("INSERT INTO products (%s) VALUES (%s) RETURNING id",
		strings.Join(productColumns, ", "), strings.Join(params, ", "))
}

func buildUpdate() string {
	sets := make([]string, len(productColumns))
	for i, col := range productColumns {
		sets[i] = col + " = $" + strconv.Itoa(i+1)
	}
	return fmt.Sprintf("UPDATE products SET %s, updated_at = now() WHERE id = $%d RETURNING id",
		strings.Join(sets, ", "), len(productColumns)+1)
}

// Get loads a product by id.
func (s *Store) Get(ctx context.Context, id int64) (*product.Product, error) {
	p, err := scanProduct(s.db.QueryRow(ctx, selectProductSQL, id))
	if err != nil {
		return nil, classify(err, "get product "+strconv.FormatInt(id, 10))
	}
	return p, nil
}

// Save validates p and inserts or updates it. A product with id 0 is
// inserted; otherwise the existing row is replaced.
func (s *Store) Save(ctx context.Context, p *product.Product) (int64, error) {
	if err := s.checkProduct(p); err != nil {
		return 0, err
	}

	args, err := productArgs(p)
	if err != nil {
		return 0, err
	}

	var id int64
	if p.ID == 0 {
		err = s.db.QueryRow(ctx, insertProductSQL, args...).Scan(&id)
	} else {
		err = s.db.QueryRow(ctx, updateProductSQL, append(args, p.ID)...).Scan(&id)
	}
	if err != nil {
		return 0, classify(err, "save product")
	}

	s.logger.Debug("product saved", "id", id, "type", p.Type, "inserted", p.ID == 0)
	return id, nil
}

func productArgs(p *product.Product) ([]any, error) {
	attrs, err := marshalJSON("attributes", p.Attributes)
	if err != nil {
		return nil, err
	}
	defaults, err := marshalJSON("default_attributes", p.DefaultAttributes)
	if err != nil {
		return nil, err
	}
	varAttrs, err := marshalJSON("variation_attributes", p.VariationAttributes)
	if err != nil {
		return nil, err
	}
	downloads, err := marshalJSON("downloads", p.Downloads)
	if err != nil {
		return nil, err
	}
	meta, err := marshalJSON("meta", p.Meta)
	if err != nil {
		return nil, err
	}

	return []any{
		string(p.Type), string(p.Status), p.ParentID,
		p.Name, p.Slug, p.SKU, p.Description, p.ShortDescription, p.PurchaseNote,
		p.Featured, p.CatalogVisibility, p.TaxStatus, p.TaxClass,
		p.ReviewsAllowed, p.SoldIndividually, p.Virtual, p.Downloadable,
		p.RegularPrice, p.SalePrice, p.Price, p.DateOnSaleFrom, p.DateOnSaleTo,
		p.ManageStock, p.StockQuantity, p.StockStatus, p.Backorders,
		p.Weight, p.Length, p.Width, p.Height, p.ShippingClassID,
		ids(p.CategoryIDs), ids(p.TagIDs), ids(p.UpsellIDs), ids(p.CrossSellIDs),
		p.ImageID, ids(p.GalleryImageIDs),
		attrs, defaults, varAttrs,
		downloads, p.DownloadLimit, p.DownloadExpiry,
		p.ProductURL, p.ButtonText, meta,
	}, nil
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var (
		p                                   product.Product
		typ, status                         string
		from, to                            *time.Time
		qty                                 *float64
		attrs, defaults, varAttrs, dl, meta []byte
	)

	err := row.Scan(
		&p.ID,
		&typ, &status, &p.ParentID,
		&p.Name, &p.Slug, &p.SKU, &p.Description, &p.ShortDescription, &p.PurchaseNote,
		&p.Featured, &p.CatalogVisibility, &p.TaxStatus, &p.TaxClass,
		&p.ReviewsAllowed, &p.SoldIndividually, &p.Virtual, &p.Downloadable,
		&p.RegularPrice, &p.SalePrice, &p.Price, &from, &to,
		&p.ManageStock, &qty, &p.StockStatus, &p.Backorders,
		&p.Weight, &p.Length, &p.Width, &p.Height, &p.ShippingClassID,
		&p.CategoryIDs, &p.TagIDs, &p.UpsellIDs, &p.CrossSellIDs,
		&p.ImageID, &p.GalleryImageIDs,
		&attrs, &defaults, &varAttrs,
		&dl, &p.DownloadLimit, &p.DownloadExpiry,
		&p.ProductURL, &p.ButtonText, &meta,
	)
	if err != nil {
		return nil, err
	}

	p.Type = product.Type(typ)
	p.Status = product.Status(status)
	p.DateOnSaleFrom = from
	p.DateOnSaleTo = to
	p.StockQuantity = qty
	for _, list := range []*[]int64{&p.CategoryIDs, &p.TagIDs, &p.UpsellIDs, &p.CrossSellIDs, &p.GalleryImageIDs} {
		if len(*list) == 0 {
			*list = nil
		}
	}

	for _, col := range []struct {
		name string
		data []byte
		dst  any
	}{
		{"attributes", attrs, &p.Attributes},
		{"default_attributes", defaults, &p.DefaultAttributes},
		{"variation_attributes", varAttrs, &p.VariationAttributes},
		{"downloads", dl, &p.Downloads},
		{"meta", meta, &p.Meta},
	} {
		if len(col.data) == 0 {
			continue
		}
		if err := json.Unmarshal(col.data, col.dst); err != nil {
			return nil, fmt.Errorf("decode %s of product %d: %w", col.name, p.ID, err)
		}
	}
	if p.Meta == nil {
		p.Meta = make(map[string]string)
	}
	return &p, nil
}

func marshalJSON(column string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", column, err)
	}
	return data, nil
}

// ids stores nil lists as empty arrays so the column stays NOT NULL.
func ids(v []int64) []int64 {
	if v == nil {
		return []int64{}
	}
	return v
}
