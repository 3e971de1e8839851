// Package rowjson decodes import rows from newline-delimited JSON.
//
// Each line is one JSON object keyed by column name. A key that is missing
// leaves the product field alone; a key set to null or "" clears it. Values
// may be native JSON types or the strings a spreadsheet export produces
// ("yes", "1", "3,4,5").
package rowjson

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/JonMunkholm/productimport/internal/importer"
)

// ErrMalformed is returned for lines that are not a JSON object.
var ErrMalformed = errors.New("malformed row")

// FieldError reports a value that could not be coerced to its column type.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: invalid value %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

var errNotBool = errors.New("not a boolean")

// DecodeRow decodes one NDJSON line.
func DecodeRow(line []byte) (importer.Row, error) {
	if !gjson.ValidBytes(line) {
		return importer.Row{}, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	obj := gjson.ParseBytes(line)
	if !obj.IsObject() {
		return importer.Row{}, fmt.Errorf("%w: expected an object", ErrMalformed)
	}

	d := &decoder{obj: obj}
	row := importer.Row{
		ID:       d.integer("id"),
		Type:     d.str("type"),
		ParentID: d.integer("parent_id"),

		SKU:               d.str("sku"),
		Name:              d.str("name"),
		Slug:              d.str("slug"),
		Published:         d.boolean("published"),
		Featured:          d.boolean("featured"),
		CatalogVisibility: d.str("catalog_visibility"),
		ShortDescription:  d.str("short_description"),
		Description:       d.str("description"),
		PurchaseNote:      d.str("purchase_note"),
		ReviewsAllowed:    d.boolean("reviews_allowed"),
		SoldIndividually:  d.boolean("sold_individually"),
		TaxStatus:         d.str("tax_status"),
		TaxClass:          d.str("tax_class"),

		RegularPrice:      d.str("regular_price"),
		SalePrice:         d.str("sale_price"),
		DateOnSaleFrom:    d.str("date_on_sale_from"),
		DateOnSaleTo:      d.str("date_on_sale_to"),
		DateOnSaleFromGMT: d.str("date_on_sale_from_gmt"),
		DateOnSaleToGMT:   d.str("date_on_sale_to_gmt"),

		StockStatus:   d.boolean("stock_status"),
		ManageStock:   d.boolean("manage_stock"),
		StockQuantity: d.number("stock_quantity"),
		Backorders:    d.str("backorders"),

		Virtual:         d.boolean("virtual"),
		Weight:          d.str("weight"),
		Length:          d.str("length"),
		Width:           d.str("width"),
		Height:          d.str("height"),
		ShippingClassID: d.integer("shipping_class_id"),

		CategoryIDs:  d.ids("category_ids"),
		TagIDs:       d.ids("tag_ids"),
		UpsellIDs:    d.ids("upsell_ids"),
		CrossSellIDs: d.ids("cross_sell_ids"),

		ImageID:         d.str("image_id"),
		GalleryImageIDs: d.list("gallery_image_ids"),

		Downloadable:   d.boolean("downloadable"),
		Downloads:      d.downloads("downloads"),
		DownloadLimit:  d.integer("download_limit"),
		DownloadExpiry: d.integer("download_expiry"),

		ExternalURL: d.str("external_url"),
		ButtonText:  d.str("button_text"),

		Attributes: d.attributes("attributes"),
		MetaData:   d.meta("meta_data"),
	}
	if d.err != nil {
		return importer.Row{}, d.err
	}
	return row, nil
}

// decoder reads typed values from one row object and keeps the first
// coercion error.
type decoder struct {
	obj gjson.Result
	err error
}

func (d *decoder) fail(field string, v gjson.Result, err error) {
	if d.err == nil {
		d.err = &FieldError{Field: field, Value: v.String(), Err: err}
	}
}

func (d *decoder) str(key string) importer.Opt[string] {
	v := d.obj.Get(key)
	if !v.Exists() {
		return importer.Opt[string]{}
	}
	return importer.Some(scalarString(v))
}

func (d *decoder) boolean(key string) importer.Opt[bool] {
	v := d.obj.Get(key)
	if !v.Exists() {
		return importer.Opt[bool]{}
	}
	b, err := toBool(v)
	if err != nil {
		d.fail(key, v, err)
		return importer.Opt[bool]{}
	}
	return importer.Some(b)
}

func (d *decoder) integer(key string) importer.Opt[int64] {
	v := d.obj.Get(key)
	if !v.Exists() {
		return importer.Opt[int64]{}
	}
	n, err := toInt(v)
	if err != nil {
		d.fail(key, v, err)
		return importer.Opt[int64]{}
	}
	return importer.Some(n)
}

func (d *decoder) number(key string) importer.Opt[float64] {
	v := d.obj.Get(key)
	if !v.Exists() {
		return importer.Opt[float64]{}
	}
	var f float64
	switch v.Type {
	case gjson.Null:
	case gjson.Number:
		f = v.Num
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s != "" {
			var err error
			if f, err = strconv.ParseFloat(s, 64); err != nil {
				d.fail(key, v, err)
				return importer.Opt[float64]{}
			}
		}
	default:
		d.fail(key, v, errors.New("not a number"))
		return importer.Opt[float64]{}
	}
	return importer.Some(f)
}

// list reads a JSON array of strings or a comma-separated string.
func (d *decoder) list(key string) importer.Opt[[]string] {
	v := d.obj.Get(key)
	if !v.Exists() {
		return importer.Opt[[]string]{}
	}
	return importer.Some(toList(v))
}

func (d *decoder) ids(key string) importer.Opt[[]int64] {
	v := d.obj.Get(key)
	if !v.Exists() {
		return importer.Opt[[]int64]{}
	}

	var out []int64
	for _, s := range toList(v) {
		if s == "" {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			d.fail(key, v, err)
			return importer.Opt[[]int64]{}
		}
		if n > 0 {
			out = append(out, n)
		}
	}
	return importer.Some(out)
}

func (d *decoder) downloads(key string) importer.Opt[[]importer.DownloadInput] {
	v := d.obj.Get(key)
	if !v.Exists() {
		return importer.Opt[[]importer.DownloadInput]{}
	}

	var out []importer.DownloadInput
	for _, item := range v.Array() {
		out = append(out, importer.DownloadInput{
			Name: scalarString(item.Get("name")),
			URL:  scalarString(item.Get("url")),
		})
	}
	return importer.Some(out)
}

func (d *decoder) attributes(key string) importer.Opt[[]importer.AttributeInput] {
	v := d.obj.Get(key)
	if !v.Exists() {
		return importer.Opt[[]importer.AttributeInput]{}
	}

	var out []importer.AttributeInput
	for i, item := range v.Array() {
		a := importer.AttributeInput{
			Name:    scalarString(item.Get("name")),
			Default: scalarString(item.Get("default")),
		}
		if val := item.Get("value"); val.Exists() {
			a.Value = importer.Some(toList(val))
		}
		if vis := item.Get("visible"); vis.Exists() {
			b, err := toBool(vis)
			if err != nil {
				d.fail(fmt.Sprintf("%s.%d.visible", key, i), vis, err)
				return importer.Opt[[]importer.AttributeInput]{}
			}
			a.Visible = importer.Some(b)
		}
		out = append(out, a)
	}
	return importer.Some(out)
}

func (d *decoder) meta(key string) importer.Opt[[]importer.MetaInput] {
	v := d.obj.Get(key)
	if !v.Exists() {
		return importer.Opt[[]importer.MetaInput]{}
	}

	var out []importer.MetaInput
	if v.IsObject() {
		v.ForEach(func(k, val gjson.Result) bool {
			out = append(out, importer.MetaInput{Key: k.String(), Value: scalarString(val)})
			return true
		})
		return importer.Some(out)
	}
	for _, item := range v.Array() {
		out = append(out, importer.MetaInput{
			Key:   scalarString(item.Get("key")),
			Value: scalarString(item.Get("value")),
		})
	}
	return importer.Some(out)
}

// scalarString renders a JSON value as a column string. Numbers keep their
// literal form so prices like 9.90 survive unchanged; null is empty.
func scalarString(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.Number:
		return v.Raw
	case gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}

func toBool(v gjson.Result) (bool, error) {
	switch v.Type {
	case gjson.Null:
		return false, nil
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	case gjson.Number:
		return v.Num != 0, nil
	case gjson.String:
		return parseBool(v.Str)
	default:
		return false, errNotBool
	}
}

// parseBool accepts the boolean spellings spreadsheets produce.
// An empty string is false.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0", "":
		return false, nil
	default:
		return false, errNotBool
	}
}

func toInt(v gjson.Result) (int64, error) {
	switch v.Type {
	case gjson.Null:
		return 0, nil
	case gjson.Number:
		return v.Int(), nil
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0, nil
		}
		return strconv.ParseInt(s, 10, 64)
	default:
		return 0, errors.New("not an integer")
	}
}

// toList reads an array, or splits a string on commas. Elements are trimmed
// but empty elements are kept; callers decide whether they matter.
func toList(v gjson.Result) []string {
	switch {
	case v.Type == gjson.Null:
		return nil
	case v.IsArray():
		arr := v.Array()
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			out = append(out, strings.TrimSpace(scalarString(item)))
		}
		return out
	default:
		s := strings.TrimSpace(scalarString(v))
		if s == "" {
			return []string{}
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
}
