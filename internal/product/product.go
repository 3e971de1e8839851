// Package product defines the product entity the importer maps rows onto.
// It has no storage dependencies; persistence lives behind the importer's
// collaborator interfaces.
package product

import (
	"maps"
	"slices"
	"time"
)

// Type is the product type tag.
type Type string

const (
	TypeSimple    Type = "simple"
	TypeVariable  Type = "variable"
	TypeGrouped   Type = "grouped"
	TypeExternal  Type = "external"
	TypeVariation Type = "variation"
)

// Status is the publication status of a product.
type Status string

const (
	// StatusImporting marks a product constructed by the importer that has
	// never been saved. Rows that do not say otherwise promote it to publish.
	StatusImporting Status = "importing"
	StatusPublish   Status = "publish"
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPrivate   Status = "private"
)

// Stock statuses.
const (
	StockInStock     = "instock"
	StockOutOfStock  = "outofstock"
	StockOnBackorder = "onbackorder"
)

// Backorder policies.
const (
	BackordersNo     = "no"
	BackordersNotify = "notify"
	BackordersYes    = "yes"
)

// Attribute is a product attribute. ID is the global attribute taxonomy id,
// or 0 for a custom attribute defined only on this product.
type Attribute struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name" validate:"required"`
	Options   []string `json:"options"`
	Position  int      `json:"position"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
}

// IsTaxonomy reports whether the attribute is backed by a global taxonomy.
func (a Attribute) IsTaxonomy() bool {
	return a.ID > 0
}

// Clone returns a copy that shares no memory with a.
func (a Attribute) Clone() Attribute {
	a.Options = slices.Clone(a.Options)
	return a
}

// Download is a downloadable file attached to a product.
type Download struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	File string `json:"file" validate:"required"`
}

// Product is a product of any type, including variations.
//
// Prices and dimensions are kept as decimal strings; an empty string means
// "not set". StockQuantity and the sale window use nil for the same purpose.
type Product struct {
	ID       int64  `validate:"gte=0"`
	Type     Type   `validate:"required,oneof=simple variable grouped external variation"`
	Status   Status `validate:"required,oneof=importing publish draft pending private"`
	ParentID int64  `validate:"gte=0"`

	Name              string
	Slug              string
	SKU               string
	Description       string
	ShortDescription  string
	PurchaseNote      string
	Featured          bool
	CatalogVisibility string `validate:"omitempty,oneof=visible catalog search hidden"`
	TaxStatus         string `validate:"omitempty,oneof=taxable shipping none"`
	TaxClass          string
	ReviewsAllowed    bool
	SoldIndividually  bool
	Virtual           bool
	Downloadable      bool

	RegularPrice   string `validate:"omitempty,numeric"`
	SalePrice      string `validate:"omitempty,numeric"`
	Price          string `validate:"omitempty,numeric"`
	DateOnSaleFrom *time.Time
	DateOnSaleTo   *time.Time

	ManageStock   bool
	StockQuantity *float64
	StockStatus   string `validate:"omitempty,oneof=instock outofstock onbackorder"`
	Backorders    string `validate:"omitempty,oneof=no notify yes"`

	Weight          string `validate:"omitempty,numeric"`
	Length          string `validate:"omitempty,numeric"`
	Width           string `validate:"omitempty,numeric"`
	Height          string `validate:"omitempty,numeric"`
	ShippingClassID int64  `validate:"gte=0"`

	CategoryIDs  []int64
	TagIDs       []int64
	UpsellIDs    []int64
	CrossSellIDs []int64

	ImageID         int64 `validate:"gte=0"`
	GalleryImageIDs []int64

	Attributes          []Attribute `validate:"dive"`
	DefaultAttributes   map[string]string
	VariationAttributes map[string]string

	Downloads      []Download `validate:"dive"`
	DownloadLimit  int64      `validate:"gte=-1"`
	DownloadExpiry int64      `validate:"gte=-1"`

	ProductURL string `validate:"omitempty,url"`
	ButtonText string

	Meta map[string]string
}

// New returns an unsaved product of the given type in the importing state.
func New(t Type) *Product {
	return &Product{
		Type:           t,
		Status:         StatusImporting,
		StockStatus:    StockInStock,
		Backorders:     BackordersNo,
		ReviewsAllowed: true,
		DownloadLimit:  -1,
		DownloadExpiry: -1,
		Meta:           make(map[string]string),
	}
}

// IsType reports whether p is of type t.
func (p *Product) IsType(t Type) bool {
	return p.Type == t
}

// UpdateMeta sets a metadata value, replacing any existing value for key.
func (p *Product) UpdateMeta(key, value string) {
	if p.Meta == nil {
		p.Meta = make(map[string]string)
	}
	p.Meta[key] = value
}

// ClearPrices empties every price field, including the sale window.
func (p *Product) ClearPrices() {
	p.RegularPrice = ""
	p.SalePrice = ""
	p.Price = ""
	p.DateOnSaleFrom = nil
	p.DateOnSaleTo = nil
}

// OnSale reports whether the sale price applies at now.
func (p *Product) OnSale(now time.Time) bool {
	if p.SalePrice == "" {
		return false
	}
	if p.DateOnSaleFrom != nil && now.Before(*p.DateOnSaleFrom) {
		return false
	}
	if p.DateOnSaleTo != nil && now.After(*p.DateOnSaleTo) {
		return false
	}
	return true
}

// SyncPrice recomputes the active price from the regular and sale prices.
// Variable and grouped products have no price of their own.
func (p *Product) SyncPrice(now time.Time) {
	switch {
	case p.IsType(TypeVariable) || p.IsType(TypeGrouped):
		p.Price = ""
	case p.OnSale(now):
		p.Price = p.SalePrice
	default:
		p.Price = p.RegularPrice
	}
}

// ClearDimensions empties weight and all three dimensions.
func (p *Product) ClearDimensions() {
	p.Weight = ""
	p.Height = ""
	p.Length = ""
	p.Width = ""
}

// Clone returns a deep copy of p.
func (p *Product) Clone() *Product {
	c := *p
	c.CategoryIDs = slices.Clone(p.CategoryIDs)
	c.TagIDs = slices.Clone(p.TagIDs)
	c.UpsellIDs = slices.Clone(p.UpsellIDs)
	c.CrossSellIDs = slices.Clone(p.CrossSellIDs)
	c.GalleryImageIDs = slices.Clone(p.GalleryImageIDs)
	c.Downloads = slices.Clone(p.Downloads)
	c.DefaultAttributes = maps.Clone(p.DefaultAttributes)
	c.VariationAttributes = maps.Clone(p.VariationAttributes)
	c.Meta = maps.Clone(p.Meta)
	if p.Attributes != nil {
		c.Attributes = make([]Attribute, len(p.Attributes))
		for i, a := range p.Attributes {
			c.Attributes[i] = a.Clone()
		}
	}
	if p.StockQuantity != nil {
		q := *p.StockQuantity
		c.StockQuantity = &q
	}
	if p.DateOnSaleFrom != nil {
		t := *p.DateOnSaleFrom
		c.DateOnSaleFrom = &t
	}
	if p.DateOnSaleTo != nil {
		t := *p.DateOnSaleTo
		c.DateOnSaleTo = &t
	}
	return &c
}
