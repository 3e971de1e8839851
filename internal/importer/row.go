package importer

// Opt is an optional row value. Valid is false when the column was not part
// of the import, which means "leave the existing value alone". A Valid zero
// value means the column was present and empty, which clears the field.
type Opt[T any] struct {
	Value T
	Valid bool
}

// Some returns a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Valid: true}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// AttributeInput is one attribute entry of a row. Position in Row.Attributes
// is the attribute's display position.
type AttributeInput struct {
	Name    string
	Value   Opt[[]string]
	Visible Opt[bool]
	// Default is the option selected by default on variable products.
	Default string
}

// DownloadInput is one downloadable file entry of a row.
type DownloadInput struct {
	Name string
	URL  string
}

// MetaInput is one metadata entry of a row.
type MetaInput struct {
	Key   string
	Value string
}

// Row is one parsed import record. Values are already type-coerced by the
// reader that produced the row.
type Row struct {
	ID       Opt[int64]
	Type     Opt[string]
	ParentID Opt[int64]

	SKU               Opt[string]
	Name              Opt[string]
	Slug              Opt[string]
	Published         Opt[bool]
	Featured          Opt[bool]
	CatalogVisibility Opt[string]
	ShortDescription  Opt[string]
	Description       Opt[string]
	PurchaseNote      Opt[string]
	ReviewsAllowed    Opt[bool]
	SoldIndividually  Opt[bool]
	TaxStatus         Opt[string]
	TaxClass          Opt[string]

	RegularPrice      Opt[string]
	SalePrice         Opt[string]
	DateOnSaleFrom    Opt[string]
	DateOnSaleTo      Opt[string]
	DateOnSaleFromGMT Opt[string]
	DateOnSaleToGMT   Opt[string]

	StockStatus   Opt[bool]
	ManageStock   Opt[bool]
	StockQuantity Opt[float64]
	Backorders    Opt[string]

	Virtual         Opt[bool]
	Weight          Opt[string]
	Length          Opt[string]
	Width           Opt[string]
	Height          Opt[string]
	ShippingClassID Opt[int64]

	CategoryIDs  Opt[[]int64]
	TagIDs       Opt[[]int64]
	UpsellIDs    Opt[[]int64]
	CrossSellIDs Opt[[]int64]

	// ImageID and GalleryImageIDs hold attachment references (usually URLs),
	// resolved to attachment ids during mapping.
	ImageID         Opt[string]
	GalleryImageIDs Opt[[]string]

	Downloadable   Opt[bool]
	Downloads      Opt[[]DownloadInput]
	DownloadLimit  Opt[int64]
	DownloadExpiry Opt[int64]

	ExternalURL Opt[string]
	ButtonText  Opt[string]

	Attributes Opt[[]AttributeInput]
	MetaData   Opt[[]MetaInput]
}

// Result is the outcome of a successfully imported row.
type Result struct {
	ID      int64 `json:"id"`
	Updated bool  `json:"updated"`
}
