package importer

import (
	"context"

	"github.com/JonMunkholm/productimport/internal/product"
)

// ProductStore loads and persists products.
type ProductStore interface {
	// Get returns product.ErrNotFound when id does not exist.
	Get(ctx context.Context, id int64) (*product.Product, error)
	// Save persists p and returns its id. Rejected products come back as a
	// *product.ValidationError.
	Save(ctx context.Context, p *product.Product) (int64, error)
}

// TaxonomyResolver resolves global attribute taxonomies and their terms.
type TaxonomyResolver interface {
	// AttributeTaxonomyID returns 0 when name is not a global attribute.
	AttributeTaxonomyID(ctx context.Context, name string) (int64, error)
	AttributeTaxonomyName(ctx context.Context, id int64) (string, error)
	// TermSlug returns false when the taxonomy has no term with that name.
	TermSlug(ctx context.Context, taxonomy, name string) (string, bool, error)
}

// AttachmentStore looks up existing media attachments.
type AttachmentStore interface {
	// FindByLocalPath matches relPath against stored file metadata.
	FindByLocalPath(ctx context.Context, relPath string) (int64, bool, error)
	// FindBySource matches the source marker recorded on import.
	FindBySource(ctx context.Context, ref string) (int64, bool, error)
	RecordSource(ctx context.Context, id int64, ref string) error
}

// ImageFetcher imports a remote image into the media store and returns the
// new attachment id. Errors mean the image could not be fetched or is not
// a valid image.
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string, productID int64) (int64, error)
}

// Settings exposes store-wide options.
type Settings interface {
	StockManagementEnabled(ctx context.Context) (bool, error)
}

// Position reports how far the driver has read through the import file.
type Position interface {
	Offset() int64
	// Size returns the total file size, or 0 if unknown.
	Size() int64
}
