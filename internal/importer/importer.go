// Package importer maps parsed import rows onto products and saves them.
//
// One Importer handles one import run. Rows are processed one at a time:
//
//	row → ParsedData hooks → resolve product → map fields
//	    → PreInsert hooks → save → Result{ID, Updated}
//
// Variations take a separate mapping path that requires a saved parent and
// may also update the parent's attribute set before the variation is saved.
//
// Any failure is returned as a *RowError; a failed row never affects the
// next one, and nothing already saved (an imported image, a parent update)
// is rolled back.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/JonMunkholm/productimport/internal/product"
)

// Deps are the collaborators an Importer calls into.
type Deps struct {
	Products    ProductStore
	Taxonomies  TaxonomyResolver
	Attachments AttachmentStore
	Images      ImageFetcher
	Settings    Settings
}

// Config holds per-run options. The zero value is usable.
type Config struct {
	// Registry defaults to product.NewRegistry().
	Registry *product.Registry
	Hooks    Hooks

	// UploadBaseURL is the public base URL of the local media library.
	// References under it are looked up by relative path instead of fetched.
	UploadBaseURL string

	// Location is the store timezone used for non-GMT sale dates.
	// Defaults to UTC.
	Location *time.Location

	// StockAmount coerces imported stock quantities to the store's
	// convention. Defaults to truncating to whole units.
	StockAmount func(float64) float64

	// Position reports read progress through the import file.
	Position Position

	Logger *slog.Logger
}

// Importer maps rows onto products. It is not safe for concurrent use.
type Importer struct {
	products    ProductStore
	taxonomies  TaxonomyResolver
	settings    Settings
	attachments *AttachmentResolver

	registry    *product.Registry
	hooks       Hooks
	loc         *time.Location
	stockAmount func(float64) float64
	position    Position
	logger      *slog.Logger
}

// New creates an Importer.
func New(deps Deps, cfg Config) *Importer {
	im := &Importer{
		products:    deps.Products,
		taxonomies:  deps.Taxonomies,
		settings:    deps.Settings,
		attachments: NewAttachmentResolver(deps.Attachments, deps.Images, cfg.UploadBaseURL),
		registry:    cfg.Registry,
		hooks:       cfg.Hooks,
		loc:         cfg.Location,
		stockAmount: cfg.StockAmount,
		position:    cfg.Position,
		logger:      cfg.Logger,
	}
	if im.registry == nil {
		im.registry = product.NewRegistry()
	}
	if im.loc == nil {
		im.loc = time.UTC
	}
	if im.stockAmount == nil {
		im.stockAmount = math.Trunc
	}
	if im.logger == nil {
		im.logger = slog.Default()
	}
	return im
}

// ImportRow resolves, maps and saves one row.
// The returned error, if any, is always a *RowError.
func (im *Importer) ImportRow(ctx context.Context, row Row) (Result, error) {
	row = im.hooks.parsedData(row)

	res, err := im.processRow(ctx, row)
	if err != nil {
		re := toRowError(err)
		im.logger.Warn("row import failed",
			"code", re.Code,
			"error", re.Message,
			"data", re.Data,
		)
		return Result{}, re
	}

	im.logger.Debug("row imported",
		"id", res.ID,
		"updated", res.Updated,
		"percent", im.PercentComplete(),
	)
	return res, nil
}

func (im *Importer) processRow(ctx context.Context, row Row) (Result, error) {
	p, err := im.productObject(ctx, row)
	if err != nil {
		return Result{}, err
	}

	updating := p.ID != 0 && p.Status != product.StatusImporting

	stockManaged, err := im.settings.StockManagementEnabled(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read stock management setting: %w", err)
	}

	if p.IsType(product.TypeVariation) {
		update, err := im.mapVariation(ctx, p, row, stockManaged)
		if err != nil {
			return Result{}, err
		}
		if update != nil {
			if err := im.saveParentUpdate(ctx, update); err != nil {
				return Result{}, err
			}
		}
	} else if err := im.mapProduct(ctx, p, row, stockManaged); err != nil {
		return Result{}, err
	}

	p = im.hooks.preInsert(p, row)

	id, err := im.products.Save(ctx, p)
	if err != nil {
		return Result{}, fmt.Errorf("save product: %w", err)
	}

	return Result{ID: id, Updated: updating}, nil
}

// CurrentOffset returns the number of bytes of the import file consumed so far.
func (im *Importer) CurrentOffset() int64 {
	if im.position == nil {
		return 0
	}
	return im.position.Offset()
}

// PercentComplete returns the consumed share of the import file, 0-100.
// Returns 0 if the file size is unknown.
func (im *Importer) PercentComplete() int {
	if im.position == nil {
		return 0
	}
	size := im.position.Size()
	if size <= 0 {
		return 0
	}
	pct := math.Round(float64(im.position.Offset()) / float64(size) * 100)
	return int(max(0, min(pct, 100)))
}
