// Package postgres implements the importer's storage collaborators on
// PostgreSQL using pgx.
package postgres

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store persists products, taxonomies, attachments and options.
// It implements importer.ProductStore, importer.TaxonomyResolver,
// importer.AttachmentStore, importer.Settings and media.Recorder.
type Store struct {
	db       DBTX
	validate *validator.Validate
	logger   *slog.Logger

	// defaultManageStock is used when the manage_stock option has never
	// been written.
	defaultManageStock bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithDefaultManageStock sets the stock management default.
func WithDefaultManageStock(enabled bool) Option {
	return func(s *Store) { s.defaultManageStock = enabled }
}

// New creates a Store on db.
func New(db DBTX, opts ...Option) *Store {
	s := &Store{
		db:                 db,
		validate:           newValidator(),
		logger:             slog.Default(),
		defaultManageStock: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
