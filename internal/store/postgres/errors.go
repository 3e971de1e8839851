package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/productimport/internal/product"
)

// constraintFields maps named constraints to the product field they guard.
var constraintFields = map[string]string{
	"products_sku_key":      "sku",
	"products_type_check":   "type",
	"products_status_check": "status",
}

// classify converts driver errors into the errors callers match on.
// Data exceptions (class 22) and integrity violations (class 23) mean the
// row was rejected and become *product.ValidationError.
func classify(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return product.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23") {
			return &product.ValidationError{
				Fields: map[string]string{pgErrorField(pgErr): pgErr.Message},
				Err:    err,
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func pgErrorField(e *pgconn.PgError) string {
	if e.ColumnName != "" {
		return e.ColumnName
	}
	if f, ok := constraintFields[e.ConstraintName]; ok {
		return f
	}
	if e.ConstraintName != "" {
		return e.ConstraintName
	}
	return "product"
}
