package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const optionManageStock = "manage_stock"

// StockManagementEnabled reports whether store-wide stock management is on.
func (s *Store) StockManagementEnabled(ctx context.Context) (bool, error) {
	var value string
	err := s.db.QueryRow(ctx, "SELECT value FROM options WHERE name = $1", optionManageStock).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.defaultManageStock, nil
	}
	if err != nil {
		return false, fmt.Errorf("read option %s: %w", optionManageStock, err)
	}
	return value == "yes", nil
}

// SetStockManagement writes the manage_stock option.
func (s *Store) SetStockManagement(ctx context.Context, enabled bool) error {
	value := "no"
	if enabled {
		value = "yes"
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO options (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`,
		optionManageStock, value,
	)
	if err != nil {
		return fmt.Errorf("write option %s: %w", optionManageStock, err)
	}
	return nil
}
