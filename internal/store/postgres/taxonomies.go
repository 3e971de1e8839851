package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/productimport/internal/sanitize"
)

// Global attributes are stored without the taxonomy prefix.
const taxonomyPrefix = "pa_"

// AttributeTaxonomyID returns the id of the global attribute named name, or
// 0 if there is none. Both "Color" and "pa_color" find the same attribute.
func (s *Store) AttributeTaxonomyID(ctx context.Context, name string) (int64, error) {
	slug := sanitize.Title(strings.TrimPrefix(name, taxonomyPrefix))
	if slug == "" {
		return 0, nil
	}

	var id int64
	err := s.db.QueryRow(ctx, "SELECT id FROM attribute_taxonomies WHERE name = $1", slug).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lookup attribute taxonomy %q: %w", name, err)
	}
	return id, nil
}

// AttributeTaxonomyName returns the taxonomy name (pa_<name>) for id, or ""
// if id is unknown.
func (s *Store) AttributeTaxonomyName(ctx context.Context, id int64) (string, error) {
	var name string
	err := s.db.QueryRow(ctx, "SELECT name FROM attribute_taxonomies WHERE id = $1", id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup attribute taxonomy %d: %w", id, err)
	}
	return taxonomyPrefix + name, nil
}

// TermSlug finds a term in taxonomy by name, or by slug when no name
// matches.
func (s *Store) TermSlug(ctx context.Context, taxonomy, name string) (string, bool, error) {
	var slug string
	err := s.db.QueryRow(ctx, `
		SELECT slug FROM terms
		WHERE taxonomy = $1 AND (name = $2 OR slug = $3)
		ORDER BY (name = $2) DESC
		LIMIT 1`,
		taxonomy, name, sanitize.Title(name),
	).Scan(&slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup term %q in %s: %w", name, taxonomy, err)
	}
	return slug, true, nil
}
