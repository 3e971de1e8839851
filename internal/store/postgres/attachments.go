package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/productimport/internal/media"
)

// FindByLocalPath returns the attachment whose stored file path contains
// relPath.
func (s *Store) FindByLocalPath(ctx context.Context, relPath string) (int64, bool, error) {
	return s.findAttachment(ctx, "file LIKE '%' || $1 || '%'", relPath)
}

// FindBySource returns the attachment previously imported from ref.
func (s *Store) FindBySource(ctx context.Context, ref string) (int64, bool, error) {
	return s.findAttachment(ctx, "source_url = $1", ref)
}

func (s *Store) findAttachment(ctx context.Context, where, arg string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow(ctx, "SELECT id FROM attachments WHERE "+where+" ORDER BY id LIMIT 1", arg).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find attachment %q: %w", arg, err)
	}
	return id, true, nil
}

// RecordSource marks attachment id as imported from ref.
func (s *Store) RecordSource(ctx context.Context, id int64, ref string) error {
	tag, err := s.db.Exec(ctx, "UPDATE attachments SET source_url = $2 WHERE id = $1", id, ref)
	if err != nil {
		return fmt.Errorf("record attachment source %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record attachment source %d: no such attachment", id)
	}
	return nil
}

// CreateAttachment stores a newly uploaded media file.
func (s *Store) CreateAttachment(ctx context.Context, a media.Attachment) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO attachments (product_id, file, url, mime_type, size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		a.ProductID, a.File, a.URL, a.MimeType, a.Size,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create attachment %s: %w", a.File, err)
	}
	return id, nil
}
