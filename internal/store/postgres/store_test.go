package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/productimport/internal/media"
)

func TestStore_AttributeTaxonomyID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		row      []any
		wantID   int64
		wantSlug string
	}{
		{"label", "Color", []any{int64(3)}, 3, "color"},
		{"taxonomy name", "pa_color", []any{int64(3)}, 3, "color"},
		{"unknown", "Gift Wrap", nil, 0, "gift-wrap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{}
			if tt.row != nil {
				db.push(tt.row...)
			}
			s := newTestStore(db)

			id, err := s.AttributeTaxonomyID(context.Background(), tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			require.Len(t, db.calls, 1)
			assert.Equal(t, []any{tt.wantSlug}, db.calls[0].args)
		})
	}
}

func TestStore_AttributeTaxonomyIDBlankName(t *testing.T) {
	db := &fakeDB{}
	s := newTestStore(db)

	id, err := s.AttributeTaxonomyID(context.Background(), "  ")

	require.NoError(t, err)
	assert.Zero(t, id)
	assert.Empty(t, db.calls)
}

func TestStore_AttributeTaxonomyName(t *testing.T) {
	db := &fakeDB{}
	db.push("color")
	s := newTestStore(db)

	name, err := s.AttributeTaxonomyName(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "pa_color", name)

	name, err = s.AttributeTaxonomyName(context.Background(), 4)
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestStore_TermSlug(t *testing.T) {
	db := &fakeDB{}
	db.push("dark-red")
	s := newTestStore(db)

	slug, found, err := s.TermSlug(context.Background(), "pa_color", "Dark Red")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "dark-red", slug)
	assert.Equal(t, []any{"pa_color", "Dark Red", "dark-red"}, db.calls[0].args)

	_, found, err = s.TermSlug(context.Background(), "pa_color", "Teal")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_TermSlugError(t *testing.T) {
	db := &fakeDB{}
	db.fail(errors.New("conn reset"))
	s := newTestStore(db)

	_, _, err := s.TermSlug(context.Background(), "pa_color", "Red")

	assert.ErrorContains(t, err, "conn reset")
}

func TestStore_Attachments(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{tag: pgconn.NewCommandTag("UPDATE 1")}
	db.push(int64(12))
	db.push(int64(13))
	s := newTestStore(db)

	id, found, err := s.FindByLocalPath(ctx, "2026/10/a.png")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(12), id)
	assert.Contains(t, db.calls[0].sql, "file LIKE")

	id, found, err = s.FindBySource(ctx, "https://cdn.example/a.png")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(13), id)
	assert.Contains(t, db.calls[1].sql, "source_url = $1")

	_, found, err = s.FindBySource(ctx, "https://cdn.example/b.png")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.RecordSource(ctx, 13, "https://cdn.example/a.png"))
	assert.Equal(t, []any{int64(13), "https://cdn.example/a.png"}, db.calls[3].args)
}

func TestStore_RecordSourceMissingAttachment(t *testing.T) {
	s := newTestStore(&fakeDB{tag: pgconn.NewCommandTag("UPDATE 0")})

	err := s.RecordSource(context.Background(), 99, "https://cdn.example/a.png")

	assert.ErrorContains(t, err, "no such attachment")
}

func TestStore_CreateAttachment(t *testing.T) {
	db := &fakeDB{}
	db.push(int64(501))
	s := newTestStore(db)

	id, err := s.CreateAttachment(context.Background(), media.Attachment{
		ProductID: 42,
		File:      "2026/10/x.png",
		URL:       "https://bucket.example/uploads/2026/10/x.png",
		MimeType:  "image/png",
		Size:      40,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(501), id)
	assert.Equal(t, []any{int64(42), "2026/10/x.png", "https://bucket.example/uploads/2026/10/x.png", "image/png", int64(40)}, db.calls[0].args)
}

func TestStore_StockManagementEnabled(t *testing.T) {
	tests := []struct {
		name     string
		row      []any
		fallback bool
		want     bool
	}{
		{"yes", []any{"yes"}, false, true},
		{"no", []any{"no"}, true, false},
		{"unset uses default on", nil, true, true},
		{"unset uses default off", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{}
			if tt.row != nil {
				db.push(tt.row...)
			}
			s := newTestStore(db, WithDefaultManageStock(tt.fallback))

			got, err := s.StockManagementEnabled(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_SetStockManagement(t *testing.T) {
	db := &fakeDB{}
	s := newTestStore(db)

	require.NoError(t, s.SetStockManagement(context.Background(), false))
	assert.Equal(t, []any{"manage_stock", "no"}, db.calls[0].args)
}

func TestMigrate(t *testing.T) {
	db := &fakeDB{}

	require.NoError(t, Migrate(context.Background(), db))

	require.Len(t, db.calls, len(schemaStatements()))
	for _, c := range db.calls {
		assert.False(t, strings.HasSuffix(c.sql, ";"))
		assert.NotEmpty(t, c.sql)
	}
	assert.True(t, strings.HasPrefix(db.calls[0].sql, "CREATE TABLE IF NOT EXISTS products"))
}

func TestMigrateStopsOnError(t *testing.T) {
	db := &fakeDB{execErr: errors.New("permission denied")}

	err := Migrate(context.Background(), db)

	assert.ErrorContains(t, err, "schema statement 1")
	assert.Len(t, db.calls, 1)
}
