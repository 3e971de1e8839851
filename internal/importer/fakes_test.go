package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/JonMunkholm/productimport/internal/product"
)

type fakeStore struct {
	products map[int64]*product.Product
	nextID   int64
	saved    []*product.Product
	saveErr  error
}

func newFakeStore(existing ...*product.Product) *fakeStore {
	s := &fakeStore{products: make(map[int64]*product.Product), nextID: 100}
	for _, p := range existing {
		s.products[p.ID] = p.Clone()
	}
	return s
}

func (s *fakeStore) Get(_ context.Context, id int64) (*product.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *fakeStore) Save(_ context.Context, p *product.Product) (int64, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	if p.ID == 0 {
		s.nextID++
		p.ID = s.nextID
	}
	s.products[p.ID] = p.Clone()
	s.saved = append(s.saved, p.Clone())
	return p.ID, nil
}

// last returns the most recently saved product.
func (s *fakeStore) last() *product.Product {
	if len(s.saved) == 0 {
		return nil
	}
	return s.saved[len(s.saved)-1]
}

type fakeTaxonomies struct {
	ids   map[string]int64
	names map[int64]string
	// terms maps taxonomy name → term display name → slug.
	terms map[string]map[string]string
	err   error
}

func newFakeTaxonomies() *fakeTaxonomies {
	return &fakeTaxonomies{
		ids:   make(map[string]int64),
		names: make(map[int64]string),
		terms: make(map[string]map[string]string),
	}
}

// add registers a global attribute named display, stored as taxonomy name,
// with the given term display names → slugs.
func (f *fakeTaxonomies) add(id int64, display, name string, terms map[string]string) {
	f.ids[display] = id
	f.names[id] = name
	f.terms[name] = terms
}

func (f *fakeTaxonomies) AttributeTaxonomyID(_ context.Context, name string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.ids[name], nil
}

func (f *fakeTaxonomies) AttributeTaxonomyName(_ context.Context, id int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.names[id], nil
}

func (f *fakeTaxonomies) TermSlug(_ context.Context, taxonomy, name string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	slug, ok := f.terms[taxonomy][name]
	return slug, ok, nil
}

type fakeAttachments struct {
	local   map[string]int64
	sources map[string]int64
	lookups []string
}

func newFakeAttachments() *fakeAttachments {
	return &fakeAttachments{
		local:   make(map[string]int64),
		sources: make(map[string]int64),
	}
}

func (f *fakeAttachments) FindByLocalPath(_ context.Context, rel string) (int64, bool, error) {
	f.lookups = append(f.lookups, "local:"+rel)
	id, ok := f.local[rel]
	return id, ok, nil
}

func (f *fakeAttachments) FindBySource(_ context.Context, ref string) (int64, bool, error) {
	f.lookups = append(f.lookups, "source:"+ref)
	id, ok := f.sources[ref]
	return id, ok, nil
}

func (f *fakeAttachments) RecordSource(_ context.Context, id int64, ref string) error {
	f.sources[ref] = id
	return nil
}

type fakeFetcher struct {
	nextID int64
	calls  []string
	err    error
}

func (f *fakeFetcher) FetchImage(_ context.Context, ref string, _ int64) (int64, error) {
	f.calls = append(f.calls, ref)
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	return 500 + f.nextID, nil
}

var errFetch = errors.New("remote returned 404")

type fakeSettings struct {
	managed bool
}

func (f fakeSettings) StockManagementEnabled(context.Context) (bool, error) {
	return f.managed, nil
}

type fakePosition struct {
	offset, size int64
}

func (f fakePosition) Offset() int64 { return f.offset }
func (f fakePosition) Size() int64   { return f.size }

// harness bundles an importer with its fakes.
type harness struct {
	store       *fakeStore
	taxonomies  *fakeTaxonomies
	attachments *fakeAttachments
	fetcher     *fakeFetcher
	settings    fakeSettings
	cfg         Config
}

func newHarness(existing ...*product.Product) *harness {
	return &harness{
		store:       newFakeStore(existing...),
		taxonomies:  newFakeTaxonomies(),
		attachments: newFakeAttachments(),
		fetcher:     &fakeFetcher{},
		cfg: Config{
			UploadBaseURL: "https://shop.example/uploads",
			Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
	}
}

func (h *harness) importer() *Importer {
	return New(Deps{
		Products:    h.store,
		Taxonomies:  h.taxonomies,
		Attachments: h.attachments,
		Images:      h.fetcher,
		Settings:    h.settings,
	}, h.cfg)
}

func stored(id int64, t product.Type, mutate func(p *product.Product)) *product.Product {
	p := product.New(t)
	p.ID = id
	p.Status = product.StatusPublish
	if mutate != nil {
		mutate(p)
	}
	return p
}

func ptr[T any](v T) *T {
	return &v
}
