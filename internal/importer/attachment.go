package importer

import (
	"context"
	"fmt"
	"strings"
)

// AttachmentResolver turns image references from a row into attachment ids.
//
// References under the local upload URL are matched against stored file
// paths. Anything else is matched by the source marker recorded when it was
// first fetched, so importing the same external URL again reuses the
// existing attachment.
type AttachmentResolver struct {
	store   AttachmentStore
	fetcher ImageFetcher
	baseURL string
}

// NewAttachmentResolver creates a resolver. uploadBaseURL may be empty, in
// which case every reference is treated as external.
func NewAttachmentResolver(store AttachmentStore, fetcher ImageFetcher, uploadBaseURL string) *AttachmentResolver {
	base := strings.TrimRight(uploadBaseURL, "/")
	if base != "" {
		base += "/"
	}
	return &AttachmentResolver{store: store, fetcher: fetcher, baseURL: base}
}

// Resolve returns the attachment id for ref, importing it if needed.
// An empty or "0" ref resolves to 0.
func (r *AttachmentResolver) Resolve(ctx context.Context, ref string, productID int64) (int64, error) {
	ref = strings.TrimSpace(ref)
	if emptyRef(ref) {
		return 0, nil
	}

	var (
		id    int64
		found bool
		err   error
	)
	if r.baseURL != "" && strings.Contains(ref, r.baseURL) {
		rel := strings.Replace(ref, r.baseURL, "", 1)
		id, found, err = r.store.FindByLocalPath(ctx, rel)
	} else {
		id, found, err = r.store.FindBySource(ctx, ref)
	}
	if err != nil {
		return 0, fmt.Errorf("find attachment %q: %w", ref, err)
	}
	if found {
		return id, nil
	}

	id, err = r.fetcher.FetchImage(ctx, ref, productID)
	if err != nil {
		return 0, &RowError{
			Code:    CodeAttachmentFetchFailed,
			Message: fmt.Sprintf("Not able to attach %q.", ref),
			Data:    map[string]any{"url": ref},
			Err:     err,
		}
	}

	if err := r.store.RecordSource(ctx, id, ref); err != nil {
		return 0, fmt.Errorf("record attachment source %d: %w", id, err)
	}
	return id, nil
}

// ResolveAll resolves a gallery. Empty or "0" references and unresolved
// ids are dropped.
func (r *AttachmentResolver) ResolveAll(ctx context.Context, refs []string, productID int64) ([]int64, error) {
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		if emptyRef(strings.TrimSpace(ref)) {
			continue
		}
		id, err := r.Resolve(ctx, ref, productID)
		if err != nil {
			return nil, err
		}
		if id != 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// emptyRef reports whether a trimmed reference means "no image". Numeric
// columns decode 0 as "0".
func emptyRef(ref string) bool {
	return ref == "" || ref == "0"
}
