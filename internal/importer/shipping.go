package importer

import (
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/productimport/internal/product"
)

// mapShipping applies dimensions and shipping class. Virtual products never
// carry weight or dimensions.
func mapShipping(p *product.Product, row Row) {
	if row.Virtual.Valid {
		p.Virtual = row.Virtual.Value
	}

	if p.Virtual {
		p.ClearDimensions()
	} else {
		setIf(&p.Weight, row.Weight)
		setIf(&p.Height, row.Height)
		setIf(&p.Width, row.Width)
		setIf(&p.Length, row.Length)
	}

	setIf(&p.ShippingClassID, row.ShippingClassID)
}

// mapDownloadable applies the downloadable flag and, only for downloadable
// products, the file list and its limits.
func (im *Importer) mapDownloadable(p *product.Product, row Row) {
	if row.Downloadable.Valid {
		p.Downloadable = row.Downloadable.Value
	}
	if !p.Downloadable {
		return
	}

	if row.Downloads.Valid {
		p.Downloads = im.mapDownloads(p, row.Downloads.Value)
	}
	setIf(&p.DownloadLimit, row.DownloadLimit)
	setIf(&p.DownloadExpiry, row.DownloadExpiry)
}

// mapDownloads builds the full replacement download list. Entries without
// a URL are skipped.
func (im *Importer) mapDownloads(p *product.Product, in []DownloadInput) []product.Download {
	downloads := make([]product.Download, 0, len(in))
	for i, d := range in {
		if strings.TrimSpace(d.URL) == "" {
			continue
		}

		name := d.Name
		if name == "" {
			name = filenameFromURL(d.URL)
		}
		file := im.hooks.downloadPath(d.URL, p, i)

		downloads = append(downloads, product.Download{
			ID:   downloadID(file),
			Name: name,
			File: file,
		})
	}
	return downloads
}

// downloadID derives a stable id from the file path so re-importing the same
// list does not invalidate customer download links.
func downloadID(file string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(file)).String()
}

// filenameFromURL returns the last path segment of raw, without any query
// string or fragment.
func filenameFromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// setIf assigns v to *dst when v is present.
func setIf[T any](dst *T, v Opt[T]) {
	if v.Valid {
		*dst = v.Value
	}
}
