package importer

import "github.com/JonMunkholm/productimport/internal/product"

// Hooks are extension points called synchronously at fixed places in
// ImportRow. Each list runs in registration order and every function
// receives the previous function's output.
type Hooks struct {
	// ParsedData runs on the row before anything else.
	ParsedData []func(row Row) Row
	// ProductObject runs on the resolved (not yet mapped) product.
	ProductObject []func(p *product.Product, row Row) *product.Product
	// PreInsert runs on the mapped product right before it is saved.
	PreInsert []func(p *product.Product, row Row) *product.Product
	// DownloadPath filters the stored path of each downloadable file.
	DownloadPath []func(path string, p *product.Product, index int) string
}

func (h *Hooks) parsedData(row Row) Row {
	for _, fn := range h.ParsedData {
		row = fn(row)
	}
	return row
}

func (h *Hooks) productObject(p *product.Product, row Row) *product.Product {
	for _, fn := range h.ProductObject {
		p = fn(p, row)
	}
	return p
}

func (h *Hooks) preInsert(p *product.Product, row Row) *product.Product {
	for _, fn := range h.PreInsert {
		p = fn(p, row)
	}
	return p
}

func (h *Hooks) downloadPath(path string, p *product.Product, index int) string {
	for _, fn := range h.DownloadPath {
		path = fn(path, p, index)
	}
	return path
}
