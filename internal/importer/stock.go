package importer

import "github.com/JonMunkholm/productimport/internal/product"

func stockStatusFromRow(v bool) string {
	if v {
		return product.StockInStock
	}
	return product.StockOutOfStock
}

// mapStock applies stock fields to a non-variation product.
//
// With store-wide stock management off only the stock status is written,
// and never for variable products, whose status follows their children.
func (im *Importer) mapStock(p *product.Product, row Row, stockManaged bool) {
	status := p.StockStatus
	if row.StockStatus.Valid {
		status = stockStatusFromRow(row.StockStatus.Value)
	}

	if !stockManaged {
		if !p.IsType(product.TypeVariable) {
			p.StockStatus = status
		}
		return
	}

	if row.ManageStock.Valid {
		p.ManageStock = row.ManageStock.Value
	}
	if row.Backorders.Valid {
		p.Backorders = row.Backorders.Value
	}

	switch {
	case p.IsType(product.TypeGrouped):
		p.ManageStock = false
		p.Backorders = product.BackordersNo
		p.StockQuantity = nil
		p.StockStatus = status

	case p.IsType(product.TypeExternal):
		p.ManageStock = false
		p.Backorders = product.BackordersNo
		p.StockQuantity = nil
		p.StockStatus = product.StockInStock

	case p.ManageStock:
		if !p.IsType(product.TypeVariable) {
			p.StockStatus = status
		}
		if row.StockQuantity.Valid {
			q := im.stockAmount(row.StockQuantity.Value)
			p.StockQuantity = &q
		}

	default:
		p.ManageStock = false
		p.StockQuantity = nil
		p.StockStatus = status
	}
}

// mapVariationStock applies stock fields to a variation. Quantities are
// stored as given and an unmanaged variation never allows backorders.
func mapVariationStock(v *product.Product, row Row, stockManaged bool) {
	if row.StockStatus.Valid {
		v.StockStatus = stockStatusFromRow(row.StockStatus.Value)
	}
	if !stockManaged {
		return
	}

	if row.ManageStock.Valid {
		v.ManageStock = row.ManageStock.Value
	}
	if row.Backorders.Valid {
		v.Backorders = row.Backorders.Value
	}

	if v.ManageStock {
		if row.StockQuantity.Valid {
			q := row.StockQuantity.Value
			v.StockQuantity = &q
		}
		return
	}
	v.Backorders = product.BackordersNo
	v.StockQuantity = nil
}
