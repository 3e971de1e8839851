package product

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	p := New(TypeExternal)

	assert.Equal(t, TypeExternal, p.Type)
	assert.Equal(t, StatusImporting, p.Status)
	assert.Equal(t, StockInStock, p.StockStatus)
	assert.Equal(t, BackordersNo, p.Backorders)
	assert.True(t, p.ReviewsAllowed)
	assert.Equal(t, int64(-1), p.DownloadLimit)
	assert.Equal(t, int64(-1), p.DownloadExpiry)
	assert.NotNil(t, p.Meta)
}

func TestSyncPrice(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-24 * time.Hour)
	after := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		p    Product
		want string
	}{
		{"regular only", Product{Type: TypeSimple, RegularPrice: "10"}, "10"},
		{"open sale", Product{Type: TypeSimple, RegularPrice: "10", SalePrice: "8"}, "8"},
		{"sale in window", Product{Type: TypeSimple, RegularPrice: "10", SalePrice: "8", DateOnSaleFrom: &before, DateOnSaleTo: &after}, "8"},
		{"sale not started", Product{Type: TypeSimple, RegularPrice: "10", SalePrice: "8", DateOnSaleFrom: &after}, "10"},
		{"sale ended", Product{Type: TypeSimple, RegularPrice: "10", SalePrice: "8", DateOnSaleTo: &before}, "10"},
		{"variable has no price", Product{Type: TypeVariable, RegularPrice: "10", Price: "10"}, ""},
		{"grouped has no price", Product{Type: TypeGrouped, Price: "5"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.p
			p.SyncPrice(now)
			assert.Equal(t, tt.want, p.Price)
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	q := 4.0
	p := New(TypeVariable)
	p.StockQuantity = &q
	p.CategoryIDs = []int64{1}
	p.Attributes = []Attribute{{Name: "Size", Options: []string{"S"}}}
	p.DefaultAttributes = map[string]string{"size": "S"}
	p.UpdateMeta("k", "v")

	c := p.Clone()
	*c.StockQuantity = 9
	c.CategoryIDs[0] = 2
	c.Attributes[0].Options[0] = "XL"
	c.DefaultAttributes["size"] = "XL"
	c.Meta["k"] = "changed"

	assert.Equal(t, 4.0, *p.StockQuantity)
	assert.Equal(t, []int64{1}, p.CategoryIDs)
	assert.Equal(t, "S", p.Attributes[0].Options[0])
	assert.Equal(t, "S", p.DefaultAttributes["size"])
	assert.Equal(t, "v", p.Meta["k"])
}

func TestClearPricesAndDimensions(t *testing.T) {
	now := time.Now()
	p := &Product{
		RegularPrice: "1", SalePrice: "1", Price: "1",
		DateOnSaleFrom: &now, DateOnSaleTo: &now,
		Weight: "1", Height: "1", Length: "1", Width: "1",
	}

	p.ClearPrices()
	p.ClearDimensions()

	assert.Equal(t, &Product{}, p)
}

func TestUpdateMeta_NilMap(t *testing.T) {
	p := &Product{}
	p.UpdateMeta("a", "1")
	p.UpdateMeta("a", "2")

	assert.Equal(t, map[string]string{"a": "2"}, p.Meta)
}
