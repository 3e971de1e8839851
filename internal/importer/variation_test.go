package importer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/productimport/internal/product"
)

func variableParent(id int64, colorVariation bool) *product.Product {
	return stored(id, product.TypeVariable, func(p *product.Product) {
		p.Attributes = []product.Attribute{
			{ID: 1, Name: "color", Options: []string{"red", "blue"}, Position: 0, Visible: true, Variation: colorVariation},
			{Name: "Size", Options: []string{"Small", "Large"}, Position: 1, Visible: true, Variation: true},
			{Name: "Material", Options: []string{"Wool"}, Position: 2, Visible: true},
		}
	})
}

func TestImportRow_VariationMissingParent(t *testing.T) {
	tests := []struct {
		name     string
		parentID Opt[int64]
		wantData map[string]any
	}{
		{"absent", Opt[int64]{}, nil},
		{"zero", Some[int64](0), nil},
		{"nonexistent", Some[int64](99), map[string]any{"parent_id": int64(99)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()

			_, err := h.importer().ImportRow(context.Background(), Row{
				Type:     Some("variation"),
				ParentID: tt.parentID,
			})

			var re *RowError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, CodeMissingParent, re.Code)
			assert.Equal(t, tt.wantData, re.Data)
			assert.Empty(t, h.store.saved)
		})
	}
}

func TestImportRow_VariationReconcilesParent(t *testing.T) {
	h := newHarness(variableParent(10, false))
	colorTaxonomy(h)

	res, err := h.importer().ImportRow(context.Background(), Row{
		Type:     Some("variation"),
		ParentID: Some[int64](10),
		Attributes: Some([]AttributeInput{
			{Name: "Color", Value: Some([]string{"Blue"})},
			{Name: "Size", Value: Some([]string{"Large"})},
			{Name: "Pattern", Value: Some([]string{"Striped"})},
		}),
	})
	require.NoError(t, err)
	assert.False(t, res.Updated)

	require.Len(t, h.store.saved, 2)

	parent := h.store.saved[0]
	assert.Equal(t, int64(10), parent.ID)
	require.Len(t, parent.Attributes, 3)
	assert.Equal(t, "color", parent.Attributes[0].Name)
	assert.True(t, parent.Attributes[0].Variation)
	assert.Equal(t, "Size", parent.Attributes[1].Name)
	assert.Equal(t, "Material", parent.Attributes[2].Name)
	assert.False(t, parent.Attributes[2].Variation)

	v := h.store.saved[1]
	assert.Equal(t, product.TypeVariation, v.Type)
	assert.Equal(t, int64(10), v.ParentID)
	assert.Equal(t, product.StatusPublish, v.Status)
	assert.Equal(t, map[string]string{"color": "blue", "size": "Large"}, v.VariationAttributes)
}

func TestImportRow_VariationParentAlreadyEnabled(t *testing.T) {
	h := newHarness(variableParent(10, true))
	colorTaxonomy(h)

	_, err := h.importer().ImportRow(context.Background(), Row{
		Type:     Some("variation"),
		ParentID: Some[int64](10),
		Attributes: Some([]AttributeInput{
			{Name: "Color", Value: Some([]string{"Crimson"})},
		}),
	})
	require.NoError(t, err)

	require.Len(t, h.store.saved, 1)
	assert.Equal(t, map[string]string{"color": "crimson"}, h.store.last().VariationAttributes)
}

func TestReconcileParentAttributes_ReturnsFullMap(t *testing.T) {
	h := newHarness()
	colorTaxonomy(h)
	parent := variableParent(10, false)

	keyed, update, err := h.importer().reconcileParentAttributes(context.Background(),
		[]AttributeInput{{Name: "Material"}}, parent)
	require.NoError(t, err)

	require.Len(t, keyed, 3)
	assert.False(t, keyed["color"].Variation)
	assert.True(t, keyed["size"].Variation)
	assert.True(t, keyed["material"].Variation)

	require.NotNil(t, update)
	assert.Equal(t, []string{"material"}, update.Enabled)
	assert.True(t, update.Parent.Attributes[2].Variation)
	assert.False(t, parent.Attributes[2].Variation, "parent must not be modified in place")
}

func TestImportRow_VariationFields(t *testing.T) {
	loc := time.FixedZone("store", 2*60*60)
	h := newHarness(variableParent(10, true))
	h.cfg.Location = loc

	_, err := h.importer().ImportRow(context.Background(), Row{
		Type:              Some("variation"),
		ParentID:          Some[int64](10),
		Published:         Some(false),
		SKU:               Some("  <b>V-1</b> "),
		Description:       Some("<p>Blue one</p><script>x()</script>"),
		RegularPrice:      Some("12"),
		SalePrice:         Some("10"),
		DateOnSaleFrom:    Some("2026-05-01 00:00:00"),
		DateOnSaleFromGMT: Some("2026-05-01 10:00:00"),
		DateOnSaleTo:      Some("2026-06-01 00:00:00"),
		TaxClass:          Some("reduced-rate"),
		MetaData:          Some([]MetaInput{{Key: "batch", Value: "7"}}),
	})
	require.NoError(t, err)

	v := h.store.last()
	assert.Equal(t, product.StatusDraft, v.Status)
	assert.Equal(t, "V-1", v.SKU)
	assert.Equal(t, "<p>Blue one</p>", v.Description)
	assert.Equal(t, "12", v.RegularPrice)
	assert.Equal(t, "10", v.SalePrice)
	require.NotNil(t, v.DateOnSaleFrom)
	assert.True(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC).Equal(*v.DateOnSaleFrom))
	require.NotNil(t, v.DateOnSaleTo)
	assert.True(t, time.Date(2026, 5, 31, 22, 0, 0, 0, time.UTC).Equal(*v.DateOnSaleTo))
	assert.Equal(t, "reduced-rate", v.TaxClass)
	assert.Equal(t, "7", v.Meta["batch"])
}

func TestImportRow_VariationGMTClears(t *testing.T) {
	h := newHarness(variableParent(10, true), stored(20, product.TypeVariation, func(p *product.Product) {
		p.ParentID = 10
		p.DateOnSaleTo = ptr(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	}))

	res, err := h.importer().ImportRow(context.Background(), Row{
		ID:              Some[int64](20),
		ParentID:        Some[int64](10),
		DateOnSaleTo:    Some("2026-02-01"),
		DateOnSaleToGMT: Some(""),
	})
	require.NoError(t, err)

	assert.True(t, res.Updated)
	assert.Nil(t, h.store.last().DateOnSaleTo)
}

func TestImportRow_VariationStock(t *testing.T) {
	tests := []struct {
		name     string
		managed  bool
		row      Row
		wantQty  *float64
		wantBack string
	}{
		{
			name:     "store unmanaged ignores quantity",
			managed:  false,
			row:      Row{ManageStock: Some(true), StockQuantity: Some(4.0), Backorders: Some("yes")},
			wantBack: product.BackordersNo,
		},
		{
			name:     "managed quantity is not coerced",
			managed:  true,
			row:      Row{ManageStock: Some(true), StockQuantity: Some(3.7), Backorders: Some("notify")},
			wantQty:  ptr(3.7),
			wantBack: product.BackordersNotify,
		},
		{
			name:     "unmanaged variation disallows backorders",
			managed:  true,
			row:      Row{ManageStock: Some(false), StockQuantity: Some(3.0), Backorders: Some("yes")},
			wantBack: product.BackordersNo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(variableParent(10, true))
			h.settings.managed = tt.managed

			row := tt.row
			row.Type = Some("variation")
			row.ParentID = Some[int64](10)
			row.StockStatus = Some(false)

			_, err := h.importer().ImportRow(context.Background(), row)
			require.NoError(t, err)

			v := h.store.last()
			assert.Equal(t, product.StockOutOfStock, v.StockStatus)
			assert.Equal(t, tt.wantQty, v.StockQuantity)
			assert.Equal(t, tt.wantBack, v.Backorders)
		})
	}
}

func TestImportRow_VariationImage(t *testing.T) {
	h := newHarness(variableParent(10, true))

	_, err := h.importer().ImportRow(context.Background(), Row{
		Type:     Some("variation"),
		ParentID: Some[int64](10),
		ImageID:  Some("https://cdn.example/v.png"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(501), h.store.last().ImageID)
}
