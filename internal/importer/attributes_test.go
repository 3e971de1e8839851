package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/productimport/internal/product"
)

func colorTaxonomy(h *harness) {
	h.taxonomies.add(1, "Color", "color", map[string]string{
		"Red":  "red",
		"Blue": "blue",
	})
}

func TestImportRow_TaxonomyAttributeWithDefault(t *testing.T) {
	h := newHarness()
	colorTaxonomy(h)

	_, err := h.importer().ImportRow(context.Background(), Row{
		Type: Some("variable"),
		Attributes: Some([]AttributeInput{
			{Name: "Color", Value: Some([]string{"Red", "Blue"}), Default: "Red"},
		}),
	})
	require.NoError(t, err)

	p := h.store.last()
	require.Len(t, p.Attributes, 1)
	assert.Equal(t, product.Attribute{
		ID:        1,
		Name:      "color",
		Options:   []string{"red", "blue"},
		Position:  0,
		Visible:   true,
		Variation: true,
	}, p.Attributes[0])
	assert.Equal(t, map[string]string{"color": "red"}, p.DefaultAttributes)
}

func TestAssembleAttributes(t *testing.T) {
	tests := []struct {
		name         string
		in           []AttributeInput
		wantAttrs    []product.Attribute
		wantDefaults map[string]string
	}{
		{
			name: "unknown terms fall back to slugs",
			in: []AttributeInput{
				{Name: "Color", Value: Some([]string{" Sea Green ", "<i></i>", "Red"})},
			},
			wantAttrs: []product.Attribute{
				{ID: 1, Name: "color", Options: []string{"sea-green", "red"}, Visible: true},
			},
			wantDefaults: map[string]string{},
		},
		{
			name: "taxonomy attribute without options is dropped",
			in: []AttributeInput{
				{Name: "Color", Value: Some([]string{"", " "}), Default: ""},
			},
			wantAttrs:    []product.Attribute{},
			wantDefaults: map[string]string{},
		},
		{
			name: "default not among options is ignored",
			in: []AttributeInput{
				{Name: "Color", Value: Some([]string{"Red"}), Default: "Blue"},
			},
			wantAttrs: []product.Attribute{
				{ID: 1, Name: "color", Options: []string{"red"}, Visible: true},
			},
			wantDefaults: map[string]string{},
		},
		{
			name: "custom attribute keeps values verbatim",
			in: []AttributeInput{
				{Name: "Color", Value: Some([]string{"Red"})},
				{Name: "Gift Wrap", Value: Some([]string{"Yes", "No thanks"}), Visible: Some(false), Default: "No thanks"},
			},
			wantAttrs: []product.Attribute{
				{ID: 1, Name: "color", Options: []string{"red"}, Position: 0, Visible: true},
				{Name: "Gift Wrap", Options: []string{"Yes", "No thanks"}, Position: 1, Visible: false, Variation: true},
			},
			wantDefaults: map[string]string{"gift-wrap": "No thanks"},
		},
		{
			name: "custom attribute with empty list is kept",
			in: []AttributeInput{
				{Name: "Engraving", Value: Some([]string{})},
			},
			wantAttrs: []product.Attribute{
				{Name: "Engraving", Options: []string{}, Visible: true},
			},
			wantDefaults: map[string]string{},
		},
		{
			name: "custom attribute without values is skipped",
			in: []AttributeInput{
				{Name: "Engraving"},
				{Name: "Finish", Value: Some([]string{"Matte"})},
			},
			wantAttrs: []product.Attribute{
				{Name: "Finish", Options: []string{"Matte"}, Position: 1, Visible: true},
			},
			wantDefaults: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			colorTaxonomy(h)

			attrs, defaults, err := h.importer().assembleAttributes(context.Background(), tt.in)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAttrs, attrs)
			assert.Equal(t, tt.wantDefaults, defaults)
		})
	}
}

func TestImportRow_DefaultAttributesOnlyOnVariable(t *testing.T) {
	h := newHarness()
	colorTaxonomy(h)

	_, err := h.importer().ImportRow(context.Background(), Row{
		Type: Some("simple"),
		Attributes: Some([]AttributeInput{
			{Name: "Color", Value: Some([]string{"Red"}), Default: "Red"},
		}),
	})
	require.NoError(t, err)

	p := h.store.last()
	require.Len(t, p.Attributes, 1)
	assert.True(t, p.Attributes[0].Variation)
	assert.Nil(t, p.DefaultAttributes)
}

func TestImportRow_TaxonomyLookupFailure(t *testing.T) {
	h := newHarness()
	h.taxonomies.err = errors.New("taxonomy table locked")

	_, err := h.importer().ImportRow(context.Background(), Row{
		Attributes: Some([]AttributeInput{{Name: "Color", Value: Some([]string{"Red"})}}),
	})

	assert.ErrorIs(t, err, ErrUnknown)
	assert.Empty(t, h.store.saved)
}
