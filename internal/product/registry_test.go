package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_BuiltIns(t *testing.T) {
	r := NewRegistry()

	for _, typ := range []Type{TypeSimple, TypeVariable, TypeGrouped, TypeExternal, TypeVariation} {
		ctor, ok := r.Constructor(typ)
		require.True(t, ok, "type %s", typ)

		p := ctor()
		assert.Equal(t, typ, p.Type)
		assert.Equal(t, StatusImporting, p.Status)
	}

	assert.Equal(t, []Type{"external", "grouped", "simple", "variable", "variation"}, r.Tags())
}

func TestRegistry_UnknownTag(t *testing.T) {
	r := NewRegistry()

	ctor, ok := r.Constructor("bundle")
	assert.False(t, ok)
	assert.Nil(t, ctor)
	assert.False(t, r.Known("bundle"))
}

func TestRegistry_DeclaredTagFallsBackToSimple(t *testing.T) {
	r := NewRegistry()
	r.Declare("subscription")

	assert.True(t, r.Known("subscription"))
	ctor, ok := r.Constructor("subscription")
	require.True(t, ok)
	assert.Equal(t, TypeSimple, ctor().Type)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("bundle", func() *Product {
		p := New("bundle")
		p.Virtual = true
		return p
	})

	ctor, ok := r.Constructor("bundle")
	require.True(t, ok)
	p := ctor()
	assert.Equal(t, Type("bundle"), p.Type)
	assert.True(t, p.Virtual)
}

func TestRegistry_RegisterDuplicatePanics(t *testing.T) {
	r := NewRegistry()

	assert.Panics(t, func() {
		r.Register(TypeSimple, func() *Product { return New(TypeSimple) })
	})
}
