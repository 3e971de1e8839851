package product

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds a blank, unsaved product of one type.
type Constructor func() *Product

// Registry maps type tags to constructors.
//
// A tag can be known without a constructor bound to it (see Declare). Such
// tags pass type validation and are built with the simple constructor; this
// keeps rows for types provided by a disabled extension importable as
// simple products instead of failing the whole row.
type Registry struct {
	mu    sync.RWMutex
	ctors map[Type]Constructor
	known map[Type]bool
}

// NewRegistry returns a registry with the built-in types bound.
func NewRegistry() *Registry {
	r := &Registry{
		ctors: make(map[Type]Constructor),
		known: make(map[Type]bool),
	}
	for _, t := range []Type{TypeSimple, TypeVariable, TypeGrouped, TypeExternal, TypeVariation} {
		r.Register(t, constructorFor(t))
	}
	return r
}

func constructorFor(t Type) Constructor {
	return func() *Product { return New(t) }
}

// Register binds a constructor to a tag.
// Panics if a constructor is already bound to the tag.
func (r *Registry) Register(t Type, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ctors[t]; exists {
		panic(fmt.Sprintf("product type already registered: %s", t))
	}
	r.ctors[t] = ctor
	r.known[t] = true
}

// Declare marks a tag as known without binding a constructor.
func (r *Registry) Declare(t Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[t] = true
}

// Known reports whether t is a registered or declared tag.
func (r *Registry) Known(t Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.known[t]
}

// Constructor returns the constructor for t, falling back to the simple
// constructor for tags that are known but unbound.
// Returns false if t is not known at all.
func (r *Registry) Constructor(t Type) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.known[t] {
		return nil, false
	}
	if ctor, ok := r.ctors[t]; ok {
		return ctor, true
	}
	return r.ctors[TypeSimple], true
}

// Tags returns all known tags, sorted.
func (r *Registry) Tags() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]Type, 0, len(r.known))
	for t := range r.known {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
