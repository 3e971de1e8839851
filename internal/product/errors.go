package product

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned by stores when no product has the requested id.
var ErrNotFound = errors.New("product not found")

// ValidationError is returned by stores that reject a product on save.
type ValidationError struct {
	// Fields maps a field name to the reason it was rejected.
	Fields map[string]string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Err != nil {
			return "invalid product: " + e.Err.Error()
		}
		return "invalid product"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Fields[name])
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
