package postgres

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iancoleman/strcase"

	"github.com/JonMunkholm/productimport/internal/product"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report column names (regular_price) rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strcase.ToSnake(fld.Name)
	})
	return v
}

// checkProduct runs the struct rules on p and reports every failing field.
func (s *Store) checkProduct(p *product.Product) error {
	err := s.validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fieldPath(fe.Namespace())] = rule
	}
	return &product.ValidationError{Fields: fields, Err: err}
}

// fieldPath drops the struct name from a validator namespace:
// "Product.attributes[0].name" becomes "attributes[0].name".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
