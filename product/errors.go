package product

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates no product matches the given ID or SKU.
	ErrNotFound = errors.New("product: not found")

	// ErrDuplicateSKU indicates another product already uses the SKU.
	ErrDuplicateSKU = errors.New("product: sku already exists")

	// ErrInvalidProduct indicates the input failed validation.
	ErrInvalidProduct = errors.New("product: invalid product")
)

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range sortedKeys(e.Fields) {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidProduct, strings.Join(parts, "; "))
}

// Is matches ErrInvalidProduct.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidProduct
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
