package product

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Category string
	Status   Status
}

// Repository stores products.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: lookups return ErrNotFound; Create and Update return
// ErrDuplicateSKU when the SKU is taken by another product.
type Repository interface {
	List(ctx context.Context, filter Filter, page PageRequest) (Page, error)
	Search(ctx context.Context, query string, page PageRequest) (Page, error)
	FindByID(ctx context.Context, id uuid.UUID) (Product, error)
	FindBySKU(ctx context.Context, sku string) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}
