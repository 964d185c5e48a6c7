package product

import (
	"cmp"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps products in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]Product
	bySKU map[string]uuid.UUID
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[uuid.UUID]Product),
		bySKU: make(map[string]uuid.UUID),
	}
}

// List returns products matching filter.
func (m *MemoryRepository) List(ctx context.Context, filter Filter, page PageRequest) (Page, error) {
	return m.query(ctx, page, func(p Product) bool {
		return (filter.Category == "" || p.Category == filter.Category) &&
			(filter.Status == "" || p.Status == filter.Status)
	})
}

// Search matches query case-insensitively against name and description.
func (m *MemoryRepository) Search(ctx context.Context, query string, page PageRequest) (Page, error) {
	q := strings.ToLower(query)
	return m.query(ctx, page, func(p Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	})
}

// FindByID returns the product with id.
func (m *MemoryRepository) FindByID(ctx context.Context, id uuid.UUID) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byID[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return p, nil
}

// FindBySKU returns the product with sku.
func (m *MemoryRepository) FindBySKU(ctx context.Context, sku string) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySKU[sku]
	if !ok {
		return Product{}, fmt.Errorf("%w: sku %s", ErrNotFound, sku)
	}
	return m.byID[id], nil
}

// Create stores p.
func (m *MemoryRepository) Create(ctx context.Context, p Product) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.bySKU[p.SKU]; taken {
		return Product{}, fmt.Errorf("%w: %s", ErrDuplicateSKU, p.SKU)
	}
	if _, exists := m.byID[p.ID]; exists {
		return Product{}, fmt.Errorf("product: id %s already exists", p.ID)
	}
	m.byID[p.ID] = p
	m.bySKU[p.SKU] = p.ID
	return p, nil
}

// Update replaces the stored product with the same ID.
func (m *MemoryRepository) Update(ctx context.Context, p Product) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.byID[p.ID]
	if !ok {
		return Product{}, fmt.Errorf("%w: id %s", ErrNotFound, p.ID)
	}
	if owner, taken := m.bySKU[p.SKU]; taken && owner != p.ID {
		return Product{}, fmt.Errorf("%w: %s", ErrDuplicateSKU, p.SKU)
	}
	delete(m.bySKU, old.SKU)
	m.byID[p.ID] = p
	m.bySKU[p.SKU] = p.ID
	return p, nil
}

// Delete removes the product with id.
func (m *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	delete(m.byID, id)
	delete(m.bySKU, p.SKU)
	return nil
}

// Ping reports whether ctx is still live.
func (m *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryRepository) query(ctx context.Context, page PageRequest, match func(Product) bool) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	page = page.Normalize()

	m.mu.RLock()
	matches := make([]Product, 0, len(m.byID))
	for _, p := range m.byID {
		if match(p) {
			matches = append(matches, p)
		}
	}
	m.mu.RUnlock()

	sortProducts(matches, page.Sort, page.Desc)

	total := int64(len(matches))
	start := min(page.Offset(), len(matches))
	end := min(start+page.Size, len(matches))
	return NewPage(matches[start:end], page, total), nil
}

func sortProducts(ps []Product, field string, desc bool) {
	compare := func(a, b Product) int {
		switch field {
		case SortName:
			return strings.Compare(a.Name, b.Name)
		case SortSKU:
			return strings.Compare(a.SKU, b.SKU)
		case SortPrice:
			return cmp.Compare(a.PriceCents, b.PriceCents)
		case SortStockQuantity:
			return cmp.Compare(a.StockQuantity, b.StockQuantity)
		case SortUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(ps, func(i, j int) bool {
		c := compare(ps[i], ps[j])
		if c == 0 {
			c = strings.Compare(ps[i].ID.String(), ps[j].ID.String())
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

var _ Repository = (*MemoryRepository)(nil)
