package product

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedProduct(i int, category string, status Status) Product {
	return Product{
		ID:            uuid.New(),
		SKU:           fmt.Sprintf("SKU-%03d", i),
		Name:          fmt.Sprintf("Item %03d", i),
		Description:   "catalog item",
		PriceCents:    int64(100 * (i + 1)),
		Category:      category,
		StockQuantity: i,
		Status:        status,
		CreatedAt:     seedTime.Add(time.Duration(i) * time.Minute),
		UpdatedAt:     seedTime.Add(time.Duration(i) * time.Minute),
	}
}

func seededMemory(t *testing.T) *MemoryRepository {
	t.Helper()
	repo := NewMemoryRepository()
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		category, status := "books", StatusActive
		if i%5 == 0 {
			category, status = "games", StatusDraft
		}
		_, err := repo.Create(ctx, seedProduct(i, category, status))
		require.NoError(t, err)
	}
	return repo
}

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	p := seedProduct(1, "books", StatusDraft)

	created, err := repo.Create(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, p, created)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.SKU, got.SKU)

	got, err = repo.FindBySKU(ctx, p.SKU)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	p.SKU = "SKU-RENAMED"
	_, err = repo.Update(ctx, p)
	require.NoError(t, err)
	_, err = repo.FindBySKU(ctx, "SKU-001")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), ErrNotFound)
}

func TestMemoryRepository_DuplicateSKU(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	a := seedProduct(1, "books", StatusDraft)
	b := seedProduct(2, "books", StatusDraft)
	_, err := repo.Create(ctx, a)
	require.NoError(t, err)
	_, err = repo.Create(ctx, b)
	require.NoError(t, err)

	dup := seedProduct(1, "books", StatusDraft)
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateSKU)

	b.SKU = a.SKU
	_, err = repo.Update(ctx, b)
	assert.ErrorIs(t, err, ErrDuplicateSKU)

	_, err = repo.Update(ctx, seedProduct(9, "books", StatusDraft))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_List(t *testing.T) {
	repo := seededMemory(t)
	ctx := context.Background()

	page, err := repo.List(ctx, Filter{}, PageRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Content, 10)
	assert.Equal(t, "SKU-014", page.Content[0].SKU, "default sort is newest first")

	page, err = repo.List(ctx, Filter{}, PageRequest{Page: 2, Size: 10})
	require.NoError(t, err)
	assert.Len(t, page.Content, 5)
	assert.True(t, page.Last)

	page, err = repo.List(ctx, Filter{Category: "games"}, PageRequest{Sort: SortName})
	require.NoError(t, err)
	require.Len(t, page.Content, 5)
	assert.Equal(t, "Item 000", page.Content[0].Name)

	page, err = repo.List(ctx, Filter{Status: StatusActive, Category: "books"}, PageRequest{Sort: SortPrice, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, int64(20), page.TotalElements)
	assert.Equal(t, int64(2500), page.Content[0].PriceCents)

	page, err = repo.List(ctx, Filter{}, PageRequest{Page: 9, Size: 10})
	require.NoError(t, err)
	assert.True(t, page.Empty)
	assert.NotNil(t, page.Content)
}

func TestMemoryRepository_Search(t *testing.T) {
	repo := seededMemory(t)
	ctx := context.Background()

	page, err := repo.Search(ctx, "ITEM 01", PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(10), page.TotalElements)

	page, err = repo.Search(ctx, "catalog", PageRequest{Size: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.TotalElements)
	assert.Len(t, page.Content, 3)
}

func TestMemoryRepository_CanceledContext(t *testing.T) {
	repo := seededMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.List(ctx, Filter{}, PageRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Ping(ctx), context.Canceled)
	assert.NoError(t, repo.Ping(context.Background()))
}
