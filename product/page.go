package product

import (
	"fmt"
	"math"
	"strings"
)

// Paging limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps Page*MaxPageSize within a 32-bit int.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// Sort fields accepted by PageRequest.
const (
	SortCreatedAt     = "createdAt"
	SortUpdatedAt     = "updatedAt"
	SortName          = "name"
	SortSKU           = "sku"
	SortPrice         = "priceCents"
	SortStockQuantity = "stockQuantity"
)

var sortFields = map[string]bool{
	SortCreatedAt:     true,
	SortUpdatedAt:     true,
	SortName:          true,
	SortSKU:           true,
	SortPrice:         true,
	SortStockQuantity: true,
}

// PageRequest selects a zero-indexed page of results.
type PageRequest struct {
	Page int
	Size int
	Sort string
	Desc bool
}

// NewPageRequest builds a request from query-string style values.
// dir is "asc" or "desc"; anything else means desc.
func NewPageRequest(page, size int, sort, dir string) (PageRequest, error) {
	req := PageRequest{Page: page, Size: size, Sort: sort, Desc: !strings.EqualFold(dir, "asc")}
	if req.Sort != "" && !sortFields[req.Sort] {
		return PageRequest{}, fmt.Errorf("%w: cannot sort by %q", ErrInvalidProduct, sort)
	}
	return req.Normalize(), nil
}

// Normalize clamps the page and size and fills the default sort.
func (r PageRequest) Normalize() PageRequest {
	r.Page = min(max(r.Page, 0), MaxPage)
	if r.Size <= 0 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	if !sortFields[r.Sort] {
		r.Sort = SortCreatedAt
		r.Desc = true
	}
	return r
}

// Offset is the index of the first item on the page. It is computed on
// the normalized request, so it is never negative.
func (r PageRequest) Offset() int {
	n := r.Normalize()
	return n.Page * n.Size
}

// Page is one page of products plus totals.
type Page struct {
	Content       []Product `json:"content"`
	PageNumber    int       `json:"pageNumber"`
	PageSize      int       `json:"pageSize"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	First         bool      `json:"first"`
	Last          bool      `json:"last"`
	Empty         bool      `json:"empty"`
}

// NewPage computes the page metadata for content drawn from total matches.
func NewPage(content []Product, req PageRequest, total int64) Page {
	if content == nil {
		content = []Product{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page{
		Content:       content,
		PageNumber:    req.Page,
		PageSize:      req.Size,
		TotalElements: total,
		TotalPages:    pages,
		First:         req.Page == 0,
		Last:          req.Page >= pages-1,
		Empty:         len(content) == 0,
	}
}
