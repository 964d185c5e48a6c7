package product

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a product.
type Status string

const (
	StatusDraft        Status = "DRAFT"
	StatusActive       Status = "ACTIVE"
	StatusInactive     Status = "INACTIVE"
	StatusOutOfStock   Status = "OUT_OF_STOCK"
	StatusDiscontinued Status = "DISCONTINUED"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusDraft, StatusActive, StatusInactive, StatusOutOfStock, StatusDiscontinued}

// Valid reports whether s is one of Statuses.
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// ParseStatus converts s, case-insensitively, into a Status.
func ParseStatus(s string) (Status, error) {
	if st := Status(strings.ToUpper(strings.TrimSpace(s))); st.Valid() {
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidProduct, s)
}

// Product is a catalog entry.
type Product struct {
	ID            uuid.UUID `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	PriceCents    int64     `json:"priceCents"`
	Category      string    `json:"category"`
	StockQuantity int       `json:"stockQuantity"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	UpdatedBy     string    `json:"updatedBy,omitempty"`
}

// syncStockStatus moves an ACTIVE product to OUT_OF_STOCK when stock hits
// zero, and back to ACTIVE when stock returns.
func (p *Product) syncStockStatus() {
	switch {
	case p.StockQuantity == 0 && p.Status == StatusActive:
		p.Status = StatusOutOfStock
	case p.StockQuantity > 0 && p.Status == StatusOutOfStock:
		p.Status = StatusActive
	}
}

// Field limits.
const (
	MaxSKULength         = 50
	MinNameLength        = 3
	MaxNameLength        = 255
	MaxDescriptionLength = 5000
	MaxCategoryLength    = 100
	MaxImageURLLength    = 500
	MaxPriceCents        = 99_999_999_99
)

var (
	skuPattern      = regexp.MustCompile(`^[A-Z0-9-]+$`)
	imageURLPattern = regexp.MustCompile(`(?i)^(https?://)?.*\.(jpg|jpeg|png|gif|webp)$`)
)

// CreateInput is the payload for a new product.
type CreateInput struct {
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PriceCents    *int64 `json:"priceCents"`
	Category      string `json:"category"`
	StockQuantity *int   `json:"stockQuantity"`
	ImageURL      string `json:"imageUrl"`
	Status        Status `json:"status"`
}

// Validate checks every field and reports all failures at once.
func (in CreateInput) Validate() error {
	errs := fieldErrors{}

	switch {
	case strings.TrimSpace(in.SKU) == "":
		errs.add("sku", "SKU is required")
	case len(in.SKU) > MaxSKULength:
		errs.add("sku", fmt.Sprintf("SKU must not exceed %d characters", MaxSKULength))
	case !skuPattern.MatchString(in.SKU):
		errs.add("sku", "SKU must contain only uppercase letters, numbers, and hyphens")
	}
	if strings.TrimSpace(in.Name) == "" {
		errs.add("name", "Product name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		errs.add("category", "Category is required")
	}
	if in.PriceCents == nil {
		errs.add("priceCents", "Price is required")
	}
	if in.StockQuantity == nil {
		errs.add("stockQuantity", "Stock quantity is required")
	}

	validateCommon(errs, &in.Name, &in.Description, in.PriceCents, &in.Category, in.StockQuantity, &in.ImageURL, in.Status)
	return errs.err()
}

// UpdateInput is a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	PriceCents    *int64  `json:"priceCents"`
	Category      *string `json:"category"`
	StockQuantity *int    `json:"stockQuantity"`
	ImageURL      *string `json:"imageUrl"`
	Status        *Status `json:"status"`
}

// Validate checks the fields that are present.
func (in UpdateInput) Validate() error {
	errs := fieldErrors{}
	var status Status
	if in.Status != nil {
		status = *in.Status
		if status == "" {
			errs.add("status", "Status must not be empty")
		}
	}
	validateCommon(errs, in.Name, in.Description, in.PriceCents, in.Category, in.StockQuantity, in.ImageURL, status)
	return errs.err()
}

func (in UpdateInput) apply(p *Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.PriceCents != nil {
		p.PriceCents = *in.PriceCents
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
}

// StockInput sets the stock level.
type StockInput struct {
	StockQuantity *int `json:"stockQuantity"`
}

// Validate requires a non-negative quantity.
func (in StockInput) Validate() error {
	errs := fieldErrors{}
	if in.StockQuantity == nil {
		errs.add("stockQuantity", "Stock quantity is required")
	} else if *in.StockQuantity < 0 {
		errs.add("stockQuantity", "Stock quantity cannot be negative")
	}
	return errs.err()
}

func validateCommon(errs fieldErrors, name, description *string, price *int64, category *string, stock *int, imageURL *string, status Status) {
	if name != nil && *name != "" {
		if n := utf8.RuneCountInString(*name); n < MinNameLength || n > MaxNameLength {
			errs.add("name", fmt.Sprintf("Product name must be between %d and %d characters", MinNameLength, MaxNameLength))
		}
	}
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLength {
		errs.add("description", fmt.Sprintf("Description must not exceed %d characters", MaxDescriptionLength))
	}
	if price != nil && (*price < 1 || *price > MaxPriceCents) {
		errs.add("priceCents", "Price must be greater than 0 and at most 8 integer digits")
	}
	if category != nil && utf8.RuneCountInString(*category) > MaxCategoryLength {
		errs.add("category", fmt.Sprintf("Category must not exceed %d characters", MaxCategoryLength))
	}
	if stock != nil && *stock < 0 {
		errs.add("stockQuantity", "Stock quantity cannot be negative")
	}
	if imageURL != nil && *imageURL != "" {
		if len(*imageURL) > MaxImageURLLength {
			errs.add("imageUrl", fmt.Sprintf("Image URL must not exceed %d characters", MaxImageURLLength))
		} else if !imageURLPattern.MatchString(*imageURL) {
			errs.add("imageUrl", "Image URL must be a valid image URL")
		}
	}
	if status != "" {
		if !status.Valid() {
			errs.add("status", "Unknown status")
		}
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
