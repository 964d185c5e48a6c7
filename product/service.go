package product

import (
	"context"
	"strings"
	"time"

	"github.com/bitvelocity/gatekeeper/observe"
	"github.com/google/uuid"
)

// Service applies the catalog rules on top of a Repository.
type Service struct {
	repo   Repository
	logger observe.Logger
	now    func() time.Time
	newID  func() uuid.UUID
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l observe.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a catalog service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		logger: observe.NopLogger(),
		now:    time.Now,
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns a page of all products.
func (s *Service) List(ctx context.Context, page PageRequest) (Page, error) {
	return s.repo.List(ctx, Filter{}, page)
}

// Search finds products whose name or description contains query.
func (s *Service) Search(ctx context.Context, query string, page PageRequest) (Page, error) {
	page = withDefaultSort(page, SortCreatedAt, true)
	return s.repo.Search(ctx, strings.TrimSpace(query), page)
}

// ByCategory lists one category ordered by name.
func (s *Service) ByCategory(ctx context.Context, category string, page PageRequest) (Page, error) {
	page = withDefaultSort(page, SortName, false)
	return s.repo.List(ctx, Filter{Category: category}, page)
}

// ByStatus lists products in status.
func (s *Service) ByStatus(ctx context.Context, status Status, page PageRequest) (Page, error) {
	return s.repo.List(ctx, Filter{Status: status}, page)
}

// Active lists ACTIVE products, newest first.
func (s *Service) Active(ctx context.Context, page PageRequest) (Page, error) {
	return s.ByStatus(ctx, StatusActive, page)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBySKU returns one product by SKU.
func (s *Service) GetBySKU(ctx context.Context, sku string) (Product, error) {
	return s.repo.FindBySKU(ctx, sku)
}

// Create validates in and stores a new product attributed to actor.
func (s *Service) Create(ctx context.Context, in CreateInput, actor string) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}

	now := s.now().UTC()
	p := Product{
		ID:            s.newID(),
		SKU:           in.SKU,
		Name:          in.Name,
		Description:   in.Description,
		PriceCents:    *in.PriceCents,
		Category:      in.Category,
		StockQuantity: *in.StockQuantity,
		ImageURL:      in.ImageURL,
		Status:        in.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     actor,
		UpdatedBy:     actor,
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.logger.Info(ctx, "product created", observe.F("product_id", created.ID.String()), observe.F("sku", created.SKU), observe.F("actor", actor))
	return created, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput, actor string) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	return s.modify(ctx, id, actor, "product updated", in.apply)
}

// UpdateStock sets the stock level.
func (s *Service) UpdateStock(ctx context.Context, id uuid.UUID, in StockInput, actor string) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	return s.modify(ctx, id, actor, "product stock updated", func(p *Product) {
		p.StockQuantity = *in.StockQuantity
	})
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "product deleted", observe.F("product_id", id.String()), observe.F("actor", actor))
	return nil
}

func (s *Service) modify(ctx context.Context, id uuid.UUID, actor, msg string, change func(*Product)) (Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	change(&p)
	p.syncStockStatus()
	p.UpdatedAt = s.now().UTC()
	p.UpdatedBy = actor

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.logger.Info(ctx, msg, observe.F("product_id", id.String()), observe.F("actor", actor))
	return updated, nil
}

// withDefaultSort fills the sort only when the caller chose none.
func withDefaultSort(page PageRequest, field string, desc bool) PageRequest {
	if page.Sort == "" {
		page.Sort = field
		page.Desc = desc
	}
	return page
}
