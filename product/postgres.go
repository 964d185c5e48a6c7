package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Schema creates the products table when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
    id             UUID PRIMARY KEY,
    sku            VARCHAR(50)  NOT NULL UNIQUE,
    name           VARCHAR(255) NOT NULL,
    description    TEXT         NOT NULL DEFAULT '',
    price_cents    BIGINT       NOT NULL,
    category       VARCHAR(100) NOT NULL,
    stock_quantity INTEGER      NOT NULL DEFAULT 0,
    image_url      VARCHAR(500) NOT NULL DEFAULT '',
    status         VARCHAR(20)  NOT NULL,
    created_at     TIMESTAMPTZ  NOT NULL,
    updated_at     TIMESTAMPTZ  NOT NULL,
    created_by     VARCHAR(100) NOT NULL DEFAULT '',
    updated_by     VARCHAR(100) NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_product_category ON products (category);
CREATE INDEX IF NOT EXISTS idx_product_status ON products (status);
`

const productColumns = `id, sku, name, description, price_cents, category, stock_quantity,
       image_url, status, created_at, updated_at, created_by, updated_by`

var sortColumns = map[string]string{
	SortCreatedAt:     "created_at",
	SortUpdatedAt:     "updated_at",
	SortName:          "name",
	SortSKU:           "sku",
	SortPrice:         "price_cents",
	SortStockQuantity: "stock_quantity",
}

// PostgresRepository stores products in PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// OpenPostgres opens a connection pool for dsn. It does not dial; call Ping
// (usually through a retry) before serving.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("product: open postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wraps an open pool.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate applies Schema.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("product: migrate: %w", err)
	}
	return nil
}

// Close closes the pool.
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database is reachable.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// List returns products matching filter.
func (r *PostgresRepository) List(ctx context.Context, filter Filter, page PageRequest) (Page, error) {
	where := `WHERE ($1 = '' OR category = $1) AND ($2 = '' OR status = $2)`
	return r.page(ctx, where, page, filter.Category, string(filter.Status))
}

// Search matches query case-insensitively against name and description.
func (r *PostgresRepository) Search(ctx context.Context, query string, page PageRequest) (Page, error) {
	where := `WHERE name ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'`
	return r.page(ctx, where, page, likePattern(query))
}

// FindByID returns the product with id.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return p, err
}

// FindBySKU returns the product with sku.
func (r *PostgresRepository) FindBySKU(ctx context.Context, sku string) (Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: sku %s", ErrNotFound, sku)
	}
	return p, err
}

// Create inserts p.
func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO products (`+productColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.SKU, p.Name, p.Description, p.PriceCents, p.Category, p.StockQuantity,
		p.ImageURL, string(p.Status), p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy,
	)
	if err != nil {
		return Product{}, translateError(err, p.SKU)
	}
	return p, nil
}

// Update overwrites the row with p.ID.
func (r *PostgresRepository) Update(ctx context.Context, p Product) (Product, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE products
        SET sku = $2, name = $3, description = $4, price_cents = $5, category = $6,
            stock_quantity = $7, image_url = $8, status = $9, updated_at = $10, updated_by = $11
        WHERE id = $1`,
		p.ID, p.SKU, p.Name, p.Description, p.PriceCents, p.Category,
		p.StockQuantity, p.ImageURL, string(p.Status), p.UpdatedAt, p.UpdatedBy,
	)
	if err != nil {
		return Product{}, translateError(err, p.SKU)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Product{}, fmt.Errorf("%w: id %s", ErrNotFound, p.ID)
	}
	return p, nil
}

// Delete removes the row with id.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("product: delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return nil
}

func (r *PostgresRepository) page(ctx context.Context, where string, page PageRequest, args ...any) (Page, error) {
	page = page.Normalize()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("product: count: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, orderClause(page), n+1, n+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return Page{}, fmt.Errorf("product: list: %w", err)
	}
	defer rows.Close()

	var content []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return Page{}, err
		}
		content = append(content, p)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("product: list: %w", err)
	}
	return NewPage(content, page, total), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var status string
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.StockQuantity,
		&p.ImageURL, &status, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
	)
	if err != nil {
		return Product{}, err
	}
	p.Status = Status(status)
	return p, nil
}

// orderClause builds ORDER BY from whitelisted columns only.
func orderClause(page PageRequest) string {
	col, ok := sortColumns[page.Sort]
	if !ok {
		col = sortColumns[SortCreatedAt]
	}
	dir := "ASC"
	if page.Desc {
		dir = "DESC"
	}
	return col + " " + dir + ", id " + dir
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

func translateError(err error, sku string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateSKU, sku)
	}
	return fmt.Errorf("product: write: %w", err)
}

var _ Repository = (*PostgresRepository)(nil)
