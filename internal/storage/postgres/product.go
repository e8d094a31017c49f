package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/pos-terminal/internal/domain/product"
)

const (
	productColumns = `id, name, COALESCE(sku, ''), price, stock, category`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductBySKUSQL = `SELECT ` + productColumns + ` FROM products WHERE sku = $1`

	searchProductsSQL = `SELECT ` + productColumns + ` FROM products
		WHERE ($1 = '' OR name ILIKE $2)
		  AND ($3 = '' OR category = $3)
		ORDER BY id`

	listCategoriesSQL = `SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`

	listSKUsSQL = `SELECT sku FROM products WHERE sku IS NOT NULL AND sku <> ''`

	upsertProductSQL = `INSERT INTO products (id, name, sku, price, stock, category)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			sku = EXCLUDED.sku,
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			category = EXCLUDED.category,
			updated_at = now()`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return r.getOne(ctx, getProductByIDSQL, id)
}

func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	if sku == "" {
		return nil, product.ErrNotFound
	}
	return r.getOne(ctx, getProductBySKUSQL, sku)
}

func (r *ProductRepository) Search(ctx context.Context, query, category string) ([]product.Product, error) {
	if product.IsAllCategories(category) {
		category = ""
	}
	rows, err := r.pool.Query(ctx, searchProductsSQL, query, containsPattern(query), category)
	if err != nil {
		return nil, errors.Wrap(err, "search products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// SKUs returns every non-empty SKU, used to build the scan guard.
func (r *ProductRepository) SKUs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listSKUsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list skus")
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Upsert inserts or updates products in a single batch.
func (r *ProductRepository) Upsert(ctx context.Context, products []product.Product) error {
	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(upsertProductSQL, p.ID, p.Name, p.SKU, p.Price, p.Stock, p.Category)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "upsert products")
	}
	return nil
}

func (r *ProductRepository) getOne(ctx context.Context, sql, arg string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %q", arg)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %q", arg)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.Stock, &p.Category)
	return p, err
}
