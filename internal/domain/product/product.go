package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// AllCategories is the category filter value that disables category filtering.
const AllCategories = "all"

// Product is a sellable catalog item.
//
// Stock is informational: it may be zero or negative and sales never change it.
type Product struct {
	ID       string
	Name     string
	SKU      string
	Price    decimal.Decimal
	Stock    int
	Category string
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	Search(ctx context.Context, query, category string) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// IsAllCategories reports whether category selects every product.
func IsAllCategories(category string) bool {
	return category == "" || strings.EqualFold(category, AllCategories)
}

// Matches reports whether p passes the search filter: a case-insensitive
// substring match on the name and an exact category match.
func Matches(p Product, query, category string) bool {
	if !IsAllCategories(category) && p.Category != category {
		return false
	}
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(query))
}
