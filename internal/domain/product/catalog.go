package product

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
)

var _ Repository = (*Catalog)(nil)

// Catalog is an immutable in-memory Repository. It preserves the order in
// which products were supplied.
type Catalog struct {
	items []Product
	byID  map[string]int
	bySKU map[string]int
}

// NewCatalog indexes products by ID and SKU. Products without a SKU are
// listed and searchable but cannot be scanned.
func NewCatalog(products []Product) (*Catalog, error) {
	c := &Catalog{
		items: make([]Product, len(products)),
		byID:  make(map[string]int, len(products)),
		bySKU: make(map[string]int, len(products)),
	}
	copy(c.items, products)

	for i, p := range c.items {
		if p.ID == "" {
			return nil, errors.Errorf("product %d: empty id", i)
		}
		if _, ok := c.byID[p.ID]; ok {
			return nil, errors.Errorf("duplicate product id %q", p.ID)
		}
		c.byID[p.ID] = i

		if p.SKU == "" {
			continue
		}
		if prev, ok := c.bySKU[p.SKU]; ok {
			return nil, errors.Errorf("sku %q shared by products %q and %q", p.SKU, c.items[prev].ID, p.ID)
		}
		c.bySKU[p.SKU] = i
	}
	return c, nil
}

// Len returns the number of products in the catalog.
func (c *Catalog) Len() int { return len(c.items) }

// SKUs returns every indexed SKU.
func (c *Catalog) SKUs() []string {
	out := make([]string, 0, len(c.bySKU))
	for _, p := range c.items {
		if p.SKU != "" {
			out = append(out, p.SKU)
		}
	}
	return out
}

func (c *Catalog) List(_ context.Context) ([]Product, error) {
	return slices.Clone(c.items), nil
}

func (c *Catalog) GetByID(_ context.Context, id string) (*Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := c.items[i]
	return &p, nil
}

// GetBySKU performs an exact, case-sensitive SKU match.
func (c *Catalog) GetBySKU(_ context.Context, sku string) (*Product, error) {
	i, ok := c.bySKU[sku]
	if !ok {
		return nil, ErrNotFound
	}
	p := c.items[i]
	return &p, nil
}

func (c *Catalog) Search(_ context.Context, query, category string) ([]Product, error) {
	out := make([]Product, 0, len(c.items))
	for _, p := range c.items {
		if Matches(p, query, category) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns the sorted distinct non-empty categories.
func (c *Catalog) Categories(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.items {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out, nil
}
