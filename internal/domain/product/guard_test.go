package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo records how many SKU lookups reach the backing store.
type countingRepo struct {
	Repository
	skuCalls int
}

func (r *countingRepo) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	r.skuCalls++
	return r.Repository.GetBySKU(ctx, sku)
}

func TestSKUGuard(t *testing.T) {
	c := newTestCatalog(t)
	backing := &countingRepo{Repository: c}
	g := NewSKUGuard(backing, c.SKUs(), 0)
	ctx := context.Background()

	p, err := g.GetBySKU(ctx, "7790001")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, 1, backing.skuCalls)

	_, err = g.GetBySKU(ctx, "not-a-sku-at-all")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = g.GetBySKU(ctx, "")
	require.ErrorIs(t, err, ErrNotFound)

	// Misses are answered by the filter; only false positives reach the store.
	assert.LessOrEqual(t, backing.skuCalls, 2)

	// Other operations pass straight through.
	all, err := g.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSKUGuard_Empty(t *testing.T) {
	c, err := NewCatalog(nil)
	require.NoError(t, err)
	g := NewSKUGuard(c, nil, 0.5)

	_, err = g.GetBySKU(context.Background(), "123")
	require.ErrorIs(t, err, ErrNotFound)
}
