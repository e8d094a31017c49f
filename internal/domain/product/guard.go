package product

import (
	"context"

	"github.com/bits-and-blooms/bloom/v3"
)

// DefaultGuardFPR is the false positive rate used when none is configured.
const DefaultGuardFPR = 0.001

var _ Repository = (*SKUGuard)(nil)

// SKUGuard fronts a Repository with a bloom filter of known SKUs.
//
// Scanner bursts frequently produce codes that are not in the catalog. The
// guard answers those misses locally so they never reach the backing store.
// The filter is built once and is read-only afterwards, so concurrent lookups
// are safe.
type SKUGuard struct {
	Repository

	filter *bloom.BloomFilter
}

// NewSKUGuard builds the filter from skus. A non-positive fpr selects
// DefaultGuardFPR.
func NewSKUGuard(repo Repository, skus []string, fpr float64) *SKUGuard {
	if fpr <= 0 || fpr >= 1 {
		fpr = DefaultGuardFPR
	}
	n := uint(len(skus))
	if n == 0 {
		n = 1
	}
	filter := bloom.NewWithEstimates(n, fpr)
	for _, sku := range skus {
		filter.AddString(sku)
	}
	return &SKUGuard{Repository: repo, filter: filter}
}

func (g *SKUGuard) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	if sku == "" || !g.filter.TestString(sku) {
		return nil, ErrNotFound
	}
	return g.Repository.GetBySKU(ctx, sku)
}
