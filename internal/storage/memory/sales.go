// Package memory provides process-local storage implementations.
package memory

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/pos-terminal/internal/domain/sale"
)

var _ sale.Repository = (*SaleRepository)(nil)

// SaleRepository keeps completed sales for the lifetime of the process.
type SaleRepository struct {
	mu    sync.RWMutex
	sales []sale.Receipt
	byID  map[string]int
}

// NewSaleRepository returns an empty journal.
func NewSaleRepository() *SaleRepository {
	return &SaleRepository{byID: make(map[string]int)}
}

func (r *SaleRepository) Create(_ context.Context, rec sale.Receipt) error {
	if rec.SaleID == "" {
		return errors.New("sale id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[rec.SaleID]; ok {
		return errors.Errorf("sale %s already recorded", rec.SaleID)
	}
	r.byID[rec.SaleID] = len(r.sales)
	r.sales = append(r.sales, rec.Clone())
	return nil
}

func (r *SaleRepository) Get(_ context.Context, id string) (*sale.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, sale.ErrNotFound
	}
	rec := r.sales[i].Clone()
	return &rec, nil
}

func (r *SaleRepository) List(_ context.Context, f sale.Filter) ([]sale.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sale.Receipt, 0, len(r.sales))
	for _, rec := range r.sales {
		if !f.Match(rec) {
			continue
		}
		out = append(out, rec.Clone())
	}
	return out, nil
}
