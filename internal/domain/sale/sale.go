// Package sale records completed sales as receipt summaries.
package sale

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/client"
	"github.com/xenking/pos-terminal/internal/domain/ticket"
)

// ErrNotFound is returned when a requested sale does not exist.
var ErrNotFound = errors.New("sale not found")

// Line is a receipt line.
type Line struct {
	ProductID string
	SKU       string
	Name      string
	Category  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// Receipt summarizes a settled sale for printing and history. Amounts are
// stored at full precision; call Round before presenting them.
type Receipt struct {
	SaleID     string
	TerminalID string
	ClientID   string
	ClientName string
	Lines      []Line

	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	DiscountPercent decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal

	Method   checkout.Method
	Tendered decimal.Decimal
	Change   decimal.Decimal

	IssuedAt time.Time
}

// NewReceipt captures t, its pricing and the settlement. It must be called
// before the ticket is cleared.
func NewReceipt(saleID, terminalID string, t *ticket.Ticket, p ticket.Pricing, s checkout.Settlement, at time.Time) Receipt {
	items := t.Items()
	lines := make([]Line, len(items))
	for i, it := range items {
		lines[i] = Line{
			ProductID: it.Product.ID,
			SKU:       it.Product.SKU,
			Name:      it.Product.Name,
			Category:  it.Product.Category,
			Quantity:  it.Quantity,
			UnitPrice: it.Product.Price,
			Total:     it.Total(),
		}
	}

	r := Receipt{
		SaleID:          saleID,
		TerminalID:      terminalID,
		ClientName:      client.GenericName,
		Lines:           lines,
		Subtotal:        p.Subtotal,
		Tax:             p.Tax,
		DiscountPercent: t.DiscountPercent(),
		Discount:        p.Discount,
		Total:           p.Total,
		Method:          s.Method,
		Tendered:        s.Tendered,
		Change:          s.Change,
		IssuedAt:        at,
	}
	if c := t.Client(); c != nil {
		r.ClientID = c.ID
		r.ClientName = client.DisplayName(c)
	}
	return r
}

// Round returns a copy with every amount rounded to places.
func (r Receipt) Round(places int32) Receipt {
	lines := make([]Line, len(r.Lines))
	for i, l := range r.Lines {
		l.UnitPrice = l.UnitPrice.Round(places)
		l.Total = l.Total.Round(places)
		lines[i] = l
	}
	r.Lines = lines
	r.Subtotal = r.Subtotal.Round(places)
	r.Tax = r.Tax.Round(places)
	r.Discount = r.Discount.Round(places)
	r.Total = r.Total.Round(places)
	r.Tendered = r.Tendered.Round(places)
	r.Change = r.Change.Round(places)
	return r
}

// Clone returns a deep copy.
func (r Receipt) Clone() Receipt {
	r.Lines = slices.Clone(r.Lines)
	return r
}

// Filter selects sales from the journal. Zero fields match everything.
type Filter struct {
	TerminalID string
	// Query matches the sale id or the client name, ignoring case.
	Query string
	// From and To bound IssuedAt, both inclusive.
	From time.Time
	To   time.Time
}

// Match reports whether r passes the filter.
func (f Filter) Match(r Receipt) bool {
	if f.TerminalID != "" && r.TerminalID != f.TerminalID {
		return false
	}
	if !f.From.IsZero() && r.IssuedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.IssuedAt.After(f.To) {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(r.SaleID), q) ||
		strings.Contains(strings.ToLower(r.ClientName), q)
}

// Repository stores completed sales.
type Repository interface {
	Create(ctx context.Context, r Receipt) error
	Get(ctx context.Context, id string) (*Receipt, error)
	// List returns the sales matching f, oldest first.
	List(ctx context.Context, f Filter) ([]Receipt, error)
}
