// Package ticket implements the in-progress sale: the line item store, its
// pricing policy and the parked (held) tickets of a terminal.
package ticket

import (
	"fmt"
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-terminal/internal/domain/client"
	"github.com/xenking/pos-terminal/internal/domain/money"
	"github.com/xenking/pos-terminal/internal/domain/product"
)

// Sentinel errors for ticket operations.
var (
	ErrEmptyTicket      = errors.New("ticket is empty")
	ErrTicketInProgress = errors.New("active ticket has items")
)

var hundred = decimal.NewFromInt(100)

// InvalidDiscountError indicates a discount percentage outside [0, 100].
type InvalidDiscountError struct {
	Percent decimal.Decimal
}

func (e *InvalidDiscountError) Error() string {
	return fmt.Sprintf("discount %s%% must be between 0 and 100", e.Percent)
}

// LineItem is one product on a ticket. The product is held by value so later
// catalog changes never alter an open or held ticket.
type LineItem struct {
	Product  product.Product
	Quantity decimal.Decimal
}

// Total returns the unrounded line amount.
func (l LineItem) Total() decimal.Decimal {
	return l.Product.Price.Mul(l.Quantity)
}

// Ticket is the active cart of a terminal. Product IDs are unique among its
// items and every quantity is positive. The zero value is an empty ticket.
type Ticket struct {
	items    []LineItem
	client   *client.Client
	discount decimal.Decimal
}

// New returns an empty ticket.
func New() *Ticket {
	return &Ticket{}
}

// Add puts one unit of p on the ticket, merging with an existing line.
func (t *Ticket) Add(p product.Product) {
	if i := t.index(p.ID); i >= 0 {
		t.items[i].Quantity = t.items[i].Quantity.Add(decimal.NewFromInt(1))
		return
	}
	t.items = append(t.items, LineItem{Product: p, Quantity: decimal.NewFromInt(1)})
}

// SetQuantity replaces the quantity of a line. A non-positive quantity removes
// the line; an unknown product ID is ignored.
func (t *Ticket) SetQuantity(productID string, qty decimal.Decimal) {
	i := t.index(productID)
	if i < 0 {
		return
	}
	if !qty.IsPositive() {
		t.items = slices.Delete(t.items, i, i+1)
		return
	}
	t.items[i].Quantity = qty
}

// Increment adjusts a line quantity by delta, following SetQuantity rules.
func (t *Ticket) Increment(productID string, delta decimal.Decimal) {
	i := t.index(productID)
	if i < 0 {
		return
	}
	t.SetQuantity(productID, t.items[i].Quantity.Add(delta))
}

// Remove drops the line for productID if present.
func (t *Ticket) Remove(productID string) {
	if i := t.index(productID); i >= 0 {
		t.items = slices.Delete(t.items, i, i+1)
	}
}

// SetClient attaches a copy of c, or detaches the client when c is nil.
func (t *Ticket) SetClient(c *client.Client) {
	t.client = cloneClient(c)
}

// Client returns a copy of the attached client, or nil.
func (t *Ticket) Client() *client.Client {
	return cloneClient(t.client)
}

// SetDiscountPercent sets the whole-ticket discount. Values outside [0, 100]
// are rejected and the previous discount is kept.
func (t *Ticket) SetDiscountPercent(pct decimal.Decimal) error {
	if err := money.Check(pct); err != nil {
		return errors.Wrap(err, "discount")
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return &InvalidDiscountError{Percent: pct}
	}
	t.discount = pct
	return nil
}

// DiscountPercent returns the current discount percentage.
func (t *Ticket) DiscountPercent() decimal.Decimal {
	return t.discount
}

// Clear resets items, client and discount.
func (t *Ticket) Clear() {
	t.items = nil
	t.client = nil
	t.discount = decimal.Zero
}

// Items returns a copy of the line items in insertion order.
func (t *Ticket) Items() []LineItem {
	return slices.Clone(t.items)
}

// Quantity returns the quantity of productID, or zero when absent.
func (t *Ticket) Quantity(productID string) decimal.Decimal {
	if i := t.index(productID); i >= 0 {
		return t.items[i].Quantity
	}
	return decimal.Zero
}

// Len returns the number of distinct lines.
func (t *Ticket) Len() int { return len(t.items) }

// IsEmpty reports whether the ticket has no lines.
func (t *Ticket) IsEmpty() bool { return len(t.items) == 0 }

// Restore replaces the ticket contents with the given state.
func (t *Ticket) Restore(items []LineItem, c *client.Client, discountPct decimal.Decimal) {
	t.items = slices.Clone(items)
	t.client = cloneClient(c)
	t.discount = discountPct
}

func (t *Ticket) index(productID string) int {
	return slices.IndexFunc(t.items, func(l LineItem) bool {
		return l.Product.ID == productID
	})
}

func cloneClient(c *client.Client) *client.Client {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
