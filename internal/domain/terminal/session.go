package terminal

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/client"
	"github.com/xenking/pos-terminal/internal/domain/money"
	"github.com/xenking/pos-terminal/internal/domain/product"
	"github.com/xenking/pos-terminal/internal/domain/sale"
	"github.com/xenking/pos-terminal/internal/domain/scan"
	"github.com/xenking/pos-terminal/internal/domain/ticket"
)

// ErrSettled is returned for ticket changes after payment and before NewSale.
var ErrSettled = errors.New("sale is settled, start a new sale first")

// View is a consistent snapshot of a session.
type View struct {
	TerminalID      string
	Items           []ticket.LineItem
	Client          *client.Client
	DiscountPercent decimal.Decimal

	// Pricing is exact; Display is rounded for presentation.
	Pricing ticket.Pricing
	Display ticket.Pricing

	State    checkout.State
	Method   checkout.Method
	Tendered decimal.Decimal
	Keypad   string
	// AmountDue is the least cash that settles the total.
	AmountDue decimal.Decimal
	// Change is the cash change at the current tender, valid when Sufficient.
	Change     decimal.Decimal
	Sufficient bool

	Held        int
	LastReceipt *sale.Receipt
}

// ScanResult reports what a keystroke did.
type ScanResult struct {
	// Code is set when the keystroke completed a scan.
	Code    string
	Product *product.Product
}

// Session is the sale workflow of one terminal. Methods are safe for
// concurrent use; they are applied one at a time.
type Session struct {
	id string
	r  *Registry

	mu       sync.Mutex
	ticket   *ticket.Ticket
	holds    *ticket.Holds
	checkout checkout.Checkout
	keypad   checkout.Keypad
	scanner  *scan.Scanner
	receipt  *sale.Receipt
}

func newSession(id string, r *Registry) *Session {
	return &Session{
		id:      id,
		r:       r,
		ticket:  ticket.New(),
		holds:   ticket.NewHolds(r.now, func() string { return "held-" + r.newID() }),
		scanner: scan.New(r.scanGap),
	}
}

// ID returns the terminal id.
func (s *Session) ID() string { return s.id }

func (s *Session) logger(ctx context.Context) *zap.Logger {
	return zctx.From(ctx).With(zap.String("terminal", s.id))
}

// editable reports whether the ticket may change. Callers hold mu.
func (s *Session) editable() error {
	if s.checkout.State() == checkout.Settled {
		return ErrSettled
	}
	return nil
}

// resetCheckout drops an unsettled checkout. Callers hold mu.
func (s *Session) resetCheckout() {
	_ = s.checkout.Cancel()
	s.keypad.Reset()
}

// disposable reports whether the session carries no work worth keeping.
func (s *Session) disposable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticket.IsEmpty() && s.holds.Len() == 0 && s.checkout.State() != checkout.AwaitingTender
}

func (s *Session) summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		Items: s.ticket.Len(),
		Held:  s.holds.Len(),
		State: s.checkout.State(),
	}
}

// View returns the current state.
func (s *Session) View(_ context.Context) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	policy := s.r.policy
	pricing := policy.Price(s.ticket)

	v := View{
		TerminalID:      s.id,
		Items:           s.ticket.Items(),
		Client:          s.ticket.Client(),
		DiscountPercent: s.ticket.DiscountPercent(),
		Pricing:         pricing,
		Display:         policy.Display(pricing),
		State:           s.checkout.State(),
		Method:          s.checkout.Method(),
		Tendered:        s.checkout.Tendered(),
		Keypad:          s.keypad.Entry(),
		AmountDue:       policy.AmountDue(pricing.Total),
		Held:            s.holds.Len(),
	}
	if v.State == checkout.AwaitingTender {
		if q, err := s.checkout.Quote(pricing.Total); err == nil {
			v.Change = q.Change
			v.Sufficient = true
		}
	}
	if s.receipt != nil {
		rec := s.receipt.Clone()
		v.LastReceipt = &rec
	}
	return v
}

// AddProduct adds one unit of the product with the given id.
func (s *Session) AddProduct(ctx context.Context, productID string) (View, error) {
	p, err := s.r.products.GetByID(ctx, productID)
	if err != nil {
		return View{}, errors.Wrapf(err, "product %s", productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return View{}, err
	}
	s.ticket.Add(*p)
	s.logger(ctx).Debug("Product added", zap.String("product", p.ID))
	return s.view(), nil
}

// AddSKU adds one unit of the product with the given SKU.
func (s *Session) AddSKU(ctx context.Context, sku string) (View, error) {
	p, err := s.r.products.GetBySKU(ctx, sku)
	if err != nil {
		return View{}, errors.Wrapf(err, "sku %s", sku)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return View{}, err
	}
	s.ticket.Add(*p)
	s.logger(ctx).Debug("Product added by SKU", zap.String("product", p.ID), zap.String("sku", sku))
	return s.view(), nil
}

// Scan feeds a keystroke to the scan heuristic. A completed code that
// matches a SKU adds the product; unknown codes are discarded.
func (s *Session) Scan(ctx context.Context, k scan.Key) (ScanResult, error) {
	s.mu.Lock()
	if err := s.editable(); err != nil {
		s.mu.Unlock()
		return ScanResult{}, err
	}
	code, ok := s.scanner.Feed(k)
	s.mu.Unlock()
	if !ok {
		return ScanResult{}, nil
	}

	lg := s.logger(ctx).With(zap.String("code", code))
	p, err := s.r.products.GetBySKU(ctx, code)
	switch {
	case errors.Is(err, product.ErrNotFound):
		s.r.metrics.scanMisses.Add(ctx, 1)
		lg.Debug("Scanned code not in catalog")
		return ScanResult{Code: code}, nil
	case err != nil:
		return ScanResult{}, errors.Wrapf(err, "lookup %s", code)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return ScanResult{}, err
	}
	s.ticket.Add(*p)
	lg.Debug("Product scanned", zap.String("product", p.ID))
	return ScanResult{Code: code, Product: p}, nil
}

// SetQuantity replaces a line quantity; non-positive removes the line.
func (s *Session) SetQuantity(_ context.Context, productID string, qty decimal.Decimal) (View, error) {
	if err := money.Check(qty); err != nil {
		return View{}, errors.Wrap(err, "quantity")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return View{}, err
	}
	s.ticket.SetQuantity(productID, qty)
	return s.view(), nil
}

// Increment adjusts a line quantity by delta.
func (s *Session) Increment(_ context.Context, productID string, delta decimal.Decimal) (View, error) {
	if err := money.Check(delta); err != nil {
		return View{}, errors.Wrap(err, "delta")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return View{}, err
	}
	s.ticket.Increment(productID, delta)
	return s.view(), nil
}

// Remove drops a line.
func (s *Session) Remove(_ context.Context, productID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return View{}, err
	}
	s.ticket.Remove(productID)
	return s.view(), nil
}

// SetClient attaches a client by id. An empty id detaches the client; an
// unknown id leaves the ticket unchanged.
func (s *Session) SetClient(ctx context.Context, clientID string) (View, error) {
	var c *client.Client
	if clientID != "" {
		found, err := s.r.clients.GetByID(ctx, clientID)
		switch {
		case errors.Is(err, client.ErrNotFound):
			s.logger(ctx).Debug("Unknown client ignored", zap.String("client", clientID))
			return s.View(ctx), nil
		case err != nil:
			return View{}, errors.Wrapf(err, "client %s", clientID)
		}
		c = found
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return View{}, err
	}
	s.ticket.SetClient(c)
	return s.view(), nil
}

// SetDiscount sets the ticket discount percentage.
func (s *Session) SetDiscount(_ context.Context, pct decimal.Decimal) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return View{}, err
	}
	if err := s.ticket.SetDiscountPercent(pct); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

// Clear empties the ticket and abandons an unsettled checkout.
func (s *Session) Clear(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return View{}, err
	}
	s.ticket.Clear()
	s.resetCheckout()
	s.logger(ctx).Debug("Ticket cleared")
	return s.view(), nil
}

// Hold parks the active ticket and clears it.
func (s *Session) Hold(ctx context.Context) (ticket.Held, error) {
	ctx, span := s.r.tracer.Start(ctx, "terminal.Hold",
		trace.WithAttributes(attribute.String("pos.terminal", s.id)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return ticket.Held{}, err
	}
	held, err := s.holds.Hold(s.ticket, s.r.policy)
	if err != nil {
		return ticket.Held{}, err
	}
	s.resetCheckout()

	s.r.metrics.held.Add(ctx, 1)
	s.logger(ctx).Debug("Ticket held",
		zap.String("held", held.ID),
		zap.Int("lines", len(held.Items)),
	)
	return held, nil
}

// Held lists held tickets, oldest first.
func (s *Session) Held(_ context.Context) []ticket.Held {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holds.List()
}

// Resume makes a held ticket active again. The active ticket must be empty.
func (s *Session) Resume(ctx context.Context, heldID string) (View, error) {
	ctx, span := s.r.tracer.Start(ctx, "terminal.Resume",
		trace.WithAttributes(attribute.String("pos.terminal", s.id)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return View{}, err
	}
	if _, err := s.holds.Resume(heldID, s.ticket); err != nil {
		return View{}, err
	}
	s.resetCheckout()

	s.r.metrics.held.Add(ctx, -1)
	s.logger(ctx).Debug("Ticket resumed", zap.String("held", heldID))
	return s.view(), nil
}

// BeginCheckout selects the payment method. The ticket must not be empty.
func (s *Session) BeginCheckout(ctx context.Context, m checkout.Method) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return View{}, err
	}
	if s.ticket.IsEmpty() {
		return View{}, ticket.ErrEmptyTicket
	}
	if err := s.checkout.Begin(m); err != nil {
		return View{}, err
	}
	s.logger(ctx).Debug("Checkout started", zap.String("method", string(m)))
	return s.view(), nil
}

// CancelCheckout returns to editing the ticket.
func (s *Session) CancelCheckout(_ context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkout.Cancel(); err != nil {
		return View{}, err
	}
	s.keypad.Reset()
	return s.view(), nil
}

// Tender records the cash handed over.
func (s *Session) Tender(_ context.Context, amount decimal.Decimal) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkout.Tender(amount); err != nil {
		return View{}, err
	}
	places := s.r.policy.Places
	if e := -amount.Exponent(); e > places {
		places = e
	}
	s.keypad.Set(amount, places)
	return s.view(), nil
}

// PressKey types on the tender keypad.
func (s *Session) PressKey(_ context.Context, key string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kp := s.keypad
	if err := kp.Press(key); err != nil {
		return View{}, err
	}
	amount, _ := kp.Amount()
	if err := s.checkout.Tender(amount); err != nil {
		return View{}, err
	}
	s.keypad = kp
	return s.view(), nil
}

// ExactAmount tenders the amount due.
func (s *Session) ExactAmount(_ context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := s.r.policy.AmountDue(s.r.policy.Price(s.ticket).Total)
	if err := s.checkout.Tender(due); err != nil {
		return View{}, err
	}
	s.keypad.Set(due, s.r.policy.Places)
	return s.view(), nil
}

// Finalize settles the sale, records the receipt and clears the ticket. A
// failed settlement leaves the ticket and checkout untouched.
func (s *Session) Finalize(ctx context.Context) (_ sale.Receipt, rerr error) {
	ctx, span := s.r.tracer.Start(ctx, "terminal.Finalize",
		trace.WithAttributes(attribute.String("pos.terminal", s.id)),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return sale.Receipt{}, err
	}
	if s.ticket.IsEmpty() {
		return sale.Receipt{}, ticket.ErrEmptyTicket
	}

	pricing := s.r.policy.Price(s.ticket)
	settlement, err := s.checkout.Quote(pricing.Total)
	if err != nil {
		return sale.Receipt{}, err
	}

	rec := sale.NewReceipt(s.r.newID(), s.id, s.ticket, pricing, settlement, s.r.now())
	if err := s.r.sales.Create(ctx, rec); err != nil {
		return sale.Receipt{}, errors.Wrap(err, "record sale")
	}
	if _, err := s.checkout.Settle(pricing.Total); err != nil {
		return sale.Receipt{}, errors.Wrap(err, "settle")
	}

	s.ticket.Clear()
	s.keypad.Reset()
	s.scanner.Reset()
	s.receipt = &rec

	method := attribute.String("method", string(settlement.Method))
	s.r.metrics.sales.Add(ctx, 1, metric.WithAttributes(method))
	s.r.metrics.saleTotal.Record(ctx, pricing.Total.InexactFloat64(), metric.WithAttributes(method))
	span.SetAttributes(attribute.String("pos.sale", rec.SaleID))
	s.logger(ctx).Info("Sale completed",
		zap.String("sale", rec.SaleID),
		zap.String("method", string(settlement.Method)),
		zap.String("total", s.r.policy.Round(pricing.Total).String()),
	)
	return rec.Clone(), nil
}

// NewSale leaves the settled state and starts an empty sale.
func (s *Session) NewSale(_ context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkout.Reset(); err != nil {
		return View{}, err
	}
	s.ticket.Clear()
	s.keypad.Reset()
	s.receipt = nil
	return s.view(), nil
}
