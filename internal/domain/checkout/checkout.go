package checkout

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-terminal/internal/domain/money"
)

// State is a checkout lifecycle stage.
type State int

// Checkout states. Idle -> AwaitingTender -> Settled -> Idle.
const (
	Idle State = iota
	AwaitingTender
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingTender:
		return "awaiting_tender"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// Sentinel errors for invalid transitions.
var (
	ErrNotStarted      = errors.New("checkout not started")
	ErrAlreadySettled  = errors.New("sale already settled")
	ErrNotSettled      = errors.New("sale not settled")
	ErrNegativeTender  = errors.New("tendered amount must not be negative")
	ErrTenderNotNeeded = errors.New("tender applies to cash payments only")
)

// Checkout tracks the payment of one sale at a time. The zero value is Idle.
type Checkout struct {
	state    State
	method   Method
	tendered decimal.Decimal
	last     *Settlement
}

// State returns the current stage.
func (c *Checkout) State() State { return c.state }

// Method returns the selected payment method, empty while Idle.
func (c *Checkout) Method() Method { return c.method }

// Tendered returns the cash amount entered so far.
func (c *Checkout) Tendered() decimal.Decimal { return c.tendered }

// Last returns the settlement of the most recent sale, if any.
func (c *Checkout) Last() (Settlement, bool) {
	if c.last == nil {
		return Settlement{}, false
	}
	return *c.last, true
}

// Begin selects the payment method and awaits tender. Calling Begin again
// while awaiting tender switches the method and keeps the tendered amount.
func (c *Checkout) Begin(m Method) error {
	if _, err := ParseMethod(string(m)); err != nil {
		return err
	}
	if c.state == Settled {
		return ErrAlreadySettled
	}
	c.state = AwaitingTender
	c.method = m
	return nil
}

// Tender records the cash handed over. It replaces any earlier amount.
func (c *Checkout) Tender(amount decimal.Decimal) error {
	switch {
	case c.state == Idle:
		return ErrNotStarted
	case c.state == Settled:
		return ErrAlreadySettled
	case c.method != MethodCash:
		return ErrTenderNotNeeded
	}
	if err := money.Check(amount); err != nil {
		return errors.Wrap(err, "tender")
	}
	if amount.IsNegative() {
		return ErrNegativeTender
	}
	c.tendered = amount
	return nil
}

// Payment returns the payment variant for the current method.
func (c *Checkout) Payment() (Payment, error) {
	switch c.method {
	case MethodCash:
		return Cash{Tendered: c.tendered}, nil
	case MethodCard:
		return Card{}, nil
	default:
		return nil, ErrNotStarted
	}
}

// Quote computes the settlement of total without changing state.
func (c *Checkout) Quote(total decimal.Decimal) (Settlement, error) {
	switch c.state {
	case Idle:
		return Settlement{}, ErrNotStarted
	case Settled:
		return Settlement{}, ErrAlreadySettled
	}
	p, err := c.Payment()
	if err != nil {
		return Settlement{}, err
	}
	return Settle(p, total)
}

// Settle pays total. On failure the checkout keeps awaiting tender.
func (c *Checkout) Settle(total decimal.Decimal) (Settlement, error) {
	s, err := c.Quote(total)
	if err != nil {
		return Settlement{}, err
	}
	c.state = Settled
	c.last = &s
	return s, nil
}

// Cancel abandons a checkout that has not been settled.
func (c *Checkout) Cancel() error {
	if c.state == Settled {
		return ErrAlreadySettled
	}
	c.state = Idle
	c.method = ""
	c.tendered = decimal.Zero
	return nil
}

// Reset starts a new sale after settlement.
func (c *Checkout) Reset() error {
	if c.state != Settled {
		return ErrNotSettled
	}
	c.state = Idle
	c.method = ""
	c.tendered = decimal.Zero
	return nil
}
