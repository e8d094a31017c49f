// Package checkout settles a priced ticket against a payment.
package checkout

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Method identifies how a sale is paid.
type Method string

// Supported payment methods.
const (
	MethodCash Method = "cash"
	MethodCard Method = "card"
)

// ErrUnknownMethod is returned for unsupported payment methods.
var ErrUnknownMethod = errors.New("unknown payment method")

// ParseMethod validates s as a payment method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodCash, MethodCard:
		return m, nil
	default:
		return "", errors.Wrapf(ErrUnknownMethod, "%q", s)
	}
}

// Payment is a tagged payment variant: either Cash or Card.
type Payment interface {
	Method() Method
	isPayment()
}

// Cash is a cash payment with the amount handed over by the customer.
type Cash struct {
	Tendered decimal.Decimal
}

func (Cash) Method() Method { return MethodCash }
func (Cash) isPayment()     {}

// Card is a card payment. The amount charged always equals the total.
type Card struct{}

func (Card) Method() Method { return MethodCard }
func (Card) isPayment()     {}

// InsufficientFundsError indicates a cash tender below the total due.
type InsufficientFundsError struct {
	Tendered decimal.Decimal
	Total    decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("tendered %s is less than total %s", e.Tendered, e.Total)
}

// Settlement is the outcome of a successful payment.
type Settlement struct {
	Method   Method
	Total    decimal.Decimal
	Tendered decimal.Decimal
	Change   decimal.Decimal
}

// Settle pays total with p. Cash must cover the full precision total and
// yields change; card always settles with zero change.
func Settle(p Payment, total decimal.Decimal) (Settlement, error) {
	switch p := p.(type) {
	case Cash:
		if p.Tendered.LessThan(total) {
			return Settlement{}, &InsufficientFundsError{Tendered: p.Tendered, Total: total}
		}
		return Settlement{
			Method:   MethodCash,
			Total:    total,
			Tendered: p.Tendered,
			Change:   p.Tendered.Sub(total),
		}, nil
	case Card:
		return Settlement{
			Method:   MethodCard,
			Total:    total,
			Tendered: total,
			Change:   decimal.Zero,
		}, nil
	default:
		return Settlement{}, errors.Wrapf(ErrUnknownMethod, "%T", p)
	}
}
