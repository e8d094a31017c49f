package ticket

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DefaultPolicy charges 21% tax and displays amounts with two decimals.
var DefaultPolicy = Policy{
	TaxRate: decimal.RequireFromString("0.21"),
	Places:  2,
}

// Policy configures ticket pricing.
type Policy struct {
	// TaxRate is a fraction, e.g. 0.21 for 21%.
	TaxRate decimal.Decimal
	// Places is the number of decimals used for presentation.
	Places int32
}

// Validate checks that the policy can price a ticket.
func (p Policy) Validate() error {
	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.Errorf("tax rate %s must be in [0, 1)", p.TaxRate)
	}
	if p.Places < 0 || p.Places > 6 {
		return errors.Errorf("rounding places %d must be in [0, 6]", p.Places)
	}
	return nil
}

// Pricing is the derived view of a ticket. Amounts are kept at full precision
// until Round is applied for presentation.
type Pricing struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Round rounds every amount half away from zero.
func (pr Pricing) Round(places int32) Pricing {
	return Pricing{
		Subtotal: pr.Subtotal.Round(places),
		Tax:      pr.Tax.Round(places),
		Discount: pr.Discount.Round(places),
		Total:    pr.Total.Round(places),
	}
}

// Compute prices items with a percentage discount applied to subtotal plus
// tax. It is pure: equal inputs always give equal results.
func (p Policy) Compute(items []LineItem, discountPct decimal.Decimal) Pricing {
	subtotal := decimal.Zero
	for _, l := range items {
		subtotal = subtotal.Add(l.Total())
	}
	tax := subtotal.Mul(p.TaxRate)
	gross := subtotal.Add(tax)
	// Shift is exact, unlike Div.
	discount := gross.Mul(discountPct).Shift(-2)

	return Pricing{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    gross.Sub(discount),
	}
}

// Price computes the pricing of t.
func (p Policy) Price(t *Ticket) Pricing {
	return p.Compute(t.items, t.discount)
}

// Display rounds pr to the policy's presentation places.
func (p Policy) Display(pr Pricing) Pricing {
	return pr.Round(p.Places)
}

// Round rounds a single amount for presentation.
func (p Policy) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(p.Places)
}

// AmountDue is total rounded up to the smallest currency unit, the least
// cash tender that settles total.
func (p Policy) AmountDue(total decimal.Decimal) decimal.Decimal {
	return total.RoundCeil(p.Places)
}
