package sale

import (
	"cmp"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Uncategorized groups lines of products without a category.
const Uncategorized = "Uncategorized"

// DefaultTopProducts is the length of Summary.TopProducts.
const DefaultTopProducts = 5

// Reporting periods, each ending with the current day.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// ErrUnknownPeriod is returned by Period for unsupported names.
var ErrUnknownPeriod = errors.New("unknown period")

// Period returns the inclusive bounds of the named period relative to now:
// today, the last 7 days or the last 30 days, in now's location.
func Period(name string, now time.Time) (from, to time.Time, err error) {
	var days int
	switch name {
	case PeriodDay:
		days = 1
	case PeriodWeek:
		days = 7
	case PeriodMonth:
		days = 30
	default:
		return time.Time{}, time.Time{}, errors.Wrapf(ErrUnknownPeriod, "%q", name)
	}
	start := startOfDay(now)
	return start.AddDate(0, 0, 1-days), EndOfDay(now), nil
}

// startOfDay returns midnight of t's day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day.
func EndOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// CategorySales is the line revenue of one category.
type CategorySales struct {
	Category string
	Sales    decimal.Decimal
}

// ProductSales is the sold quantity and line revenue of one product.
type ProductSales struct {
	ProductID string
	Name      string
	Quantity  decimal.Decimal
	Sales     decimal.Decimal
}

// Summary aggregates a set of sales. TotalSales and AverageTicket use receipt
// totals; the category and product breakdowns use line amounts before tax
// and discount.
type Summary struct {
	Transactions  int
	TotalSales    decimal.Decimal
	AverageTicket decimal.Decimal
	ByCategory    []CategorySales
	TopProducts   []ProductSales
}

// Summarize aggregates receipts. Breakdowns are ordered by revenue, highest
// first, and TopProducts keeps at most top entries.
func Summarize(receipts []Receipt, top int) Summary {
	if top <= 0 {
		top = DefaultTopProducts
	}
	s := Summary{
		Transactions:  len(receipts),
		TotalSales:    decimal.Zero,
		AverageTicket: decimal.Zero,
	}

	categories := make(map[string]decimal.Decimal)
	products := make(map[string]*ProductSales)
	for _, r := range receipts {
		s.TotalSales = s.TotalSales.Add(r.Total)
		for _, l := range r.Lines {
			cat := l.Category
			if cat == "" {
				cat = Uncategorized
			}
			categories[cat] = categories[cat].Add(l.Total)

			p, ok := products[l.ProductID]
			if !ok {
				p = &ProductSales{ProductID: l.ProductID, Name: l.Name, Quantity: decimal.Zero, Sales: decimal.Zero}
				products[l.ProductID] = p
			}
			p.Quantity = p.Quantity.Add(l.Quantity)
			p.Sales = p.Sales.Add(l.Total)
		}
	}
	if s.Transactions > 0 {
		s.AverageTicket = s.TotalSales.Div(decimal.NewFromInt(int64(s.Transactions)))
	}

	s.ByCategory = make([]CategorySales, 0, len(categories))
	for cat, sales := range categories {
		s.ByCategory = append(s.ByCategory, CategorySales{Category: cat, Sales: sales})
	}
	slices.SortFunc(s.ByCategory, func(a, b CategorySales) int {
		if c := b.Sales.Cmp(a.Sales); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})

	s.TopProducts = make([]ProductSales, 0, len(products))
	for _, p := range products {
		s.TopProducts = append(s.TopProducts, *p)
	}
	slices.SortFunc(s.TopProducts, func(a, b ProductSales) int {
		if c := b.Sales.Cmp(a.Sales); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	if len(s.TopProducts) > top {
		s.TopProducts = s.TopProducts[:top]
	}
	return s
}
