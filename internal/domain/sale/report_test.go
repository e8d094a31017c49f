package sale

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id, name, category, qty, unit string) Line {
	return Line{
		ProductID: id,
		Name:      name,
		Category:  category,
		Quantity:  dec(qty),
		UnitPrice: dec(unit),
		Total:     dec(unit).Mul(dec(qty)),
	}
}

func TestSummarize(t *testing.T) {
	receipts := []Receipt{
		{
			SaleID: "s1",
			Total:  dec("8.47"),
			Lines: []Line{
				line("p1", "Coffee Beans", "Grocery", "2", "1.20"),
				line("p3", "Coffee Mug", "Kitchen", "1", "4.60"),
			},
		},
		{
			SaleID: "s2",
			Total:  dec("3.50"),
			Lines: []Line{
				line("p1", "Coffee Beans", "Grocery", "1.5", "1.20"),
				line("p9", "Gift Card", "", "1", "1.10"),
			},
		},
		{
			SaleID: "s3",
			Total:  dec("0"),
		},
	}

	s := Summarize(receipts, 0)
	assert.Equal(t, 3, s.Transactions)
	assert.Equal(t, "11.97", s.TotalSales.String())
	assert.Equal(t, "3.99", s.AverageTicket.String())

	require.Len(t, s.ByCategory, 3)
	assert.Equal(t, "Kitchen", s.ByCategory[0].Category)
	assert.Equal(t, "4.6", s.ByCategory[0].Sales.String())
	assert.Equal(t, "Grocery", s.ByCategory[1].Category)
	assert.Equal(t, "4.2", s.ByCategory[1].Sales.String())
	assert.Equal(t, Uncategorized, s.ByCategory[2].Category)

	require.Len(t, s.TopProducts, 3)
	assert.Equal(t, "p3", s.TopProducts[0].ProductID)
	assert.Equal(t, "p1", s.TopProducts[1].ProductID)
	assert.Equal(t, "Coffee Beans", s.TopProducts[1].Name)
	assert.Equal(t, "3.5", s.TopProducts[1].Quantity.String())
	assert.Equal(t, "4.2", s.TopProducts[1].Sales.String())
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 5)
	assert.Zero(t, s.Transactions)
	assert.True(t, s.TotalSales.IsZero())
	assert.True(t, s.AverageTicket.IsZero())
	assert.Empty(t, s.ByCategory)
	assert.Empty(t, s.TopProducts)
}

func TestSummarize_TopLimit(t *testing.T) {
	var lines []Line
	for i := range 8 {
		lines = append(lines, line(fmt.Sprintf("p%d", i), "Item", "Misc", "1", fmt.Sprintf("%d", i+1)))
	}
	s := Summarize([]Receipt{{SaleID: "s1", Total: dec("36"), Lines: lines}}, 0)
	require.Len(t, s.TopProducts, DefaultTopProducts)
	assert.Equal(t, "p7", s.TopProducts[0].ProductID)
	assert.Equal(t, "p3", s.TopProducts[4].ProductID)
}

func TestPeriod(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	endOfDay := time.Date(2024, 3, 10, 23, 59, 59, 999999999, time.UTC)

	for _, tt := range []struct {
		name string
		from time.Time
	}{
		{PeriodDay, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{PeriodWeek, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{PeriodMonth, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := Period(tt.name, now)
			require.NoError(t, err)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, endOfDay, to)
		})
	}

	_, _, err := Period("year", now)
	require.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestFilter_Match(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := Receipt{SaleID: "a1b2", TerminalID: "till-1", ClientName: "Lucia Gomez", IssuedAt: at}

	for _, tt := range []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"Empty", Filter{}, true},
		{"Terminal", Filter{TerminalID: "till-1"}, true},
		{"OtherTerminal", Filter{TerminalID: "till-2"}, false},
		{"ClientName", Filter{Query: "gomez"}, true},
		{"NoMatch", Filter{Query: "torres"}, false},
		{"ClientNameCase", Filter{Query: "LUCIA"}, true},
		{"SaleID", Filter{Query: "B2"}, true},
		{"InsideRange", Filter{From: at.Add(-time.Hour), To: at.Add(time.Hour)}, true},
		{"BoundsInclusive", Filter{From: at, To: at}, true},
		{"BeforeRange", Filter{From: at.Add(time.Second)}, false},
		{"AfterRange", Filter{To: at.Add(-time.Second)}, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(r))
		})
	}
}
