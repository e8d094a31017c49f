package sale

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/client"
	"github.com/xenking/pos-terminal/internal/domain/product"
	"github.com/xenking/pos-terminal/internal/domain/ticket"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testTicket() *ticket.Ticket {
	tk := ticket.New()
	beans := product.Product{ID: "p1", Name: "Coffee Beans", SKU: "7790001", Price: dec("1.20")}
	tea := product.Product{ID: "p2", Name: "Green Tea", SKU: "7790002", Price: dec("3.10")}
	tk.Add(beans)
	tk.Add(beans)
	tk.Add(tea)
	return tk
}

func TestNewReceipt(t *testing.T) {
	tk := testTicket()
	pricing := ticket.DefaultPolicy.Price(tk)
	settlement, err := checkout.Settle(checkout.Cash{Tendered: dec("10")}, pricing.Total)
	require.NoError(t, err)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	r := NewReceipt("s1", "t1", tk, pricing, settlement, at)

	assert.Equal(t, "s1", r.SaleID)
	assert.Equal(t, "t1", r.TerminalID)
	assert.Equal(t, client.GenericName, r.ClientName)
	assert.Empty(t, r.ClientID)
	require.Len(t, r.Lines, 2)
	assert.Equal(t, "Coffee Beans", r.Lines[0].Name)
	assert.True(t, dec("2").Equal(r.Lines[0].Quantity))
	assert.True(t, dec("2.40").Equal(r.Lines[0].Total))
	assert.True(t, dec("6.655").Equal(r.Total))
	assert.True(t, dec("3.345").Equal(r.Change))
	assert.Equal(t, checkout.MethodCash, r.Method)
	assert.Equal(t, at, r.IssuedAt)

	shown := r.Round(2)
	assert.Equal(t, "6.66", shown.Total.StringFixed(2))
	assert.Equal(t, "3.35", shown.Change.StringFixed(2))
	assert.Equal(t, "1.16", shown.Tax.StringFixed(2))
	assert.True(t, dec("6.655").Equal(r.Total), "Round does not modify the receipt")
}

func TestNewReceipt_WithClientAndDiscount(t *testing.T) {
	tk := testTicket()
	tk.SetClient(&client.Client{ID: "c1", Name: "Ana Torres"})
	require.NoError(t, tk.SetDiscountPercent(dec("10")))
	pricing := ticket.DefaultPolicy.Price(tk)
	settlement, err := checkout.Settle(checkout.Card{}, pricing.Total)
	require.NoError(t, err)

	r := NewReceipt("s2", "t1", tk, pricing, settlement, time.Now())

	assert.Equal(t, "c1", r.ClientID)
	assert.Equal(t, "Ana Torres", r.ClientName)
	assert.True(t, dec("10").Equal(r.DiscountPercent))
	assert.True(t, dec("5.9895").Equal(r.Total))
	assert.True(t, r.Change.IsZero())
	assert.Equal(t, checkout.MethodCard, r.Method)
}

func TestReceipt_Clone(t *testing.T) {
	r := NewReceipt("s1", "t1", testTicket(), ticket.Pricing{}, checkout.Settlement{}, time.Now())
	cp := r.Clone()
	cp.Lines[0].Name = "changed"

	assert.Equal(t, "Coffee Beans", r.Lines[0].Name)
}
