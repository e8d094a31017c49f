package ticket

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/pos-terminal/internal/domain/client"
	"github.com/xenking/pos-terminal/internal/domain/money"
	"github.com/xenking/pos-terminal/internal/domain/product"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	beans = product.Product{ID: "p1", Name: "Coffee Beans", SKU: "7790001", Price: dec("1.20"), Category: "Grocery"}
	tea   = product.Product{ID: "p2", Name: "Green Tea", SKU: "7790002", Price: dec("3.10"), Category: "Grocery"}
	mug   = product.Product{ID: "p3", Name: "Coffee Mug", SKU: "7790003", Price: dec("7.50"), Category: "Kitchen"}
)

// assertUniqueLines checks that product IDs appear at most once and every
// quantity is positive.
func assertUniqueLines(t *testing.T, tk *Ticket) {
	t.Helper()
	seen := make(map[string]bool)
	for _, l := range tk.Items() {
		assert.False(t, seen[l.Product.ID], "duplicate line for %s", l.Product.ID)
		seen[l.Product.ID] = true
		assert.True(t, l.Quantity.IsPositive(), "non-positive quantity for %s", l.Product.ID)
	}
}

func TestTicket_AddMerges(t *testing.T) {
	tk := New()
	tk.Add(beans)
	tk.Add(tea)
	tk.Add(beans)
	tk.Add(beans)

	require.Equal(t, 2, tk.Len())
	assert.True(t, dec("3").Equal(tk.Quantity("p1")))
	assert.True(t, dec("1").Equal(tk.Quantity("p2")))
	assertUniqueLines(t, tk)

	items := tk.Items()
	assert.Equal(t, "p1", items[0].Product.ID, "insertion order kept")
	assert.Equal(t, "p2", items[1].Product.ID)
}

func TestTicket_AddIgnoresStock(t *testing.T) {
	outOfStock := product.Product{ID: "oos", Price: dec("2"), Stock: -5}

	tk := New()
	tk.Add(outOfStock)
	assert.Equal(t, 1, tk.Len())
}

func TestTicket_SetQuantity(t *testing.T) {
	tests := []struct {
		name    string
		qty     string
		wantLen int
		wantQty string
	}{
		{name: "positive", qty: "5", wantLen: 2, wantQty: "5"},
		{name: "fractional", qty: "0.25", wantLen: 2, wantQty: "0.25"},
		{name: "zero removes", qty: "0", wantLen: 1, wantQty: "0"},
		{name: "negative removes", qty: "-3", wantLen: 1, wantQty: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := New()
			tk.Add(beans)
			tk.Add(tea)

			tk.SetQuantity("p1", dec(tt.qty))

			assert.Equal(t, tt.wantLen, tk.Len())
			assert.True(t, dec(tt.wantQty).Equal(tk.Quantity("p1")))
			assertUniqueLines(t, tk)
		})
	}
}

func TestTicket_SetQuantityUnknownIsNoop(t *testing.T) {
	tk := New()
	tk.Add(beans)

	tk.SetQuantity("missing", dec("4"))

	require.Equal(t, 1, tk.Len())
	assert.True(t, dec("1").Equal(tk.Quantity("p1")))
}

func TestTicket_Increment(t *testing.T) {
	tk := New()
	tk.Add(beans)

	tk.Increment("p1", dec("1"))
	assert.True(t, dec("2").Equal(tk.Quantity("p1")))

	tk.Increment("p1", dec("-1"))
	assert.True(t, dec("1").Equal(tk.Quantity("p1")))

	tk.Increment("p1", dec("-1"))
	assert.True(t, tk.IsEmpty())

	tk.Increment("p1", dec("1"))
	assert.True(t, tk.IsEmpty(), "increment never creates lines")
}

func TestTicket_Remove(t *testing.T) {
	tk := New()
	tk.Add(beans)
	tk.Add(tea)

	tk.Remove("p1")
	tk.Remove("missing")

	items := tk.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].Product.ID)
}

func TestTicket_SetDiscountPercent(t *testing.T) {
	tests := []struct {
		pct     string
		wantErr bool
	}{
		{pct: "0"},
		{pct: "10"},
		{pct: "100"},
		{pct: "12.5"},
		{pct: "-0.01", wantErr: true},
		{pct: "100.01", wantErr: true},
		{pct: "150", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.pct, func(t *testing.T) {
			tk := New()
			require.NoError(t, tk.SetDiscountPercent(dec("5")))

			err := tk.SetDiscountPercent(dec(tt.pct))
			if tt.wantErr {
				var de *InvalidDiscountError
				require.ErrorAs(t, err, &de)
				assert.True(t, dec(tt.pct).Equal(de.Percent))
				assert.True(t, dec("5").Equal(tk.DiscountPercent()), "previous discount kept")
				return
			}
			require.NoError(t, err)
			assert.True(t, dec(tt.pct).Equal(tk.DiscountPercent()))
		})
	}
}

func TestTicket_SetDiscountPercentOutOfRange(t *testing.T) {
	for _, pct := range []string{"1e-2147483647", "1e2147483647", "50.000000001"} {
		t.Run(pct, func(t *testing.T) {
			tk := New()
			require.NoError(t, tk.SetDiscountPercent(dec("5")))
			require.ErrorIs(t, tk.SetDiscountPercent(dec(pct)), money.ErrOutOfRange)
			assert.True(t, dec("5").Equal(tk.DiscountPercent()))
		})
	}
}

func TestTicket_ClientIsCopied(t *testing.T) {
	c := &client.Client{ID: "c1", Name: "Ana"}
	tk := New()
	tk.SetClient(c)

	c.Name = "changed"
	assert.Equal(t, "Ana", tk.Client().Name)

	got := tk.Client()
	got.Name = "also changed"
	assert.Equal(t, "Ana", tk.Client().Name)

	tk.SetClient(nil)
	assert.Nil(t, tk.Client())
}

func TestTicket_Clear(t *testing.T) {
	tk := New()
	tk.Add(beans)
	tk.SetClient(&client.Client{ID: "c1", Name: "Ana"})
	require.NoError(t, tk.SetDiscountPercent(dec("10")))

	tk.Clear()

	assert.True(t, tk.IsEmpty())
	assert.Nil(t, tk.Client())
	assert.True(t, tk.DiscountPercent().IsZero())
}

func TestTicket_ItemsAreCopies(t *testing.T) {
	tk := New()
	tk.Add(beans)

	items := tk.Items()
	items[0].Quantity = dec("99")
	items[0].Product.Price = dec("0")

	assert.True(t, dec("1").Equal(tk.Quantity("p1")))
	assert.True(t, dec("1.20").Equal(tk.Items()[0].Product.Price))
}

func TestTicket_ZeroValueUsable(t *testing.T) {
	var tk Ticket
	assert.True(t, tk.IsEmpty())
	tk.Add(mug)
	assert.Equal(t, 1, tk.Len())
}
