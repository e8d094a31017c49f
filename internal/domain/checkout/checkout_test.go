package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/pos-terminal/internal/domain/money"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSettle(t *testing.T) {
	total := dec("6.655")

	tests := []struct {
		name       string
		payment    Payment
		wantChange string
		wantErr    bool
	}{
		{name: "cash with change", payment: Cash{Tendered: dec("10")}, wantChange: "3.345"},
		{name: "cash exact", payment: Cash{Tendered: dec("6.655")}, wantChange: "0"},
		{name: "cash just short", payment: Cash{Tendered: dec("6.65")}, wantErr: true},
		{name: "cash none", payment: Cash{}, wantErr: true},
		{name: "card", payment: Card{}, wantChange: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Settle(tt.payment, total)
			if tt.wantErr {
				var ife *InsufficientFundsError
				require.ErrorAs(t, err, &ife)
				assert.True(t, total.Equal(ife.Total))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.payment.Method(), s.Method)
			assert.True(t, dec(tt.wantChange).Equal(s.Change), "change %s", s.Change)
			assert.True(t, total.Equal(s.Total))
		})
	}
}

func TestSettle_ChangeDisplay(t *testing.T) {
	s, err := Settle(Cash{Tendered: dec("10")}, dec("6.655"))
	require.NoError(t, err)
	assert.Equal(t, "3.35", s.Change.Round(2).StringFixed(2))
}

func TestSettle_ZeroTotal(t *testing.T) {
	s, err := Settle(Cash{}, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, s.Change.IsZero())
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("cash")
	require.NoError(t, err)
	assert.Equal(t, MethodCash, m)

	m, err = ParseMethod("card")
	require.NoError(t, err)
	assert.Equal(t, MethodCard, m)

	_, err = ParseMethod("crypto")
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestCheckout_Lifecycle(t *testing.T) {
	var c Checkout
	assert.Equal(t, Idle, c.State())

	_, err := c.Settle(dec("1"))
	require.ErrorIs(t, err, ErrNotStarted)
	require.ErrorIs(t, c.Tender(dec("1")), ErrNotStarted)

	require.NoError(t, c.Begin(MethodCash))
	assert.Equal(t, AwaitingTender, c.State())

	require.ErrorIs(t, c.Tender(dec("-1")), ErrNegativeTender)
	require.NoError(t, c.Tender(dec("5")))

	_, err = c.Settle(dec("6.655"))
	var ife *InsufficientFundsError
	require.ErrorAs(t, err, &ife)
	assert.Equal(t, AwaitingTender, c.State(), "failed settle keeps awaiting tender")

	require.NoError(t, c.Tender(dec("10")))
	s, err := c.Settle(dec("6.655"))
	require.NoError(t, err)
	assert.True(t, dec("3.345").Equal(s.Change))
	assert.Equal(t, Settled, c.State())

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, s, last)

	require.ErrorIs(t, c.Begin(MethodCard), ErrAlreadySettled)
	require.ErrorIs(t, c.Tender(dec("1")), ErrAlreadySettled)
	require.ErrorIs(t, c.Cancel(), ErrAlreadySettled)
	_, err = c.Settle(dec("1"))
	require.ErrorIs(t, err, ErrAlreadySettled)

	require.NoError(t, c.Reset())
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, c.Method())
	assert.True(t, c.Tendered().IsZero())
	require.ErrorIs(t, c.Reset(), ErrNotSettled)
}

func TestCheckout_TenderOutOfRange(t *testing.T) {
	var c Checkout
	require.NoError(t, c.Begin(MethodCash))
	require.NoError(t, c.Tender(dec("20")))

	require.ErrorIs(t, c.Tender(dec("1e-2147483647")), money.ErrOutOfRange)
	require.ErrorIs(t, c.Tender(dec("-1e2147483647")), money.ErrOutOfRange)
	assert.True(t, dec("20").Equal(c.Tendered()))
}

func TestCheckout_Card(t *testing.T) {
	var c Checkout
	require.NoError(t, c.Begin(MethodCard))
	require.ErrorIs(t, c.Tender(dec("10")), ErrTenderNotNeeded)

	s, err := c.Settle(dec("6.655"))
	require.NoError(t, err)
	assert.Equal(t, MethodCard, s.Method)
	assert.True(t, s.Change.IsZero())
}

func TestCheckout_SwitchMethodKeepsTender(t *testing.T) {
	var c Checkout
	require.NoError(t, c.Begin(MethodCash))
	require.NoError(t, c.Tender(dec("20")))
	require.NoError(t, c.Begin(MethodCard))
	require.NoError(t, c.Begin(MethodCash))

	assert.True(t, dec("20").Equal(c.Tendered()))
}

func TestCheckout_Cancel(t *testing.T) {
	var c Checkout
	require.NoError(t, c.Begin(MethodCash))
	require.NoError(t, c.Tender(dec("20")))

	require.NoError(t, c.Cancel())
	assert.Equal(t, Idle, c.State())
	assert.True(t, c.Tendered().IsZero())
}

func TestCheckout_BeginUnknownMethod(t *testing.T) {
	var c Checkout
	require.ErrorIs(t, c.Begin(Method("voucher")), ErrUnknownMethod)
	assert.Equal(t, Idle, c.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "awaiting_tender", AwaitingTender.String())
	assert.Equal(t, "settled", Settled.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestCheckout_QuoteKeepsState(t *testing.T) {
	var c Checkout
	_, err := c.Quote(dec("1"))
	require.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, c.Begin(MethodCash))
	require.NoError(t, c.Tender(dec("10")))

	q, err := c.Quote(dec("6.655"))
	require.NoError(t, err)
	assert.True(t, dec("3.345").Equal(q.Change))
	assert.Equal(t, AwaitingTender, c.State())
	_, ok := c.Last()
	assert.False(t, ok)
}
