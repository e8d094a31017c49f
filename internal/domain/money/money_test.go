package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	for _, tt := range []struct {
		in string
		ok bool
	}{
		{"0", true},
		{"2.5", true},
		{"-3", true},
		{"100", true},
		{"0.00000001", true},
		{"999999999999.99", true},
		{"1000000000000", false},
		{"-1000000000000", false},
		{"0.000000001", false},
		{"1e-2147483647", false},
		{"1e2147483647", false},
		{"1e13", false},
		{"123456789012345678901234567890", false},
	} {
		t.Run(tt.in, func(t *testing.T) {
			err := Check(decimal.RequireFromString(tt.in))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrOutOfRange)
		})
	}
}
