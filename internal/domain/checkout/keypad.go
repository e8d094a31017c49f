package checkout

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Keypad keys besides the digits.
const (
	KeyDot       = "."
	KeyBackspace = "backspace"
	KeyClear     = "clear"
)

const maxKeypadLen = 12

// ErrUnknownKey is returned for keys the keypad does not have.
var ErrUnknownKey = errors.New("unknown keypad key")

// Keypad builds a tendered amount one key at a time.
type Keypad struct {
	buf string
}

// Press applies key. Digits append, "." appends once, backspace drops the
// last character and clear empties the entry. The glyphs "⌫" and "C" are
// accepted as aliases.
func (k *Keypad) Press(key string) error {
	switch key {
	case KeyBackspace, "⌫":
		if k.buf != "" {
			k.buf = k.buf[:len(k.buf)-1]
		}
		return nil
	case KeyClear, "C", "c":
		k.buf = ""
		return nil
	case KeyDot:
		if !strings.Contains(k.buf, KeyDot) && len(k.buf) < maxKeypadLen {
			k.buf += KeyDot
		}
		return nil
	}
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return errors.Wrapf(ErrUnknownKey, "%q", key)
	}
	if len(k.buf) < maxKeypadLen {
		k.buf += key
	}
	return nil
}

// Set replaces the entry with amount formatted to places decimals.
func (k *Keypad) Set(amount decimal.Decimal, places int32) {
	k.buf = amount.StringFixed(places)
}

// Entry returns the raw entry as typed.
func (k *Keypad) Entry() string { return k.buf }

// Amount parses the entry. It reports false when the entry is not a number,
// such as "" or ".".
func (k *Keypad) Amount() (decimal.Decimal, bool) {
	if k.buf == "" || k.buf == KeyDot {
		return decimal.Zero, false
	}
	v := k.buf
	if strings.HasSuffix(v, KeyDot) {
		v = strings.TrimSuffix(v, KeyDot)
	}
	if strings.HasPrefix(v, KeyDot) {
		v = "0" + v
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Reset empties the entry.
func (k *Keypad) Reset() { k.buf = "" }
