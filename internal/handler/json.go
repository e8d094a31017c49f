package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	var e jx.Encoder
	fn(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status is already written; a failed write means the client left.
	_, _ = e.WriteTo(w)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}

// readObject decodes a JSON object body, calling fn for every field.
func readObject(r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err != nil {
		return badRequest(errors.Wrap(err, "read body"))
	}
	if len(data) == 0 {
		return badRequest(errors.New("empty body"))
	}
	if err := jx.DecodeBytes(data).Obj(fn); err != nil {
		return badRequest(errors.Wrap(err, "decode body"))
	}
	return nil
}

// readDecimal accepts a JSON number or a numeric string.
func readDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch tt := d.Next(); tt {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	default:
		return decimal.Zero, errors.Errorf("expected number, got %s", tt)
	}
}

// readOptionalStr reads a string or null, reporting null as "".
func readOptionalStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

// readTime accepts an RFC 3339 string or Unix milliseconds.
func readTime(d *jx.Decoder) (time.Time, error) {
	switch tt := d.Next(); tt {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	case jx.Number:
		ms, err := d.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms), nil
	default:
		return time.Time{}, errors.Errorf("expected time, got %s", tt)
	}
}

func required(field string, present bool) error {
	if !present {
		return badRequest(errors.Errorf("%s is required", field))
	}
	return nil
}

func encodeMoney(e *jx.Encoder, d decimal.Decimal, places int32) {
	e.Num(jx.Num(d.StringFixed(places)))
}

func encodeExact(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}
