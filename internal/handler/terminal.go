package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/scan"
	"github.com/xenking/pos-terminal/internal/domain/terminal"
)

type viewFunc func(ctx context.Context, s *terminal.Session) (terminal.View, error)

// respondView runs fn against the terminal session and writes the
// resulting view.
func (h *Handler) respondView(w http.ResponseWriter, r *http.Request, fn viewFunc) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := fn(r.Context(), s)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeView(e, v) })
}

// ListTerminals summarizes the terminals with a live session.
func (h *Handler) ListTerminals(w http.ResponseWriter, _ *http.Request) {
	terminals := h.terminals.Terminals()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, t := range terminals {
				encodeTerminal(e, t)
			}
		})
	})
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		return s.View(ctx), nil
	})
}

func (h *Handler) ClearTicket(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		return s.Clear(ctx)
	})
}

// AddItem adds one unit of a product chosen by productId or sku.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var productID, sku string
	err := readObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			productID, err = d.Str()
		case "sku":
			sku, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err == nil && (productID == "") == (sku == "") {
		err = badRequest(errors.New("exactly one of productId or sku is required"))
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		if sku != "" {
			return s.AddSKU(ctx, sku)
		}
		return s.AddProduct(ctx, productID)
	})
}

// SetItemQuantity replaces a line quantity; zero or less removes the line.
func (h *Handler) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	qty, err := readDecimalField(r, "quantity")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id := r.PathValue("id")
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		return s.SetQuantity(ctx, id, qty)
	})
}

// IncrementItem changes a line quantity by delta.
func (h *Handler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	delta, err := readDecimalField(r, "delta")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id := r.PathValue("id")
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		return s.Increment(ctx, id, delta)
	})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		return s.Remove(ctx, id)
	})
}

// SetClient attaches a client; a null clientId detaches it.
func (h *Handler) SetClient(w http.ResponseWriter, r *http.Request) {
	var (
		clientID string
		present  bool
	)
	err := readObject(r, func(d *jx.Decoder, key string) error {
		if key != "clientId" {
			return d.Skip()
		}
		present = true
		var err error
		clientID, err = readOptionalStr(d)
		return err
	})
	if err == nil {
		err = required("clientId", present)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		return s.SetClient(ctx, clientID)
	})
}

func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	pct, err := readDecimalField(r, "percent")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		return s.SetDiscount(ctx, pct)
	})
}

func (h *Handler) ListHeld(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	held := s.Held(r.Context())
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, hd := range held {
				h.encodeHeld(e, hd)
			}
		})
	})
}

// Hold parks the active ticket and responds with the snapshot.
func (h *Handler) Hold(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	held, err := s.Hold(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { h.encodeHeld(e, held) })
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		return s.Resume(ctx, id)
	})
}

// BeginCheckout enters payment with the given method.
func (h *Handler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	var (
		method  checkout.Method
		present bool
	)
	err := readObject(r, func(d *jx.Decoder, key string) error {
		if key != "method" {
			return d.Skip()
		}
		present = true
		s, err := d.Str()
		if err != nil {
			return err
		}
		method = checkout.Method(s)
		return nil
	})
	if err == nil {
		err = required("method", present)
	}
	if err == nil {
		// Unknown methods are a validation error, not a malformed body.
		method, err = checkout.ParseMethod(string(method))
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		return s.BeginCheckout(ctx, method)
	})
}

func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		return s.CancelCheckout(ctx)
	})
}

// Tender records the cash handed over by the customer.
func (h *Handler) Tender(w http.ResponseWriter, r *http.Request) {
	amount, err := readDecimalField(r, "amount")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		return s.Tender(ctx, amount)
	})
}

// PressKey applies a keypad key, or the exact amount shortcut.
func (h *Handler) PressKey(w http.ResponseWriter, r *http.Request) {
	var (
		key   string
		exact bool
	)
	err := readObject(r, func(d *jx.Decoder, k string) error {
		var err error
		switch k {
		case "key":
			key, err = d.Str()
		case "exact":
			exact, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	})
	if err == nil && (key == "") == !exact {
		err = badRequest(errors.New("exactly one of key or exact is required"))
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		if exact {
			return s.ExactAmount(ctx)
		}
		return s.PressKey(ctx, key)
	})
}

// Finalize settles the sale and responds with the receipt.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	receipt, err := s.Finalize(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { h.encodeReceipt(e, receipt) })
}

func (h *Handler) NewSale(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, func(ctx context.Context, s *terminal.Session) (terminal.View, error) {
		return s.NewSale(ctx)
	})
}

// Keys feeds a batch of keystrokes to the scan heuristic. Each completed
// code is reported with the product it added, if any.
func (h *Handler) Keys(w http.ResponseWriter, r *http.Request) {
	var keys []scan.Key
	err := readObject(r, func(d *jx.Decoder, k string) error {
		if k != "keys" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			key, err := h.readKey(d)
			if err != nil {
				return err
			}
			keys = append(keys, key)
			return nil
		})
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx := r.Context()
	var scans []terminal.ScanResult
	for _, k := range keys {
		res, err := s.Scan(ctx, k)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if res.Code != "" {
			scans = append(scans, res)
		}
	}
	v := s.View(ctx)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("scans", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, res := range scans {
						e.Obj(func(e *jx.Encoder) {
							e.Field("code", func(e *jx.Encoder) { e.Str(res.Code) })
							e.Field("matched", func(e *jx.Encoder) { e.Bool(res.Product != nil) })
							if res.Product != nil {
								e.Field("productId", func(e *jx.Encoder) { e.Str(res.Product.ID) })
							}
						})
					}
				})
			})
			e.Field("ticket", func(e *jx.Encoder) { h.encodeView(e, v) })
		})
	})
}

// readKey decodes one keystroke. A missing timestamp means now.
func (h *Handler) readKey(d *jx.Decoder) (scan.Key, error) {
	var k scan.Key
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "key":
			k.Value, err = d.Str()
		case "at":
			k.At, err = readTime(d)
		case "inFormControl":
			k.InFormControl, err = d.Bool()
		case "ctrl":
			k.Ctrl, err = d.Bool()
		case "meta":
			k.Meta, err = d.Bool()
		case "alt":
			k.Alt, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return scan.Key{}, err
	}
	if k.At.IsZero() {
		k.At = h.now()
	}
	return k, nil
}

// readDecimalField reads a body holding a single required decimal field.
func readDecimalField(r *http.Request, field string) (decimal.Decimal, error) {
	var (
		v       decimal.Decimal
		present bool
	)
	err := readObject(r, func(d *jx.Decoder, key string) error {
		if key != field {
			return d.Skip()
		}
		present = true
		var err error
		v, err = readDecimal(d)
		return err
	})
	if err == nil {
		err = required(field, present)
	}
	return v, err
}
