package handler

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-terminal/internal/domain/client"
	"github.com/xenking/pos-terminal/internal/domain/product"
	"github.com/xenking/pos-terminal/internal/domain/sale"
	"github.com/xenking/pos-terminal/internal/domain/terminal"
	"github.com/xenking/pos-terminal/internal/domain/ticket"
)

func (h *Handler) encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("sku", func(e *jx.Encoder) { e.Str(p.SKU) })
		e.Field("price", func(e *jx.Encoder) { encodeMoney(e, p.Price, h.places) })
		e.Field("stock", func(e *jx.Encoder) { e.Int(p.Stock) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
	})
}

func (h *Handler) encodeProducts(e *jx.Encoder, products []product.Product) {
	e.Arr(func(e *jx.Encoder) {
		for _, p := range products {
			h.encodeProduct(e, p)
		}
	})
}

func encodeClient(e *jx.Encoder, c client.Client) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(c.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		if c.Email != "" {
			e.Field("email", func(e *jx.Encoder) { e.Str(c.Email) })
		}
		if c.Phone != "" {
			e.Field("phone", func(e *jx.Encoder) { e.Str(c.Phone) })
		}
	})
}

// encodeTicketClient writes the attached client or null, plus the name to
// print on the receipt.
func encodeTicketClient(e *jx.Encoder, c *client.Client) {
	e.Field("client", func(e *jx.Encoder) {
		if c == nil {
			e.Null()
			return
		}
		encodeClient(e, *c)
	})
	e.Field("clientName", func(e *jx.Encoder) { e.Str(client.DisplayName(c)) })
}

func (h *Handler) encodeItems(e *jx.Encoder, items []ticket.LineItem) {
	e.Arr(func(e *jx.Encoder) {
		for _, it := range items {
			e.Obj(func(e *jx.Encoder) {
				e.Field("productId", func(e *jx.Encoder) { e.Str(it.Product.ID) })
				e.Field("sku", func(e *jx.Encoder) { e.Str(it.Product.SKU) })
				e.Field("name", func(e *jx.Encoder) { e.Str(it.Product.Name) })
				e.Field("unitPrice", func(e *jx.Encoder) { encodeMoney(e, it.Product.Price, h.places) })
				e.Field("quantity", func(e *jx.Encoder) { encodeExact(e, it.Quantity) })
				e.Field("lineTotal", func(e *jx.Encoder) { encodeMoney(e, it.Total(), h.places) })
			})
		}
	})
}

func (h *Handler) encodePricing(e *jx.Encoder, p ticket.Pricing, round bool) {
	money := func(e *jx.Encoder, v decimal.Decimal) {
		if round {
			encodeMoney(e, v, h.places)
			return
		}
		encodeExact(e, v)
	}
	e.Obj(func(e *jx.Encoder) {
		e.Field("subtotal", func(e *jx.Encoder) { money(e, p.Subtotal) })
		e.Field("tax", func(e *jx.Encoder) { money(e, p.Tax) })
		e.Field("discount", func(e *jx.Encoder) { money(e, p.Discount) })
		e.Field("total", func(e *jx.Encoder) { money(e, p.Total) })
	})
}

func (h *Handler) encodeView(e *jx.Encoder, v terminal.View) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("terminalId", func(e *jx.Encoder) { e.Str(v.TerminalID) })
		e.Field("items", func(e *jx.Encoder) { h.encodeItems(e, v.Items) })
		encodeTicketClient(e, v.Client)
		e.Field("discountPercent", func(e *jx.Encoder) { encodeExact(e, v.DiscountPercent) })
		e.Field("totals", func(e *jx.Encoder) { h.encodePricing(e, v.Display, true) })
		e.Field("exact", func(e *jx.Encoder) { h.encodePricing(e, v.Pricing, false) })
		e.Field("checkout", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("state", func(e *jx.Encoder) { e.Str(v.State.String()) })
				if v.Method != "" {
					e.Field("method", func(e *jx.Encoder) { e.Str(string(v.Method)) })
				}
				e.Field("tendered", func(e *jx.Encoder) { encodeMoney(e, v.Tendered, h.places) })
				e.Field("keypad", func(e *jx.Encoder) { e.Str(v.Keypad) })
				e.Field("amountDue", func(e *jx.Encoder) { encodeMoney(e, v.AmountDue, h.places) })
				e.Field("sufficient", func(e *jx.Encoder) { e.Bool(v.Sufficient) })
				if v.Sufficient {
					e.Field("change", func(e *jx.Encoder) { encodeMoney(e, v.Change, h.places) })
				}
			})
		})
		e.Field("held", func(e *jx.Encoder) { e.Int(v.Held) })
		e.Field("lastReceipt", func(e *jx.Encoder) {
			if v.LastReceipt == nil {
				e.Null()
				return
			}
			h.encodeReceipt(e, *v.LastReceipt)
		})
	})
}

func (h *Handler) encodeHeld(e *jx.Encoder, held ticket.Held) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(held.ID) })
		e.Field("items", func(e *jx.Encoder) { h.encodeItems(e, held.Items) })
		encodeTicketClient(e, held.Client)
		e.Field("discountPercent", func(e *jx.Encoder) { encodeExact(e, held.DiscountPercent) })
		e.Field("total", func(e *jx.Encoder) { encodeMoney(e, held.Total, h.places) })
		e.Field("heldAt", func(e *jx.Encoder) { e.Str(held.HeldAt.UTC().Format(time.RFC3339Nano)) })
	})
}

// encodeReceipt writes amounts rounded for printing; the exact total is
// kept alongside for reconciliation.
func (h *Handler) encodeReceipt(e *jx.Encoder, r sale.Receipt) {
	rounded := r.Round(h.places)
	e.Obj(func(e *jx.Encoder) {
		e.Field("saleId", func(e *jx.Encoder) { e.Str(r.SaleID) })
		e.Field("terminalId", func(e *jx.Encoder) { e.Str(r.TerminalID) })
		if r.ClientID != "" {
			e.Field("clientId", func(e *jx.Encoder) { e.Str(r.ClientID) })
		}
		e.Field("clientName", func(e *jx.Encoder) { e.Str(r.ClientName) })
		e.Field("lines", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range rounded.Lines {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(l.ProductID) })
						e.Field("sku", func(e *jx.Encoder) { e.Str(l.SKU) })
						e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
						if l.Category != "" {
							e.Field("category", func(e *jx.Encoder) { e.Str(l.Category) })
						}
						e.Field("quantity", func(e *jx.Encoder) { encodeExact(e, l.Quantity) })
						e.Field("unitPrice", func(e *jx.Encoder) { encodeMoney(e, l.UnitPrice, h.places) })
						e.Field("total", func(e *jx.Encoder) { encodeMoney(e, l.Total, h.places) })
					})
				}
			})
		})
		e.Field("subtotal", func(e *jx.Encoder) { encodeMoney(e, rounded.Subtotal, h.places) })
		e.Field("tax", func(e *jx.Encoder) { encodeMoney(e, rounded.Tax, h.places) })
		e.Field("discountPercent", func(e *jx.Encoder) { encodeExact(e, r.DiscountPercent) })
		e.Field("discount", func(e *jx.Encoder) { encodeMoney(e, rounded.Discount, h.places) })
		e.Field("total", func(e *jx.Encoder) { encodeMoney(e, rounded.Total, h.places) })
		e.Field("exactTotal", func(e *jx.Encoder) { encodeExact(e, r.Total) })
		e.Field("method", func(e *jx.Encoder) { e.Str(string(r.Method)) })
		e.Field("tendered", func(e *jx.Encoder) { encodeMoney(e, rounded.Tendered, h.places) })
		e.Field("change", func(e *jx.Encoder) { encodeMoney(e, rounded.Change, h.places) })
		e.Field("issuedAt", func(e *jx.Encoder) { e.Str(r.IssuedAt.UTC().Format(time.RFC3339Nano)) })
	})
}

func (h *Handler) encodeSummary(e *jx.Encoder, from, to time.Time, s sale.Summary) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("from", func(e *jx.Encoder) { e.Str(from.UTC().Format(time.RFC3339Nano)) })
		e.Field("to", func(e *jx.Encoder) { e.Str(to.UTC().Format(time.RFC3339Nano)) })
		e.Field("transactions", func(e *jx.Encoder) { e.Int(s.Transactions) })
		e.Field("totalSales", func(e *jx.Encoder) { encodeMoney(e, s.TotalSales, h.places) })
		e.Field("averageTicket", func(e *jx.Encoder) { encodeMoney(e, s.AverageTicket, h.places) })
		e.Field("byCategory", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, c := range s.ByCategory {
					e.Obj(func(e *jx.Encoder) {
						e.Field("category", func(e *jx.Encoder) { e.Str(c.Category) })
						e.Field("sales", func(e *jx.Encoder) { encodeMoney(e, c.Sales, h.places) })
					})
				}
			})
		})
		e.Field("topProducts", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, p := range s.TopProducts {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(p.ProductID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
						e.Field("quantity", func(e *jx.Encoder) { encodeExact(e, p.Quantity) })
						e.Field("sales", func(e *jx.Encoder) { encodeMoney(e, p.Sales, h.places) })
					})
				}
			})
		})
	})
}

func encodeTerminal(e *jx.Encoder, s terminal.Summary) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("terminalId", func(e *jx.Encoder) { e.Str(s.ID) })
		e.Field("items", func(e *jx.Encoder) { e.Int(s.Items) })
		e.Field("held", func(e *jx.Encoder) { e.Int(s.Held) })
		e.Field("state", func(e *jx.Encoder) { e.Str(s.State.String()) })
		e.Field("lastUsed", func(e *jx.Encoder) { e.Str(s.LastUsed.UTC().Format(time.RFC3339Nano)) })
	})
}
