package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/pos-terminal/internal/domain/sale"
)

const dateLayout = "2006-01-02"

// ListSales returns completed sales oldest first. Query parameters:
// terminal, q (sale id or client name), from and to (RFC 3339 or a date;
// a date in to covers the whole day).
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	f, err := saleFilter(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	receipts, err := h.terminals.Sales().List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, rc := range receipts {
				h.encodeReceipt(e, rc)
			}
		})
	})
}

// SalesSummary reports totals, revenue by category and the best selling
// products. The range is either period (day, week or month; default week)
// or explicit from/to bounds.
func (h *Handler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	f, err := saleFilter(query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if f.From.IsZero() && f.To.IsZero() {
		period := query.Get("period")
		if period == "" {
			period = sale.PeriodWeek
		}
		f.From, f.To, err = sale.Period(period, h.now())
		if err != nil {
			h.fail(w, r, badRequest(err))
			return
		}
	}

	receipts, err := h.terminals.Sales().List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	summary := sale.Summarize(receipts, sale.DefaultTopProducts)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeSummary(e, f.From, f.To, summary) })
}

func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	rc, err := h.terminals.Sales().Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeReceipt(e, *rc) })
}

func saleFilter(q url.Values) (sale.Filter, error) {
	f := sale.Filter{
		TerminalID: q.Get("terminal"),
		Query:      q.Get("q"),
	}
	var err error
	if f.From, err = parseBound(q.Get("from"), false); err != nil {
		return sale.Filter{}, badRequest(errors.Wrap(err, "from"))
	}
	if f.To, err = parseBound(q.Get("to"), true); err != nil {
		return sale.Filter{}, badRequest(errors.Wrap(err, "to"))
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return sale.Filter{}, badRequest(errors.New("to is before from"))
	}
	return f, nil
}

// parseBound reads an RFC 3339 time or a UTC date. A date used as an upper
// bound extends to the end of that day.
func parseBound(s string, upper bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errors.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", s)
	}
	if upper {
		return sale.EndOfDay(d), nil
	}
	return d, nil
}
