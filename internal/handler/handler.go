// Package handler exposes the sale engine over HTTP with JSON bodies.
package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/client"
	"github.com/xenking/pos-terminal/internal/domain/money"
	"github.com/xenking/pos-terminal/internal/domain/product"
	"github.com/xenking/pos-terminal/internal/domain/sale"
	"github.com/xenking/pos-terminal/internal/domain/terminal"
	"github.com/xenking/pos-terminal/internal/domain/ticket"
)

// Handler serves the catalog, terminal and sales endpoints.
type Handler struct {
	products  product.Repository
	clients   client.Directory
	terminals *terminal.Registry
	places    int32
	now       func() time.Time
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Repository,
	clients client.Directory,
	terminals *terminal.Registry,
) *Handler {
	return &Handler{
		products:  products,
		clients:   clients,
		terminals: terminals,
		places:    terminals.Policy().Places,
		now:       time.Now,
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.SearchProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /api/products/sku/{sku}", h.GetProductBySKU)
	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("GET /api/clients", h.ListClients)

	const t = "/api/terminals/{terminal}"
	mux.HandleFunc("GET "+t+"/ticket", h.GetTicket)
	mux.HandleFunc("DELETE "+t+"/ticket", h.ClearTicket)
	mux.HandleFunc("POST "+t+"/ticket/items", h.AddItem)
	mux.HandleFunc("PUT "+t+"/ticket/items/{id}", h.SetItemQuantity)
	mux.HandleFunc("PATCH "+t+"/ticket/items/{id}", h.IncrementItem)
	mux.HandleFunc("DELETE "+t+"/ticket/items/{id}", h.RemoveItem)
	mux.HandleFunc("PUT "+t+"/ticket/client", h.SetClient)
	mux.HandleFunc("PUT "+t+"/ticket/discount", h.SetDiscount)

	mux.HandleFunc("GET "+t+"/holds", h.ListHeld)
	mux.HandleFunc("POST "+t+"/holds", h.Hold)
	mux.HandleFunc("POST "+t+"/holds/{id}/resume", h.Resume)

	mux.HandleFunc("POST "+t+"/checkout", h.BeginCheckout)
	mux.HandleFunc("DELETE "+t+"/checkout", h.CancelCheckout)
	mux.HandleFunc("PUT "+t+"/checkout/tender", h.Tender)
	mux.HandleFunc("POST "+t+"/checkout/keypad", h.PressKey)
	mux.HandleFunc("POST "+t+"/checkout/finalize", h.Finalize)
	mux.HandleFunc("POST "+t+"/sale", h.NewSale)

	mux.HandleFunc("POST "+t+"/keys", h.Keys)

	mux.HandleFunc("GET /api/terminals", h.ListTerminals)

	mux.HandleFunc("GET /api/sales", h.ListSales)
	mux.HandleFunc("GET /api/sales/summary", h.SalesSummary)
	mux.HandleFunc("GET /api/sales/{id}", h.GetSale)
}

func (h *Handler) session(r *http.Request) (*terminal.Session, error) {
	return h.terminals.Session(r.PathValue("terminal"))
}

// badRequestError marks malformed request input.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	if err == nil {
		return nil
	}
	return &badRequestError{err: err}
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	var (
		badReq      *badRequestError
		heldMissing *ticket.HeldNotFoundError
		discount    *ticket.InvalidDiscountError
		funds       *checkout.InsufficientFundsError
	)
	switch {
	case errors.As(err, &badReq),
		errors.Is(err, terminal.ErrInvalidTerminal):
		return http.StatusBadRequest
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, client.ErrNotFound),
		errors.Is(err, sale.ErrNotFound),
		errors.As(err, &heldMissing):
		return http.StatusNotFound
	case errors.Is(err, terminal.ErrSettled),
		errors.Is(err, ticket.ErrTicketInProgress),
		errors.Is(err, checkout.ErrNotStarted),
		errors.Is(err, checkout.ErrAlreadySettled),
		errors.Is(err, checkout.ErrNotSettled),
		errors.Is(err, checkout.ErrTenderNotNeeded):
		return http.StatusConflict
	case errors.As(err, &discount),
		errors.As(err, &funds),
		errors.Is(err, ticket.ErrEmptyTicket),
		errors.Is(err, money.ErrOutOfRange),
		errors.Is(err, checkout.ErrNegativeTender),
		errors.Is(err, checkout.ErrUnknownMethod),
		errors.Is(err, checkout.ErrUnknownKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, terminal.ErrTooManyTerminals):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		msg = http.StatusText(status)
	}
	writeError(w, status, msg)
}
