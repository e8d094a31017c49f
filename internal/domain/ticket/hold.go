package ticket

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-terminal/internal/domain/client"
)

// HeldNotFoundError indicates a resume of an unknown or already resumed ticket.
type HeldNotFoundError struct {
	ID string
}

func (e *HeldNotFoundError) Error() string {
	return fmt.Sprintf("held ticket %s not found", e.ID)
}

// Held is an immutable snapshot of a parked ticket.
type Held struct {
	ID              string
	Items           []LineItem
	Client          *client.Client
	DiscountPercent decimal.Decimal
	Total           decimal.Decimal
	HeldAt          time.Time
}

func (h Held) clone() Held {
	h.Items = slices.Clone(h.Items)
	h.Client = cloneClient(h.Client)
	return h
}

// Holds is the list of parked tickets of one terminal, oldest first.
type Holds struct {
	held  []Held
	now   func() time.Time
	newID func() string
}

// NewHolds creates an empty list. Nil now and newID select the wall clock and
// random identifiers.
func NewHolds(now func() time.Time, newID func() string) *Holds {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = func() string { return "held-" + uuid.New().String() }
	}
	return &Holds{now: now, newID: newID}
}

// Hold snapshots t priced with p, appends it and clears t.
func (h *Holds) Hold(t *Ticket, p Policy) (Held, error) {
	if t.IsEmpty() {
		return Held{}, ErrEmptyTicket
	}
	held := Held{
		ID:              h.newID(),
		Items:           t.Items(),
		Client:          t.Client(),
		DiscountPercent: t.DiscountPercent(),
		Total:           p.Price(t).Total,
		HeldAt:          h.now(),
	}
	h.held = append(h.held, held)
	t.Clear()
	return held.clone(), nil
}

// List returns copies of the held tickets, oldest first.
func (h *Holds) List() []Held {
	out := make([]Held, len(h.held))
	for i, held := range h.held {
		out[i] = held.clone()
	}
	return out
}

// Len returns the number of held tickets.
func (h *Holds) Len() int { return len(h.held) }

// Resume moves the held ticket id into t. The entry is removed, so each held
// ticket resumes at most once. t must be empty.
func (h *Holds) Resume(id string, t *Ticket) (Held, error) {
	i := slices.IndexFunc(h.held, func(held Held) bool { return held.ID == id })
	if i < 0 {
		return Held{}, &HeldNotFoundError{ID: id}
	}
	if !t.IsEmpty() {
		return Held{}, ErrTicketInProgress
	}
	held := h.held[i]
	h.held = slices.Delete(h.held, i, i+1)

	t.Restore(held.Items, held.Client, held.DiscountPercent)
	return held.clone(), nil
}
