// Package terminal runs the sale workflow of point-of-sale terminals: one
// Session per terminal combining the ticket, held tickets, checkout and the
// scanner input.
package terminal

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/client"
	"github.com/xenking/pos-terminal/internal/domain/product"
	"github.com/xenking/pos-terminal/internal/domain/sale"
	"github.com/xenking/pos-terminal/internal/domain/ticket"
)

// Registry errors.
var (
	ErrInvalidTerminal  = errors.New("invalid terminal id")
	ErrTooManyTerminals = errors.New("too many active terminals")
)

const maxTerminalIDLen = 64

// Session limits used when Options leave them unset.
const (
	DefaultMaxSessions = 256
	DefaultIdleAfter   = 15 * time.Minute
)

// Options tune a Registry. Zero values select defaults.
type Options struct {
	// Policy prices every ticket; nil selects ticket.DefaultPolicy.
	Policy  *ticket.Policy
	ScanGap time.Duration

	// MaxSessions caps the number of live sessions. When it is reached, the
	// least recently used session that is idle and holds no work is dropped.
	MaxSessions int
	// IdleAfter is how long a session must be unused before it can be dropped.
	IdleAfter time.Duration

	Now   func() time.Time
	NewID func() string

	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Registry owns the sessions of every terminal.
type Registry struct {
	products product.Repository
	clients  client.Directory
	sales    sale.Repository

	policy      ticket.Policy
	scanGap     time.Duration
	maxSessions int
	idleAfter   time.Duration
	now         func() time.Time
	newID       func() string
	metrics     *metrics
	tracer      trace.Tracer

	mu       sync.Mutex
	sessions map[string]*entry
}

// entry is a live session and its last use. Guarded by Registry.mu.
type entry struct {
	s        *Session
	lastUsed time.Time
}

// NewRegistry creates a Registry with the required domain dependencies.
func NewRegistry(
	products product.Repository,
	clients client.Directory,
	sales sale.Repository,
	opts Options,
) (*Registry, error) {
	policy := ticket.DefaultPolicy
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	if err := policy.Validate(); err != nil {
		return nil, errors.Wrap(err, "pricing policy")
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.IdleAfter <= 0 {
		opts.IdleAfter = DefaultIdleAfter
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = metricnoop.NewMeterProvider()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = tracenoop.NewTracerProvider()
	}

	m, err := newMetrics(opts.MeterProvider.Meter("pos/terminal"))
	if err != nil {
		return nil, errors.Wrap(err, "metrics")
	}

	return &Registry{
		products: products,
		clients:  clients,
		sales:    sales,
		policy:      policy,
		scanGap:     opts.ScanGap,
		maxSessions: opts.MaxSessions,
		idleAfter:   opts.IdleAfter,
		now:         opts.Now,
		newID:       opts.NewID,
		metrics:     m,
		tracer:      opts.TracerProvider.Tracer("pos/terminal"),
		sessions:    make(map[string]*entry),
	}, nil
}

// Policy returns the pricing policy shared by all sessions.
func (r *Registry) Policy() ticket.Policy { return r.policy }

// Sales returns the journal of completed sales.
func (r *Registry) Sales() sale.Repository { return r.sales }

// Session returns the session of terminal id, creating it on first use.
func (r *Registry) Session(id string) (*Session, error) {
	if !validTerminalID(id) {
		return nil, errors.Wrapf(ErrInvalidTerminal, "%q", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.sessions[id]; ok {
		e.lastUsed = now
		return e.s, nil
	}
	if len(r.sessions) >= r.maxSessions && !r.evictLocked(now) {
		return nil, errors.Wrapf(ErrTooManyTerminals, "limit %d", r.maxSessions)
	}
	s := newSession(id, r)
	r.sessions[id] = &entry{s: s, lastUsed: now}
	return s, nil
}

// evictLocked drops the least recently used session that has been idle for
// idleAfter and has no items, holds or pending payment. Callers hold mu.
func (r *Registry) evictLocked(now time.Time) bool {
	var (
		victim string
		oldest time.Time
	)
	for id, e := range r.sessions {
		if now.Sub(e.lastUsed) < r.idleAfter {
			continue
		}
		if victim != "" && !e.lastUsed.Before(oldest) {
			continue
		}
		if !e.s.disposable() {
			continue
		}
		victim, oldest = id, e.lastUsed
	}
	if victim == "" {
		return false
	}
	delete(r.sessions, victim)
	return true
}

// Summary describes a live terminal session.
type Summary struct {
	ID       string
	Items    int
	Held     int
	State    checkout.State
	LastUsed time.Time
}

// Terminals summarizes the live sessions ordered by terminal id.
func (r *Registry) Terminals() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Summary, 0, len(r.sessions))
	for id, e := range r.sessions {
		sum := e.s.summary()
		sum.ID = id
		sum.LastUsed = e.lastUsed
		out = append(out, sum)
	}
	slices.SortFunc(out, func(a, b Summary) int { return strings.Compare(a.ID, b.ID) })
	return out
}

func validTerminalID(id string) bool {
	if id == "" || len(id) > maxTerminalIDLen {
		return false
	}
	for i := range len(id) {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
