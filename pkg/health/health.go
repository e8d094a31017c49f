// Package health serves liveness and readiness probes.
//
// Probes run in the background. A probe turns unhealthy after Threshold
// consecutive failures and healthy again on the first success.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// DefaultThreshold is the number of consecutive failures that mark a probe
// unhealthy.
const DefaultThreshold = 3

// CheckFunc reports the health of one component.
type CheckFunc func(ctx context.Context) error

type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[string]

	// Only touched by the probe goroutine.
	fails int
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	p := &probe{name: name, timeout: timeout, check: check}
	p.healthy.Store(true)
	return p
}

func (p *probe) run(ctx context.Context, threshold int) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.check(ctx); err != nil {
		msg := err.Error()
		p.lastErr.Store(&msg)
		p.fails++
		if p.fails >= threshold {
			p.healthy.Store(false)
		}
		return
	}
	p.lastErr.Store(nil)
	p.fails = 0
	p.healthy.Store(true)
}

func (p *probe) failure() (string, bool) {
	if p.healthy.Load() {
		return "", false
	}
	if msg := p.lastErr.Load(); msg != nil {
		return *msg, true
	}
	return "unhealthy", true
}

// Health aggregates probes. It starts not ready.
type Health struct {
	threshold int
	ready     atomic.Bool

	mu     sync.Mutex
	live   []*probe
	readyP []*probe
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Health that uses DefaultThreshold.
func New() *Health {
	return &Health{threshold: DefaultThreshold}
}

// AddLivenessCheck registers a check that tells whether the process works.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.live = append(h.live, newProbe(name, timeout, check))
}

// AddReadinessCheck registers a check that tells whether traffic can be served.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readyP = append(h.readyP, newProbe(name, timeout, check))
}

// Start runs every registered probe each interval until Stop or ctx ends.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return
	}
	ctx, h.cancel = context.WithCancel(ctx)
	for _, p := range slices.Concat(h.live, h.readyP) {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			h.loop(ctx, p, interval)
		}()
	}
}

func (h *Health) loop(ctx context.Context, p *probe, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		p.run(ctx, h.threshold)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the probe goroutines and waits for them. It is idempotent.
func (h *Health) Stop() {
	h.mu.Lock()
	cancel := h.cancel
	h.cancel = nil
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	h.wg.Wait()
}

// SetReady flips the manual readiness flag, e.g. false while draining.
func (h *Health) SetReady(ready bool) { h.ready.Store(ready) }

// IsReady reports the readiness flag combined with the readiness probes.
func (h *Health) IsReady() bool {
	return h.ready.Load() && len(h.failures(h.readinessProbes())) == 0
}

func (h *Health) livenessProbes() []*probe {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.live)
}

func (h *Health) readinessProbes() []*probe {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.readyP)
}

type failure struct {
	name string
	msg  string
}

func (h *Health) failures(probes []*probe) []failure {
	var out []failure
	for _, p := range probes {
		if msg, failed := p.failure(); failed {
			out = append(out, failure{name: p.name, msg: msg})
		}
	}
	return out
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, h.failures(h.livenessProbes()))
}

// ReadyEndpoint serves /readyz.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failed := h.failures(h.readinessProbes())
	if !h.ready.Load() {
		failed = append(failed, failure{name: "_readiness", msg: "service is not ready"})
	}
	writeStatus(w, failed)
}

// writeStatus responds 200 {"status":"ok"} or 503 with the failed checks.
func writeStatus(w http.ResponseWriter, failed []failure) {
	status, text := http.StatusOK, "ok"
	if len(failed) > 0 {
		status, text = http.StatusServiceUnavailable, "unhealthy"
	}
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.Str(text) })
		if len(failed) == 0 {
			return
		}
		e.Field("checks", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for _, f := range failed {
					e.Field(f.name, func(e *jx.Encoder) { e.Str(f.msg) })
				}
			})
		})
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = e.WriteTo(w)
}
