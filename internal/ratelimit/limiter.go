// Package ratelimit implements per-client fixed-window admission
// control for the API routes. Windows live in process memory; state
// does not survive a restart and is not shared across replicas.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Route names used as quota keys. Handlers pass these to Admit.
const (
	RouteChat          = "chat"
	RouteTranscription = "transcription"
	RouteCheckout      = "checkout"
)

const defaultSweepInterval = time.Minute

// Quota is the admission budget for one route.
type Quota struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultQuotas returns the per-route budgets. Transcription and
// checkout are priced per call upstream, so their budgets are much
// tighter than chat.
func DefaultQuotas() map[string]Quota {
	return map[string]Quota{
		RouteChat:          {MaxRequests: 20, Window: time.Minute},
		RouteTranscription: {MaxRequests: 5, Window: time.Minute},
		RouteCheckout:      {MaxRequests: 3, Window: time.Minute},
	}
}

// Decision is the outcome of one admission check. RetryAfterSeconds is
// only meaningful when Allowed is false and is always at least 1.
type Decision struct {
	Allowed           bool
	RetryAfterSeconds int
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter tracks fixed windows per route and client. All methods are
// safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	quotas  map[string]Quota

	now        func() time.Time
	sweepEvery time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewLimiter creates a limiter with the given quotas. The sweep
// goroutine is not started; call Start when the limiter serves live
// traffic.
func NewLimiter(quotas map[string]Quota) *Limiter {
	return &Limiter{
		windows:    make(map[string]*window),
		quotas:     quotas,
		now:        time.Now,
		sweepEvery: defaultSweepInterval,
		stopCh:     make(chan struct{}),
	}
}

// Admit records one request for the client on the route and reports
// whether it fits the route's quota. Routes with no configured quota
// are always admitted. Decisions for distinct clients are independent;
// one client exhausting its budget never affects another.
func (l *Limiter) Admit(route, clientKey string) Decision {
	quota, ok := l.quotas[route]
	if !ok {
		return Decision{Allowed: true}
	}

	key := fmt.Sprintf("%s|%s", route, clientKey)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(quota.Window)}
		return Decision{Allowed: true}
	}

	if w.count >= quota.MaxRequests {
		retry := int(math.Ceil(w.resetAt.Sub(now).Seconds()))
		if retry < 1 {
			retry = 1
		}
		return Decision{Allowed: false, RetryAfterSeconds: retry}
	}

	w.count++
	return Decision{Allowed: true}
}

// Start launches the background sweep that drops expired windows so
// the map does not grow with every client ever seen.
func (l *Limiter) Start() {
	go func() {
		ticker := time.NewTicker(l.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.sweep()
			case <-l.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the sweep goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Limiter) sweep() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
}
