package ratelimit

import (
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move window time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(quotas map[string]Quota) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(quotas)
	l.now = clock.Now
	return l, clock
}

func TestAdmitWithinQuota(t *testing.T) {
	l, _ := newTestLimiter(map[string]Quota{RouteChat: {MaxRequests: 3, Window: time.Minute}})

	for i := 0; i < 3; i++ {
		if d := l.Admit(RouteChat, "user-1"); !d.Allowed {
			t.Fatalf("request %d rejected, want admitted", i+1)
		}
	}
}

func TestAdmitRejectsOverQuota(t *testing.T) {
	l, _ := newTestLimiter(DefaultQuotas())

	for i := 0; i < 20; i++ {
		if d := l.Admit(RouteChat, "user-1"); !d.Allowed {
			t.Fatalf("request %d rejected within quota", i+1)
		}
	}

	d := l.Admit(RouteChat, "user-1")
	if d.Allowed {
		t.Fatal("21st request admitted, want rejected")
	}
	if d.RetryAfterSeconds < 1 || d.RetryAfterSeconds > 60 {
		t.Errorf("RetryAfterSeconds = %d, want within (0, 60]", d.RetryAfterSeconds)
	}
}

func TestAdmitNewWindowAfterExpiry(t *testing.T) {
	l, clock := newTestLimiter(DefaultQuotas())

	for i := 0; i < 20; i++ {
		l.Admit(RouteChat, "user-1")
	}
	if d := l.Admit(RouteChat, "user-1"); d.Allowed {
		t.Fatal("over-quota request admitted")
	}

	clock.Advance(time.Minute)

	if d := l.Admit(RouteChat, "user-1"); !d.Allowed {
		t.Fatal("request after window expiry rejected, want admitted")
	}
}

func TestAdmitClientsIndependent(t *testing.T) {
	l, _ := newTestLimiter(map[string]Quota{RouteCheckout: {MaxRequests: 3, Window: time.Minute}})

	for i := 0; i < 3; i++ {
		l.Admit(RouteCheckout, "user-1")
	}
	if d := l.Admit(RouteCheckout, "user-1"); d.Allowed {
		t.Fatal("user-1 over-quota request admitted")
	}

	if d := l.Admit(RouteCheckout, "user-2"); !d.Allowed {
		t.Fatal("user-2 first request rejected, want admitted")
	}
}

func TestAdmitRoutesIndependent(t *testing.T) {
	l, _ := newTestLimiter(DefaultQuotas())

	for i := 0; i < 5; i++ {
		l.Admit(RouteTranscription, "user-1")
	}
	if d := l.Admit(RouteTranscription, "user-1"); d.Allowed {
		t.Fatal("transcription over-quota request admitted")
	}

	if d := l.Admit(RouteChat, "user-1"); !d.Allowed {
		t.Fatal("chat request rejected after transcription exhaustion")
	}
}

func TestAdmitUnknownRouteAlwaysAllowed(t *testing.T) {
	l, _ := newTestLimiter(DefaultQuotas())

	for i := 0; i < 100; i++ {
		if d := l.Admit("health", "user-1"); !d.Allowed {
			t.Fatal("unconfigured route rejected")
		}
	}
}

func TestRetryAfterShrinksWithTime(t *testing.T) {
	l, clock := newTestLimiter(map[string]Quota{RouteChat: {MaxRequests: 1, Window: time.Minute}})

	l.Admit(RouteChat, "user-1")

	first := l.Admit(RouteChat, "user-1")
	if first.Allowed {
		t.Fatal("second request admitted")
	}
	if first.RetryAfterSeconds != 60 {
		t.Errorf("RetryAfterSeconds = %d, want 60", first.RetryAfterSeconds)
	}

	clock.Advance(45 * time.Second)

	later := l.Admit(RouteChat, "user-1")
	if later.Allowed {
		t.Fatal("request admitted mid-window")
	}
	if later.RetryAfterSeconds != 15 {
		t.Errorf("RetryAfterSeconds = %d, want 15", later.RetryAfterSeconds)
	}
}

func TestSweepDropsExpiredWindows(t *testing.T) {
	l, clock := newTestLimiter(DefaultQuotas())

	l.Admit(RouteChat, "user-1")
	l.Admit(RouteChat, "user-2")
	l.Admit(RouteTranscription, "user-1")

	clock.Advance(2 * time.Minute)
	l.sweep()

	l.mu.Lock()
	remaining := len(l.windows)
	l.mu.Unlock()

	if remaining != 0 {
		t.Errorf("windows remaining after sweep = %d, want 0", remaining)
	}
}

func TestAdmitConcurrent(t *testing.T) {
	l, _ := newTestLimiter(map[string]Quota{RouteChat: {MaxRequests: 50, Window: time.Minute}})

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d := l.Admit(RouteChat, "user-1"); d.Allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 50 {
		t.Errorf("admitted = %d, want exactly 50", admitted)
	}
}
