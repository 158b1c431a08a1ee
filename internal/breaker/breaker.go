// Package breaker implements a shared, Redis-backed circuit breaker.
// State lives in internal/cache so every replica of every service
// observes the same breaker for a given resource name.
package breaker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/iamprecieee/distributed-notification-system/internal/cache"
)

type State string

const (
	Closed   State = "closed"
	Open     State = "open"
	HalfOpen State = "half_open"
)

func stateFromString(s string) State {
	switch s {
	case string(Open):
		return Open
	case string(HalfOpen):
		return HalfOpen
	default:
		return Closed
	}
}

type Config struct {
	FailureThreshold int
	Timeout          time.Duration
	SuccessThreshold int
}

func DefaultConfig() Config {
	return Config{FailureThreshold: 5, Timeout: 30 * time.Second, SuccessThreshold: 2}
}

type Breaker struct {
	cache *cache.Client
	cfg   Config
}

func New(c *cache.Client, cfg Config) *Breaker {
	return &Breaker{cache: c, cfg: cfg}
}

type Status struct {
	State       State
	Failures    int
	NextAttempt time.Time
}

func stateKey(resource string) string    { return fmt.Sprintf("circuit:%s:state", resource) }
func failuresKey(resource string) string { return fmt.Sprintf("circuit:%s:failures", resource) }
func successKey(resource string) string  { return fmt.Sprintf("circuit:%s:successes", resource) }
func openedAtKey(resource string) string { return fmt.Sprintf("circuit:%s:opened_at", resource) }

func (b *Breaker) getState(ctx context.Context, resource string) State {
	v, err := b.cache.Get(ctx, stateKey(resource))
	if err != nil {
		return Closed
	}
	return stateFromString(string(v))
}

func (b *Breaker) setState(ctx context.Context, resource string, s State) error {
	ttl := b.cfg.Timeout + 60*time.Second
	return b.cache.Set(ctx, stateKey(resource), []byte(s), ttl)
}

// Allow reports whether a call against resource may proceed, lazily
// transitioning OPEN -> HALF_OPEN when the timeout has elapsed.
func (b *Breaker) Allow(ctx context.Context, resource string) bool {
	switch b.getState(ctx, resource) {
	case Open:
		if b.shouldAttemptReset(ctx, resource) {
			_ = b.setState(ctx, resource, HalfOpen)
			return true
		}
		return false
	default:
		return true
	}
}

func (b *Breaker) shouldAttemptReset(ctx context.Context, resource string) bool {
	v, err := b.cache.Get(ctx, openedAtKey(resource))
	if err != nil {
		return false
	}
	openedAt, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return false
	}
	elapsed := time.Since(time.Unix(openedAt, 0))
	return elapsed >= b.cfg.Timeout
}

func (b *Breaker) setOpenedAt(ctx context.Context, resource string) {
	ttl := b.cfg.Timeout + 60*time.Second
	_ = b.cache.Set(ctx, openedAtKey(resource), []byte(strconv.FormatInt(time.Now().Unix(), 10)), ttl)
}

// RecordSuccess applies the per-state success policy: CLOSED clears
// the failure counter; HALF_OPEN increments the success counter and
// closes once successThreshold is reached.
func (b *Breaker) RecordSuccess(ctx context.Context, resource string) {
	switch b.getState(ctx, resource) {
	case HalfOpen:
		n, err := b.cache.Incr(ctx, successKey(resource))
		if err != nil {
			return
		}
		_ = b.cache.Expire(ctx, successKey(resource), b.cfg.Timeout+60*time.Second)
		if int(n) >= b.cfg.SuccessThreshold {
			_ = b.setState(ctx, resource, Closed)
			b.resetCounters(ctx, resource)
		}
	case Closed:
		_ = b.cache.Delete(ctx, failuresKey(resource))
	}
	// OPEN: success while open is not a reachable path since Allow
	// short-circuits the call before the caller could report one.
}

// RecordFailure applies the noise-suppression and escalation policy:
// failures recorded while OPEN do not increment the counter; HALF_OPEN
// reopens immediately on any failure.
func (b *Breaker) RecordFailure(ctx context.Context, resource string) {
	switch b.getState(ctx, resource) {
	case HalfOpen:
		_ = b.setState(ctx, resource, Open)
		b.setOpenedAt(ctx, resource)
		return
	case Open:
		return
	}

	n, err := b.cache.Incr(ctx, failuresKey(resource))
	if err != nil {
		return
	}
	_ = b.cache.Expire(ctx, failuresKey(resource), b.cfg.Timeout+60*time.Second)
	if int(n) >= b.cfg.FailureThreshold {
		_ = b.setState(ctx, resource, Open)
		b.setOpenedAt(ctx, resource)
	}
}

func (b *Breaker) resetCounters(ctx context.Context, resource string) {
	_ = b.cache.Delete(ctx, failuresKey(resource), successKey(resource), openedAtKey(resource))
}

// Status reports the current state for health checks and diagnostics.
func (b *Breaker) Status(ctx context.Context, resource string) Status {
	state := b.getState(ctx, resource)
	failures := 0
	if v, err := b.cache.Get(ctx, failuresKey(resource)); err == nil {
		failures, _ = strconv.Atoi(string(v))
	}
	var next time.Time
	if v, err := b.cache.Get(ctx, openedAtKey(resource)); err == nil {
		if openedAt, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			next = time.Unix(openedAt, 0).Add(b.cfg.Timeout)
		}
	}
	return Status{State: state, Failures: failures, NextAttempt: next}
}

// Call wraps operation with the breaker: if Allow denies the call,
// ErrOpen is returned without invoking operation. Otherwise the result
// of operation determines RecordSuccess/RecordFailure.
func (b *Breaker) Call(ctx context.Context, resource string, operation func() error) error {
	if !b.Allow(ctx, resource) {
		return ErrOpen{Resource: resource}
	}
	if err := operation(); err != nil {
		b.RecordFailure(ctx, resource)
		return err
	}
	b.RecordSuccess(ctx, resource)
	return nil
}

type ErrOpen struct {
	Resource string
}

func (e ErrOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for %s", e.Resource)
}
