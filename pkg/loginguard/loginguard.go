// Package loginguard throttles repeated failed logins per account. Each key
// gets its own breaker: failures inside the window open it, and an open
// breaker refuses attempts until the block period has passed.
package loginguard

import (
	"errors"
	"sync"
	"time"
)

var ErrBlocked = errors.New("too many failed login attempts")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

type breaker struct {
	failures    []time.Time
	state       State
	lastFailure time.Time
}

type Guard struct {
	maxFailures int
	window      time.Duration
	block       time.Duration
	now         func() time.Time

	mu        sync.Mutex
	breakers  map[string]*breaker
	lastSweep time.Time
}

// New returns a guard that blocks a key once maxFailures failures land inside
// window. A non-positive maxFailures disables blocking.
func New(maxFailures int, window, block time.Duration) *Guard {
	return &Guard{
		maxFailures: maxFailures,
		window:      window,
		block:       block,
		now:         time.Now,
		breakers:    make(map[string]*breaker),
	}
}

// Allow reports ErrBlocked while the key's breaker is open. After the block
// period one trial attempt is let through.
func (g *Guard) Allow(key string) error {
	if g.maxFailures <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.sweep(now)
	b, ok := g.breakers[key]
	if !ok || b.state != StateOpen {
		return nil
	}
	if now.Sub(b.lastFailure) >= g.block {
		b.state = StateHalfOpen
		b.failures = b.failures[:0]
		return nil
	}
	return ErrBlocked
}

func (g *Guard) Failure(key string) {
	if g.maxFailures <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.sweep(now)
	b, ok := g.breakers[key]
	if !ok {
		b = &breaker{}
		g.breakers[key] = b
	}
	b.lastFailure = now
	b.failures = append(b.failures, now)
	b.failures = pruneBefore(b.failures, now.Add(-g.window))

	if len(b.failures) >= g.maxFailures || b.state == StateHalfOpen {
		b.state = StateOpen
	}
}

// Success forgets the key's history.
func (g *Guard) Success(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.breakers, key)
}

func (g *Guard) State(key string) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.breakers[key]; ok {
		return b.state
	}
	return StateClosed
}

// sweep drops breakers with nothing left to remember: closed ones whose last
// failure is outside the window, and open or half-open ones whose block and a
// further window have passed. It scans the map at most once per window.
func (g *Guard) sweep(now time.Time) {
	if now.Sub(g.lastSweep) < g.window {
		return
	}
	g.lastSweep = now
	for key, b := range g.breakers {
		ttl := g.window
		if b.state != StateClosed {
			ttl += g.block
		}
		if now.Sub(b.lastFailure) >= ttl {
			delete(g.breakers, key)
		}
	}
}

func pruneBefore(failures []time.Time, cutoff time.Time) []time.Time {
	for i, f := range failures {
		if f.After(cutoff) {
			return failures[i:]
		}
	}
	return failures[:0]
}
