package loginguard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGuard(maxFailures int) (*Guard, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	g := New(maxFailures, time.Minute, 5*time.Minute)
	g.now = clock.now
	return g, clock
}

func TestGuardOpensAfterMaxFailures(t *testing.T) {
	g, _ := newTestGuard(3)

	for i := 0; i < 2; i++ {
		assert.NoError(t, g.Allow("a@x.com"))
		g.Failure("a@x.com")
	}
	assert.NoError(t, g.Allow("a@x.com"))
	g.Failure("a@x.com")

	assert.ErrorIs(t, g.Allow("a@x.com"), ErrBlocked)
	assert.Equal(t, StateOpen, g.State("a@x.com"))
	assert.NoError(t, g.Allow("b@x.com"))
}

func TestGuardFailuresOutsideWindowExpire(t *testing.T) {
	g, clock := newTestGuard(3)

	g.Failure("a@x.com")
	g.Failure("a@x.com")
	clock.advance(2 * time.Minute)
	g.Failure("a@x.com")

	assert.NoError(t, g.Allow("a@x.com"))
	assert.Equal(t, StateClosed, g.State("a@x.com"))
}

func TestGuardHalfOpenAfterBlock(t *testing.T) {
	g, clock := newTestGuard(2)

	g.Failure("a@x.com")
	g.Failure("a@x.com")
	assert.ErrorIs(t, g.Allow("a@x.com"), ErrBlocked)

	clock.advance(5 * time.Minute)
	assert.NoError(t, g.Allow("a@x.com"))
	assert.Equal(t, StateHalfOpen, g.State("a@x.com"))

	// a failed trial reopens immediately
	g.Failure("a@x.com")
	assert.ErrorIs(t, g.Allow("a@x.com"), ErrBlocked)
}

func TestGuardSuccessResets(t *testing.T) {
	g, _ := newTestGuard(2)

	g.Failure("a@x.com")
	g.Success("a@x.com")
	g.Failure("a@x.com")

	assert.NoError(t, g.Allow("a@x.com"))
	assert.Equal(t, StateClosed, g.State("a@x.com"))
}

func TestGuardDisabled(t *testing.T) {
	g, _ := newTestGuard(0)

	for i := 0; i < 10; i++ {
		g.Failure("a@x.com")
	}
	assert.NoError(t, g.Allow("a@x.com"))
}

func TestGuardForgetsStaleKeys(t *testing.T) {
	g, clock := newTestGuard(3)

	for i := 0; i < 1000; i++ {
		g.Failure(fmt.Sprintf("user%d@x.com", i))
	}
	assert.Len(t, g.breakers, 1000)

	clock.advance(24 * time.Hour)
	g.Failure("late@x.com")
	assert.Len(t, g.breakers, 1)
}

func TestGuardKeepsOpenBreakerUntilBlockPasses(t *testing.T) {
	g, clock := newTestGuard(2)

	g.Failure("a@x.com")
	g.Failure("a@x.com")

	clock.advance(2 * time.Minute)
	g.Failure("b@x.com")
	assert.ErrorIs(t, g.Allow("a@x.com"), ErrBlocked)

	clock.advance(10 * time.Minute)
	g.Failure("b@x.com")
	assert.Equal(t, StateClosed, g.State("a@x.com"))
	assert.NoError(t, g.Allow("a@x.com"))
}
