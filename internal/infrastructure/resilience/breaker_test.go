package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(settings Settings) (*Breaker, *clock) {
	c := &clock{t: time.Unix(0, 0)}
	b := New("cdn", settings)
	b.now = c.now
	return b, c
}

func fail(context.Context) error    { return errUpstream }
func succeed(context.Context) error { return nil }

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		calls    []func(context.Context) error
		expected State
	}{
		{name: "stays closed on successes", calls: []func(context.Context) error{succeed, succeed}, expected: StateClosed},
		{name: "opens at threshold", calls: []func(context.Context) error{fail, fail, fail}, expected: StateOpen},
		{name: "success resets failures", calls: []func(context.Context) error{fail, fail, succeed, fail}, expected: StateClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBreaker(Settings{FailureThreshold: 3, Cooldown: time.Minute})
			for _, call := range tt.calls {
				_ = b.Do(context.Background(), call)
			}
			assert.Equal(t, tt.expected, b.State())
		})
	}
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	b, _ := newTestBreaker(Settings{FailureThreshold: 1, Cooldown: time.Minute})
	require.ErrorIs(t, b.Do(context.Background(), fail), errUpstream)

	called := false
	err := b.Do(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerProbe(t *testing.T) {
	var transitions []string
	b, c := newTestBreaker(Settings{
		FailureThreshold: 1,
		Cooldown:         time.Second,
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+">"+to.String())
		},
	})

	_ = b.Do(context.Background(), fail)
	c.advance(time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	_ = b.Do(context.Background(), fail)
	assert.Equal(t, StateOpen, b.State())

	c.advance(time.Second)
	require.NoError(t, b.Do(context.Background(), succeed))
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{
		"closed>open", "open>half-open", "half-open>open",
		"open>half-open", "half-open>closed",
	}, transitions)
}

func TestBreakerIgnoresExpectedErrors(t *testing.T) {
	notFound := errors.New("not found")
	b, _ := newTestBreaker(Settings{
		FailureThreshold: 1,
		IsFailure:        func(err error) bool { return !errors.Is(err, notFound) },
	})

	assert.ErrorIs(t, b.Do(context.Background(), func(context.Context) error { return notFound }), notFound)
	assert.Equal(t, StateClosed, b.State())

	assert.ErrorIs(t, b.Do(context.Background(), func(context.Context) error { return context.Canceled }), context.Canceled)
	assert.Equal(t, StateOpen, b.State())
}
