package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(Settings{
		Name:                "redis-broker",
		Timeout:             time.Hour,
		ConsecutiveFailures: 2,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	boom := errors.New("connection refused")

	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(Settings{
		Name:                "redis-broker",
		Timeout:             10 * time.Millisecond,
		ConsecutiveFailures: 1,
	})
	_ = cb.Execute(func() error { return errors.New("down") })
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, "redis-broker", cb.Name())
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "x", Timeout: time.Hour, ConsecutiveFailures: 2})
	fail := func() error { return errors.New("x") }

	_ = cb.Execute(fail)
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(fail)
	assert.Equal(t, StateClosed, cb.State())
}
