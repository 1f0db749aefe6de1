package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrOpen is returned without calling fn while the breaker is open or the
// half-open probe budget is used up.
var ErrOpen = errors.New("circuit breaker is open")

type State = gobreaker.State

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

type Settings struct {
	Name string
	// MaxRequests is the number of probes allowed through while half-open.
	MaxRequests uint32
	// Interval is the closed-state window after which failure counts reset.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker. Defaults to 5.
	ConsecutiveFailures uint32
	OnStateChange       func(name string, from, to State)
}

type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	threshold := settings.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	if settings.MaxRequests == 0 {
		settings.MaxRequests = 1
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: settings.OnStateChange,
	})}
}

// Execute runs fn unless the breaker is open.
func (c *CircuitBreaker) Execute(fn func() error) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrOpen
	}
	return err
}

func (c *CircuitBreaker) Name() string { return c.cb.Name() }

func (c *CircuitBreaker) State() State { return c.cb.State() }
