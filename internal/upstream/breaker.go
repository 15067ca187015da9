// Package upstream guards outbound calls to external services with a circuit
// breaker and a per-call deadline.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"cinemuse/internal/failure"
	"cinemuse/internal/metrics"
)

// Settings configures a Breaker. Zero values fall back to the defaults below.
type Settings struct {
	// Timeout is the per-call deadline. Zero disables it.
	Timeout time.Duration
	// MinRequests and FailureRatio decide when the circuit opens.
	MinRequests  uint32
	FailureRatio float64
	// OpenTimeout is how long the circuit stays open before probing again.
	OpenTimeout time.Duration
}

const (
	defaultMinRequests  = 10
	defaultFailureRatio = 0.6
	defaultOpenTimeout  = 30 * time.Second
)

// Breaker wraps calls to one external service. It never retries.
type Breaker struct {
	name    string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[any]
}

// NewBreaker creates a breaker named after the service it protects.
func NewBreaker(name string, s Settings) *Breaker {
	minRequests := s.MinRequests
	if minRequests == 0 {
		minRequests = defaultMinRequests
	}
	ratio := s.FailureRatio
	if ratio <= 0 {
		ratio = defaultFailureRatio
	}
	openTimeout := s.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = defaultOpenTimeout
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= ratio
		},
		// Outcomes that say nothing about the service's health do not count against it.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			switch failure.KindOf(err) {
			case failure.NotFound, failure.SchemaViolation, failure.InputValidation:
				return true
			}
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[upstream] circuit %s: %s -> %s", name, from, to)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Breaker{name: name, timeout: s.Timeout, cb: cb}
}

// Name returns the service name the breaker guards.
func (b *Breaker) Name() string {
	return b.name
}

// State reports the current circuit state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Execute runs fn under the breaker and the per-call deadline. Open-circuit
// rejections and expired deadlines come back as TransportFailure.
func Execute[T any](ctx context.Context, b *Breaker, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if b == nil {
		return fn(ctx)
	}

	callCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	result, err := b.cb.Execute(func() (any, error) {
		v, err := fn(callCtx)
		if err != nil && callCtx.Err() != nil && failure.KindOf(err) == failure.Unknown {
			err = failure.Transport(op, callCtx.Err())
		}
		return v, err
	})
	metrics.ObserveUpstream(b.name, err)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, &failure.Error{Kind: failure.TransportFailure, Op: op, Err: fmt.Errorf("%s unavailable: %w", b.name, err)}
		}
		return zero, failure.Transport(op, err)
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", op, result)
	}
	return typed, nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
