package explain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/aodacheck/report"
)

// Middleware wraps an Explainer, adding cross-cutting behaviour without
// changing the signature.
type Middleware func(next Explainer) Explainer

// Chain composes middlewares left-to-right: the first is the outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Explainer) Explainer {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// WithTimeout bounds every call. A zero duration disables the timeout.
func WithTimeout(d time.Duration) Middleware {
	return func(next Explainer) Explainer {
		return ExplainerFunc(func(ctx context.Context, req Request) (report.Explanation, error) {
			if d > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}
			return next.Explain(ctx, req)
		})
	}
}

// WithRetry retries failed calls with exponential backoff, respecting
// context cancellation between attempts. Open circuits and missing
// providers are not retried.
func WithRetry(maxRetries int, baseBackoff time.Duration, logger *slog.Logger) Middleware {
	return func(next Explainer) Explainer {
		return ExplainerFunc(func(ctx context.Context, req Request) (report.Explanation, error) {
			var lastErr error
			for attempt := 0; attempt <= maxRetries; attempt++ {
				exp, err := next.Explain(ctx, req)
				if err == nil {
					return exp, nil
				}
				lastErr = err

				if ctx.Err() != nil {
					return report.Explanation{}, lastErr
				}
				var open *ErrCircuitOpen
				if errors.As(err, &open) || errors.Is(err, ErrNoProvider) {
					return report.Explanation{}, err
				}

				if attempt < maxRetries {
					wait := baseBackoff * (1 << uint(attempt))
					if logger != nil {
						logger.WarnContext(ctx, "explain: retrying",
							"rule", req.RuleID,
							"attempt", attempt+1,
							"max_retries", maxRetries,
							"backoff_ms", wait.Milliseconds(),
							"error", err)
					}
					select {
					case <-ctx.Done():
						return report.Explanation{}, lastErr
					case <-time.After(wait):
					}
				}
			}
			return report.Explanation{}, lastErr
		})
	}
}

// ErrCircuitOpen is returned while the breaker rejects calls.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("explain: circuit open for %s", e.Service)
}

// BreakerState represents the circuit breaker state.
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // calls pass through
	BreakerOpen                         // calls rejected immediately
	BreakerHalfOpen                     // probe calls allowed
)

// CircuitBreaker stops hammering a failing AI service. Thread-safe.
type CircuitBreaker struct {
	mu           sync.Mutex
	state        BreakerState
	failures     int
	successes    int
	threshold    int
	resetTimeout time.Duration
	halfOpenMax  int
	lastFailure  time.Time
	now          func() time.Time
}

// BreakerOption configures a CircuitBreaker.
type BreakerOption func(*CircuitBreaker)

// WithBreakerThreshold sets the failure count that trips the breaker open.
func WithBreakerThreshold(n int) BreakerOption {
	return func(cb *CircuitBreaker) { cb.threshold = n }
}

// WithBreakerResetTimeout sets how long the breaker stays open.
func WithBreakerResetTimeout(d time.Duration) BreakerOption {
	return func(cb *CircuitBreaker) { cb.resetTimeout = d }
}

// WithBreakerClock sets the clock (tests).
func WithBreakerClock(fn func() time.Time) BreakerOption {
	return func(cb *CircuitBreaker) { cb.now = fn }
}

// NewCircuitBreaker creates a breaker: 5 failures to open, 30s before
// half-open, 2 successes to close.
func NewCircuitBreaker(opts ...BreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		state:        BreakerClosed,
		threshold:    5,
		resetTimeout: 30 * time.Second,
		halfOpenMax:  2,
		now:          time.Now,
	}
	for _, o := range opts {
		o(cb)
	}
	return cb
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeTransition()
	return cb.state
}

// Allow reports whether a call may proceed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeTransition()
	return cb.state != BreakerOpen
}

// RecordSuccess records a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case BreakerHalfOpen:
		cb.successes++
		if cb.successes >= cb.halfOpenMax {
			cb.state = BreakerClosed
			cb.failures = 0
			cb.successes = 0
		}
	case BreakerClosed:
		cb.failures = 0
	}
}

// RecordFailure records a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.lastFailure = cb.now()
	switch cb.state {
	case BreakerClosed:
		cb.failures++
		if cb.failures >= cb.threshold {
			cb.state = BreakerOpen
		}
	case BreakerHalfOpen:
		cb.state = BreakerOpen
		cb.successes = 0
	}
}

// must be called with mu held
func (cb *CircuitBreaker) maybeTransition() {
	if cb.state == BreakerOpen && cb.now().Sub(cb.lastFailure) >= cb.resetTimeout {
		cb.state = BreakerHalfOpen
		cb.successes = 0
	}
}

// WithCircuitBreaker rejects calls with ErrCircuitOpen while cb is open.
// Cancellation by the caller is not counted as a service failure.
func WithCircuitBreaker(cb *CircuitBreaker, service string) Middleware {
	return func(next Explainer) Explainer {
		return ExplainerFunc(func(ctx context.Context, req Request) (report.Explanation, error) {
			if !cb.Allow() {
				return report.Explanation{}, &ErrCircuitOpen{Service: service}
			}
			exp, err := next.Explain(ctx, req)
			switch {
			case err == nil:
				cb.RecordSuccess()
			case errors.Is(err, context.Canceled):
			default:
				cb.RecordFailure()
			}
			return exp, err
		})
	}
}

// ResilienceConfig tunes Resilient.
type ResilienceConfig struct {
	CallTimeout      time.Duration
	Retries          int
	Backoff          time.Duration
	BreakerThreshold int
	BreakerReset     time.Duration
	Service          string
	Logger           *slog.Logger
}

// Resilient wraps e with breaker, retry and per-call timeout, outermost
// first.
func Resilient(e Explainer, cfg ResilienceConfig) Explainer {
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	var opts []BreakerOption
	if cfg.BreakerThreshold > 0 {
		opts = append(opts, WithBreakerThreshold(cfg.BreakerThreshold))
	}
	if cfg.BreakerReset > 0 {
		opts = append(opts, WithBreakerResetTimeout(cfg.BreakerReset))
	}
	return Chain(
		WithCircuitBreaker(NewCircuitBreaker(opts...), cfg.Service),
		WithRetry(cfg.Retries, cfg.Backoff, cfg.Logger),
		WithTimeout(cfg.CallTimeout),
	)(e)
}
