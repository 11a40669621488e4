package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrContextCanceled is returned when ctx ends while waiting between attempts
var ErrContextCanceled = errors.New("context canceled during retry")

// Config contains retry configuration
type Config struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// InitialInterval is the first backoff interval (default: 200ms)
	InitialInterval time.Duration
	// MaxInterval caps the backoff interval (default: 5s)
	MaxInterval time.Duration
	// Multiplier grows the interval after each retry (default: 2.0)
	Multiplier float64
	// JitterFactor in [0,1], e.g. 0.1 means ±10%
	JitterFactor float64
}

// DefaultConfig returns a short exponential backoff suited to request-path calls
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// Operation is the function to be retried
type Operation func(ctx context.Context) error

// PermanentError wraps an error that must not be retried
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent marks an error as permanent (not retryable)
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var perm *PermanentError
	return errors.As(err, &perm)
}

// Callback is invoked before each wait with the failed attempt number
type Callback func(attempt int, err error, wait time.Duration)

// Retrier runs operations with exponential backoff
type Retrier struct {
	config   *Config
	callback Callback
}

// New creates a Retrier, filling zero values with defaults
func New(config *Config) *Retrier {
	def := DefaultConfig()
	if config == nil {
		config = def
	}
	cfg := *config
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = def.Multiplier
	}
	cfg.JitterFactor = math.Max(0, math.Min(1, cfg.JitterFactor))
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Retrier{config: &cfg}
}

// OnRetry registers a callback and returns the retrier
func (r *Retrier) OnRetry(cb Callback) *Retrier {
	r.callback = cb
	return r
}

// Do runs op until it succeeds, returns a permanent error, or retries run out.
// The last error is returned unwrapped from any PermanentError.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrContextCanceled, lastErrOr(lastErr, err))
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var perm *PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}
		if attempt == r.config.MaxRetries {
			break
		}

		wait := r.interval(attempt)
		if r.callback != nil {
			r.callback(attempt+1, err, wait)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrContextCanceled, lastErr)
		case <-time.After(wait):
		}
	}
	return lastErr
}

func (r *Retrier) interval(attempt int) time.Duration {
	interval := float64(r.config.InitialInterval) * math.Pow(r.config.Multiplier, float64(attempt))

	if r.config.JitterFactor > 0 {
		jitter := interval * r.config.JitterFactor
		interval += (rand.Float64()*2 - 1) * jitter
	}
	if interval > float64(r.config.MaxInterval) {
		interval = float64(r.config.MaxInterval)
	}
	if interval <= 0 {
		interval = float64(r.config.InitialInterval)
	}
	return time.Duration(interval)
}

func lastErrOr(last, fallback error) error {
	if last != nil {
		return last
	}
	return fallback
}
