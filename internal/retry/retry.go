package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/osse101/SpinVault_Go/internal/logger"
	"github.com/osse101/SpinVault_Go/internal/metrics"
)

// ReadCall is an idempotent read against a remote: a balance or account
// read, a blockhash fetch, a simulation or a confirmation poll. Sending a
// signed transaction is not a read and has no ReadCall form.
type ReadCall[T any] func(ctx context.Context) (T, error)

// Policy bounds the attempts and delays of Do
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable decides whether an error is worth another attempt. Nil
	// retries everything not marked Permanent.
	Retryable func(error) bool
}

// DefaultPolicy is used for reads when no policy is configured
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// WithRetryable returns a copy of p using classify
func (p Policy) WithRetryable(classify func(error) bool) Policy {
	p.Retryable = classify
	return p
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = BackoffMultiplier
	b.RandomizationFactor = BackoffJitter
	b.MaxElapsedTime = 0
	b.Reset()

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Permanent marks err so Do returns it without further attempts
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do runs call until it succeeds, returns a non-retryable error, or the
// policy's attempts are spent. The last error is returned unwrapped.
func Do[T any](ctx context.Context, p Policy, name string, call ReadCall[T]) (T, error) {
	log := logger.FromContext(ctx)
	attempt := 0

	op := func() (T, error) {
		attempt++
		v, err := call(ctx)
		if err == nil {
			return v, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	notify := func(err error, wait time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues(name).Inc()
		log.Debug(LogMsgRetrying, "operation", name, "attempt", attempt, "wait", wait, "error", err)
	}

	v, err := backoff.RetryNotifyWithData(op, p.backOff(ctx), notify)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
		if attempt > 1 {
			log.Warn(LogMsgAttemptsExhausted, "operation", name, "attempts", attempt, "error", err)
		}
		return v, err
	}
	return v, nil
}
