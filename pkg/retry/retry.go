// Package retry provides a bounded retry helper with constant backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrExhausted is returned when the attempt budget is spent without success.
var ErrExhausted = errors.New("retry budget exhausted")

// Permanent wraps err so Do stops retrying immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op up to attempts times, waiting wait between attempts. It returns
// nil on the first success, the underlying error for permanent failures, and
// an ErrExhausted-wrapped error when the budget runs out.
func Do(ctx context.Context, attempts uint64, wait time.Duration, op func() error) error {
	if attempts == 0 {
		return ErrExhausted
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(wait), attempts-1),
		ctx,
	)

	err := backoff.Retry(op, b)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Unwrap()
	}
	return fmt.Errorf("%w: %v", ErrExhausted, err)
}
