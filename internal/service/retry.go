package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"docrev/internal/repository"
)

// conflictRetryDelay is the pause before the single retry of a conflicting transaction.
var conflictRetryDelay = 20 * time.Millisecond

// withConflictRetry runs fn and, if it fails with repository.ErrConflict,
// runs it exactly once more. A second conflict becomes ErrConflict.
func withConflictRetry(ctx context.Context, log zerolog.Logger, op string, fn func() error) error {
	err := retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(conflictRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, repository.ErrConflict)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().
				Str("event", "tx_conflict_retry").
				Str("op", op).
				Uint("attempt", n+1).
				Err(err).
				Msg("")
		}),
	)
	if errors.Is(err, repository.ErrConflict) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
