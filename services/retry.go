package services

import (
	"chat-relay/errors"
	"context"
	goerrors "errors"
	"time"
)

const (
	defaultConflictAttempts = 4
	conflictBackoff         = 5 * time.Millisecond
)

// retryOnConflict runs fn until it stops failing with a persistence conflict
// or attempts are exhausted; the last conflict is then returned.
func retryOnConflict(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if !goerrors.Is(err, errors.ErrPersistenceConflict) || attempt >= attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * conflictBackoff):
		}
	}
}
