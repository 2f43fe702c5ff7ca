package query

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const maxRetryInterval = 30 * time.Second

// fetchWithRetry runs fetch with exponential backoff. Failures rejected by
// RetryIf are returned on the first attempt.
func (c *Cache) fetchWithRetry(ctx context.Context, fetch Fetcher) (any, error) {
	if c.opts.Retry <= 0 {
		return fetch(ctx)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.RetryDelay
	b.MaxInterval = maxRetryInterval

	data, err := backoff.Retry[any](ctx, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil && c.opts.RetryIf != nil && !c.opts.RetryIf(err) {
			return nil, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(c.opts.Retry+1)))

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	return data, err
}
