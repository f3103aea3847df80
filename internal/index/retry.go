package index

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/roach88/fanling-index/internal/model"
)

// DefaultRetryMaxElapsed bounds how long a mutation keeps retrying a busy
// database.
const DefaultRetryMaxElapsed = 2 * time.Second

// Retry runs op until it succeeds, returns a non-transient error, or
// maxElapsed has passed. Only STORE_IO_FAILURE is retried; structural
// errors such as DUPLICATE_RELATION are returned immediately. A
// non-positive maxElapsed runs op once.
func Retry(ctx context.Context, maxElapsed time.Duration, op func() error) error {
	if maxElapsed <= 0 {
		return op()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !model.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}
