package client

import (
	"context"
	"time"
)

// DefaultPollInterval matches the web client's refresh cadence
const DefaultPollInterval = 3 * time.Second

// Poll calls fetch immediately and then every interval until ctx is done.
// Errors go to onError and polling continues; there is no backoff.
func Poll[T any](ctx context.Context, interval time.Duration, fetch func(context.Context) (T, error), onUpdate func(T), onError func(error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		v, err := fetch(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			if onError != nil {
				onError(err)
			}
		default:
			onUpdate(v)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
