package query

import (
	"context"
	"time"
)

// Result is a typed view of a Snapshot.
type Result[T any] struct {
	Data        T
	HasData     bool
	Status      Status
	Stale       bool
	Fetching    bool
	Placeholder bool
	Err         error
	UpdatedAt   time.Time
}

// Get reads key through c and asserts the payload to T.
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error), opts ...ReadOption) (Result[T], error) {
	snap, err := c.Read(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}, opts...)
	return resultOf[T](snap), err
}

func resultOf[T any](snap Snapshot) Result[T] {
	res := Result[T]{
		HasData:     snap.HasData,
		Status:      snap.Status,
		Stale:       snap.Stale,
		Fetching:    snap.Fetching,
		Placeholder: snap.Placeholder,
		Err:         snap.Err,
		UpdatedAt:   snap.UpdatedAt,
	}
	if v, ok := snap.Data.(T); ok {
		res.Data = v
	}
	return res
}
