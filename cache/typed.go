package cache

import (
	"context"
	"fmt"
)

// Get is Query with a typed fetcher.
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, Result, error) {
	res, err := c.Query(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	var zero T
	if res.Value == nil {
		return zero, res, err
	}
	v, ok := res.Value.(T)
	if !ok {
		return zero, res, fmt.Errorf("cache: %s holds %T", key, res.Value)
	}
	return v, res, err
}
