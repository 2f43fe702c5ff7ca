package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, c *Cache, keys ...Key) {
	t.Helper()
	for _, k := range keys {
		_, err := c.Read(context.Background(), k, func(ctx context.Context) (any, error) { return k.String(), nil })
		require.NoError(t, err)
	}
}

func isStale(c *Cache, k Key) bool {
	snap, _ := c.Peek(k)
	return snap.Stale
}

func TestMutateInvalidatesEntityAndRelated(t *testing.T) {
	c := New(Options{})
	defer c.Close()

	categories := NewKey("categories")
	products := NewKey("products", "all")
	users := NewKey("users")
	seed(t, c, categories, products, users)

	var hooked []MutationRequest
	c.OnMutation(func(ctx context.Context, req MutationRequest, result any) {
		hooked = append(hooked, req)
	})

	req := MutationRequest{Entity: "categories", Operation: OpDelete, TargetID: "c1", Related: []string{"products"}}
	res, err := c.Mutate(context.Background(), req, func(ctx context.Context) (any, error) {
		return "deleted", nil
	})
	require.NoError(t, err)

	assert.Equal(t, "deleted", res)
	assert.True(t, isStale(c, categories))
	assert.True(t, isStale(c, products))
	assert.False(t, isStale(c, users))
	assert.Equal(t, []MutationRequest{req}, hooked)
}

func TestFailedMutateSkipsInvalidation(t *testing.T) {
	c := New(Options{})
	defer c.Close()

	users := NewKey("users")
	seed(t, c, users)

	hooked := false
	c.OnMutation(func(context.Context, MutationRequest, any) { hooked = true })

	boom := errors.New("boom")
	_, err := c.Mutate(context.Background(), MutationRequest{Entity: "users", Operation: OpDelete, TargetID: "42"},
		func(ctx context.Context) (any, error) { return nil, boom })

	assert.ErrorIs(t, err, boom)
	assert.False(t, isStale(c, users))
	assert.False(t, hooked)
}
