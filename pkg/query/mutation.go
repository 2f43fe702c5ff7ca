package query

import "context"

type Operation string

const (
	OpCreate Operation = "CREATE"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// MutationRequest describes one write. On success every key whose entity is
// Entity or one of Related is invalidated.
type MutationRequest struct {
	Entity    string
	Operation Operation
	Payload   any
	TargetID  string
	Related   []string
}

func (r MutationRequest) entities() []string {
	return append([]string{r.Entity}, r.Related...)
}

// MutationHook runs after a successful mutation and its invalidation.
type MutationHook func(ctx context.Context, req MutationRequest, result any)

func (c *Cache) OnMutation(h MutationHook) {
	c.mu.Lock()
	c.hooks = append(c.hooks, h)
	c.mu.Unlock()
}

// Mutate runs fn and, only if it succeeds, invalidates the keys affected by
// req and runs the mutation hooks. A failed mutation leaves the cache as it
// was.
func (c *Cache) Mutate(ctx context.Context, req MutationRequest, fn func(ctx context.Context) (any, error)) (any, error) {
	result, err := fn(ctx)
	if err != nil {
		c.opts.Logger.Warn(ModuleName, "Mutation failed", map[string]interface{}{
			"entity":    req.Entity,
			"operation": string(req.Operation),
			"target_id": req.TargetID,
			"error":     err.Error(),
		})
		return nil, err
	}

	c.Invalidate(ByEntity(req.entities()...))

	c.mu.Lock()
	hooks := append([]MutationHook(nil), c.hooks...)
	c.mu.Unlock()
	for _, h := range hooks {
		h(ctx, req, result)
	}
	return result, nil
}
