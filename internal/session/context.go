package session

import "context"

type ctxKey struct{}

// WithContext carries the admitted session along a request so downstream
// hooks (audit) know the operator.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
