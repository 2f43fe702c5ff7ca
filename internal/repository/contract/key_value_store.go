package contract

import "context"

// KeyValueStore is the persistent backing for client-side state such as the
// admin session. Values are opaque strings; a missing key is reported with
// found=false and a nil error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
