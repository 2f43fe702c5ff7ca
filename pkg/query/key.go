package query

import (
	"net/url"
	"strings"
)

// Key identifies one cached result set: the entity type first, then the
// filter parameters in order, e.g. Key{"products", "all"}.
type Key []string

// NewKey builds a key from an entity type and its filter parameters.
func NewKey(entity string, params ...string) Key {
	k := make(Key, 0, len(params)+1)
	k = append(k, entity)
	return append(k, params...)
}

// Entity returns the entity type of the key, or "" for an empty key.
func (k Key) Entity() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// String is the cache address of the key. Parts are escaped so that
// Key{"a:b"} and Key{"a", "b"} never collide.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = url.QueryEscape(p)
	}
	return strings.Join(parts, ":")
}

func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix matches the leading parts of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	return k[:len(prefix)].Equal(prefix)
}

// Predicate selects keys for invalidation.
type Predicate func(Key) bool

func All() Predicate {
	return func(Key) bool { return true }
}

func Exact(key Key) Predicate {
	return func(k Key) bool { return k.Equal(key) }
}

// ByPrefix matches every key starting with prefix, so ByPrefix(Key{"products"})
// covers each category filter of the products list.
func ByPrefix(prefix Key) Predicate {
	return func(k Key) bool { return k.HasPrefix(prefix) }
}

// ByEntity matches keys whose entity type is one of entities.
func ByEntity(entities ...string) Predicate {
	set := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		set[e] = struct{}{}
	}
	return func(k Key) bool {
		_, ok := set[k.Entity()]
		return ok
	}
}
