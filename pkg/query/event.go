package query

type EventType string

const (
	// EventUpdated fires when an entry starts or settles a fetch.
	EventUpdated EventType = "updated"
	// EventInvalidated fires when an entry is marked stale.
	EventInvalidated EventType = "invalidated"
	// EventRemoved fires for each entry dropped by Clear.
	EventRemoved EventType = "removed"
)

type Event struct {
	Type     EventType
	Snapshot Snapshot
}

// Listener receives cache transitions. It runs on the goroutine that caused
// the transition, outside the cache lock.
type Listener func(Event)
