// Package query is a keyed cache of server-state reads with request
// coalescing, stale-while-revalidate and explicit invalidation.
//
// Every entry is addressed by a Key. A read of a fresh entry is served from
// memory; a read of a stale entry is served from memory while one background
// refetch runs; a read of a missing entry waits for the single in-flight fetch
// of that key. Invalidation marks entries stale without dropping their data,
// and a fetch that started before an invalidation never clears the stale flag
// that invalidation set.
package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const ModuleName = "QUERY"

// ErrCleared is returned to callers waiting on a fetch whose result was
// discarded because the cache was cleared meanwhile.
var ErrCleared = errors.New("query: cache cleared while fetching")

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Fetcher loads the payload of one key from the server.
type Fetcher func(ctx context.Context) (any, error)

// Snapshot is a point-in-time copy of an entry. When HasData and Err are both
// set, Data is the last-known-good payload and Err is the failure of the most
// recent refetch.
type Snapshot struct {
	Key         Key
	Data        any
	HasData     bool
	Err         error
	Status      Status
	Stale       bool
	Fetching    bool
	Placeholder bool
	UpdatedAt   time.Time
}

// Logger is the subset of the application logger the cache writes to.
type Logger interface {
	Debug(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}

type Options struct {
	// StaleTime marks successful entries stale once they are older than it.
	// Zero leaves staleness to Invalidate alone.
	StaleTime time.Duration
	// GCTime drops entries that have no subscriber and no fetch in flight
	// after this long without access. Zero keeps entries forever.
	GCTime time.Duration
	// Retry is the number of extra attempts for a failed fetch.
	Retry      int
	RetryDelay time.Duration
	// RetryIf filters which failures are retried. Nil retries every failure.
	RetryIf func(error) bool
	Logger  Logger
}

type entry struct {
	key       Key
	data      any
	hasData   bool
	err       error
	status    Status
	stale     bool
	updatedAt time.Time

	fetching bool
	// generation is bumped by every invalidation; fetchGeneration is the
	// generation the in-flight fetch started under.
	generation      uint64
	fetchGeneration uint64
	// pending is a refetch requested by a reader that arrived after an
	// invalidation while an older fetch was still in flight.
	pending Fetcher

	observers int
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		Key:       e.key,
		Data:      e.data,
		HasData:   e.hasData,
		Err:       e.err,
		Status:    e.status,
		Stale:     e.stale,
		Fetching:  e.fetching,
		UpdatedAt: e.updatedAt,
	}
}

type Cache struct {
	mu      sync.Mutex
	entries *gocache.Cache
	group   singleflight.Group
	opts    Options

	// ctx scopes fetches of the current epoch; Clear cancels it.
	ctx    context.Context
	cancel context.CancelFunc
	epoch  uint64

	keySubs map[string][]*subscription
	allSubs []*subscription
	hooks   []MutationHook
	queue   []Event
}

func New(opts Options) *Cache {
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	var cleanup time.Duration
	if opts.GCTime > 0 {
		cleanup = opts.GCTime
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		entries: gocache.New(gocache.NoExpiration, cleanup),
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		keySubs: make(map[string][]*subscription),
	}
}

type readOptions struct {
	placeholder Key
}

type ReadOption func(*readOptions)

// WithPlaceholder serves the data of key prev, flagged as a placeholder,
// while a key without data loads for the first time.
func WithPlaceholder(prev Key) ReadOption {
	return func(o *readOptions) {
		if prev != nil {
			o.placeholder = prev
		}
	}
}

// Read returns the entry for key, calling fetch at most once across all
// concurrent readers of the same key.
//
// A fresh entry is returned as is. A stale entry is returned immediately with
// Stale set while a background refetch runs. A key without data blocks until
// its fetch settles or ctx is done; ctx only bounds the wait, the fetch keeps
// running for other readers.
func (c *Cache) Read(ctx context.Context, key Key, fetch Fetcher, opts ...ReadOption) (Snapshot, error) {
	var ro readOptions
	for _, opt := range opts {
		opt(&ro)
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	c.ageLocked(e)

	if e.hasData && !e.stale {
		snap := e.snapshot()
		c.touchLocked(e)
		c.unlockAndFlush()
		return snap, nil
	}

	if e.hasData {
		c.fetchLocked(e, fetch)
		snap := e.snapshot()
		c.unlockAndFlush()
		return snap, nil
	}

	done := c.fetchLocked(e, fetch)
	if ro.placeholder != nil {
		if p, ok := c.peekLocked(ro.placeholder); ok && p.hasData {
			snap := e.snapshot()
			snap.Data, snap.HasData, snap.Placeholder = p.data, true, true
			c.unlockAndFlush()
			return snap, nil
		}
	}
	c.unlockAndFlush()

	select {
	case <-done:
	case <-ctx.Done():
		return Snapshot{Key: key, Status: StatusLoading, Fetching: true}, ctx.Err()
	}

	c.mu.Lock()
	var snap Snapshot
	if e, ok := c.peekLocked(key); ok {
		snap = e.snapshot()
	}
	c.mu.Unlock()

	switch {
	case snap.Status == StatusError && !snap.HasData:
		return snap, snap.Err
	case !snap.HasData:
		snap.Key = key
		return snap, ErrCleared
	}
	return snap, nil
}

// Peek returns the entry for key without fetching.
func (c *Cache) Peek(key Key) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.peekLocked(key)
	if !ok {
		return Snapshot{}, false
	}
	c.ageLocked(e)
	return e.snapshot(), true
}

// Invalidate marks every entry matched by pred stale and returns how many
// entries it touched. Data is kept and nothing is refetched here; the next
// Read of a matched key starts the refetch.
func (c *Cache) Invalidate(pred Predicate) int {
	c.mu.Lock()
	n := 0
	for _, item := range c.entries.Items() {
		e := item.Object.(*entry)
		if !pred(e.key) {
			continue
		}
		e.stale = true
		e.generation++
		n++
		c.enqueueLocked(EventInvalidated, e)
	}
	c.unlockAndFlush()

	c.opts.Logger.Debug(ModuleName, "Invalidated queries", map[string]interface{}{"count": n})
	return n
}

// Clear drops every entry and aborts in-flight fetches. Fetches that were
// running are discarded when they complete.
func (c *Cache) Clear() {
	c.mu.Lock()
	for k, item := range c.entries.Items() {
		e := item.Object.(*entry)
		if e.fetching {
			c.group.Forget(k)
		}
		c.enqueueLocked(EventRemoved, e)
	}
	c.entries.Flush()
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.epoch++
	c.unlockAndFlush()

	c.opts.Logger.Debug(ModuleName, "Cache cleared", nil)
}

// Close aborts in-flight fetches. The cache must not be used afterwards.
func (c *Cache) Close() {
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
}

func (c *Cache) entryLocked(key Key) *entry {
	if e, ok := c.peekLocked(key); ok {
		return e
	}
	k := key.String()
	e := &entry{
		key:       append(Key(nil), key...),
		status:    StatusIdle,
		observers: len(c.keySubs[k]),
	}
	c.touchLocked(e)
	return e
}

func (c *Cache) peekLocked(key Key) (*entry, bool) {
	x, ok := c.entries.Get(key.String())
	if !ok {
		return nil, false
	}
	return x.(*entry), true
}

// touchLocked refreshes the expiry of e. Observed or fetching entries never
// expire.
func (c *Cache) touchLocked(e *entry) {
	d := gocache.NoExpiration
	if c.opts.GCTime > 0 && e.observers == 0 && !e.fetching {
		d = c.opts.GCTime
	}
	c.entries.Set(e.key.String(), e, d)
}

func (c *Cache) ageLocked(e *entry) {
	if c.opts.StaleTime <= 0 || e.stale || e.status != StatusSuccess {
		return
	}
	if time.Since(e.updatedAt) >= c.opts.StaleTime {
		e.stale = true
	}
}

// fetchLocked starts the fetch of e, or joins the one in flight. Joining after
// an invalidation queues a follow-up fetch so the reader eventually sees data
// loaded after the invalidation.
func (c *Cache) fetchLocked(e *entry, fetch Fetcher) <-chan singleflight.Result {
	k := e.key.String()
	run := c.run(e.key, fetch, e.generation, c.epoch, c.ctx)

	if e.fetching {
		if e.generation != e.fetchGeneration {
			e.pending = fetch
		}
		return c.group.DoChan(k, run)
	}

	e.fetching = true
	e.fetchGeneration = e.generation
	if !e.hasData {
		e.status = StatusLoading
	}
	c.touchLocked(e)
	c.enqueueLocked(EventUpdated, e)
	c.opts.Logger.Debug(ModuleName, "Fetching query", map[string]interface{}{"key": k})
	return c.group.DoChan(k, run)
}

func (c *Cache) run(key Key, fetch Fetcher, generation, epoch uint64, ctx context.Context) func() (any, error) {
	return func() (any, error) {
		data, err := c.fetchWithRetry(ctx, fetch)
		c.settle(key, generation, epoch, data, err)
		return data, err
	}
}

func (c *Cache) settle(key Key, generation, epoch uint64, data any, err error) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	// Forget under the lock: no reader can join this call once its result is
	// applied.
	c.group.Forget(key.String())

	e := c.entryLocked(key)
	e.fetching = false
	if err != nil {
		e.err = err
		e.status = StatusError
		c.opts.Logger.Warn(ModuleName, "Query fetch failed", map[string]interface{}{
			"key":           key.String(),
			"error":         err.Error(),
			"kept_previous": e.hasData,
		})
	} else {
		e.data, e.hasData, e.err = data, true, nil
		e.status = StatusSuccess
		e.updatedAt = time.Now()
		e.stale = e.generation != generation
	}
	c.touchLocked(e)
	c.enqueueLocked(EventUpdated, e)

	if next := e.pending; next != nil {
		e.pending = nil
		if e.stale || !e.hasData {
			c.fetchLocked(e, next)
		}
	}
	c.unlockAndFlush()
}

type subscription struct {
	listener Listener
	active   atomic.Bool
}

// Subscribe registers l for transitions of key. Keys with subscribers are
// never garbage collected. The returned func unsubscribes; no delivery starts
// after it returns. It must not be called from inside l.
func (c *Cache) Subscribe(key Key, l Listener) (unsubscribe func()) {
	sub := &subscription{listener: l}
	sub.active.Store(true)
	k := key.String()

	c.mu.Lock()
	c.keySubs[k] = append(c.keySubs[k], sub)
	if e, ok := c.peekLocked(key); ok {
		e.observers++
		c.touchLocked(e)
	}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			c.mu.Lock()
			defer c.mu.Unlock()
			c.keySubs[k] = without(c.keySubs[k], sub)
			if len(c.keySubs[k]) == 0 {
				delete(c.keySubs, k)
			}
			if e, ok := c.peekLocked(key); ok && e.observers > 0 {
				e.observers--
				c.touchLocked(e)
			}
		})
	}
}

// SubscribeAll registers l for transitions of every key.
func (c *Cache) SubscribeAll(l Listener) (unsubscribe func()) {
	sub := &subscription{listener: l}
	sub.active.Store(true)

	c.mu.Lock()
	c.allSubs = append(c.allSubs, sub)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			c.mu.Lock()
			c.allSubs = without(c.allSubs, sub)
			c.mu.Unlock()
		})
	}
}

func without(subs []*subscription, sub *subscription) []*subscription {
	for i, s := range subs {
		if s == sub {
			// Copy so slices captured by an ongoing flush stay intact.
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}

func (c *Cache) enqueueLocked(t EventType, e *entry) {
	c.queue = append(c.queue, Event{Type: t, Snapshot: e.snapshot()})
}

// unlockAndFlush releases c.mu and then delivers the queued events, so
// listeners may call back into the cache.
func (c *Cache) unlockAndFlush() {
	events := c.queue
	c.queue = nil

	type delivery struct {
		sub *subscription
		ev  Event
	}
	var deliveries []delivery
	for _, ev := range events {
		for _, s := range c.keySubs[ev.Snapshot.Key.String()] {
			deliveries = append(deliveries, delivery{s, ev})
		}
		for _, s := range c.allSubs {
			deliveries = append(deliveries, delivery{s, ev})
		}
	}
	c.mu.Unlock()

	for _, d := range deliveries {
		if d.sub.active.Load() {
			d.sub.listener(d.ev)
		}
	}
}
