package cache

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Key identifies one cache slot: an endpoint path plus its query
// parameters. url.Values.Encode sorts keys, so equal parameter sets
// always canonicalize to the same string.
type Key struct {
	Path   string
	Params url.Values
}

func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Path
	}
	return k.Path + "?" + k.Params.Encode()
}

// Fetch produces the value for a cache slot. It is retained per entry
// so tag invalidation can refetch in the background for subscribers.
type Fetch func(ctx context.Context) (interface{}, error)

type entry struct {
	key       Key
	tags      []string
	data      interface{}
	fetchedAt time.Time
	populated bool
	stale     bool
	subs      int
	gcTimer   *time.Timer
	refetch   Fetch
}

type call struct {
	done chan struct{}
	data interface{}
	err  error
}

// Cache is the process-wide query cache shared by every resource
// client. Reads under one key coalesce into a single in-flight fetch;
// mutations invalidate by tag, which refetches subscribed entries in
// the background and marks the rest stale for their next read. There
// is no locking beyond the one mutex: last settled write wins per slot.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	inflight map[string]*call
	gcGrace  time.Duration
	logger   *zap.Logger
}

func New(gcGrace time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		entries:  make(map[string]*entry),
		inflight: make(map[string]*call),
		gcGrace:  gcGrace,
		logger:   logger,
	}
}

// Query returns the cached value for key, fetching it if the slot is
// empty or stale. Concurrent callers for the same key share one fetch.
func (c *Cache) Query(ctx context.Context, key Key, tags []string, fetch Fetch) (interface{}, error) {
	k := key.String()

	c.mu.Lock()
	if e, ok := c.entries[k]; ok && e.populated && !e.stale {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}

	if fl, ok := c.inflight[k]; ok {
		c.mu.Unlock()
		select {
		case <-fl.done:
			return fl.data, fl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	fl := &call{done: make(chan struct{})}
	c.inflight[k] = fl
	e, ok := c.entries[k]
	if !ok {
		e = &entry{key: key}
		c.entries[k] = e
	}
	e.tags = tags
	e.refetch = fetch
	c.mu.Unlock()

	data, err := fetch(ctx)

	c.mu.Lock()
	// The slot may have been collected while the fetch was in flight;
	// a late response still lands in the cache.
	cur, ok := c.entries[k]
	if !ok {
		cur = &entry{key: key, tags: tags, refetch: fetch}
		c.entries[k] = cur
	}
	if err == nil {
		cur.data = data
		cur.populated = true
		cur.stale = false
		cur.fetchedAt = time.Now()
	}
	fl.data, fl.err = data, err
	delete(c.inflight, k)
	close(fl.done)
	c.mu.Unlock()

	return data, err
}

// Peek returns the cached value without fetching.
func (c *Cache) Peek(key Key) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key.String()]; ok && e.populated {
		return e.data, true
	}
	return nil, false
}

// Invalidate marks every entry carrying one of the tags stale.
// Entries with live subscribers are refetched in the background;
// the rest refetch lazily on their next Query.
func (c *Cache) Invalidate(tags ...string) {
	c.mu.Lock()
	var refetches []*entry
	for _, e := range c.entries {
		if !hasAny(e.tags, tags) {
			continue
		}
		e.stale = true
		if e.subs > 0 && e.refetch != nil {
			refetches = append(refetches, e)
		}
	}
	c.mu.Unlock()

	for _, e := range refetches {
		go func(key Key, tags []string, fetch Fetch) {
			if _, err := c.Query(context.Background(), key, tags, fetch); err != nil {
				c.logger.Warn("background refetch failed",
					zap.String("key", key.String()),
					zap.Error(err))
			}
		}(e.key, e.tags, e.refetch)
	}
}

// Subscribe pins an entry so invalidation refetches it eagerly and GC
// leaves it alone.
func (c *Cache) Subscribe(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key.String()
	e, ok := c.entries[k]
	if !ok {
		e = &entry{key: key}
		c.entries[k] = e
	}
	e.subs++
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
}

// Unsubscribe drops one subscription. When the count reaches zero a
// grace timer starts; the entry is collected if nobody resubscribes
// before it fires.
func (c *Cache) Unsubscribe(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key.String()
	e, ok := c.entries[k]
	if !ok {
		return
	}
	if e.subs > 0 {
		e.subs--
	}
	if e.subs == 0 && e.gcTimer == nil {
		e.gcTimer = time.AfterFunc(c.gcGrace, func() {
			c.collect(k)
		})
	}
}

// Subscribers reports the live subscription count for a key.
func (c *Cache) Subscribers(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key.String()]; ok {
		return e.subs
	}
	return 0
}

func (c *Cache) collect(k string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[k]; ok && e.subs == 0 {
		delete(c.entries, k)
	}
}

func hasAny(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
