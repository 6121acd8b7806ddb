package mcpserver

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/erraggy/oascontract/contract"
)

// cacheEntry is a built contract with its client handle.
type cacheEntry struct {
	key       string
	id        string
	contract  *contract.Contract
	expiresAt time.Time
}

func (e *cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// contractCache keeps built contracts for the session, least recently used
// at the back of recency. Entries are reachable by cache key (see
// makeCacheKey) and by the uuid handed out as contract_id.
type contractCache struct {
	mu       sync.Mutex
	recency  *list.List
	byKey    map[string]*list.Element
	byHandle map[string]*list.Element
	capacity int

	sweeperStarted atomic.Bool
}

func newContractCache(capacity int) *contractCache {
	return &contractCache{
		recency:  list.New(),
		byKey:    make(map[string]*list.Element),
		byHandle: make(map[string]*list.Element),
		capacity: capacity,
	}
}

var specCache = newContractCache(cfg.CacheMaxSize)

// get returns the live entry for key and marks it recently used.
func (c *contractCache) get(key string) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touch(c.byKey[key])
}

// byID returns the live entry behind a contract_id.
func (c *contractCache) byID(id string) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touch(c.byHandle[id])
}

func (c *contractCache) touch(el *list.Element) *cacheEntry {
	if el == nil {
		return nil
	}
	e := el.Value.(*cacheEntry)
	if e.expired(time.Now()) {
		c.drop(el)
		return nil
	}
	c.recency.MoveToFront(el)
	return e
}

func (c *contractCache) drop(el *list.Element) {
	e := c.recency.Remove(el).(*cacheEntry)
	delete(c.byKey, e.key)
	delete(c.byHandle, e.id)
}

// put stores ct under key with a fresh contract_id, replacing any entry for
// the same key and evicting the least recently used one when full.
func (c *contractCache) put(key string, ct *contract.Contract, ttl time.Duration) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byKey[key]; ok {
		c.drop(el)
	}
	for c.recency.Len() >= max(c.capacity, 1) {
		c.drop(c.recency.Back())
	}
	e := &cacheEntry{key: key, id: uuid.NewString(), contract: ct, expiresAt: time.Now().Add(ttl)}
	el := c.recency.PushFront(e)
	c.byKey[key] = el
	c.byHandle[e.id] = el
	return e
}

// sweep drops every expired entry.
func (c *contractCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for el := c.recency.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*cacheEntry).expired(now) {
			c.drop(el)
		}
		el = next
	}
}

// startSweeper sweeps every interval until ctx is done. At most one
// sweeper runs at a time.
func (c *contractCache) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *contractCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recency.Init()
	clear(c.byKey)
	clear(c.byHandle)
}

func (c *contractCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.Len()
}
