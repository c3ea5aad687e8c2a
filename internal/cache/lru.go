package cache

import (
	"container/list"
	"sync"
	"time"
)

type node[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

// LRUCache holds up to maxSize entries for at most ttl each. Reads refresh
// recency; capacity evicts from the cold end.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	index   map[string]*list.Element
	recency *list.List
}

func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		index:   make(map[string]*list.Element),
		recency: list.New(),
	}
}

// Get returns the live value for key, refreshing its recency.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.index[key]
	if !ok {
		return zero, false
	}
	n := elem.Value.(*node[T])
	if time.Now().After(n.expiresAt) {
		c.unlink(elem)
		return zero, false
	}
	c.recency.MoveToFront(elem)
	return n.data, true
}

// Set stores data under key with a fresh TTL, evicting cold entries while
// the cache is over capacity.
func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := &node[T]{key: key, data: data, expiresAt: time.Now().Add(c.ttl)}
	if elem, ok := c.index[key]; ok {
		elem.Value = fresh
		c.recency.MoveToFront(elem)
		return
	}

	c.index[key] = c.recency.PushFront(fresh)
	for c.recency.Len() > c.maxSize {
		c.unlink(c.recency.Back())
	}
}

// Delete drops key if present.
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		c.unlink(elem)
	}
}

// CleanExpired drops every expired entry and reports how many went.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for elem := c.recency.Front(); elem != nil; {
		next := elem.Next()
		if now.After(elem.Value.(*node[T]).expiresAt) {
			c.unlink(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// Size reports the number of stored entries, expired or not.
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

func (c *LRUCache[T]) unlink(elem *list.Element) {
	if elem == nil {
		return
	}
	delete(c.index, elem.Value.(*node[T]).key)
	c.recency.Remove(elem)
}
