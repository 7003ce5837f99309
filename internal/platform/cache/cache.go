// Package cache provides a bounded in-memory LRU with optional expiry. It
// memoises per-run lookups (name resolution, protocol sniffing) so that
// stages sharing a host do not repeat the same network round trip.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultCapacity se usa cuando capacity <= 0.
const DefaultCapacity = 1024

type item[V any] struct {
	key       string
	value     V
	expiresAt time.Time // cero = no expira
}

// LRU es seguro para uso concurrente.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List // frente = más reciente
	now      func() time.Time
}

// New creates a cache holding at most capacity entries. ttl <= 0 means
// entries never expire and only leave by eviction.
func New[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get devuelve el valor y lo marca como reciente. Las entradas vencidas se
// eliminan al leerlas.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	it := el.Value.(*item[V])
	if !it.expiresAt.IsZero() && c.now().After(it.expiresAt) {
		c.remove(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	return it.value, true
}

// Set inserta o reemplaza key, desalojando la entrada menos usada si el
// cache está lleno.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	if el, ok := c.items[key]; ok {
		it := el.Value.(*item[V])
		it.value = value
		it.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	if len(c.items) >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
	c.items[key] = c.order.PushFront(&item[V]{key: key, value: value, expiresAt: expiresAt})
}

// Delete elimina key si existe.
func (c *LRU[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
}

// Len cuenta también entradas vencidas aún no leídas.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU[V]) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*item[V]).key)
}
