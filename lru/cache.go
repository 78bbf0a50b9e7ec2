// Package lru provides a fixed-capacity least-recently-used cache backed by
// hashicorp/golang-lru.
package lru

import "github.com/hashicorp/golang-lru/v2/simplelru"

// Cache is a least-recently-used cache. It is not safe for concurrent use.
type Cache[K comparable, V any] struct {
	lru *simplelru.LRU[K, V]
}

// New returns a Cache holding at most capacity entries. A capacity below
// one is treated as one.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	l, err := simplelru.NewLRU[K, V](max(capacity, 1), nil)
	if err != nil {
		// NewLRU only fails for a non-positive size.
		panic(err)
	}
	return &Cache[K, V]{lru: l}
}

// Get returns the value stored under k and marks it most recently used.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	return c.lru.Get(k)
}

// Set stores v under k, evicting the least recently used entry when the
// cache is full.
func (c *Cache[K, V]) Set(k K, v V) {
	c.lru.Add(k, v)
}

// Has reports whether k is cached without changing its recency.
func (c *Cache[K, V]) Has(k K) bool {
	return c.lru.Contains(k)
}

// Remove drops the entry stored under k, if any.
func (c *Cache[K, V]) Remove(k K) {
	c.lru.Remove(k)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.lru.Purge()
}
