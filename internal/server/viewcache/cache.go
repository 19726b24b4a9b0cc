// Package viewcache holds rendered dashboard responses per user and path.
// Mutating operations revalidate (evict) the paths whose data they changed.
package viewcache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is used when a non-positive size is configured.
const DefaultSize = 1024

// Cache stores rendered views. Each (user, path) pair carries a generation
// that Revalidate bumps; a Put made with an older generation is dropped, so
// a view rendered before a mutation cannot land after its eviction.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, []byte]
	gen map[string]uint64
}

func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	l, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, gen: make(map[string]uint64)}, nil
}

func key(userID, path string) string {
	return userID + " " + path
}

// Get returns the cached body for userID's view of path.
func (c *Cache) Get(userID, path string) ([]byte, bool) {
	return c.lru.Get(key(userID, path))
}

// Generation returns the current generation of userID's view of path. Read
// it before rendering the view and pass it to Put.
func (c *Cache) Generation(userID, path string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[key(userID, path)]
}

// Put stores body as userID's view of path unless the view was revalidated
// after gen was read. It reports whether body was stored.
func (c *Cache) Put(userID, path string, gen uint64, body []byte) bool {
	k := key(userID, path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[k] != gen {
		return false
	}
	c.lru.Add(k, body)
	return true
}

// Revalidate drops userID's cached views of paths and reports how many
// entries were evicted. Other users' entries are untouched.
func (c *Cache) Revalidate(_ context.Context, userID string, paths ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, p := range paths {
		k := key(userID, p)
		c.gen[k]++
		if c.lru.Remove(k) {
			n++
		}
	}
	return n
}

// Len reports the number of cached views.
func (c *Cache) Len() int {
	return c.lru.Len()
}
