// Package cache holds the in-process listing cache used when no database is
// wanted, for example in tests or one-shot runs against a read-only checkout.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultEntries bounds the number of cached listings
	DefaultEntries = 64

	// DefaultTTL is the freshness window of a listing
	DefaultTTL = 300 * time.Second
)

// MemoryListingCache is a size-bounded, expiring listing cache. It is safe
// for concurrent use and never returns an error.
type MemoryListingCache struct {
	lru *expirable.LRU[string, []string]
}

// NewMemoryListingCache creates a cache with at most entries listings, each
// fresh for ttl. Non-positive arguments take the defaults.
func NewMemoryListingCache(entries int, ttl time.Duration) *MemoryListingCache {
	if entries <= 0 {
		entries = DefaultEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryListingCache{lru: expirable.NewLRU[string, []string](entries, nil, ttl)}
}

// Get returns a copy of the cached listing.
func (c *MemoryListingCache) Get(key string) ([]string, bool, error) {
	files, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]string{}, files...), true, nil
}

// Set stores a copy of files under key.
func (c *MemoryListingCache) Set(key string, files []string) error {
	c.lru.Add(key, append([]string{}, files...))
	return nil
}

// Len returns the number of live entries.
func (c *MemoryListingCache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *MemoryListingCache) Purge() {
	c.lru.Purge()
}
