// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package knowledge

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Cache stores lookup results keyed by term. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(term string) (Lookup, bool)
	Set(term string, l Lookup)
	Close() error
}

// memoryCache is a TTL map cache for lookups. Suitable for tests and
// deployments without a persistent cache path.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

type memoryEntry struct {
	lookup    Lookup
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory lookup cache with the given TTL.
func NewMemoryCache(ttl time.Duration) Cache {
	return &memoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (c *memoryCache) Get(term string) (Lookup, bool) {
	c.mu.RLock()
	entry, ok := c.entries[term]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return Lookup{}, false
	}
	return entry.lookup, true
}

func (c *memoryCache) Set(term string, l Lookup) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[term] = memoryEntry{lookup: l, expiresAt: time.Now().Add(c.ttl)}
}

func (c *memoryCache) Close() error { return nil }

// badgerCache persists lookup results across restarts. Knowledge-graph
// entries change slowly, so a long TTL keeps repeat extractions off the
// network entirely.
type badgerCache struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadgerCache opens (or creates) a badger-backed lookup cache at path.
func NewBadgerCache(path string, ttl time.Duration) (Cache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open lookup cache at %s: %w", path, err)
	}
	return &badgerCache{db: db, ttl: ttl}, nil
}

func (c *badgerCache) Get(term string) (Lookup, bool) {
	var l Lookup
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(term))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &l)
		})
	})
	if err != nil {
		return Lookup{}, false
	}
	return l, true
}

func (c *badgerCache) Set(term string, l Lookup) {
	data, err := json.Marshal(l)
	if err != nil {
		return
	}
	// Write failures degrade to a cache miss on the next lookup.
	_ = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(term), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
}

func (c *badgerCache) Close() error { return c.db.Close() }
