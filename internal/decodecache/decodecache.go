// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package decodecache memoizes decoded payloads keyed by the content hash
// of their raw archive-entry bytes. Its only caller, internal/aos, uses it
// for .scr script entries, so identical scripts skip redundant Huffman
// work; ABM entries are not cached.
//
// It is a two-tier cache: an in-process github.com/dgryski/go-tinylfu
// admission-and-eviction cache (modeled on the hot-block cache in
// github.com/elliotnunn/BeHierarchic's internal/spinner), backed by an
// on-disk github.com/cockroachdb/pebble/v2 store (modeled on that repo's
// root fs.go, which opens a pebble.DB as a metadata store but never got
// as far as a working setupDB — this package supplies the part that repo
// left unfinished). A miss on both tiers is simply reported as a miss;
// callers fall through to the real decode and call Put to populate both
// tiers. Disabling the cache (a nil *Cache, or simply not calling it) must
// never change decoded output, only how often it's recomputed.
package decodecache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble/v2"
	"github.com/dgryski/go-tinylfu"
)

// Key identifies one decoded payload by the content hash of its raw,
// still-encoded entry bytes.
type Key uint64

// KeyOf hashes raw entry bytes into a Key.
func KeyOf(raw []byte) Key {
	return Key(xxhash.Sum64(raw))
}

// Cache is safe for concurrent use by multiple goroutines. pebble.DB
// handles its own locking; go-tinylfu does not (it mutates plain maps
// internally), so hot-tier access is serialized behind hotMu the same way
// github.com/elliotnunn/BeHierarchic's internal/spinner funnels every
// tinylfu access through a single goroutine.
type Cache struct {
	hotMu sync.Mutex
	hot   *tinylfu.T[Key, []byte]
	db    *pebble.DB
}

// Open creates a cache with an in-process tier sized for hotCap entries
// and, if dbPath is non-empty, an on-disk tier at dbPath. dbPath == ""
// runs hot-tier-only, useful for tests and for callers that don't want a
// file left behind next to the archive.
func Open(hotCap int, dbPath string) (*Cache, error) {
	c := &Cache{
		hot: tinylfu.New[Key, []byte](hotCap, hotCap*10, hashKey),
	}
	if dbPath != "" {
		db, err := pebble.Open(dbPath, &pebble.Options{})
		if err != nil {
			return nil, err
		}
		c.db = db
	}
	return c, nil
}

// Close releases the on-disk tier, if any.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached decoded payload for key, if present in either
// tier. A hit in the on-disk tier is promoted into the hot tier.
func (c *Cache) Get(key Key) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.hotMu.Lock()
	v, ok := c.hot.Get(key)
	c.hotMu.Unlock()
	if ok {
		return v, true
	}
	if c.db == nil {
		return nil, false
	}
	v, closer, err := c.db.Get(keyBytes(key))
	if err != nil {
		return nil, false
	}
	defer closer.Close()
	out := append([]byte(nil), v...)
	c.hotMu.Lock()
	c.hot.Add(key, out)
	c.hotMu.Unlock()
	return out, true
}

// Put stores a decoded payload under key in both tiers.
func (c *Cache) Put(key Key, decoded []byte) {
	if c == nil {
		return
	}
	c.hotMu.Lock()
	c.hot.Add(key, decoded)
	c.hotMu.Unlock()
	if c.db != nil {
		_ = c.db.Set(keyBytes(key), decoded, pebble.NoSync)
	}
}

func keyBytes(k Key) []byte {
	var b [8]byte
	for i := range b {
		b[i] = byte(k >> (8 * i))
	}
	return b[:]
}

func hashKey(k Key) uint64 {
	return uint64(k)
}
