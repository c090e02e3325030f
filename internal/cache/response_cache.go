// Package cache provides a small in-process TTL cache used to deduplicate
// repeated chat submissions. It maps a deduplication key derived from
// (owner, exact content) to the message pair produced by the one successful
// pipeline run for that key.
//
// Design notes:
//   - The clock is injected (Now field) so tests control time; there is no
//     hidden process-wide state.
//   - Expiry is lazy: an expired entry reads as absent and is evicted on
//     lookup. No background sweeper runs.
//   - No size bound: between expiries the map grows with distinct keys. For
//     the targeted single-process scale this is an accepted trade-off, and
//     nothing survives a restart.
package cache

import (
	"sync"
	"time"

	"github.com/pmoralis/go-ai-chat/internal/domain"
)

// DefaultTTL is the entry lifetime used when none is configured.
const DefaultTTL = 5 * time.Minute

// Entry is the cached result of one successful submission: the persisted user
// message and its paired AI reply.
type Entry struct {
	UserMessage domain.Message
	AIMessage   domain.Message
}

// Key derives the deduplication key for a submission. Matching is exact
// string equality on the content, scoped per owner; it is intentionally not
// semantic.
func Key(ownerID, content string) string {
	return ownerID + ":" + content
}

// ResponseCache is a concurrency-safe key→Entry store with per-entry expiry.
// The zero value is not usable; construct with New.
type ResponseCache struct {
	// Now returns the current time. Overridable in tests.
	Now func() time.Time

	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]record
}

type record struct {
	entry     Entry
	expiresAt time.Time
}

// New returns a ResponseCache whose entries live for ttl. A non-positive ttl
// falls back to DefaultTTL.
func New(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResponseCache{
		Now:     time.Now,
		ttl:     ttl,
		entries: make(map[string]record),
	}
}

// Get returns the entry stored under key, if present and unexpired. An
// expired entry is evicted and reads as absent.
func (c *ResponseCache) Get(key string) (Entry, bool) {
	now := c.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	if !now.Before(rec.expiresAt) {
		delete(c.entries, key)
		return Entry{}, false
	}
	return rec.entry, true
}

// Put stores entry under key with the configured TTL, replacing any previous
// value.
func (c *ResponseCache) Put(key string, entry Entry) {
	exp := c.Now().Add(c.ttl)

	c.mu.Lock()
	c.entries[key] = record{entry: entry, expiresAt: exp}
	c.mu.Unlock()
}

// Len reports the number of stored entries, including any not yet evicted
// expired ones. Intended for tests and metrics.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
