package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/pmoralis/go-ai-chat/internal/domain"
)

func fixedClock(start time.Time) (*time.Time, func() time.Time) {
	now := start
	return &now, func() time.Time { return now }
}

func entryFor(owner, prompt, reply string) Entry {
	return Entry{
		UserMessage: domain.Message{ID: "u-" + prompt, UserID: owner, Role: domain.RoleUser, Content: prompt},
		AIMessage:   domain.Message{ID: "a-" + prompt, UserID: owner, Role: domain.RoleAI, Content: reply},
	}
}

func TestResponseCache_PutGet(t *testing.T) {
	c := New(5 * time.Minute)
	now, clock := fixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c.Now = clock

	key := Key("u1", "hello")
	c.Put(key, entryFor("u1", "hello", "hi"))

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.AIMessage.Content != "hi" {
		t.Fatalf("AIMessage.Content = %q, want %q", got.AIMessage.Content, "hi")
	}

	// A different owner with the same content must not collide.
	if _, ok := c.Get(Key("u2", "hello")); ok {
		t.Fatal("cross-owner hit")
	}

	// Just before expiry: still present.
	*now = now.Add(5*time.Minute - time.Second)
	if _, ok := c.Get(key); !ok {
		t.Fatal("entry expired early")
	}
}

func TestResponseCache_TTLExpiry(t *testing.T) {
	c := New(5 * time.Minute)
	now, clock := fixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c.Now = clock

	key := Key("u1", "hello")
	c.Put(key, entryFor("u1", "hello", "hi"))

	*now = now.Add(5 * time.Minute)
	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss at exactly TTL")
	}
	// Expired entries are evicted on lookup.
	if c.Len() != 0 {
		t.Fatalf("Len = %d after expiry, want 0", c.Len())
	}
}

func TestResponseCache_DefaultTTL(t *testing.T) {
	c := New(0)
	if c.ttl != DefaultTTL {
		t.Fatalf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}

func TestResponseCache_Overwrite(t *testing.T) {
	c := New(time.Minute)
	key := Key("u1", "hello")
	c.Put(key, entryFor("u1", "hello", "first"))
	c.Put(key, entryFor("u1", "hello", "second"))

	got, ok := c.Get(key)
	if !ok || got.AIMessage.Content != "second" {
		t.Fatalf("got (%v, %v), want second entry", got.AIMessage.Content, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestResponseCache_ConcurrentAccess(t *testing.T) {
	c := New(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := Key("u1", "hello")
			for j := 0; j < 100; j++ {
				c.Put(key, entryFor("u1", "hello", "hi"))
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if _, ok := c.Get(Key("u1", "hello")); !ok {
		t.Fatal("expected hit after concurrent writes")
	}
}
