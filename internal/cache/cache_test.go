package cache

import (
	"fmt"
	"testing"
)

func TestGetPut(t *testing.T) {
	c := New(DefaultConfig())

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected a miss for an unknown key")
	}

	c.Put("k", "value")
	got, ok := c.Get("k")
	if !ok || got.(string) != "value" {
		t.Errorf("Expected value, got %v (%v)", got, ok)
	}

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %+v", stats)
	}
}

func TestEvictionAtCapacity(t *testing.T) {
	c := New(Config{MaxEntries: 2})
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // b is now least recently used
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("Expected a to survive")
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("Expected 1 eviction, got %d", got)
	}
}

func TestClear(t *testing.T) {
	c := New(DefaultConfig())
	for i := 0; i < 10; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}
	c.Clear()
	if got := c.GetStats().EntryCount; got != 0 {
		t.Errorf("Expected an empty cache, got %d entries", got)
	}
}

func TestKeyIsDeterministic(t *testing.T) {
	if Key("a", "b") != Key("a", "b") {
		t.Error("Expected identical inputs to produce identical keys")
	}
	if Key("a", "b") == Key("ab") {
		t.Error("Expected input boundaries to matter")
	}
}
