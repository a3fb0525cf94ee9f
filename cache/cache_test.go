// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(10)
	c.Set("a", 42, time.Minute)

	v, ok := c.Get("a")
	if !ok {
		t.Fatal("expected hit for key a")
	}
	if v.(int) != 42 {
		t.Errorf("expected 42, got %v", v)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestExpiryIsLazy(t *testing.T) {
	c := New(10)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("a", "v", 30*time.Second)

	// Still fresh just before the deadline.
	now = now.Add(29 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry expired early")
	}

	// Entry stays resident until a read collects it.
	now = now.Add(2 * time.Second)
	if c.Len() != 1 {
		t.Fatalf("expected 1 resident entry, got %d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry evicted on access, got %d resident", c.Len())
	}
}

func TestOldestInsertionEvictedFirst(t *testing.T) {
	c := New(3)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)
	c.Set("d", 4, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Error("expected oldest entry a to be evicted")
	}
	for _, k := range []string{"b", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to survive eviction", k)
		}
	}
}

func TestResetRefreshesInsertionRecency(t *testing.T) {
	c := New(3)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)

	// Re-setting a makes b the oldest.
	c.Set("a", 10, time.Minute)
	c.Set("d", 4, time.Minute)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted after a was refreshed")
	}
	if v, ok := c.Get("a"); !ok || v.(int) != 10 {
		t.Errorf("expected refreshed a=10, got %v (hit=%v)", v, ok)
	}
}

func TestQueueStaysBoundedUnderHotKeyResets(t *testing.T) {
	c := New(10)

	// A hot key re-set many times never grows the entry map past its
	// bound, so eviction alone would leave one stale marker per Set.
	for i := 0; i < 10000; i++ {
		c.Set("hot-key", i, time.Minute)
	}

	if c.Len() != 1 {
		t.Fatalf("expected 1 live entry, got %d", c.Len())
	}
	c.mu.Lock()
	queueLen := len(c.queue)
	c.mu.Unlock()
	if queueLen > 2*c.maxEntries {
		t.Errorf("expected queue compacted near live size, got %d markers for 1 entry", queueLen)
	}

	// Recency semantics survive compaction: the re-set key is newest.
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		c.Set(k, 0, time.Minute)
	}
	if _, ok := c.Get("hot-key"); ok {
		t.Error("expected hot-key evicted as the oldest once the bound filled")
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New(10)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a deleted")
	}

	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("expected b gone after Clear")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(64)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", j%32)
				switch j % 4 {
				case 0:
					c.Set(key, n, time.Minute)
				case 1:
					c.Get(key)
				case 2:
					c.Delete(key)
				default:
					c.Len()
				}
			}
		}(i)
	}

	wg.Wait()
}
