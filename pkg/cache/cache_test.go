package cache

import (
	"testing"
	"time"
)

func TestCacheExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache().WithClock(func() time.Time { return now })

	c.Set("jti-1", true, time.Minute)
	c.Set("jti-2", true, time.Hour)

	if !c.Has("jti-1") || !c.Has("jti-2") {
		t.Fatal("expected both keys present")
	}

	now = now.Add(2 * time.Minute)
	if c.Has("jti-1") {
		t.Error("expected jti-1 to be expired")
	}
	if c.Len() != 2 {
		t.Errorf("expired item should remain until purge, len=%d", c.Len())
	}

	if removed := c.Purge(); removed != 1 {
		t.Errorf("Purge() removed %d, want 1", removed)
	}
	if !c.Has("jti-2") {
		t.Error("expected jti-2 to survive purge")
	}
}

func TestCacheDeleteAndClose(t *testing.T) {
	c := NewCache()
	c.StartGC(10 * time.Millisecond)
	defer c.Close()

	c.Set("k", "v", time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected key to be deleted")
	}

	c.Close()
	c.Close()
}
