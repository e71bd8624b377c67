package memcache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/farmmap/internal/adapters/memcache"
	"github.com/samirrijal/farmmap/internal/core/domain"
)

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := memcache.New(time.Minute)

	if _, err := c.Get(ctx, "plants:id:1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on miss, got %v", err)
	}

	buf := []byte(`{"id":"1"}`)
	if err := c.Set(ctx, "plants:id:1", buf, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	buf[2] = 'X'

	got, err := c.Get(ctx, "plants:id:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"id":"1"}` {
		t.Errorf("stored value aliased caller buffer: %s", got)
	}

	_ = c.Delete(ctx, "plants:id:1")
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := memcache.New(time.Minute)
	_ = c.Set(ctx, "k", []byte("v"), 1)
	time.Sleep(1100 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected expired entry, got %v", err)
	}
}
