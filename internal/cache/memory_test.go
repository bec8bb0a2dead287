package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	key := MembershipKey("clinic-1", "user-1")
	if err := mc.Set(ctx, key, []byte("doctor"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := mc.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "doctor" {
		t.Errorf("expected doctor, got %s", val)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	if _, err := mc.Get(context.Background(), "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := mc.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss for expired key, got %v", err)
	}
}

func TestMemoryCacheClearPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	mc.Set(ctx, MembershipKey("clinic-1", "user-1"), []byte("a"), time.Minute)
	mc.Set(ctx, MembershipKey("clinic-1", "user-2"), []byte("b"), time.Minute)
	mc.Set(ctx, MembershipKey("clinic-2", "user-1"), []byte("c"), time.Minute)

	if err := mc.Clear(ctx, MembershipPattern("clinic-1")); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if ok, _ := mc.Exists(ctx, MembershipKey("clinic-1", "user-1")); ok {
		t.Error("clinic-1 memberships should be cleared")
	}
	if ok, _ := mc.Exists(ctx, MembershipKey("clinic-2", "user-1")); !ok {
		t.Error("clinic-2 memberships should survive")
	}
}
