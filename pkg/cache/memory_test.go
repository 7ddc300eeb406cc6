package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	Symbol string  `json:"symbol"`
	Close  float64 `json:"close"`
}

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	in := []payload{{Symbol: "BTCUSDT", Close: 100.5}, {Symbol: "ETHUSDT", Close: 50}}
	if err := mc.Set(ctx, "k", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out []payload
	if err := mc.Get(ctx, "k", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestMemoryCacheStringValue(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "s", "raw value", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var s string
	if err := mc.Get(ctx, "s", &s); err != nil {
		t.Fatalf("get: %v", err)
	}
	if s != "raw value" {
		t.Fatalf("got %q", s)
	}
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var s string
	if err := mc.Get(ctx, "absent", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := mc.Set(ctx, "short", "v", time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := mc.Get(ctx, "short", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryCacheTryLock(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	ok, err := mc.TryLock(ctx, "lock", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first TryLock: ok=%v err=%v", ok, err)
	}
	ok, err = mc.TryLock(ctx, "lock", time.Minute)
	if err != nil || ok {
		t.Fatalf("second TryLock should fail: ok=%v err=%v", ok, err)
	}
	if err := mc.Unlock(ctx, "lock"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	ok, err = mc.TryLock(ctx, "lock", time.Minute)
	if err != nil || !ok {
		t.Fatalf("TryLock after unlock: ok=%v err=%v", ok, err)
	}
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "a", "1", time.Minute); err != nil {
		t.Fatalf("set a: %v", err)
	}
	if err := mc.Set(ctx, "b", "2", time.Minute); err != nil {
		t.Fatalf("set b: %v", err)
	}
	var s string
	if err := mc.Get(ctx, "b", &s); err != nil { // refresh b so a is oldest
		t.Fatalf("get b: %v", err)
	}
	if err := mc.Set(ctx, "c", "3", time.Minute); err != nil {
		t.Fatalf("set c: %v", err)
	}

	if err := mc.Get(ctx, "a", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected a evicted, got %v", err)
	}
	if err := mc.Get(ctx, "b", &s); err != nil {
		t.Fatalf("b should survive eviction: %v", err)
	}
}
