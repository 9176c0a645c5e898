package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"delivery-optimizer/internal/ports"
)

func newTestRedisCache(t *testing.T) *RedisMatrixCache {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedisMatrixCache("redis://"+mr.Addr(), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestRedisMatrixCacheRoundTrip(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	legs := map[ports.PairKey]ports.TravelLeg{
		"44.99046,-93.09789|44.95000,-93.10000": {DistanceMeters: 5200.5, DurationSeconds: 480.2},
	}
	if err := c.PutMany(ctx, legs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := c.GetMany(ctx, []ports.PairKey{
		"44.99046,-93.09789|44.95000,-93.10000",
		"missing|pair",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(got))
	}
	leg := got["44.99046,-93.09789|44.95000,-93.10000"]
	if leg.DistanceMeters != 5200.5 || leg.DurationSeconds != 480.2 {
		t.Errorf("leg = %+v, want 5200.5m / 480.2s", leg)
	}
}

func TestRedisMatrixCacheSkipsCorruptEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedisMatrixCache("redis://"+mr.Addr(), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if err := mr.Set("matrix:a|b", "not-a-leg"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	got, err := c.GetMany(ctx, []ports.PairKey{"a|b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("corrupt entry should read as a miss, got %+v", got)
	}
}

func TestRedisMatrixCacheEmptyBatches(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	if err := c.PutMany(ctx, nil); err != nil {
		t.Fatalf("put empty: %v", err)
	}
	got, err := c.GetMany(ctx, nil)
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}
