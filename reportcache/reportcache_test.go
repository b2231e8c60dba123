package reportcache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type board struct {
	Names []string
	Pot   int
}

func TestThrough(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(8, time.Hour)
	builds := 0
	build := func() (*board, error) {
		builds++
		return &board{Names: []string{"ann", "bob"}, Pot: 70}, nil
	}

	key := Key("2025", "picks")
	for i := 0; i < 3; i++ {
		b, err := Through(ctx, c, key, build)
		if err != nil {
			t.Fatal(err)
		}
		if b.Pot != 70 || len(b.Names) != 2 {
			t.Errorf("Through() = %+v", b)
		}
	}
	if builds != 1 {
		t.Errorf("built %d times, want 1", builds)
	}

	c.CacheInvalidate(ctx, "2025")
	if _, err := Through(ctx, c, key, build); err != nil {
		t.Fatal(err)
	}
	if builds != 2 {
		t.Errorf("built %d times after invalidation, want 2", builds)
	}
}

func TestThroughDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(8, time.Hour)
	unavailable := errors.New("not yet")
	calls := 0
	build := func() (*board, error) {
		calls++
		return nil, unavailable
	}
	for i := 0; i < 2; i++ {
		if _, err := Through(ctx, c, Key("2025", "prizes"), build); !errors.Is(err, unavailable) {
			t.Errorf("Through() = %v, want %v", err, unavailable)
		}
	}
	if calls != 2 {
		t.Errorf("build called %d times, want 2", calls)
	}
}

func TestInvalidateOnlyTouchesOneRound(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(8, time.Hour)
	c.Set(ctx, Key("2025", "picks"), []byte("{}"))
	c.Set(ctx, Key("2025", "earnings", "ann"), []byte("{}"))
	c.Set(ctx, Key("20251", "picks"), []byte("{}"))

	c.CacheInvalidate(ctx, "2025")
	if _, ok := c.Get(ctx, Key("2025", "earnings", "ann")); ok {
		t.Errorf("2025 earnings survived invalidation")
	}
	if _, ok := c.Get(ctx, Key("20251", "picks")); !ok {
		t.Errorf("round 20251 was invalidated along with 2025")
	}
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Nop
	c.Set(ctx, "k", []byte("v"))
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Nop remembered something")
	}
}

func TestKey(t *testing.T) {
	if got := Key("2025", "earnings", "ann"); got != "2025/earnings/ann" {
		t.Errorf("Key() = %q", got)
	}
}
