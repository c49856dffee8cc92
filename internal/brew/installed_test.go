package brew

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// testClock is a controllable time source.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestInstalledCache(ttl time.Duration, clock *testClock, tokens []string, listErr error, calls *int) *InstalledCache {
	c := NewInstalledCache(ttl)
	c.now = clock.now
	c.list = func(ctx context.Context) ([]string, error) {
		*calls++
		return tokens, listErr
	}
	return c
}

func TestInstalledCacheCachesWithinTTL(t *testing.T) {
	clock := &testClock{t: time.Now()}
	calls := 0
	c := newTestInstalledCache(5*time.Minute, clock, []string{"firefox", "keka"}, nil, &calls)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if !c.Contains(ctx, "firefox") {
			t.Fatal("Contains(firefox) = false, want true")
		}
	}
	if calls != 1 {
		t.Errorf("list calls = %d, want 1 within TTL", calls)
	}

	clock.advance(6 * time.Minute)
	c.Contains(ctx, "firefox")
	if calls != 2 {
		t.Errorf("list calls = %d, want 2 after TTL expiry", calls)
	}
}

func TestInstalledCacheForceRefresh(t *testing.T) {
	clock := &testClock{t: time.Now()}
	calls := 0
	c := newTestInstalledCache(5*time.Minute, clock, []string{"keka"}, nil, &calls)

	ctx := context.Background()
	c.Tokens(ctx, false)
	c.Tokens(ctx, true)
	if calls != 2 {
		t.Errorf("list calls = %d, want 2 with force", calls)
	}
}

func TestInstalledCacheTokensReturnsCopy(t *testing.T) {
	clock := &testClock{t: time.Now()}
	calls := 0
	c := newTestInstalledCache(5*time.Minute, clock, []string{"keka"}, nil, &calls)

	ctx := context.Background()
	tokens := c.Tokens(ctx, false)
	delete(tokens, "keka")

	if !c.Contains(ctx, "keka") {
		t.Error("mutating the returned map affected the cache")
	}
}

func TestInstalledCacheDegradesToEmpty(t *testing.T) {
	clock := &testClock{t: time.Now()}
	calls := 0
	c := newTestInstalledCache(5*time.Minute, clock, nil, fmt.Errorf("brew exploded"), &calls)

	ctx := context.Background()
	if c.Contains(ctx, "anything") {
		t.Error("Contains() = true after listing failure")
	}

	// The empty result is cached; a flapping brew is not hammered.
	c.Contains(ctx, "anything")
	c.Contains(ctx, "other")
	if calls != 1 {
		t.Errorf("list calls = %d, want 1 (failure result cached)", calls)
	}
}

func TestInstalledCacheInvalidate(t *testing.T) {
	clock := &testClock{t: time.Now()}
	calls := 0
	c := newTestInstalledCache(5*time.Minute, clock, []string{"keka"}, nil, &calls)

	ctx := context.Background()
	c.Contains(ctx, "keka")
	c.Invalidate()

	if cached, _, _ := c.Stats(); cached {
		t.Error("Stats() reports cached state after Invalidate()")
	}

	c.Contains(ctx, "keka")
	if calls != 2 {
		t.Errorf("list calls = %d, want 2 after invalidation", calls)
	}
}

func TestInstalledCacheStats(t *testing.T) {
	clock := &testClock{t: time.Now()}
	calls := 0
	c := newTestInstalledCache(5*time.Minute, clock, []string{"a", "b", " ", ""}, nil, &calls)

	if cached, _, _ := c.Stats(); cached {
		t.Error("Stats() reports cached before first use")
	}

	c.Tokens(context.Background(), false)
	clock.advance(time.Minute)

	cached, count, age := c.Stats()
	if !cached || count != 2 {
		t.Errorf("Stats() = (%v, %d), want cached with 2 tokens (blanks dropped)", cached, count)
	}
	if age != time.Minute {
		t.Errorf("age = %v, want 1m", age)
	}
}
