package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddKeepsOrderAndDuplicates(t *testing.T) {
	carts := NewCartService(0)

	assert.Equal(t, 1, carts.Add("s1", line("Rocket Small", "15", 2, 18)))
	assert.Equal(t, 2, carts.Add("s1", line("Atom Bomb", "12", 1, 18)))
	assert.Equal(t, 3, carts.Add("s1", line("Rocket Small", "15", 1, 18)))

	lines := carts.Snapshot("s1")
	require.Len(t, lines, 3)
	assert.Equal(t, "Rocket Small", lines[0].Product)
	assert.Equal(t, "Atom Bomb", lines[1].Product)
	assert.Equal(t, 1, lines[2].Quantity)
}

func TestCartService_Remove(t *testing.T) {
	carts := NewCartService(0)
	carts.Add("s1", line("Rocket Small", "15", 2, 18))
	carts.Add("s1", line("Atom Bomb", "12", 1, 18))
	carts.Add("s1", line("Baby Rocket", "8", 4, 18))

	assert.True(t, carts.Remove("s1", 1))

	lines := carts.Snapshot("s1")
	require.Len(t, lines, 2)
	assert.Equal(t, "Rocket Small", lines[0].Product)
	assert.Equal(t, "Baby Rocket", lines[1].Product)
}

func TestCartService_RemoveOutOfRangeIsNoop(t *testing.T) {
	carts := NewCartService(0)
	carts.Add("s1", line("Rocket Small", "15", 2, 18))

	assert.False(t, carts.Remove("s1", 5))
	assert.False(t, carts.Remove("s1", -1))
	assert.False(t, carts.Remove("unknown", 0))
	assert.Len(t, carts.Snapshot("s1"), 1)
}

func TestCartService_ClearAndSnapshot(t *testing.T) {
	carts := NewCartService(0)
	carts.Add("s1", line("Rocket Small", "15", 2, 18))

	carts.Clear("s1")
	carts.Clear("never-used")

	lines := carts.Snapshot("s1")
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
	assert.NotNil(t, carts.Snapshot("never-used"))
}

func TestCartService_SnapshotIsACopy(t *testing.T) {
	carts := NewCartService(0)
	carts.Add("s1", line("Rocket Small", "15", 2, 18))

	lines := carts.Snapshot("s1")
	lines[0].Quantity = 99

	assert.Equal(t, 2, carts.Snapshot("s1")[0].Quantity)
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	carts := NewCartService(0)
	carts.Add("a", line("Rocket Small", "15", 2, 18))
	carts.Add("b", line("Atom Bomb", "12", 1, 18))
	carts.Add("", line("Baby Rocket", "8", 1, 18))

	assert.Len(t, carts.Snapshot("a"), 1)
	assert.Len(t, carts.Snapshot("b"), 1)
	assert.Equal(t, "Baby Rocket", carts.Snapshot(DefaultSession)[0].Product)

	carts.Clear("a")
	assert.Empty(t, carts.Snapshot("a"))
	assert.Len(t, carts.Snapshot("b"), 1)
	assert.Equal(t, 3, carts.Sessions())
}

func TestCartService_ConcurrentAdds(t *testing.T) {
	carts := NewCartService(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			carts.Add("shared", line("Baby Rocket", "8", 1, 18))
		}()
	}
	wg.Wait()

	assert.Len(t, carts.Snapshot("shared"), 50)
}

func TestCartService_Checkout(t *testing.T) {
	carts := NewCartService(0)
	carts.Add("s1", line("Rocket Small", "15", 2, 18))

	err := carts.Checkout("s1", func(lines []entity.CartLine) error {
		require.Len(t, lines, 1)
		return errors.New("save failed")
	})
	assert.Error(t, err)
	assert.Len(t, carts.Snapshot("s1"), 1, "failed checkout must keep the cart")

	var seen int
	err = carts.Checkout("s1", func(lines []entity.CartLine) error {
		seen = len(lines)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
	assert.Empty(t, carts.Snapshot("s1"))
}

func TestCartService_Totals(t *testing.T) {
	carts := NewCartService(0)
	carts.Add("s1", line("Rocket Small", "15", 2, 18))
	carts.Add("s1", line("Safety Matches", "5", 7, 5))

	totals := carts.Totals("s1")
	assert.Equal(t, 2, totals.Items)
	assert.Equal(t, "65.00", totals.SubTotal.StringFixed(2))
	assert.Equal(t, "3.58", totals.CGST.StringFixed(2))
	assert.Equal(t, "3.58", totals.SGST.StringFixed(2))
	assert.Equal(t, "72.16", totals.Total.StringFixed(2))

	empty := carts.Totals("nobody")
	assert.Zero(t, empty.Items)
	assert.True(t, empty.Total.IsZero())
}

func TestCartService_SweepDropsIdleCarts(t *testing.T) {
	carts := NewCartService(0)
	carts.idleTTL = time.Hour

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	carts.now = func() time.Time { return now }

	carts.Add("old", line("Rocket Small", "15", 1, 18))
	now = now.Add(50 * time.Minute)
	carts.Add("fresh", line("Atom Bomb", "12", 1, 18))
	now = now.Add(20 * time.Minute)

	assert.Equal(t, 1, carts.sweep())
	assert.Equal(t, 1, carts.Sessions())
	assert.Empty(t, carts.Snapshot("old"))
	assert.Len(t, carts.Snapshot("fresh"), 1)
}

func TestCartService_SweepMarksEvictedCarts(t *testing.T) {
	carts := NewCartService(0)
	carts.idleTTL = time.Hour

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	carts.now = func() time.Time { return now }

	carts.Add("old", line("Rocket Small", "15", 1, 18))
	stale := carts.getCart("old", false)
	now = now.Add(2 * time.Hour)

	require.Equal(t, 1, carts.sweep())
	assert.True(t, stale.evicted)

	carts.Add("old", line("Atom Bomb", "12", 1, 18))
	lines := carts.Snapshot("old")
	require.Len(t, lines, 1)
	assert.Equal(t, "Atom Bomb", lines[0].Product)
}

func TestCartService_AddDuringEvictionIsNotLost(t *testing.T) {
	carts := NewCartService(0)

	carts.Add("counter-1", line("Rocket Small", "15", 1, 18))
	stale := carts.getCart("counter-1", false)

	// Hold the cart while an add is in flight, then evict it the way sweep does
	stale.mu.Lock()
	done := make(chan struct{})
	go func() {
		defer close(done)
		carts.Add("counter-1", line("Atom Bomb", "12", 1, 18))
	}()
	time.Sleep(20 * time.Millisecond)

	carts.mu.Lock()
	stale.evicted = true
	delete(carts.carts, "counter-1")
	carts.mu.Unlock()
	stale.mu.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("add did not finish")
	}

	lines := carts.Snapshot("counter-1")
	require.Len(t, lines, 1)
	assert.Equal(t, "Atom Bomb", lines[0].Product)
}

func TestCartService_CloseIsIdempotent(t *testing.T) {
	carts := NewCartService(time.Minute)
	carts.Close()
	carts.Close()
}
