package registry

import (
	"slices"
	"sync"
	"testing"

	"github.com/lixenwraith/danmaku/bullet"
)

// TestRegisterAndGet verifies basic lookup
func TestRegisterAndGet(t *testing.T) {
	r := New()
	p := bullet.NewPool(4)
	r.Register("enemy", p)

	got, ok := r.Get("enemy")
	if !ok || got != p {
		t.Errorf("Expected registered pool, got %v %v", got, ok)
	}
	if _, ok := r.Get("boss"); ok {
		t.Error("Expected missing key to report false")
	}
}

// TestGetOrCreateReuses verifies a key maps to one pool
func TestGetOrCreateReuses(t *testing.T) {
	r := New()
	a := r.GetOrCreate("enemy", 8)
	b := r.GetOrCreate("enemy", 999)

	if a != b {
		t.Error("Expected the same pool for the same key")
	}
	if a.Capacity() != 8 {
		t.Errorf("Expected capacity 8, got %d", a.Capacity())
	}
	if a.Sprite() != "enemy" {
		t.Errorf("Expected sprite to default to key, got %q", a.Sprite())
	}

	c := r.GetOrCreate("boss", 2, bullet.WithSprite("orb"))
	if c.Sprite() != "orb" {
		t.Errorf("Expected explicit sprite, got %q", c.Sprite())
	}
}

// TestKeysSorted verifies deterministic ordering for Keys, Each and Pools
func TestKeysSorted(t *testing.T) {
	r := New()
	for _, k := range []string{"zeta", "alpha", "mid"} {
		r.GetOrCreate(k, 1)
	}

	want := []string{"alpha", "mid", "zeta"}
	if got := r.Keys(); !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	var visited []string
	r.Each(func(key string, pool *bullet.Pool) {
		visited = append(visited, key)
		if pool.Sprite() != key {
			t.Errorf("Each: pool for %s has sprite %s", key, pool.Sprite())
		}
	})
	if !slices.Equal(visited, want) {
		t.Errorf("Expected Each order %v, got %v", want, visited)
	}

	pools := r.Pools()
	if len(pools) != 3 || pools[0].Sprite() != "alpha" {
		t.Errorf("Expected pools in key order, got %d pools", len(pools))
	}
}

// TestRemove verifies removal and Len
func TestRemove(t *testing.T) {
	r := New()
	r.GetOrCreate("a", 1)
	r.GetOrCreate("b", 1)

	if !r.Remove("a") {
		t.Error("Expected Remove to report presence")
	}
	if r.Remove("a") {
		t.Error("Expected second Remove to report absence")
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 pool, got %d", r.Len())
	}
}

// TestConcurrentGetOrCreate verifies racing creators agree on one pool
func TestConcurrentGetOrCreate(t *testing.T) {
	r := New()
	const workers = 16
	results := make([]*bullet.Pool, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.GetOrCreate("shared", 32)
		}()
	}
	wg.Wait()

	for i, p := range results {
		if p != results[0] {
			t.Fatalf("Worker %d got a different pool", i)
		}
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 pool, got %d", r.Len())
	}
}
