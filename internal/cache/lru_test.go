package cache

import "testing"

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b survived eviction")
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestLRUReplaceAndRemove(t *testing.T) {
	c := New[string, []int64](4)
	c.Add("k", []int64{1})
	c.Add("k", []int64{1, 2})

	v, ok := c.Get("k")
	if !ok || len(v) != 2 {
		t.Fatalf("Get(k) = %v, %v", v, ok)
	}
	c.Remove("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("k still present after Remove")
	}
}

func TestNewPanicsOnZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New[int, int](0)
}
