package rng

import (
	"sync"
	"testing"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 100; i++ {
		if av, bv := a.IntN(1000), b.IntN(1000); av != bv {
			t.Fatalf("draw %d diverged: %d != %d", i, av, bv)
		}
	}

	if af, bf := a.Float64(), b.Float64(); af != bf {
		t.Errorf("Float64 diverged: %v != %v", af, bf)
	}
}

func TestIntBetweenBounds(t *testing.T) {
	s := New(7)

	for i := 0; i < 1000; i++ {
		v := IntBetween(s, -5, 5)
		if v < -5 || v > 5 {
			t.Fatalf("IntBetween(-5, 5) returned %d", v)
		}
	}

	if v := IntBetween(s, 3, 3); v != 3 {
		t.Errorf("degenerate range should return its only value, got %d", v)
	}
}

func TestConcurrentDraws(t *testing.T) {
	s := New(99)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if v := s.IntN(10); v < 0 || v >= 10 {
					t.Errorf("IntN(10) out of range: %d", v)
					return
				}
			}
		}()
	}

	wg.Wait()
}
