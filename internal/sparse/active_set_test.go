package sparse

import (
	"math/rand/v2"
	"sort"
	"testing"
)

func checkInvariant(t *testing.T, s *ActiveSet) {
	t.Helper()
	for k, i := range s.dense {
		if s.sparse[i] != k {
			t.Fatalf("sparse[%d] = %d, want %d", i, s.sparse[i], k)
		}
	}
	live := 0
	for _, pos := range s.sparse {
		if pos != -1 {
			live++
		}
	}
	if live != len(s.dense) {
		t.Fatalf("sparse has %d live entries, dense has %d", live, len(s.dense))
	}
}

func sortedDense(s *ActiveSet) []int {
	out := append([]int(nil), s.Dense()...)
	sort.Ints(out)
	return out
}

func TestActiveSetSequence(t *testing.T) {
	s := NewActiveSet(0)
	for _, i := range []int{3, 1, 4, 1, 5} {
		s.Activate(i)
		checkInvariant(t, s)
	}
	s.Deactivate(1)
	checkInvariant(t, s)
	s.Deactivate(7)
	checkInvariant(t, s)

	got := sortedDense(s)
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("dense = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dense = %v, want %v", got, want)
		}
	}
	if s.Contains(1) {
		t.Error("1 should be inactive")
	}
	for _, i := range want {
		if !s.Contains(i) {
			t.Errorf("%d should be active", i)
		}
	}
}

func TestActiveSetRandomSequences(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*31))
		s := NewActiveSet(rng.IntN(8))
		want := map[int]bool{}

		for step := 0; step < 500; step++ {
			i := rng.IntN(40)
			switch r := rng.IntN(100); {
			case r < 55:
				s.Activate(i)
				want[i] = true
			case r < 98:
				s.Deactivate(i)
				delete(want, i)
			default:
				s.Clear()
				clear(want)
			}
			checkInvariant(t, s)

			if s.Len() != len(want) {
				t.Fatalf("seed %d step %d: Len = %d, want %d", seed, step, s.Len(), len(want))
			}
			for _, k := range s.Dense() {
				if !want[k] {
					t.Fatalf("seed %d step %d: %d in dense but inactive", seed, step, k)
				}
			}
			for k := -1; k <= 41; k++ {
				if s.Contains(k) != want[k] {
					t.Fatalf("seed %d step %d: Contains(%d) = %v, want %v", seed, step, k, s.Contains(k), want[k])
				}
			}
		}
	}
}

func TestActiveSetIgnoresNegative(t *testing.T) {
	s := NewActiveSet(4)
	s.Activate(-1)
	s.Deactivate(-1)
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
	if s.Contains(-1) {
		t.Fatal("negative index reported active")
	}
}

func TestActiveSetGrowth(t *testing.T) {
	s := NewActiveSet(2)
	s.Activate(2)
	if s.Cap() != 4 {
		t.Errorf("Cap = %d, want 4 (doubled)", s.Cap())
	}
	s.Activate(100)
	if s.Cap() != 101 {
		t.Errorf("Cap = %d, want 101", s.Cap())
	}
	checkInvariant(t, s)
}

func TestActiveSetClearKeepsCapacity(t *testing.T) {
	s := NewActiveSet(8)
	s.ActivateAll()
	if s.Len() != 8 {
		t.Fatalf("Len = %d, want 8", s.Len())
	}
	s.Clear()
	if s.Len() != 0 || s.Cap() != 8 {
		t.Fatalf("after Clear Len=%d Cap=%d", s.Len(), s.Cap())
	}
	for i := 0; i < 8; i++ {
		if s.Contains(i) {
			t.Fatalf("%d still active after Clear", i)
		}
	}
}

func TestActiveSetRanges(t *testing.T) {
	s := NewActiveSet(0)
	s.ActivateRange(2, 5)
	s.DeactivateRange(3, 4)
	checkInvariant(t, s)
	got := sortedDense(s)
	if len(got) != 2 || got[0] != 2 || got[1] != 5 {
		t.Fatalf("dense = %v, want [2 5]", got)
	}
}
