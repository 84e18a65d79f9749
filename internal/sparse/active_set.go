package sparse

// ActiveSet tracks which slot indexes are live. Dense holds the live indexes
// packed for iteration; sparse maps an index to its dense position or -1.
// Invariant: sparse[dense[k]] == k for every k < len(dense).
type ActiveSet struct {
	dense  []int
	sparse []int
}

// NewActiveSet returns a set pre-sized for indexes in [0, capacity).
func NewActiveSet(capacity int) *ActiveSet {
	s := &ActiveSet{}
	s.Resize(capacity)
	return s
}

// Resize grows the sparse table to hold at least n indexes. It never shrinks.
func (s *ActiveSet) Resize(n int) {
	if n <= len(s.sparse) {
		return
	}
	old := len(s.sparse)
	if cap(s.sparse) >= n {
		s.sparse = s.sparse[:n]
	} else {
		grown := make([]int, n)
		copy(grown, s.sparse)
		s.sparse = grown
	}
	for i := old; i < n; i++ {
		s.sparse[i] = -1
	}
	if cap(s.dense) < n {
		d := make([]int, len(s.dense), n)
		copy(d, s.dense)
		s.dense = d
	}
}

// Activate marks i live. Negative indexes are ignored and activating a live
// index is a no-op.
func (s *ActiveSet) Activate(i int) {
	if i < 0 {
		return
	}
	if i >= len(s.sparse) {
		n := len(s.sparse) * 2
		if n < i+1 {
			n = i + 1
		}
		s.Resize(n)
	}
	if s.sparse[i] != -1 {
		return
	}
	s.sparse[i] = len(s.dense)
	s.dense = append(s.dense, i)
}

// Deactivate removes i with a swap-remove. Unknown or inactive indexes are ignored.
func (s *ActiveSet) Deactivate(i int) {
	if i < 0 || i >= len(s.sparse) {
		return
	}
	pos := s.sparse[i]
	if pos == -1 {
		return
	}
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[pos] = moved
	s.sparse[moved] = pos
	s.dense = s.dense[:last]
	s.sparse[i] = -1
}

func (s *ActiveSet) Contains(i int) bool {
	return i >= 0 && i < len(s.sparse) && s.sparse[i] != -1
}

// Dense returns the live indexes. The order is unstable across removals and
// the slice is only valid until the next mutation.
func (s *ActiveSet) Dense() []int { return s.dense }

func (s *ActiveSet) Len() int { return len(s.dense) }

// Cap returns how many indexes the sparse table currently covers.
func (s *ActiveSet) Cap() int { return len(s.sparse) }

// Clear deactivates everything and keeps the allocated capacity.
func (s *ActiveSet) Clear() {
	for _, i := range s.dense {
		s.sparse[i] = -1
	}
	s.dense = s.dense[:0]
}

// ActivateRange activates [start, end] inclusive.
func (s *ActiveSet) ActivateRange(start, end int) {
	if start < 0 {
		start = 0
	}
	s.Resize(end + 1)
	for i := start; i <= end; i++ {
		s.Activate(i)
	}
}

// DeactivateRange deactivates [start, end] inclusive.
func (s *ActiveSet) DeactivateRange(start, end int) {
	for i := start; i <= end; i++ {
		s.Deactivate(i)
	}
}

// ActivateAll activates every index in [0, Cap()).
func (s *ActiveSet) ActivateAll() {
	if len(s.sparse) == 0 {
		return
	}
	s.ActivateRange(0, len(s.sparse)-1)
}

func (s *ActiveSet) DeactivateAll() { s.Clear() }
