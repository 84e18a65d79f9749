package pool

import "testing"

type handle struct {
	id        int
	destroyed bool
}

func TestPushPopLIFO(t *testing.T) {
	p := New[int, *handle](nil)
	a, b := &handle{id: 1}, &handle{id: 2}
	p.Push(a, 8)
	p.Push(b, 8)

	got, ok := p.Pop(8)
	if !ok || got != b {
		t.Fatalf("Pop(8) = %v %v, want handle 2", got, ok)
	}
	got, ok = p.Pop(8)
	if !ok || got != a {
		t.Fatalf("Pop(8) = %v %v, want handle 1", got, ok)
	}
	if _, ok := p.Pop(8); ok {
		t.Fatal("Pop on drained key should report not found")
	}
}

func TestPopMissingKey(t *testing.T) {
	p := New[int, *handle](nil)
	p.Push(&handle{}, 4)
	if h, ok := p.Pop(16); ok || h != nil {
		t.Fatalf("Pop(16) = %v %v, want nil false", h, ok)
	}
	if p.Len() != 1 {
		t.Errorf("Len = %d, want 1", p.Len())
	}
}

func TestFreeMatchingDestroys(t *testing.T) {
	var destroyed []*handle
	p := New[int, *handle](func(h *handle) {
		h.destroyed = true
		destroyed = append(destroyed, h)
	})
	keep := &handle{id: 3}
	evict := &handle{id: 4}
	p.Push(keep, 4)
	p.Push(evict, 8)

	p.FreeMatching(8)
	if _, ok := p.Pop(8); ok {
		t.Fatal("Pop(8) after FreeMatching(8) should report not found")
	}
	if !evict.destroyed || keep.destroyed {
		t.Fatalf("destroyed flags: keep=%v evict=%v", keep.destroyed, evict.destroyed)
	}
	if p.Len() != 1 || p.Count(4) != 1 {
		t.Fatalf("Len=%d Count(4)=%d", p.Len(), p.Count(4))
	}

	p.FreeAll()
	if p.Len() != 0 || len(destroyed) != 2 {
		t.Fatalf("after FreeAll Len=%d destroyed=%d", p.Len(), len(destroyed))
	}
}

func TestInfoAndClear(t *testing.T) {
	p := New[uint32, int](func(int) { t.Fatal("Clear must not destroy") })
	p.Push(10, 1)
	p.Push(11, 1)
	p.Push(12, 2)

	info := p.Info()
	if info[1] != 2 || info[2] != 1 || len(info) != 2 {
		t.Fatalf("Info = %v", info)
	}
	p.Clear()
	if p.Len() != 0 || len(p.Info()) != 0 {
		t.Fatalf("Clear left Len=%d Info=%v", p.Len(), p.Info())
	}
}
