package ecs

import "testing"

func TestZeroIDNeverAlive(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	if id.IsZero() {
		t.Fatal("first entity got the zero id")
	}
	if w.Alive(0) {
		t.Error("zero id reported alive")
	}
}

func TestStaleHandleAfterReuse(t *testing.T) {
	w := NewWorld()
	a := w.CreateEntity()
	w.DestroyNow(a)
	b := w.CreateEntity()
	if a.Index() != b.Index() {
		t.Fatalf("Expected slot reuse, got %d and %d", a.Index(), b.Index())
	}
	if w.Alive(a) || !w.Alive(b) {
		t.Errorf("Expected a stale and b alive, got a=%v b=%v", w.Alive(a), w.Alive(b))
	}
}

func TestDeferredDestroy(t *testing.T) {
	w := NewWorld()
	store := NewPtrComponentStore[int]()
	w.Registry().Register(store)

	var hooked []EntityID
	w.OnDestroy(func(id EntityID) { hooked = append(hooked, id) })

	id := w.CreateEntity()
	v := 7
	store.Set(id, &v)
	w.MarkForDestruction(id)
	w.MarkForDestruction(id)
	if !w.Alive(id) || w.Pending() != 2 {
		t.Fatal("Expected entity alive until flush")
	}
	w.FlushDestroyQueue()
	if w.Alive(id) || store.Has(id) {
		t.Error("Expected entity and component gone")
	}
	if len(hooked) != 1 {
		t.Errorf("Expected one destroy hook call, got %d", len(hooked))
	}
	if w.Len() != 0 {
		t.Errorf("Expected no live entities, got %d", w.Len())
	}
}

func TestEach2(t *testing.T) {
	a := NewPtrComponentStore[int]()
	b := NewPtrComponentStore[string]()
	x, y := 1, 2
	s := "s"
	a.Set(1, &x)
	a.Set(2, &y)
	b.Set(2, &s)
	n := 0
	Each2(a, b, func(id EntityID, _ *int, _ *string) {
		if id != 2 {
			t.Errorf("unexpected entity %d", id)
		}
		n++
	})
	if n != 1 {
		t.Errorf("Expected one match, got %d", n)
	}
}
