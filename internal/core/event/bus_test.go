package event

import "testing"

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []BulletHit
	Subscribe(b, func(e BulletHit) { got = append(got, e) })

	Emit(b, BulletHit{Slot: 3})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("event delivered before swap: %+v", got)
	}
	if n := len(Pending[BulletHit](b)); n != 1 {
		t.Fatalf("Pending = %d, want 1", n)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 || got[0].Slot != 3 {
		t.Fatalf("got %+v, want one hit on slot 3", got)
	}
	if b.PendingCount() != 0 {
		t.Errorf("back buffer not cleared: %d", b.PendingCount())
	}
}

func TestBusTypesAreSeparate(t *testing.T) {
	b := NewBus()
	hits, overs := 0, 0
	Subscribe(b, func(BulletHit) { hits++ })
	Subscribe(b, func(LifeTimeOver) { overs++ })

	Emit(b, LifeTimeOver{Batch: 1})
	Emit(b, LifeTimeOver{Batch: 2})
	b.SwapBuffers()
	b.DispatchAll()
	if hits != 0 || overs != 2 {
		t.Fatalf("hits=%d overs=%d", hits, overs)
	}
}

func TestEmitNilBus(t *testing.T) {
	Emit[BulletHit](nil, BulletHit{})
}
