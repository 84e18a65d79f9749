package ecs

// World owns the entity pool, the component registry and a deferred
// destruction queue. Entities marked for destruction stay alive until
// FlushDestroyQueue, which the cleanup system calls at the end of a tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
	onDestroy    []func(EntityID)
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID { return w.pool.Create() }

func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

// Len is the number of live entities, queued ones included.
func (w *World) Len() int { return w.pool.Len() }

// OnDestroy registers fn to run for every entity destroyed by the world,
// before its components are removed.
func (w *World) OnDestroy(fn func(EntityID)) {
	w.onDestroy = append(w.onDestroy, fn)
}

// MarkForDestruction queues id for the end-of-tick flush.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending is the number of queued destructions.
func (w *World) Pending() int { return len(w.destroyQueue) }

// DestroyNow destroys id immediately, bypassing the queue.
func (w *World) DestroyNow(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	for _, fn := range w.onDestroy {
		fn(id)
	}
	w.registry.RemoveAll(id)
	w.pool.Destroy(id)
}

// FlushDestroyQueue destroys every queued entity. Ids queued twice or already
// dead are skipped.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		w.DestroyNow(id)
	}
	clear(w.destroyQueue)
	w.destroyQueue = w.destroyQueue[:0]
}
