package pool

// Pool keeps idle handles bucketed by a key (batch capacity, attachment
// pooling id). Each bucket is a LIFO stack. Pool does not own lifetimes: the
// destroy callback decides what eviction means for a handle.
type Pool[K comparable, H any] struct {
	buckets map[K][]H
	destroy func(H)
	count   int
}

// New creates a pool. destroy is called for every handle evicted by FreeAll
// or FreeMatching; nil means eviction just drops the handle.
func New[K comparable, H any](destroy func(H)) *Pool[K, H] {
	return &Pool[K, H]{
		buckets: make(map[K][]H, 8),
		destroy: destroy,
	}
}

// Push stores an idle handle under key.
func (p *Pool[K, H]) Push(h H, key K) {
	p.buckets[key] = append(p.buckets[key], h)
	p.count++
}

// Pop returns the most recently pushed handle for key.
func (p *Pool[K, H]) Pop(key K) (H, bool) {
	var zero H
	stack := p.buckets[key]
	if len(stack) == 0 {
		return zero, false
	}
	last := len(stack) - 1
	h := stack[last]
	stack[last] = zero
	if last == 0 {
		delete(p.buckets, key)
	} else {
		p.buckets[key] = stack[:last]
	}
	p.count--
	return h, true
}

// FreeAll destroys every pooled handle and empties the pool.
func (p *Pool[K, H]) FreeAll() {
	for key := range p.buckets {
		p.FreeMatching(key)
	}
}

// FreeMatching destroys the handles pooled under key and drops the bucket.
func (p *Pool[K, H]) FreeMatching(key K) {
	stack, ok := p.buckets[key]
	if !ok {
		return
	}
	delete(p.buckets, key)
	p.count -= len(stack)
	if p.destroy == nil {
		return
	}
	for _, h := range stack {
		p.destroy(h)
	}
}

// Clear forgets every handle without destroying it.
func (p *Pool[K, H]) Clear() {
	clear(p.buckets)
	p.count = 0
}

// Len returns the number of pooled handles across all keys.
func (p *Pool[K, H]) Len() int { return p.count }

// Count returns the number of handles pooled under key.
func (p *Pool[K, H]) Count(key K) int { return len(p.buckets[key]) }

// Info returns the handle count per non-empty key.
func (p *Pool[K, H]) Info() map[K]int {
	out := make(map[K]int, len(p.buckets))
	for k, stack := range p.buckets {
		if len(stack) > 0 {
			out[k] = len(stack)
		}
	}
	return out
}

// Each visits every pooled handle. The pool must not be mutated from fn.
func (p *Pool[K, H]) Each(fn func(K, H)) {
	for k, stack := range p.buckets {
		for _, h := range stack {
			fn(k, h)
		}
	}
}
