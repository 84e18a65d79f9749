package bullet

import "go.uber.org/zap"

// TimerID identifies a scheduled callback. Zero is never issued.
type TimerID uint32

type timer struct {
	id           TimerID
	wait         float64
	remaining    float64
	fn           func()
	repeat       bool
	onlyIfActive bool
}

// Schedule runs fn after the given number of seconds of batch time. Repeating
// timers rearm themselves. Callbacks fire at the end of the tick, after the
// life time check; with onlyIfActive a callback is dropped when the batch
// retired earlier in that tick or was retired by a callback before it.
func (b *Batch) Schedule(after float64, fn func(), repeat, onlyIfActive bool) TimerID {
	if after <= 0 || fn == nil {
		b.log.Error("計時器參數無效", zap.Float64("time", after), zap.Bool("has_fn", fn != nil))
		return 0
	}
	b.nextTimer++
	b.timers = append(b.timers, timer{
		id:           b.nextTimer,
		wait:         after,
		remaining:    after,
		fn:           fn,
		repeat:       repeat,
		onlyIfActive: onlyIfActive,
	})
	return b.nextTimer
}

// Unschedule removes a timer. It reports whether the timer existed.
func (b *Batch) Unschedule(id TimerID) bool {
	for k := range b.timers {
		if b.timers[k].id == id {
			b.timers = append(b.timers[:k], b.timers[k+1:]...)
			return true
		}
	}
	return false
}

// UnscheduleAll drops every timer.
func (b *Batch) UnscheduleAll() {
	clear(b.timers)
	b.timers = b.timers[:0]
}

func (b *Batch) TimerCount() int { return len(b.timers) }

type dueTimer struct {
	fn           func()
	onlyIfActive bool
}

// advanceTimers collects the callbacks that come due this tick. runDue
// fires them.
func (b *Batch) advanceTimers(dt float64) {
	if len(b.timers) == 0 {
		return
	}
	due := b.dueTimers
	kept := b.timers[:0]
	for _, t := range b.timers {
		t.remaining -= dt
		if t.remaining > 0 {
			kept = append(kept, t)
			continue
		}
		due = append(due, dueTimer{t.fn, t.onlyIfActive})
		if t.repeat {
			t.remaining = t.wait
			kept = append(kept, t)
		}
	}
	clear(b.timers[len(kept):])
	b.timers = kept
	b.dueTimers = due
}

func (b *Batch) runDue() {
	if len(b.dueTimers) == 0 {
		return
	}
	due := b.dueTimers
	// callbacks may schedule, unschedule or retire the batch
	for k := range due {
		if due[k].onlyIfActive && !b.isActive {
			continue
		}
		due[k].fn()
	}
	clear(due)
	b.dueTimers = due[:0]
}
