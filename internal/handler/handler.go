// Package handler implements the single-threaded message loop the engine
// runs on, adapted from the teacher's event-bus dispatch style
// (internal/events.eventBus.processEvents) but driven by a clock.Clock
// instead of a goroutine-per-subscriber fan-out, since the engine needs one
// serialized worker rather than many concurrent listeners.
package handler

import (
	"sync"

	"github.com/nodecast/playcore/internal/clock"
)

// Callback handles a typed message posted with SendMessage/SendMessageAtTime.
type Callback func(what int, arg interface{})

// Wrapper is a HandlerWrapper bound to one Clock (the engine's worker) and
// one Callback (the engine's message switch). It is safe to call from any
// goroutine; callbacks always run serialized on the bound clock.
type Wrapper struct {
	clock    clock.Clock
	callback Callback

	mu     sync.Mutex
	fences map[int]uint64
}

// New returns a Wrapper posting typed messages to callback, scheduled on c.
func New(c clock.Clock, callback Callback) *Wrapper {
	return &Wrapper{clock: c, callback: callback, fences: make(map[int]uint64)}
}

// Post enqueues runnable for as-soon-as-possible execution on the worker.
func (w *Wrapper) Post(runnable func()) {
	w.clock.Schedule(w.clock.ElapsedRealtimeMs(), runnable)
}

// PostDelayed enqueues runnable to run delayMs from now, on the worker.
func (w *Wrapper) PostDelayed(runnable func(), delayMs int64) {
	w.clock.Schedule(w.clock.ElapsedRealtimeMs()+delayMs, runnable)
}

// PostAtTime enqueues runnable to run once the clock reaches uptimeMs.
func (w *Wrapper) PostAtTime(runnable func(), uptimeMs int64) {
	w.clock.Schedule(uptimeMs, runnable)
}

// SendEmptyMessage enqueues a typed message for as-soon-as-possible
// delivery to the registered Callback.
func (w *Wrapper) SendEmptyMessage(what int) {
	w.SendMessage(what, nil)
}

// SendMessage enqueues a typed message carrying arg.
func (w *Wrapper) SendMessage(what int, arg interface{}) {
	w.sendAt(what, arg, w.clock.ElapsedRealtimeMs())
}

// SendEmptyMessageAtTime enqueues a typed message to fire once the clock
// reaches uptimeMs.
func (w *Wrapper) SendEmptyMessageAtTime(what int, uptimeMs int64) {
	w.sendAt(what, nil, uptimeMs)
}

func (w *Wrapper) sendAt(what int, arg interface{}, deadlineMs int64) {
	w.mu.Lock()
	gen := w.fences[what]
	w.mu.Unlock()

	w.clock.Schedule(deadlineMs, func() {
		w.mu.Lock()
		current := w.fences[what]
		w.mu.Unlock()
		if gen != current {
			return // removed via RemoveMessages since this was scheduled
		}
		w.callback(what, arg)
	})
}

// RemoveMessages cancels every pending typed message of kind what. It is
// best-effort and idempotent: messages already popped off the worker's
// queue at the instant of the call still run.
func (w *Wrapper) RemoveMessages(what int) {
	w.mu.Lock()
	w.fences[what]++
	w.mu.Unlock()
}

// Looper returns an opaque identity for "same worker" comparisons, the way
// Android's Looper identity is compared to decide whether a PlayerMessage's
// target handler lives on the current thread.
func (w *Wrapper) Looper() interface{} {
	return w
}
