package clock

import "container/heap"

// VirtualClock is the deterministic Clock used by engine tests. Time only
// moves when AdvanceTime is called; advancing fires every scheduled callback
// whose deadline has elapsed, strictly in (deadline, insertion order), all on
// the calling goroutine.
type VirtualClock struct {
	nowMs int64
	seq   int
	tasks taskHeap
}

// NewVirtualClock returns a VirtualClock starting at time zero.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{}
}

func (c *VirtualClock) ElapsedRealtimeMs() int64 {
	return c.nowMs
}

func (c *VirtualClock) Schedule(deadlineMs int64, fn func()) {
	c.seq++
	heap.Push(&c.tasks, &vtask{deadline: deadlineMs, seq: c.seq, fn: fn})
}

// AdvanceTime moves the clock forward by deltaMs, running every task whose
// deadline falls at or before the new time, in deadline-then-insertion
// order. A task run during the advance may itself schedule further work;
// that work also runs if its deadline still falls within the target window.
func (c *VirtualClock) AdvanceTime(deltaMs int64) {
	target := c.nowMs + deltaMs
	for c.tasks.Len() > 0 && c.tasks[0].deadline <= target {
		t := heap.Pop(&c.tasks).(*vtask)
		if t.deadline > c.nowMs {
			c.nowMs = t.deadline
		}
		t.fn()
	}
	if target > c.nowMs {
		c.nowMs = target
	}
}

// Pump runs any tasks already due at the current time without advancing it
// further; it's the escape hatch for flushing ASAP work queued by code that
// runs outside of an AdvanceTime call (e.g. test setup immediately after
// Prepare).
func (c *VirtualClock) Pump() {
	c.AdvanceTime(0)
}

// PendingCount reports how many callbacks are still queued, for assertions
// like "nothing is scheduled after RELEASE".
func (c *VirtualClock) PendingCount() int {
	return c.tasks.Len()
}

type vtask struct {
	deadline int64
	seq      int
	fn       func()
}

type taskHeap []*vtask

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x interface{}) {
	*h = append(*h, x.(*vtask))
}
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
