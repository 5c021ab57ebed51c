package engine

import "sort"

// PlayerMessage is a user-scheduled callback delivered once playback
// reaches a target position.
type PlayerMessage struct {
	Target            func(payload interface{}) error
	Payload           interface{}
	Handler           interface{} // opaque "same worker" identity; the engine does not read it and runs every Target on its worker
	WindowIndex       int
	PositionMs        int64 // negative resolves to the window's default start position
	DeleteAfterDelivery bool

	canceled  bool
	processed bool
}

// Cancel marks the message canceled; the engine observes this on its next
// sort pass and drops it without delivery.
func (m *PlayerMessage) Cancel() { m.canceled = true }

// Canceled reports whether Cancel was called.
func (m *PlayerMessage) Canceled() bool { return m.canceled }

// MarkAsProcessed records in an unexported flag whether the message was
// delivered (true) or discarded as unresolvable (false); the package exposes
// no accessor for that flag.
func (m *PlayerMessage) MarkAsProcessed(delivered bool) {
	m.processed = delivered
}

// resolution is the tri-state result of mapping a PendingMessageInfo's
// (WindowIndex, PositionMs) onto the current timeline.
type resolution int

const (
	unresolved resolution = iota
	resolved
	unresolvable
)

// PendingMessageInfo wraps one PlayerMessage with its resolution state
// against the current timeline: which period it falls in and at what
// period-relative time, used to sort and fire messages as the reading
// position sweeps past them.
type PendingMessageInfo struct {
	Message *PlayerMessage

	state             resolution
	resolvedPeriodIdx int
	resolvedPeriodUs  int64
	resolvedPeriodUID PeriodUID
}

// NewPendingMessageInfo wraps msg, unresolved.
func NewPendingMessageInfo(msg *PlayerMessage) *PendingMessageInfo {
	return &PendingMessageInfo{Message: msg, state: unresolved}
}

// Resolve attempts to locate msg's (WindowIndex, PositionMs) within t. On
// success the info becomes `resolved`; if the window no longer exists in t
// it becomes `unresolvable` and the caller should discard it via
// MarkAsProcessed(false).
func (p *PendingMessageInfo) Resolve(t *Timeline) {
	if p.state == resolved {
		return
	}
	positionUs := int64(TimeUnset)
	if p.Message.PositionMs >= 0 {
		positionUs = p.Message.PositionMs * 1000
	}
	uid, periodPosUs, ok := t.GetPeriodPosition(p.Message.WindowIndex, positionUs)
	if !ok {
		p.state = unresolvable
		return
	}
	idx := t.GetIndexOfPeriod(uid)
	if idx == IndexUnset {
		p.state = unresolvable
		return
	}
	p.resolvedPeriodIdx = idx
	p.resolvedPeriodUs = periodPosUs
	p.resolvedPeriodUID = uid
	p.state = resolved
}

// Unresolvable reports whether resolution failed.
func (p *PendingMessageInfo) Unresolvable() bool { return p.state == unresolvable }

// Resolved reports whether resolution succeeded.
func (p *PendingMessageInfo) Resolved() bool { return p.state == resolved }

// SortPendingMessages orders infos so unresolved entries sort after
// resolved ones, and resolved ones by (period_index, period_time_us).
// Unresolvable entries should be filtered out by the caller before sorting.
func SortPendingMessages(infos []*PendingMessageInfo) {
	sort.SliceStable(infos, func(i, j int) bool {
		a, b := infos[i], infos[j]
		if a.state != b.state {
			return a.state == resolved // resolved < unresolved
		}
		if a.state != resolved {
			return false
		}
		if a.resolvedPeriodIdx != b.resolvedPeriodIdx {
			return a.resolvedPeriodIdx < b.resolvedPeriodIdx
		}
		return a.resolvedPeriodUs < b.resolvedPeriodUs
	})
}

// PendingMessageQueue holds the sorted set of PendingMessageInfos and the
// delivery cursor into it.
type PendingMessageQueue struct {
	infos []*PendingMessageInfo
	next  int
}

// NewPendingMessageQueue returns an empty queue.
func NewPendingMessageQueue() *PendingMessageQueue {
	return &PendingMessageQueue{}
}

// Add inserts msg and re-sorts.
func (q *PendingMessageQueue) Add(t *Timeline, msg *PlayerMessage) {
	info := NewPendingMessageInfo(msg)
	info.Resolve(t)
	q.infos = append(q.infos, info)
	q.resort()
}

// ResolveAll re-resolves every unresolved info against t (called after a
// timeline refresh), discarding any that become unresolvable, and re-sorts.
func (q *PendingMessageQueue) ResolveAll(t *Timeline) {
	kept := q.infos[:0]
	for _, info := range q.infos {
		if info.Canceled() {
			continue
		}
		info.Resolve(t)
		if info.Unresolvable() {
			info.Message.MarkAsProcessed(false)
			continue
		}
		kept = append(kept, info)
	}
	q.infos = kept
	q.resort()
}

func (q *PendingMessageQueue) resort() {
	SortPendingMessages(q.infos)
	if q.next > len(q.infos) {
		q.next = len(q.infos)
	}
}

// Canceled proxies to the wrapped message, for ResolveAll's filter.
func (p *PendingMessageInfo) Canceled() bool { return p.Message.Canceled() }

// DeliverUpTo walks the sorted queue from the cursor, delivering every
// resolved message whose (period_index, period_time_us) falls within
// (oldPeriodIdx, oldPeriodUs] .. (newPeriodIdx, newPeriodUs] — i.e. the span
// the reading position swept this tick — then advances or removes entries
// per delete_after_delivery/canceled.
func (q *PendingMessageQueue) DeliverUpTo(oldPeriodIdx int, oldPeriodUs int64, newPeriodIdx int, newPeriodUs int64) {
	for q.next > 0 && !atOrBefore(q.infos[q.next-1], oldPeriodIdx, oldPeriodUs) {
		q.next--
	}
	remaining := q.infos[:0]
	for i, info := range q.infos {
		if i < q.next {
			remaining = append(remaining, info)
			continue
		}
		if !info.Resolved() {
			remaining = append(remaining, info)
			continue
		}
		if info.Canceled() {
			continue
		}
		if !inSweptRange(info.resolvedPeriodIdx, info.resolvedPeriodUs, oldPeriodIdx, oldPeriodUs, newPeriodIdx, newPeriodUs) {
			remaining = append(remaining, info)
			continue
		}
		if info.Message.Target != nil {
			_ = info.Message.Target(info.Message.Payload)
		}
		info.Message.MarkAsProcessed(true)
		if !info.Message.DeleteAfterDelivery {
			remaining = append(remaining, info)
		}
	}
	q.infos = remaining
	q.next = 0
	for q.next < len(q.infos) && atOrBefore(q.infos[q.next], newPeriodIdx, newPeriodUs) {
		q.next++
	}
}

func atOrBefore(info *PendingMessageInfo, periodIdx int, periodUs int64) bool {
	return info.Resolved() && (info.resolvedPeriodIdx < periodIdx || (info.resolvedPeriodIdx == periodIdx && info.resolvedPeriodUs <= periodUs))
}

func inSweptRange(periodIdx int, periodUs int64, oldIdx int, oldUs int64, newIdx int, newUs int64) bool {
	after := periodIdx > oldIdx || (periodIdx == oldIdx && periodUs > oldUs)
	before := periodIdx < newIdx || (periodIdx == newIdx && periodUs <= newUs)
	return after && before
}

// Len reports the number of tracked messages (resolved + unresolved).
func (q *PendingMessageQueue) Len() int { return len(q.infos) }
