package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingMessageResolvesAgainstTimeline(t *testing.T) {
	tl := twoPeriodTimeline()
	msg := &PlayerMessage{WindowIndex: 1, PositionMs: 0}
	info := NewPendingMessageInfo(msg)
	info.Resolve(tl)

	assert.True(t, info.Resolved())
	assert.Equal(t, PeriodUID("p1"), info.resolvedPeriodUID)
}

func TestPendingMessageUnresolvableWhenWindowMissing(t *testing.T) {
	tl := twoPeriodTimeline()
	msg := &PlayerMessage{WindowIndex: 5, PositionMs: 0}
	info := NewPendingMessageInfo(msg)
	info.Resolve(tl)

	assert.True(t, info.Unresolvable())
}

func TestSortPendingMessagesOrdersResolvedBeforeUnresolved(t *testing.T) {
	tl := twoPeriodTimeline()
	resolvedMsg := NewPendingMessageInfo(&PlayerMessage{WindowIndex: 0, PositionMs: 0})
	resolvedMsg.Resolve(tl)
	unresolvedMsg := &PendingMessageInfo{Message: &PlayerMessage{}, state: unresolved}

	infos := []*PendingMessageInfo{unresolvedMsg, resolvedMsg}
	SortPendingMessages(infos)

	assert.Same(t, resolvedMsg, infos[0])
	assert.Same(t, unresolvedMsg, infos[1])
}

func TestDeliverUpToFiresMessagesInSweptRange(t *testing.T) {
	tl := twoPeriodTimeline()
	q := NewPendingMessageQueue()
	delivered := false
	msg := &PlayerMessage{
		WindowIndex: 0,
		PositionMs:  2000,
		Target:      func(interface{}) error { delivered = true; return nil },
	}
	q.Add(tl, msg)

	q.DeliverUpTo(0, 1_000_000, 0, 3_000_000)
	assert.True(t, delivered)
}

func TestDeliverUpToSkipsMessagesOutsideRange(t *testing.T) {
	tl := twoPeriodTimeline()
	q := NewPendingMessageQueue()
	delivered := false
	msg := &PlayerMessage{
		WindowIndex: 0,
		PositionMs:  4000,
		Target:      func(interface{}) error { delivered = true; return nil },
	}
	q.Add(tl, msg)

	q.DeliverUpTo(0, 1_000_000, 0, 3_000_000)
	assert.False(t, delivered)
}

func TestCanceledMessageIsDroppedNotDelivered(t *testing.T) {
	tl := twoPeriodTimeline()
	q := NewPendingMessageQueue()
	delivered := false
	msg := &PlayerMessage{
		WindowIndex: 0,
		PositionMs:  2000,
		Target:      func(interface{}) error { delivered = true; return nil },
	}
	q.Add(tl, msg)
	msg.Cancel()

	q.DeliverUpTo(0, 1_000_000, 0, 3_000_000)
	assert.False(t, delivered)
	assert.Equal(t, 0, q.Len())
}
