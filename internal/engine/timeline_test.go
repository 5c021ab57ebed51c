package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func threeWindowTimeline() *Timeline {
	windows := []Window{
		{DefaultStartPositionUs: 0, DurationUs: 10_000_000, FirstPeriodIndex: 0, PeriodCount: 1},
		{DefaultStartPositionUs: 0, DurationUs: 5_000_000, FirstPeriodIndex: 1, PeriodCount: 1},
		{DefaultStartPositionUs: 0, DurationUs: 8_000_000, FirstPeriodIndex: 2, PeriodCount: 1},
	}
	periods := []Period{
		{UID: "p0", WindowIndex: 0, DurationUs: 10_000_000},
		{UID: "p1", WindowIndex: 1, DurationUs: 5_000_000},
		{UID: "p2", WindowIndex: 2, DurationUs: 8_000_000},
	}
	return NewTimeline(windows, periods)
}

func TestGetIndexOfPeriodIsConstantTime(t *testing.T) {
	tl := threeWindowTimeline()
	assert.Equal(t, 1, tl.GetIndexOfPeriod("p1"))
	assert.Equal(t, IndexUnset, tl.GetIndexOfPeriod("missing"))
}

func TestGetNextPeriodIndexCrossesWindowBoundary(t *testing.T) {
	tl := threeWindowTimeline()
	assert.Equal(t, 1, tl.GetNextPeriodIndex(0, RepeatOff, false))
	assert.Equal(t, 2, tl.GetNextPeriodIndex(1, RepeatOff, false))
	assert.Equal(t, IndexUnset, tl.GetNextPeriodIndex(2, RepeatOff, false))
}

func TestRepeatAllWrapsToFirstWindow(t *testing.T) {
	tl := threeWindowTimeline()
	assert.Equal(t, 0, tl.GetNextWindowIndex(2, RepeatAll, false))
	assert.Equal(t, 2, tl.GetPreviousWindowIndex(0, RepeatAll, false))
}

func TestRepeatOneStaysOnSameWindow(t *testing.T) {
	tl := threeWindowTimeline()
	assert.Equal(t, 1, tl.GetNextWindowIndex(1, RepeatOne, false))
	assert.Equal(t, 1, tl.GetPreviousWindowIndex(1, RepeatOne, false))
}

func TestShuffleOrderOverridesLinearNavigation(t *testing.T) {
	tl := threeWindowTimeline().WithShuffleOrder([]int{2, 0, 1})
	assert.Equal(t, 0, tl.GetNextWindowIndex(2, RepeatOff, true))
	assert.Equal(t, 1, tl.GetNextWindowIndex(0, RepeatOff, true))
	assert.Equal(t, IndexUnset, tl.GetNextWindowIndex(1, RepeatOff, true))
	assert.Equal(t, 2, tl.firstWindowIndex(true))
	assert.Equal(t, 1, tl.lastWindowIndex(true))
}

func TestGetPeriodPositionResolvesDefaultStart(t *testing.T) {
	tl := threeWindowTimeline()
	uid, pos, ok := tl.GetPeriodPosition(1, TimeUnset)
	assert.True(t, ok)
	assert.Equal(t, PeriodUID("p1"), uid)
	assert.Equal(t, int64(0), pos)
}

func TestGetPeriodPositionClampsPastKnownDuration(t *testing.T) {
	tl := threeWindowTimeline()
	uid, pos, ok := tl.GetPeriodPosition(1, 50_000_000)
	assert.True(t, ok)
	assert.Equal(t, PeriodUID("p1"), uid)
	assert.Equal(t, int64(5_000_000), pos)
}

func TestGetPeriodPositionMultiPeriodWindowAccumulates(t *testing.T) {
	windows := []Window{{DefaultStartPositionUs: 0, DurationUs: 6_000_000, FirstPeriodIndex: 0, PeriodCount: 2}}
	periods := []Period{
		{UID: "a", WindowIndex: 0, DurationUs: 3_000_000},
		{UID: "b", WindowIndex: 0, DurationUs: 3_000_000},
	}
	tl := NewTimeline(windows, periods)

	uid, pos, ok := tl.GetPeriodPosition(0, 4_000_000)
	assert.True(t, ok)
	assert.Equal(t, PeriodUID("b"), uid)
	assert.Equal(t, int64(1_000_000), pos)
}
