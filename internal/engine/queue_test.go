package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMediaPeriod struct{ id MediaPeriodID }

func (f *fakeMediaPeriod) Prepare(onPrepared func(MediaPeriod)) error { return nil }
func (f *fakeMediaPeriod) MaybeThrowPrepareError() error              { return nil }
func (f *fakeMediaPeriod) GetTrackGroups() interface{}                { return nil }
func (f *fakeMediaPeriod) SelectTracks(selection interface{}, positionUs int64) (SampleStream, int64, error) {
	return nil, positionUs, nil
}
func (f *fakeMediaPeriod) DiscardBuffer(int64, bool)          {}
func (f *fakeMediaPeriod) ReadDiscontinuity() *int64          { return nil }
func (f *fakeMediaPeriod) GetBufferedPositionUs() int64       { return 0 }
func (f *fakeMediaPeriod) ContinueLoading(int64) bool         { return false }
func (f *fakeMediaPeriod) GetNextLoadPositionUs() int64       { return 0 }
func (f *fakeMediaPeriod) ReevaluateBuffer(int64)             {}
func (f *fakeMediaPeriod) SeekTo(us int64) (int64, error)     { return us, nil }
func (f *fakeMediaPeriod) GetAdjustedSeekPositionUs(us int64) int64 { return us }
func (f *fakeMediaPeriod) IsLoading() bool                    { return false }

type fakeMediaSource struct{}

func (f *fakeMediaSource) Prepare(func(*Timeline, interface{})) error { return nil }
func (f *fakeMediaSource) CreatePeriod(id MediaPeriodID) MediaPeriod  { return &fakeMediaPeriod{id: id} }
func (f *fakeMediaSource) ReleasePeriod(MediaPeriod)                  {}
func (f *fakeMediaSource) Release()                                   {}

func twoPeriodTimeline() *Timeline {
	windows := []Window{
		{DurationUs: 5_000_000, FirstPeriodIndex: 0, PeriodCount: 1},
		{DurationUs: 5_000_000, FirstPeriodIndex: 1, PeriodCount: 1},
	}
	periods := []Period{
		{UID: "p0", WindowIndex: 0, DurationUs: 5_000_000},
		{UID: "p1", WindowIndex: 1, DurationUs: 5_000_000},
	}
	return NewTimeline(windows, periods)
}

func TestShouldLoadNextMediaPeriodOnEmptyQueue(t *testing.T) {
	q := NewMediaPeriodQueue()
	q.SetTimeline(twoPeriodTimeline())
	assert.True(t, q.ShouldLoadNextMediaPeriod())
}

func TestEnqueueFirstPeriodStartsAtZeroOffset(t *testing.T) {
	q := NewMediaPeriodQueue()
	q.SetTimeline(twoPeriodTimeline())

	info := q.GetNextMediaPeriodInfo(0)
	require.NotNil(t, info)
	assert.Equal(t, PeriodUID("p0"), info.ID.PeriodUID)

	q.EnqueueNextMediaPeriod(&fakeMediaSource{}, *info)
	holder := q.GetPlayingPeriod()
	require.NotNil(t, holder)
	assert.Equal(t, int64(0), holder.RendererOffsetUs)
}

func TestSecondPeriodOffsetChainsFromFirst(t *testing.T) {
	q := NewMediaPeriodQueue()
	q.SetTimeline(twoPeriodTimeline())

	first := q.GetNextMediaPeriodInfo(0)
	q.EnqueueNextMediaPeriod(&fakeMediaSource{}, *first)

	second := q.GetNextMediaPeriodInfo(0)
	require.NotNil(t, second)
	assert.Equal(t, PeriodUID("p1"), second.ID.PeriodUID)

	q.EnqueueNextMediaPeriod(&fakeMediaSource{}, *second)
	assert.Equal(t, int64(5_000_000), q.GetLoadingPeriod().RendererOffsetUs)
}

func TestAdvancePlayingPeriodRotatesCursor(t *testing.T) {
	q := NewMediaPeriodQueue()
	q.SetTimeline(twoPeriodTimeline())

	first := q.GetNextMediaPeriodInfo(0)
	q.EnqueueNextMediaPeriod(&fakeMediaSource{}, *first)
	second := q.GetNextMediaPeriodInfo(0)
	q.EnqueueNextMediaPeriod(&fakeMediaSource{}, *second)

	advanced := q.AdvancePlayingPeriod()
	require.NotNil(t, advanced)
	assert.Equal(t, PeriodUID("p1"), advanced.Info.ID.PeriodUID)
}

func TestRemoveAfterReportsClippedWhenLoadingCut(t *testing.T) {
	q := NewMediaPeriodQueue()
	q.SetTimeline(twoPeriodTimeline())

	first := q.GetNextMediaPeriodInfo(0)
	q.EnqueueNextMediaPeriod(&fakeMediaSource{}, *first)
	second := q.GetNextMediaPeriodInfo(0)
	q.EnqueueNextMediaPeriod(&fakeMediaSource{}, *second)

	clipped := q.RemoveAfter(q.GetPlayingPeriod())
	assert.True(t, clipped)
	assert.Nil(t, q.GetPlayingPeriod().next)
}

func TestResolveMediaPeriodIdForAdsReturnsAdWhenDue(t *testing.T) {
	windows := []Window{{DurationUs: 10_000_000, FirstPeriodIndex: 0, PeriodCount: 1}}
	periods := []Period{{
		UID: "p0", WindowIndex: 0, DurationUs: 10_000_000,
		AdGroups: []AdGroup{{TimeUs: 4_000_000, AdDurationsUs: []int64{1_500_000}}},
	}}
	q := NewMediaPeriodQueue()
	q.SetTimeline(NewTimeline(windows, periods))

	id := q.ResolveMediaPeriodIdForAds("p0", 4_000_000)
	assert.True(t, id.IsAd())
	assert.Equal(t, 0, id.AdGroupIndex)
	assert.Equal(t, 0, id.AdIndexInGroup)
}

func TestResolveMediaPeriodIdForAdsReturnsContentBeforeAdTime(t *testing.T) {
	windows := []Window{{DurationUs: 10_000_000, FirstPeriodIndex: 0, PeriodCount: 1}}
	periods := []Period{{
		UID: "p0", WindowIndex: 0, DurationUs: 10_000_000,
		AdGroups: []AdGroup{{TimeUs: 4_000_000, AdDurationsUs: []int64{1_500_000}}},
	}}
	q := NewMediaPeriodQueue()
	q.SetTimeline(NewTimeline(windows, periods))

	id := q.ResolveMediaPeriodIdForAds("p0", 1_000_000)
	assert.False(t, id.IsAd())
	assert.Equal(t, 0, id.NextAdGroupIndex)
}

func TestClearKeepingFrontPeriodUIDReturnsPreviousPlaying(t *testing.T) {
	q := NewMediaPeriodQueue()
	q.SetTimeline(twoPeriodTimeline())
	first := q.GetNextMediaPeriodInfo(0)
	q.EnqueueNextMediaPeriod(&fakeMediaSource{}, *first)

	uid := q.Clear(true)
	assert.Equal(t, PeriodUID("p0"), uid)
	assert.False(t, q.HasPlayingPeriod())
}
