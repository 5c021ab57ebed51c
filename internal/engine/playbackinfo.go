package engine

// PlaybackState is the coarse playback lifecycle state of a PlaybackInfo
// snapshot.
type PlaybackState int

const (
	StateIdle PlaybackState = iota
	StateBuffering
	StateReady
	StateEnded
)

// DiscontinuityReason explains why position_us jumped between two
// consecutive PlaybackInfo snapshots.
type DiscontinuityReason int

const (
	// DiscontinuityNone means no discontinuity occurred this tick.
	DiscontinuityNone DiscontinuityReason = iota
	// DiscontinuityInternal is an engine-internal adjustment (e.g. queue
	// bookkeeping) with no externally meaningful cause. It is the weakest
	// reason: any other reason reported in the same tick overrides it.
	DiscontinuityInternal
	DiscontinuitySeek
	DiscontinuitySeekAdjustment
	DiscontinuityPeriodTransition
	DiscontinuityAdInsertion
)

// isInternal reports whether r is the weak INTERNAL reason that any other
// non-internal reason in the same tick takes precedence over.
func (r DiscontinuityReason) isInternal() bool {
	return r == DiscontinuityInternal
}

// PlaybackInfo is the immutable playback snapshot the engine publishes at
// the end of every tick that changed state. Callers never mutate a
// PlaybackInfo in place; each mutation on the worker builds a new one via
// the With* copy helpers.
type PlaybackInfo struct {
	Timeline *Timeline
	Manifest interface{}

	PlayingPeriodID MediaPeriodID
	LoadingPeriodID MediaPeriodID

	StartPositionUs         int64
	ContentPositionUs       int64
	PositionUs              int64
	BufferedPositionUs      int64
	TotalBufferedDurationUs int64

	PlaybackState PlaybackState
	IsLoading     bool

	TrackGroups         interface{}
	TrackSelectorResult interface{}
}

// NewPlaybackInfo returns the initial, empty-timeline snapshot an engine
// starts in before prepare() is called.
func NewPlaybackInfo() PlaybackInfo {
	return PlaybackInfo{
		Timeline:      NewTimeline(nil, nil),
		PlaybackState: StateIdle,
	}
}

// WithPlaybackState returns a copy of info with PlaybackState replaced.
func (info PlaybackInfo) WithPlaybackState(state PlaybackState) PlaybackInfo {
	info.PlaybackState = state
	return info
}

// WithTimeline returns a copy of info with Timeline replaced.
func (info PlaybackInfo) WithTimeline(t *Timeline) PlaybackInfo {
	info.Timeline = t
	return info
}

// WithPositions returns a copy of info with the position fields replaced.
func (info PlaybackInfo) WithPositions(contentPositionUs, positionUs, bufferedPositionUs, totalBufferedDurationUs int64) PlaybackInfo {
	info.ContentPositionUs = contentPositionUs
	info.PositionUs = positionUs
	info.BufferedPositionUs = bufferedPositionUs
	info.TotalBufferedDurationUs = totalBufferedDurationUs
	return info
}

// WithPlayingPeriod returns a copy of info with PlayingPeriodID and
// StartPositionUs replaced, as on a period transition or seek.
func (info PlaybackInfo) WithPlayingPeriod(id MediaPeriodID, startPositionUs int64) PlaybackInfo {
	info.PlayingPeriodID = id
	info.StartPositionUs = startPositionUs
	return info
}

// WithLoadingPeriod returns a copy of info with LoadingPeriodID replaced.
func (info PlaybackInfo) WithLoadingPeriod(id MediaPeriodID) PlaybackInfo {
	info.LoadingPeriodID = id
	return info
}

// WithIsLoading returns a copy of info with IsLoading replaced.
func (info PlaybackInfo) WithIsLoading(loading bool) PlaybackInfo {
	info.IsLoading = loading
	return info
}

// PlaybackInfoUpdate accumulates the acknowledgements and discontinuity
// state produced while the worker processes one or more messages, and is
// flushed (publishing PLAYBACK_INFO_CHANGED) once has_pending_update is
// true at the end of a message handler.
type PlaybackInfoUpdate struct {
	PlaybackInfo          PlaybackInfo
	operationAcks         int
	positionDiscontinuity bool
	discontinuityReason   DiscontinuityReason
	hasPendingChange      bool
}

// NewPlaybackInfoUpdate returns an accumulator seeded at info with no
// pending changes.
func NewPlaybackInfoUpdate(info PlaybackInfo) *PlaybackInfoUpdate {
	return &PlaybackInfoUpdate{PlaybackInfo: info}
}

// SetPlaybackInfo installs a new snapshot and marks the update dirty.
func (u *PlaybackInfoUpdate) SetPlaybackInfo(info PlaybackInfo) {
	u.PlaybackInfo = info
	u.hasPendingChange = true
}

// IncrementOperationAcks bumps the acknowledged-operations counter by n and
// marks the update dirty.
func (u *PlaybackInfoUpdate) IncrementOperationAcks(n int) {
	u.operationAcks += n
	u.hasPendingChange = true
}

// SetPositionDiscontinuity records a discontinuity for this tick, applying
// the precedence rule: a non-internal reason always overrides a previously
// recorded one (INTERNAL or not), while an INTERNAL reason never replaces a
// reason already recorded this tick.
func (u *PlaybackInfoUpdate) SetPositionDiscontinuity(reason DiscontinuityReason) {
	if !reason.isInternal() || !u.positionDiscontinuity {
		u.discontinuityReason = reason
	}
	u.positionDiscontinuity = true
	u.hasPendingChange = true
}

// HasPendingChange reports whether anything has accumulated since the last
// Reset, i.e. whether the engine must publish PLAYBACK_INFO_CHANGED now.
func (u *PlaybackInfoUpdate) HasPendingChange() bool {
	return u.hasPendingChange
}

// OperationAcks returns the accumulated acknowledged-operation count.
func (u *PlaybackInfoUpdate) OperationAcks() int {
	return u.operationAcks
}

// DiscontinuityInfo returns the reason recorded this tick and whether any
// discontinuity was recorded at all.
func (u *PlaybackInfoUpdate) DiscontinuityInfo() (DiscontinuityReason, bool) {
	return u.discontinuityReason, u.positionDiscontinuity
}

// Reset clears the accumulator after publication, keeping the current
// PlaybackInfo as the new baseline.
func (u *PlaybackInfoUpdate) Reset() {
	u.operationAcks = 0
	u.positionDiscontinuity = false
	u.discontinuityReason = DiscontinuityNone
	u.hasPendingChange = false
}
