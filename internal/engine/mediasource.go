package engine

// MediaSource is the external collaborator that produces a Timeline and
// hands out MediaPeriod instances for it. A concrete implementation lives
// out-of-process behind internal/pluginhost; the engine only ever sees
// this interface.
type MediaSource interface {
	// Prepare begins loading; onSourceInfoRefreshed is invoked (possibly
	// more than once, e.g. for live timelines) with the up-to-date
	// Timeline and an opaque manifest.
	Prepare(onSourceInfoRefreshed func(timeline *Timeline, manifest interface{})) error
	// CreatePeriod returns a new, not-yet-prepared MediaPeriod for id.
	CreatePeriod(id MediaPeriodID) MediaPeriod
	// ReleasePeriod releases resources held by a period returned from
	// CreatePeriod.
	ReleasePeriod(p MediaPeriod)
	Release()
}

// MediaPeriod is one loadable span of media: the external collaborator the
// queue owns exclusively for its lifetime once created. Capability set per
// spec: prepare, track selection, buffered-position/loading queries, seek,
// and release.
type MediaPeriod interface {
	// Prepare begins loading sample data; onPrepared is invoked once track
	// groups are known and selectable.
	Prepare(onPrepared func(p MediaPeriod)) error
	// MaybeThrowPrepareError surfaces any asynchronous preparation failure.
	MaybeThrowPrepareError() error

	GetTrackGroups() interface{}
	// SelectTracks applies a TrackSelectorResult, binding SampleStreams to
	// renderers; returns the actual positionUs playback will resume from
	// (which may differ from positionUs requested, e.g. to align with a
	// keyframe).
	SelectTracks(selection interface{}, positionUs int64) (SampleStream, int64, error)

	DiscardBuffer(positionUs int64, toKeyframe bool)
	// ReadDiscontinuity returns a non-nil adjusted position if this period
	// detected an internal discontinuity (e.g. a container timestamp
	// reset) since the last call, else nil.
	ReadDiscontinuity() *int64

	GetBufferedPositionUs() int64
	// ContinueLoading requests more data be loaded; returns true if
	// progress was made.
	ContinueLoading(positionUs int64) bool
	GetNextLoadPositionUs() int64
	ReevaluateBuffer(positionUs int64)

	SeekTo(positionUs int64) (int64, error)
	GetAdjustedSeekPositionUs(positionUs int64) int64

	IsLoading() bool
}

// TrackSelector is the external collaborator that chooses, per renderer,
// which track(s) of a prepared MediaPeriod's track groups to read.
type TrackSelector interface {
	SelectTracks(rendererCapabilities []TrackType, trackGroups interface{}) (interface{}, error)
}

// LoadControl is the external collaborator deciding whether the engine
// should keep loading ahead of playback and whether enough is buffered to
// start/continue rendering. internal/engine/loadcontrol.go provides a
// concrete memory-aware implementation.
type LoadControl interface {
	ShouldContinueLoading(bufferedDurationUs int64, playbackSpeed float64) bool
	ShouldStartPlayback(bufferedDurationUs int64, playbackSpeed float64) bool
}
