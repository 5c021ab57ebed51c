package engine

import "github.com/nodecast/playcore/internal/clock"

// PlaybackParameters controls playback speed and pitch.
type PlaybackParameters struct {
	Speed float64
	Pitch float64
}

// DefaultPlaybackParameters is 1x speed, unshifted pitch.
var DefaultPlaybackParameters = PlaybackParameters{Speed: 1, Pitch: 1}

// RendererClock is implemented by a renderer capable of reporting and
// governing its own playback position (typically the audio renderer, whose
// hardware clock is authoritative). When such a renderer is enabled, the
// MediaClock delegates to it instead of extrapolating standalone time.
type RendererClock interface {
	// PositionUs returns the renderer's current position and whether it is
	// ready to report one (a renderer that hasn't started producing output
	// yet returns ok=false).
	PositionUs() (us int64, ok bool)
	SetPlaybackParameters(p PlaybackParameters) PlaybackParameters
	PlaybackParameters() PlaybackParameters
}

// MediaClock is the playback position authority: a standalone extrapolated
// clock that hands off to a RendererClock while one is enabled.
type MediaClock struct {
	clock clock.Clock

	params           PlaybackParameters
	lastPositionUs   int64
	lastSetAtMs      int64
	started          bool
	rendererClock    RendererClock
	rendererLastSeen int64
}

// NewMediaClock returns a stopped MediaClock positioned at zero.
func NewMediaClock(c clock.Clock) *MediaClock {
	return &MediaClock{clock: c, params: DefaultPlaybackParameters}
}

// Start begins advancing the standalone clock (or, if a renderer clock is
// attached, marks it as the active timebase).
func (m *MediaClock) Start() {
	if !m.started {
		m.lastSetAtMs = m.clock.ElapsedRealtimeMs()
	}
	m.started = true
}

// Stop freezes the clock at its current synced position.
func (m *MediaClock) Stop() {
	if m.started {
		m.lastPositionUs = m.SyncAndGetPositionUs()
	}
	m.started = false
}

// ResetPosition jumps the clock to us, e.g. on seek or period transition.
func (m *MediaClock) ResetPosition(us int64) {
	m.lastPositionUs = us
	m.lastSetAtMs = m.clock.ElapsedRealtimeMs()
}

// SyncAndGetPositionUs returns the current position, pulling from the
// delegated renderer clock when one is attached and ready, else
// extrapolating the standalone position at the current playback speed.
func (m *MediaClock) SyncAndGetPositionUs() int64 {
	if m.rendererClock != nil {
		if us, ok := m.rendererClock.PositionUs(); ok {
			m.rendererLastSeen = us
			m.lastPositionUs = us
			m.lastSetAtMs = m.clock.ElapsedRealtimeMs()
			return us
		}
	}
	if !m.started {
		return m.lastPositionUs
	}
	elapsedMs := m.clock.ElapsedRealtimeMs() - m.lastSetAtMs
	return m.lastPositionUs + int64(float64(elapsedMs)*1000*m.params.Speed)
}

// SetPlaybackParameters applies p, delegating to the renderer clock if one
// is attached (it may clamp or reject the request, returning what actually
// applies), else applying it directly to the standalone extrapolation.
func (m *MediaClock) SetPlaybackParameters(p PlaybackParameters) PlaybackParameters {
	if m.rendererClock != nil {
		applied := m.rendererClock.SetPlaybackParameters(p)
		m.params = applied
		return applied
	}
	m.lastPositionUs = m.SyncAndGetPositionUs()
	m.lastSetAtMs = m.clock.ElapsedRealtimeMs()
	m.params = p
	return p
}

// PlaybackParameters returns the parameters currently in force.
func (m *MediaClock) PlaybackParameters() PlaybackParameters {
	return m.params
}

// OnRendererEnabled attaches rc (non-nil) as the position authority. Pass
// nil for a renderer with no media clock of its own (e.g. video, text).
func (m *MediaClock) OnRendererEnabled(rc RendererClock) {
	if rc == nil {
		return
	}
	m.rendererClock = rc
	m.rendererClock.SetPlaybackParameters(m.params)
}

// OnRendererDisabled detaches rc if it is the currently delegated clock; the
// standalone clock resumes from the last position observed from it.
func (m *MediaClock) OnRendererDisabled(rc RendererClock) {
	if m.rendererClock != rc {
		return
	}
	m.lastPositionUs = m.rendererLastSeen
	m.lastSetAtMs = m.clock.ElapsedRealtimeMs()
	m.rendererClock = nil
}
