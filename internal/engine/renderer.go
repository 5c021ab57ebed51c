package engine

// TrackType classifies the kind of sample data a Renderer consumes. NONE
// marks a renderer that consumes no SampleStream (e.g. a metadata-only or
// camera-control renderer). The engine does not treat NONE specially: an
// enabled NONE renderer counts in the enabled-renderer checks like any other.
type TrackType int

const (
	TrackNone TrackType = iota
	TrackVideo
	TrackAudio
	TrackText
	TrackMetadata
)

// RendererState is the renderer lifecycle state the engine drives every
// renderer through on each tick.
type RendererState int

const (
	RendererDisabled RendererState = iota
	RendererEnabled
	RendererStarted
)

// RendererConfiguration is opaque to the engine; it is compared by equality
// to decide whether replace_stream is legal across a period transition.
type RendererConfiguration interface{}

// SampleStream is the external collaborator a MediaPeriod hands a Renderer
// once tracks are selected; the engine never inspects its contents.
type SampleStream interface{}

// Renderer is the external collaborator that consumes one SampleStream at a
// time and renders it. Implementations are typically out-of-process via
// internal/pluginhost; this interface is what the engine drives.
//
// The engine enforces the state machine
// DISABLED --enable--> ENABLED --start--> STARTED --stop--> ENABLED --disable--> DISABLED,
// with reset() callable from any state back to DISABLED. Renderer
// implementations trust the engine not to violate it; this package provides
// no runtime assertion of illegal calls, matching the teacher's renderer
// collaborators (MediaPeriod, MediaSource) which are likewise trusted, not
// defensively checked.
type Renderer interface {
	TrackType() TrackType

	// Enable transitions DISABLED -> ENABLED, binding formats/stream for
	// playback starting at startPositionUs. joining is true when this
	// renderer is being enabled mid-playback to join an already-playing
	// period (i.e. it must catch up rather than start from idle).
	Enable(config RendererConfiguration, formats []interface{}, stream SampleStream, startPositionUs int64, joining bool, rendererOffsetUs int64) error

	// Start transitions ENABLED -> STARTED.
	Start()
	// Stop transitions STARTED -> ENABLED.
	Stop()
	// Disable transitions ENABLED -> DISABLED, releasing the stream binding.
	Disable()
	// Reset transitions any state -> DISABLED, releasing codec-level
	// resources. Called when a renderer will not be reused soon (foreground
	// mode off, release).
	Reset()

	// ReplaceStream is legal in ENABLED/STARTED once HasReadStreamToEnd is
	// true and config equals the configuration passed to Enable/the last
	// ReplaceStream.
	ReplaceStream(formats []interface{}, stream SampleStream, rendererOffsetUs int64) error

	// Render does one unit of rendering work at positionUs (the current
	// renderer-time position) with elapsedRealtimeUs as the wall-clock
	// reference for A/V sync. Legal in STARTED, and in ENABLED for
	// pre-roll rendering ahead of the join point.
	Render(positionUs, elapsedRealtimeUs int64) error

	IsReady() bool
	IsEnded() bool
	HasReadStreamToEnd() bool

	// SetCurrentStreamFinal marks the current stream as the last one this
	// renderer will receive; it drains remaining buffered samples and
	// reports IsEnded() once exhausted instead of waiting for more input.
	SetCurrentStreamFinal()

	// ResetPosition invalidates any read-ahead and repositions to us;
	// legal in ENABLED/STARTED.
	ResetPosition(us int64)

	GetReadingPositionUs() int64
	SetOperatingRate(speed float64) error

	// MediaClock returns this renderer's RendererClock if it exposes one
	// (typically the audio renderer), or nil.
	MediaClock() RendererClock
}

// RendererHolder tracks one Renderer's engine-side bookkeeping: its current
// state and whether it is waiting for the next stream after
// SetCurrentStreamFinal was called but the stream hasn't been replaced yet
// (draining bookkeeping per the supplemented reset/drain semantics carried
// over from original_source).
type RendererHolder struct {
	Renderer Renderer
	State    RendererState

	// WaitingForNextStream is true between a stream's SetCurrentStreamFinal
	// and the corresponding replace_stream/disable, so the engine knows not
	// to surface a stream-exhaustion condition as an error while waiting.
	WaitingForNextStream bool

	streamIdentity interface{}
}

// NewRendererHolder wraps r, starting DISABLED.
func NewRendererHolder(r Renderer) *RendererHolder {
	return &RendererHolder{Renderer: r, State: RendererDisabled}
}

// Enable moves the holder DISABLED -> ENABLED and records streamIdentity so
// a later period transition can decide whether to keep this renderer
// (stream-identity equality) or disable it.
func (h *RendererHolder) Enable(config RendererConfiguration, formats []interface{}, stream SampleStream, startPositionUs int64, joining bool, rendererOffsetUs int64, streamIdentity interface{}) error {
	if err := h.Renderer.Enable(config, formats, stream, startPositionUs, joining, rendererOffsetUs); err != nil {
		return err
	}
	h.State = RendererEnabled
	h.streamIdentity = streamIdentity
	h.WaitingForNextStream = false
	return nil
}

// Start moves the holder ENABLED -> STARTED.
func (h *RendererHolder) Start() {
	if h.State == RendererEnabled {
		h.Renderer.Start()
		h.State = RendererStarted
	}
}

// Stop moves the holder STARTED -> ENABLED.
func (h *RendererHolder) Stop() {
	if h.State == RendererStarted {
		h.Renderer.Stop()
		h.State = RendererEnabled
	}
}

// Disable moves the holder to DISABLED, dropping stream identity.
func (h *RendererHolder) Disable() {
	if h.State != RendererDisabled {
		h.Renderer.Disable()
	}
	h.State = RendererDisabled
	h.streamIdentity = nil
	h.WaitingForNextStream = false
}

// Reset forces the holder to DISABLED from any state, releasing
// codec-level resources.
func (h *RendererHolder) Reset() {
	h.Renderer.Reset()
	h.State = RendererDisabled
	h.streamIdentity = nil
	h.WaitingForNextStream = false
}

// MarkStreamFinal records that the current stream is final and begins the
// drain; the holder stays enabled, also after the renderer reports
// IsEnded(), until a later Disable or Reset.
func (h *RendererHolder) MarkStreamFinal() {
	h.Renderer.SetCurrentStreamFinal()
	h.WaitingForNextStream = true
}

// SurvivesTransition reports whether this holder's currently bound stream
// identity matches newStreamIdentity, i.e. whether the renderer can be
// rebound via ReplaceStream instead of disabled across a period transition.
func (h *RendererHolder) SurvivesTransition(newStreamIdentity interface{}) bool {
	return h.State != RendererDisabled && h.streamIdentity == newStreamIdentity
}
