package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubRenderer struct {
	trackType    TrackType
	readToEnd    bool
	ended        bool
	streamFinal  bool
	lastPosition int64
}

func (s *stubRenderer) TrackType() TrackType { return s.trackType }
func (s *stubRenderer) Enable(RendererConfiguration, []interface{}, SampleStream, int64, bool, int64) error {
	return nil
}
func (s *stubRenderer) Start()                                                          {}
func (s *stubRenderer) Stop()                                                           {}
func (s *stubRenderer) Disable()                                                        {}
func (s *stubRenderer) Reset()                                                          {}
func (s *stubRenderer) ReplaceStream([]interface{}, SampleStream, int64) error           { return nil }
func (s *stubRenderer) Render(positionUs, elapsedRealtimeUs int64) error                 { return nil }
func (s *stubRenderer) IsReady() bool                                                   { return true }
func (s *stubRenderer) IsEnded() bool                                                   { return s.ended }
func (s *stubRenderer) HasReadStreamToEnd() bool                                        { return s.readToEnd }
func (s *stubRenderer) SetCurrentStreamFinal()                                          { s.streamFinal = true }
func (s *stubRenderer) ResetPosition(us int64)                                          { s.lastPosition = us }
func (s *stubRenderer) GetReadingPositionUs() int64                                     { return s.lastPosition }
func (s *stubRenderer) SetOperatingRate(speed float64) error                            { return nil }
func (s *stubRenderer) MediaClock() RendererClock                                       { return nil }

func TestRendererHolderStartsDisabled(t *testing.T) {
	h := NewRendererHolder(&stubRenderer{trackType: TrackAudio})
	assert.Equal(t, RendererDisabled, h.State)
}

func TestRendererHolderFullLifecycle(t *testing.T) {
	h := NewRendererHolder(&stubRenderer{trackType: TrackAudio})

	err := h.Enable(nil, nil, nil, 0, false, 0, "stream-1")
	assert.NoError(t, err)
	assert.Equal(t, RendererEnabled, h.State)

	h.Start()
	assert.Equal(t, RendererStarted, h.State)

	h.Stop()
	assert.Equal(t, RendererEnabled, h.State)

	h.Disable()
	assert.Equal(t, RendererDisabled, h.State)
}

func TestSurvivesTransitionComparesStreamIdentity(t *testing.T) {
	h := NewRendererHolder(&stubRenderer{trackType: TrackVideo})
	_ = h.Enable(nil, nil, nil, 0, false, 0, "stream-a")

	assert.True(t, h.SurvivesTransition("stream-a"))
	assert.False(t, h.SurvivesTransition("stream-b"))
}

func TestMarkStreamFinalSetsWaitingForNextStream(t *testing.T) {
	r := &stubRenderer{trackType: TrackAudio}
	h := NewRendererHolder(r)
	_ = h.Enable(nil, nil, nil, 0, false, 0, "s")

	h.MarkStreamFinal()
	assert.True(t, h.WaitingForNextStream)
	assert.True(t, r.streamFinal)
}

func TestResetForcesDisabledFromAnyState(t *testing.T) {
	h := NewRendererHolder(&stubRenderer{trackType: TrackAudio})
	_ = h.Enable(nil, nil, nil, 0, false, 0, "s")
	h.Start()

	h.Reset()
	assert.Equal(t, RendererDisabled, h.State)
	assert.False(t, h.WaitingForNextStream)
}
