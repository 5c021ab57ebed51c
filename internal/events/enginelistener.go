package events

import (
	"github.com/nodecast/playcore/internal/engine"
)

// PlaybackInfoChangedData is the payload carried on a
// TypePlaybackInfoChanged Event.
type PlaybackInfoChangedData struct {
	OperationAcks    int
	DiscontinuityReason engine.DiscontinuityReason
	HasDiscontinuity bool
	Info             engine.PlaybackInfo
}

// EngineListener adapts engine.EventListener onto a Bus, so every
// PLAYBACK_INFO_CHANGED publication the engine's tick produces reaches
// internal/httpapi's WebSocket stream and internal/history's session
// recorder as one TypePlaybackInfoChanged Event, the way viewra's modules
// publish onto the shared system event bus instead of calling listeners
// directly.
type EngineListener struct {
	bus    *Bus
	source string
}

// NewEngineListener returns an EngineListener publishing onto bus, tagging
// each Event with source (typically the engine instance's session id).
func NewEngineListener(bus *Bus, source string) *EngineListener {
	return &EngineListener{bus: bus, source: source}
}

func (l *EngineListener) OnPlaybackInfoChanged(operationAcks int, reason engine.DiscontinuityReason, hasDiscontinuity bool, info engine.PlaybackInfo) {
	event := NewEvent(TypePlaybackInfoChanged, l.source, PlaybackInfoChangedData{
		OperationAcks:       operationAcks,
		DiscontinuityReason: reason,
		HasDiscontinuity:    hasDiscontinuity,
		Info:                info,
	})
	_ = l.bus.PublishAsync(event)
}

// OnPlayerError implements engine.PlayerErrorListener, publishing exc as a
// TypeError Event so internal/httpapi's WebSocket stream and
// internal/history's error recorder both see it.
func (l *EngineListener) OnPlayerError(exc *engine.PlaybackException) {
	_ = l.bus.PublishAsync(NewEvent(TypeError, l.source, exc))
}

var _ engine.EventListener = (*EngineListener)(nil)
var _ engine.PlayerErrorListener = (*EngineListener)(nil)
