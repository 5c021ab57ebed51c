package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nodecast/playcore/internal/clock"
)

func TestStandaloneClockExtrapolatesAtUnitSpeed(t *testing.T) {
	vc := clock.NewVirtualClock()
	mc := NewMediaClock(vc)
	mc.ResetPosition(1_000_000)
	mc.Start()

	vc.AdvanceTime(500)
	assert.Equal(t, int64(1_500_000), mc.SyncAndGetPositionUs())
}

func TestStandaloneClockHonorsSpeed(t *testing.T) {
	vc := clock.NewVirtualClock()
	mc := NewMediaClock(vc)
	mc.ResetPosition(0)
	mc.SetPlaybackParameters(PlaybackParameters{Speed: 2, Pitch: 1})
	mc.Start()

	vc.AdvanceTime(1000)
	assert.Equal(t, int64(2_000_000), mc.SyncAndGetPositionUs())
}

func TestStoppedClockDoesNotAdvance(t *testing.T) {
	vc := clock.NewVirtualClock()
	mc := NewMediaClock(vc)
	mc.ResetPosition(5_000_000)

	vc.AdvanceTime(1000)
	assert.Equal(t, int64(5_000_000), mc.SyncAndGetPositionUs())
}

type fakeRendererClock struct {
	posUs   int64
	ready   bool
	params  PlaybackParameters
}

func (f *fakeRendererClock) PositionUs() (int64, bool)                    { return f.posUs, f.ready }
func (f *fakeRendererClock) SetPlaybackParameters(p PlaybackParameters) PlaybackParameters { f.params = p; return p }
func (f *fakeRendererClock) PlaybackParameters() PlaybackParameters       { return f.params }

func TestRendererClockOverridesStandaloneWhileReady(t *testing.T) {
	vc := clock.NewVirtualClock()
	mc := NewMediaClock(vc)
	mc.Start()

	rc := &fakeRendererClock{posUs: 9_000_000, ready: true}
	mc.OnRendererEnabled(rc)

	assert.Equal(t, int64(9_000_000), mc.SyncAndGetPositionUs())
}

func TestStandaloneResumesFromLastObservedOnRendererDisable(t *testing.T) {
	vc := clock.NewVirtualClock()
	mc := NewMediaClock(vc)
	mc.Start()

	rc := &fakeRendererClock{posUs: 9_000_000, ready: true}
	mc.OnRendererEnabled(rc)
	mc.SyncAndGetPositionUs()
	mc.OnRendererDisabled(rc)

	vc.AdvanceTime(200)
	assert.Equal(t, int64(9_200_000), mc.SyncAndGetPositionUs())
}
