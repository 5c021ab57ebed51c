package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlaybackInfoStartsIdle(t *testing.T) {
	info := NewPlaybackInfo()
	assert.Equal(t, StateIdle, info.PlaybackState)
	assert.True(t, info.Timeline.IsEmpty())
}

func TestPlaybackInfoUpdateTracksOperationAcks(t *testing.T) {
	u := NewPlaybackInfoUpdate(NewPlaybackInfo())
	assert.False(t, u.HasPendingChange())

	u.IncrementOperationAcks(1)
	assert.True(t, u.HasPendingChange())
	assert.Equal(t, 1, u.OperationAcks())

	u.Reset()
	assert.False(t, u.HasPendingChange())
	assert.Equal(t, 0, u.OperationAcks())
}

func TestNonInternalReasonOverridesInternal(t *testing.T) {
	u := NewPlaybackInfoUpdate(NewPlaybackInfo())
	u.SetPositionDiscontinuity(DiscontinuityInternal)
	u.SetPositionDiscontinuity(DiscontinuitySeek)

	reason, has := u.DiscontinuityInfo()
	assert.True(t, has)
	assert.Equal(t, DiscontinuitySeek, reason)
}

func TestInternalReasonDoesNotOverrideNonInternal(t *testing.T) {
	u := NewPlaybackInfoUpdate(NewPlaybackInfo())
	u.SetPositionDiscontinuity(DiscontinuityPeriodTransition)
	u.SetPositionDiscontinuity(DiscontinuityInternal)

	reason, has := u.DiscontinuityInfo()
	assert.True(t, has)
	assert.Equal(t, DiscontinuityPeriodTransition, reason)
}

func TestSetPlaybackInfoMarksDirty(t *testing.T) {
	u := NewPlaybackInfoUpdate(NewPlaybackInfo())
	updated := NewPlaybackInfo().WithPlaybackState(StateReady)
	u.SetPlaybackInfo(updated)

	assert.True(t, u.HasPendingChange())
	assert.Equal(t, StateReady, u.PlaybackInfo.PlaybackState)
}
