package engine

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/nodecast/playcore/internal/logger"
)

// DefaultLoadControl is a memory-aware LoadControl: it targets a fixed
// buffered-duration window but backs off ShouldContinueLoading once
// available system memory drops below a floor, the way viewra's transcode
// session manager watches resident memory before admitting new sessions.
type DefaultLoadControl struct {
	minBufferUs     int64
	maxBufferUs     int64
	playbackBufferUs int64
	minAvailableMemoryBytes uint64

	memStatFn func() (uint64, error)
}

// NewDefaultLoadControl returns a LoadControl that keeps loading until
// maxBufferUs (scaled by playback speed) of media is buffered, refusing to
// load further once available system memory drops below
// minAvailableMemoryBytes. minBufferUs is stored but not consulted.
func NewDefaultLoadControl(minBufferUs, maxBufferUs, playbackBufferUs int64, minAvailableMemoryBytes uint64) *DefaultLoadControl {
	return &DefaultLoadControl{
		minBufferUs:             minBufferUs,
		maxBufferUs:             maxBufferUs,
		playbackBufferUs:        playbackBufferUs,
		minAvailableMemoryBytes: minAvailableMemoryBytes,
		memStatFn:               availableMemoryBytes,
	}
}

func availableMemoryBytes() (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return v.Available, nil
}

// ShouldContinueLoading reports whether the queue should keep requesting
// more data: true while bufferedDurationUs is under maxBufferUs divided by
// playbackSpeed (so a higher speed lowers the target) and the system has
// memory headroom.
func (c *DefaultLoadControl) ShouldContinueLoading(bufferedDurationUs int64, playbackSpeed float64) bool {
	if playbackSpeed <= 0 {
		playbackSpeed = 1
	}
	target := int64(float64(c.maxBufferUs) / playbackSpeed)
	if bufferedDurationUs >= target {
		return false
	}
	if available, err := c.memStatFn(); err == nil && available < c.minAvailableMemoryBytes {
		logger.Warn("load control backing off: low available memory (%d bytes available, floor %d)", available, c.minAvailableMemoryBytes)
		return false
	}
	return true
}

// ShouldStartPlayback reports whether enough is buffered to leave
// BUFFERING and enter READY.
func (c *DefaultLoadControl) ShouldStartPlayback(bufferedDurationUs int64, playbackSpeed float64) bool {
	if playbackSpeed <= 0 {
		playbackSpeed = 1
	}
	return bufferedDurationUs >= int64(float64(c.playbackBufferUs)*playbackSpeed)
}
