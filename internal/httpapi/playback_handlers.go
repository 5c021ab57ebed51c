package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nodecast/playcore/internal/engine"
)

// GetPlaybackInfo handles GET /v1/playback/info. It returns the most
// recently published PlaybackInfo snapshot.
func (h *Handler) GetPlaybackInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.Engine.GetPlaybackInfo())
}

// prepareRequest names the MediaSource plugin to load and prepare against.
type prepareRequest struct {
	SourceID      string `json:"source_id" binding:"required"`
	Binary        string `json:"binary" binding:"required"`
	ResetPosition bool   `json:"reset_position"`
	ResetState    bool   `json:"reset_state"`
}

// Prepare handles POST /v1/playback/prepare. It loads the named
// MediaSource plugin and begins a new playback session against it.
func (h *Handler) Prepare(c *gin.Context) {
	var req prepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	source, err := h.Plugins.LoadMediaSource(req.SourceID, req.Binary)
	if err != nil {
		ToGinResponse(c, engine.NewRemoteError("failed to load media source", err))
		return
	}

	h.Engine.Prepare(source, req.ResetPosition, req.ResetState)
	c.JSON(http.StatusAccepted, gin.H{"message": "prepare scheduled"})
}

// playWhenReadyRequest toggles user intent to play.
type playWhenReadyRequest struct {
	PlayWhenReady bool `json:"play_when_ready"`
}

// SetPlayWhenReady handles PUT /v1/playback/play-when-ready.
func (h *Handler) SetPlayWhenReady(c *gin.Context) {
	var req playWhenReadyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.Engine.SetPlayWhenReady(req.PlayWhenReady)
	c.JSON(http.StatusAccepted, gin.H{"message": "play_when_ready scheduled"})
}

// repeatModeRequest names the repeat mode by its spec.md §3 identifier.
type repeatModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SetRepeatMode handles PUT /v1/playback/repeat-mode. Mode is one of "off",
// "one", "all".
func (h *Handler) SetRepeatMode(c *gin.Context) {
	var req repeatModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	mode, ok := parseRepeatMode(req.Mode)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown repeat mode: " + req.Mode})
		return
	}
	h.Engine.SetRepeatMode(mode)
	c.JSON(http.StatusAccepted, gin.H{"message": "repeat_mode scheduled"})
}

func parseRepeatMode(s string) (engine.RepeatMode, bool) {
	switch s {
	case "off":
		return engine.RepeatOff, true
	case "one":
		return engine.RepeatOne, true
	case "all":
		return engine.RepeatAll, true
	default:
		return engine.RepeatOff, false
	}
}

// shuffleRequest toggles shuffle navigation.
type shuffleRequest struct {
	Enabled bool `json:"enabled"`
}

// SetShuffleModeEnabled handles PUT /v1/playback/shuffle.
func (h *Handler) SetShuffleModeEnabled(c *gin.Context) {
	var req shuffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.Engine.SetShuffleModeEnabled(req.Enabled)
	c.JSON(http.StatusAccepted, gin.H{"message": "shuffle_mode scheduled"})
}

// seekRequest targets a window/position pair on the engine's current
// timeline, the one the client last observed via GetPlaybackInfo or the
// WebSocket stream.
type seekRequest struct {
	WindowIndex int   `json:"window_index"`
	PositionUs  int64 `json:"position_us"`
}

// SeekTo handles POST /v1/playback/seek.
func (h *Handler) SeekTo(c *gin.Context) {
	var req seekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	timeline := h.Engine.GetPlaybackInfo().Timeline
	h.Engine.SeekTo(timeline, req.WindowIndex, req.PositionUs)
	c.JSON(http.StatusAccepted, gin.H{"message": "seek scheduled"})
}

// SetPlaybackParameters handles PUT /v1/playback/parameters.
func (h *Handler) SetPlaybackParameters(c *gin.Context) {
	var req engine.PlaybackParameters
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.Engine.SetPlaybackParameters(req)
	c.JSON(http.StatusAccepted, gin.H{"message": "playback_parameters scheduled"})
}

// SetSeekParameters handles PUT /v1/playback/seek-parameters.
func (h *Handler) SetSeekParameters(c *gin.Context) {
	var req engine.SeekParameters
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.Engine.SetSeekParameters(req)
	c.JSON(http.StatusAccepted, gin.H{"message": "seek_parameters scheduled"})
}

// foregroundRequest toggles foreground mode.
type foregroundRequest struct {
	Enabled bool `json:"enabled"`
}

// SetForegroundMode handles PUT /v1/playback/foreground. Unlike the other
// commands it blocks until the engine has processed the change, matching
// engine.PlaybackEngine.SetForegroundMode's synchronous contract.
func (h *Handler) SetForegroundMode(c *gin.Context) {
	var req foregroundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.Engine.SetForegroundMode(req.Enabled)
	c.JSON(http.StatusOK, gin.H{"message": "foreground_mode applied"})
}

// stopRequest controls whether Stop also resets the playback position.
type stopRequest struct {
	ResetPosition bool `json:"reset_position"`
}

// Stop handles POST /v1/playback/stop.
func (h *Handler) Stop(c *gin.Context) {
	var req stopRequest
	_ = c.ShouldBindJSON(&req)
	h.Engine.Stop(req.ResetPosition)
	c.JSON(http.StatusAccepted, gin.H{"message": "stop scheduled"})
}

// Release handles POST /v1/playback/release. It blocks until the engine's
// worker has fully torn down, matching engine.PlaybackEngine.Release.
func (h *Handler) Release(c *gin.Context) {
	h.Engine.Release()
	c.JSON(http.StatusOK, gin.H{"message": "released"})
}
