package httpapi

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the playback control surface and the
// WebSocket event stream with router, mirroring viewra's
// playbackmodule/api.RegisterRoutes shape (a route group per concern).
//
// Endpoints:
//   - GET    /v1/playback/info             - current PlaybackInfo snapshot
//   - POST   /v1/playback/prepare          - load a source and begin a session
//   - PUT    /v1/playback/play-when-ready  - toggle play intent
//   - PUT    /v1/playback/repeat-mode      - set repeat mode
//   - PUT    /v1/playback/shuffle          - toggle shuffle
//   - POST   /v1/playback/seek             - seek within the current timeline
//   - PUT    /v1/playback/parameters       - set speed/pitch
//   - PUT    /v1/playback/seek-parameters  - set seek tolerance
//   - PUT    /v1/playback/foreground       - toggle foreground mode
//   - POST   /v1/playback/stop             - stop playback
//   - POST   /v1/playback/release          - tear down the engine
//   - GET    /v1/events/ws                 - WebSocket event stream
func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	playback := router.Group("/playback")
	{
		playback.GET("/info", h.GetPlaybackInfo)
		playback.POST("/prepare", h.Prepare)
		playback.PUT("/play-when-ready", h.SetPlayWhenReady)
		playback.PUT("/repeat-mode", h.SetRepeatMode)
		playback.PUT("/shuffle", h.SetShuffleModeEnabled)
		playback.POST("/seek", h.SeekTo)
		playback.PUT("/parameters", h.SetPlaybackParameters)
		playback.PUT("/seek-parameters", h.SetSeekParameters)
		playback.PUT("/foreground", h.SetForegroundMode)
		playback.POST("/stop", h.Stop)
		playback.POST("/release", h.Release)
	}

	events := router.Group("/events")
	{
		events.GET("/ws", h.HandleWebSocket)
	}
}
