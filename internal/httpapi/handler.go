// Package httpapi exposes the command surface of a PlaybackEngine as a Gin
// REST API and pushes its published events to WebSocket-connected
// dashboards, the way viewra's internal/server wraps its modules'
// functionality and pluginmodule/dashboard_api.go streams updates over
// gorilla/websocket.
package httpapi

import (
	"github.com/hashicorp/go-hclog"

	"github.com/nodecast/playcore/internal/engine"
	"github.com/nodecast/playcore/internal/events"
	"github.com/nodecast/playcore/internal/pluginhost"
)

// Handler holds the collaborators every endpoint needs: the engine instance
// commands are sent to, the plugin manager sources/renderers are loaded
// from, the event bus WebSocket clients subscribe to, and a logger.
type Handler struct {
	Engine  *engine.PlaybackEngine
	Plugins *pluginhost.Manager
	Bus     *events.Bus
	Log     hclog.Logger
}

// NewHandler returns a Handler wrapping the given collaborators. log may be
// nil, in which case a null logger is used.
func NewHandler(e *engine.PlaybackEngine, plugins *pluginhost.Manager, bus *events.Bus, log hclog.Logger) *Handler {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Handler{Engine: e, Plugins: plugins, Bus: bus, Log: log.Named("httpapi")}
}
