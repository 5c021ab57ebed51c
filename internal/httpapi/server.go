package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nodecast/playcore/internal/config"
)

// Server wraps the Gin engine and the underlying http.Server, giving
// cmd/playengine a single Start/Shutdown pair.
type Server struct {
	cfg    config.ServerConfig
	router *gin.Engine
	http   *http.Server
}

// NewServer builds the router (CORS middleware plus every route
// RegisterRoutes declares) and binds it to cfg's host/port, mirroring
// viewra's server.SetupRouter.
func NewServer(cfg config.ServerConfig, h *Handler) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.EnableCORS {
		router.Use(corsMiddleware)
	}

	v1 := router.Group("/v1")
	RegisterRoutes(v1, h)

	return &Server{
		cfg:    cfg,
		router: router,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

func corsMiddleware(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

// Router exposes the underlying *gin.Engine, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// ListenAndServe starts the HTTP listener, blocking until it exits.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
