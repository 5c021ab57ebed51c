package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nodecast/playcore/internal/engine"
)

// ToGinResponse writes err as a JSON error envelope, mapping a
// *engine.PlaybackException's Kind to an HTTP status the way viewra's
// internal/errors.ViewraError carries an HTTP-facing Code.
func ToGinResponse(c *gin.Context, err error) {
	var exc *engine.PlaybackException
	if errors.As(err, &exc) {
		c.JSON(statusForKind(exc.Kind), gin.H{
			"error": gin.H{
				"kind":           exc.Kind.String(),
				"message":        exc.Message,
				"renderer_index": exc.RendererIndex,
			},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": err.Error()}})
}

func statusForKind(k engine.ErrorKind) int {
	switch k {
	case engine.ErrorSource:
		return http.StatusBadGateway
	case engine.ErrorRenderer:
		return http.StatusUnprocessableEntity
	case engine.ErrorOutOfMemory:
		return http.StatusInsufficientStorage
	case engine.ErrorRemote:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
