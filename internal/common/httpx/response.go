package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carbon-forest-backend/internal/common/apperr"
	"carbon-forest-backend/internal/common/logger"
	"carbon-forest-backend/internal/common/middleware"
)

// Error aborts the request with the taxonomy-mapped status and the sanitized
// message. Raw storage errors never reach the client; the wrapped cause is
// logged here with the request id and user id so a 500 stays diagnosable.
func Error(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindStorage {
		logger.Error().
			Err(apperr.CauseOf(err)).
			Str("request_id", middleware.GetRequestID(c)).
			Str("user_id", middleware.UserID(c)).
			Str("path", c.FullPath()).
			Msg("Store operation failed")
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
}

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
