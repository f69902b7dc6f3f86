package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"custody/internal/core/apperror"
	"custody/internal/infrastructure/http/v1/dto"
	"custody/pkg/logger"
)

// ErrorHandler renders the last error registered by a handler as dto.ErrorResponse.
// Errors that are not AppErrors become INTERNAL_ERROR; their text never reaches the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := apperror.AsAppError(err)
		if !ok {
			appErr = apperror.NewInternal(err).
				WithDetail("request_id", c.GetString(ContextKeyRequestID))
		}

		if appErr.Err != nil {
			log := logger.FromContext(c.Request.Context())
			if appErr.HTTPStatus >= http.StatusInternalServerError && !appErr.Retryable {
				log.Errorw("request failed", "code", appErr.Code, "cause", appErr.Err)
			} else {
				log.Warnw("request failed", "code", appErr.Code, "cause", appErr.Err)
			}
		}

		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Code:      appErr.Code,
			Message:   appErr.Message,
			Details:   appErr.Details,
			Retryable: appErr.Retryable,
		})
	}
}
