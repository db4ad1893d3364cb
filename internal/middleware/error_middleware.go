package middleware

import (
	"errors"
	"net/http"

	"messagely/internal/transport/httpdto"
	messagely_errors "messagely/pkg/errors"
	"messagely/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler turns the last error attached with c.Error into the JSON error
// body. Server errors are logged and reported with a generic message.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := messagely_errors.HTTPStatus(err)
		message := errorMessage(err)

		if status >= http.StatusInternalServerError {
			if l != nil {
				l.ErrorCtx(c.Request.Context(), "request failed",
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
			}
			message = "internal server error"
		}

		c.JSON(status, httpdto.NewErrorResponse(message, status))
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, messagely_errors.ErrInvalidCredentials):
		return messagely_errors.ErrInvalidCredentials.Error()
	case errors.Is(err, messagely_errors.ErrDuplicateUser):
		return messagely_errors.ErrDuplicateUser.Error()
	case isBare(err, messagely_errors.ErrUnauthorized):
		return "Unauthorized"
	case isBare(err, messagely_errors.ErrForbidden):
		return "Forbidden"
	default:
		return err.Error()
	}
}

// isBare reports whether err is target itself rather than a wrapped form
// carrying its own message.
func isBare(err, target error) bool {
	return errors.Is(err, target) && errors.Unwrap(err) == nil
}
