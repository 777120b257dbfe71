package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/endpointkit/errors"
	"github.com/kbukum/endpointkit/logger"
)

// ErrorHandler writes the last error attached to the Gin context as a JSON
// error body, unless the handler already wrote a response. Errors that are not
// *errors.AppError are reported as INTERNAL_ERROR.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	log = logger.OrGlobal(log)
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		RespondWithError(c, log, c.Errors.Last().Err)
	}
}

// RespondWithError writes err as an error body with its HTTP status.
func RespondWithError(c *gin.Context, log *logger.Logger, err error) {
	appErr := apperrors.Wrap(err)
	fields := logger.MergeWithError(logger.Fields(
		"code", string(appErr.Code),
		"status", appErr.HTTPStatus,
		logger.FieldPath, c.Request.URL.Path,
	), err)
	if id, ok := c.Get(requestIDKey); ok {
		fields[logger.FieldRequestID] = id
	}

	if appErr.HTTPStatus >= 500 {
		logger.OrGlobal(log).Error("Request failed", fields)
	} else {
		logger.OrGlobal(log).Warn("Request rejected", fields)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// NotFound reports unrouted paths as NOT_FOUND errors.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("route", c.Request.URL.Path))
	}
}

// MethodNotAllowed reports paths routed for other verbs as METHOD_NOT_ALLOWED.
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(apperrors.MethodNotAllowed(c.Request.Method, c.Request.URL.Path))
	}
}
