package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys shared by the request middleware and the error helpers.
const (
	LoggerKey    = "logger"
	RequestIDKey = "requestId"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ContextLogger returns the request-scoped logger stored under LoggerKey, or the global one.
func ContextLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(LoggerKey); ok {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return GetLogger()
}

// ErrorHandler recovers handler panics and answers with a 500 ErrorResponse instead of
// dropping the connection.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				ContextLogger(c).Error("Unhandled panic",
					zap.Any("error", rec),
					zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message:   "Internal Server Error",
					Details:   "An unexpected error occurred. Please try again later.",
					RequestID: c.GetString(RequestIDKey),
				})
			}
		}()
		c.Next()
	}
}

// JSONError writes an ErrorResponse. Server errors are logged at error level, client errors at warn.
func JSONError(c *gin.Context, status int, message string, details string) {
	logger := ContextLogger(c)
	fields := []zap.Field{zap.Int("status", status), zap.String("details", details)}
	if status >= http.StatusInternalServerError {
		logger.Error(message, fields...)
	} else {
		logger.Warn(message, fields...)
	}
	c.JSON(status, ErrorResponse{Message: message, Details: details, RequestID: c.GetString(RequestIDKey)})
}
