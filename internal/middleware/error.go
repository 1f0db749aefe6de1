package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ErrorHandler logs the errors handlers attached with c.Error. The response
// itself is written by the handler.
func ErrorHandler(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			logger.Error().
				Err(e.Err).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("Request error")
		}
	}
}
