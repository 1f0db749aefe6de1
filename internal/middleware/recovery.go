package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
	"github.com/jwalitptl/optica-admin/pkg/httputil"
)

// Recovery turns a panic into a 500 with the standard error body.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error().
				Str("panic", fmt.Sprint(rec)).
				Bytes("stack", debug.Stack()).
				Str("route", c.FullPath()).
				Str("request_id", c.GetString(ContextRequestID)).
				Msg("Handler panicked")

			appErr := apperrors.Internal(fmt.Errorf("panic: %v", rec))
			appErr.Message = "Server error"
			httputil.RespondWithError(c, appErr)
		}()
		c.Next()
	}
}
