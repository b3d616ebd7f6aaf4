package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns a handler panic into the generic 500 body and logs the
// stack.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			_ = c.Error(fmt.Errorf("panic: %v", r))
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Str("request_id", RequestIDFrom(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("panic recovered")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
		}()
		c.Next()
	}
}
