package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const healthPath = "/api/healthz"

// Logger writes one access line per request. Health checks log at debug so
// they do not drown production logs.
func Logger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		case c.Request.URL.Path == healthPath:
			event = log.Debug()
		default:
			event = log.Info()
		}

		if last := c.Errors.Last(); last != nil {
			event = event.Err(last.Err)
		}
		if identity, ok := CurrentIdentity(c); ok {
			event = event.
				Str("account_id", identity.AccountID).
				Str("role", string(identity.Role)).
				Str("strategy", identity.Strategy)
		}

		event.
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
