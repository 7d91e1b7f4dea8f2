package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"veredapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var internalError = apierror.New("Erro interno do servidor")

// withRequest tags ev with the fields every request log line carries.
func withRequest(ev *zerolog.Event, c *gin.Context) *zerolog.Event {
	ev = ev.Str("request_id", c.GetString(RequestIDKey)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path)
	if claims := GetClaims(c); claims != nil {
		ev = ev.Str("user_id", claims.UserID)
	}
	return ev
}

// ErrorHandler turns errors attached with c.Error into a generic 500. The
// client never sees the underlying message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		withRequest(log.Error(), c).
			Str("route", c.FullPath()).
			Err(c.Errors.Last().Err).
			Int("errors", len(c.Errors)).
			Msg("unhandled error")

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, internalError)
		}
	}
}

// Recovery turns a panic in a handler into a 500 and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			withRequest(log.Error(), c).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, internalError)
				return
			}
			c.Abort()
		}()
		c.Next()
	}
}

// Logger writes one line per request. Health probes only log at debug level
// so a load balancer polling every second does not flood the till's log.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Warn()
		case c.Request.URL.Path == "/health":
			ev = log.Debug()
		default:
			ev = log.Info()
		}
		withRequest(ev, c).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
