package restapi

import (
	"net/http"
	"time"

	"houses_market/internal/app/port"
	"houses_market/internal/app/state"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const stateContextKey = "houses_market.state"

// SessionCookie configures the cookie carrying the page-session id.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// sessionBinder attaches the caller's state record to a request, creating one when needed.
type sessionBinder struct {
	store  port.SessionStore
	cookie SessionCookie
}

func (b sessionBinder) bind(c *gin.Context) *state.GlobalState {
	if v, ok := c.Get(stateContextKey); ok {
		if st, ok := v.(*state.GlobalState); ok {
			return st
		}
	}

	id, _ := c.Cookie(b.cookie.Name)
	st, ok := b.store.Get(id)
	if !ok {
		id, st = b.store.Create()
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(b.cookie.Name, id, int(b.cookie.TTL.Seconds()), "/", "", b.cookie.Secure, true)
	c.Set(stateContextKey, st)
	return st
}

// middleware binds the session state before the handler runs.
func (b sessionBinder) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.bind(c)
		c.Next()
	}
}

// StateFromContext returns the state bound to the request, or nil.
func StateFromContext(c *gin.Context) *state.GlobalState {
	v, ok := c.Get(stateContextKey)
	if !ok {
		return nil
	}
	st, _ := v.(*state.GlobalState)
	return st
}

// ZapLoggerMiddleware logs every request through zap.
func ZapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("clientIP", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			logger.Warn("Request completed with errors", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		logger.Info("Request completed", fields...)
	}
}
