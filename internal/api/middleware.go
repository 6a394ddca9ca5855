package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"supportchat/internal/session"
)

const (
	SessionCookieName = "supportchat_session"
	sessionContextKey = "chat_session"
)

// sessionMiddleware resolves the session cookie to the session's state, starting a new session
// (and issuing the cookie) when the cookie is missing or no longer known.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieID, _ := c.Cookie(SessionCookieName)
		st := h.sessions.Get(cookieID)
		if st.ID != cookieID {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     SessionCookieName,
				Value:    st.ID,
				Path:     "/",
				Secure:   gin.Mode() == gin.ReleaseMode,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(sessionContextKey, st)
		c.Next()
	}
}

// SessionFromContext retrieves the session resolved by the middleware.
func SessionFromContext(c *gin.Context) (*session.State, bool) {
	val, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	st, ok := val.(*session.State)
	return st, ok
}

// RequestLogger logs one line per request through zerolog.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	logger = logger.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			ev = logger.Error()
		case status >= http.StatusBadRequest:
			ev = logger.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
