package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sentiment-dashboard/internal/auth"
	"sentiment-dashboard/internal/storage"
)

const (
	clientCookie    = "client_id"
	clientCookieAge = 365 * 24 * 60 * 60

	ctxClientID = "client_id"
	ctxStore    = "client_store"
	ctxSession  = "session"
)

// ClientID gives every browser a stable storage namespace, issuing a
// cookie on first visit.
func (h *Handler) ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(clientCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(clientCookie, id, clientCookieAge, "/", "", h.opts.SecureCookies, true)
		}

		scope, err := h.storage.Namespace(id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "client storage unavailable"})
			return
		}
		c.Set(ctxClientID, id)
		c.Set(ctxStore, scope)
		c.Next()
	}
}

// RequireSession re-checks the stored token on every request. Pages are
// redirected to /login, API calls get 401.
func (h *Handler) RequireSession(api bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := h.sessionFor(c)
		if !session.Authenticated() {
			if api {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
				return
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(ctxSession, session)
		c.Next()
	}
}

func (h *Handler) sessionFor(c *gin.Context) *auth.Session {
	if s, ok := c.Get(ctxSession); ok {
		return s.(*auth.Session)
	}
	session := auth.NewSession(clientStore(c), h.decoder)
	session.Refresh(c.Request.Context())
	return session
}

func clientStore(c *gin.Context) storage.Store {
	return c.MustGet(ctxStore).(storage.Store)
}

func clientID(c *gin.Context) string {
	return c.GetString(ctxClientID)
}
