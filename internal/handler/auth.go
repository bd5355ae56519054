package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/auth"
	"sentiment-dashboard/internal/storage"
	"sentiment-dashboard/pkg/logger"
)

var log = logger.WithComponent("handler")

func (h *Handler) LoginPage(c *gin.Context) {
	if h.sessionFor(c).Authenticated() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"LoginPath": "/auth/github"})
}

// StartLogin sends the browser to the auth service's GitHub flow.
func (h *Handler) StartLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, auth.LoginURL(h.opts.AuthURL, h.opts.FrontendURL, c.Query("state")))
}

// Callback receives the token from the auth service. Without a token the
// waiting page is shown and nothing else happens. A state path segment routes
// the token to the terminal that started a device login.
func (h *Handler) Callback(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.auth-callback")
	defer span.End()

	token := c.Query("token")
	if token == "" {
		c.HTML(http.StatusOK, "callback.html", gin.H{"Waiting": true})
		return
	}

	state := c.Param("state")
	if state == "" {
		session := auth.NewSession(clientStore(c), h.decoder)
		if err := session.Accept(ctx, token); err != nil {
			log.WithError(err).Error("store session token")
			c.HTML(http.StatusInternalServerError, "callback.html", gin.H{"Error": "Could not save your session. Please try again."})
			return
		}
		c.Redirect(http.StatusFound, "/")
		return
	}

	if err := h.completeDeviceLogin(c, state, token); err != nil {
		status := http.StatusInternalServerError
		msg := "Could not complete the terminal login. Please try again."
		if errors.Is(err, auth.ErrUnknownLoginState) {
			status = http.StatusBadRequest
			msg = "This login link has expired. Start again from your terminal."
		}
		log.WithError(err).Warn("device login failed")
		c.HTML(status, "callback.html", gin.H{"Error": msg})
		return
	}
	c.HTML(http.StatusOK, "callback.html", gin.H{"Device": true})
}

func (h *Handler) completeDeviceLogin(c *gin.Context, state, token string) error {
	ctx := c.Request.Context()
	logins, err := h.storage.Namespace(storage.LoginNamespace)
	if err != nil {
		return err
	}
	ns, err := auth.CompleteDeviceLogin(ctx, logins, state, h.now())
	if err != nil {
		return err
	}
	target, err := h.storage.Namespace(ns)
	if err != nil {
		return err
	}
	return auth.NewSession(target, h.decoder).Accept(ctx, token)
}

func (h *Handler) Logout(c *gin.Context) {
	session := auth.NewSession(clientStore(c), h.decoder)
	if err := session.Logout(c.Request.Context()); err != nil {
		log.WithError(err).Warn("logout")
	}
	c.Redirect(http.StatusSeeOther, "/login")
}
