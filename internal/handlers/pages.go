package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

const (
	pageIndex     = "index.html"
	pageHome      = "home.html"
	pageAuth      = "auth.html"
	pageDashboard = "dashboard.html"
)

// page serves one HTML file from the static directory.
func (h *Handler) page(name string) gin.HandlerFunc {
	path := filepath.Join(h.opts.StaticDir, name)
	return func(c *gin.Context) {
		c.File(path)
	}
}

// logout destroys the session and sends the browser back to the auth page.
func (h *Handler) logout(c *gin.Context) {
	if cookie, err := c.Cookie(h.opts.CookieName); err == nil && cookie != "" {
		if err := h.sessions.Revoke(c.Request.Context(), cookie); err != nil {
			h.log.Warnw("session_revoke_failed", "err", err)
		}
	}
	h.clearSessionCookie(c)
	c.Redirect(http.StatusFound, "/signup")
}
