package handlers

import (
	"errors"
	"net/http"
	"time"

	"regenx/internal/models"
	"regenx/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// sessionMiddleware attaches the session identity, if any, to the context.
// Anonymous requests pass through; only a failing session store aborts.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	cookie, err := c.Cookie(h.opts.CookieName)
	if err != nil || cookie == "" {
		c.Next()
		return
	}

	id, err := h.sessions.Resolve(c.Request.Context(), cookie)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			c.Next()
			return
		}
		h.log.Errorw("session_lookup_failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
		return
	}

	// store in Gin context
	c.Set(identityKey, *id)
	c.Next()
}

// requireSession rejects requests without a logged-in identity.
func (h *Handler) requireSession(c *gin.Context) {
	if _, ok := currentIdentity(c); !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}

func currentIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}

// requestLogger writes one line per request.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	status := c.Writer.Status()
	fields := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"latency", time.Since(start),
		"ip", c.ClientIP(),
	}
	if status >= http.StatusInternalServerError {
		h.log.Warnw("http_request", fields...)
		return
	}
	h.log.Debugw("http_request", fields...)
}

// corsMiddleware allows credentialed requests from the configured origins.
func (h *Handler) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if allowAllOrigins(h.opts.AllowedOrigins) {
		// credentials cannot be combined with a literal "*"
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = h.opts.AllowedOrigins
	}
	return cors.New(cfg)
}

func allowAllOrigins(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
