package handlers

import (
	"net/http"
	"time"

	_ "regenx/docs"
	"regenx/internal/logger"
	"regenx/internal/service"
	"regenx/internal/session"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options are the HTTP-layer settings taken from config.
type Options struct {
	StaticDir          string
	Location           *time.Location // calendar for history query dates
	TrustedProxies     []string       // peers allowed to set X-Forwarded-For
	CookieName         string
	CookieSecure       bool
	AllowedOrigins     []string
	RateLimitPerMinute int
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	sessions *session.Manager
	log      *logger.Logger
	opts     Options
	metrics  *metrics
	limiter  *ipLimiter
}

// NewHandler constructs a new HTTP handler with dependencies. A nil log discards output.
func NewHandler(services *service.Service, sessions *session.Manager, log *logger.Logger, opts Options) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if opts.CookieName == "" {
		opts.CookieName = "regenx.sid"
	}
	if opts.StaticDir == "" {
		opts.StaticDir = "public"
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Handler{
		services: services,
		sessions: sessions,
		log:      log,
		opts:     opts,
		metrics:  newMetrics(),
		limiter:  newIPLimiter(opts.RateLimitPerMinute),
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	// only listed proxies may supply the client IP the rate limiter keys on
	if err := router.SetTrustedProxies(h.opts.TrustedProxies); err != nil {
		h.log.Errorw("trusted_proxies_invalid", "proxies", h.opts.TrustedProxies, "err", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery(), h.requestMetrics, h.requestLogger, h.corsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", h.metrics.handler())
	router.GET("/health", h.health)

	h.registerPageRoutes(router)
	h.registerAPIRoutes(router)

	// Live channel (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerPageRoutes(r *gin.Engine) {
	r.GET("/", h.page(pageIndex))
	r.GET("/home", h.page(pageHome))
	r.GET("/signup", h.page(pageAuth))
	r.GET("/dashboard", h.page(pageDashboard))
	r.GET("/logout", h.logout)
	r.Static("/public", h.opts.StaticDir)
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api", h.sessionMiddleware)
	{
		api.GET("/user", h.getUser)
		api.POST("/signup", h.rateLimit, h.signUp)
		api.POST("/login", h.rateLimit, h.login)

		authed := api.Group("", h.requireSession)
		authed.POST("/save-session", h.saveSession)
		authed.GET("/history", h.getHistory)
	}
}

// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
