package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"regenx/internal/config"
	"regenx/internal/handlers"
	"regenx/internal/logger"
	"regenx/internal/realtime"
	"regenx/internal/repository"
	"regenx/internal/repository/db"
	"regenx/internal/server"
	"regenx/internal/service"
	"regenx/internal/session"

	"github.com/redis/go-redis/v9"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

// @title        ReGenX API
// @version      1.0
// @description  Step tracking backend: accounts, lifetime counters, daily history and a live pulse channel.
// @BasePath     /
func main() {
	// load configs/config.yml, .env and REGENX_* overrides
	cfg, err := config.Load("configs")
	if err != nil {
		logger.New(logger.Options{Level: logger.InfoLevel}).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	// open DB
	sqlDB, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DBPath, "err", err)
	}
	defer closeDB(sqlDB, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := openSessionStore(ctx, cfg, log)
	defer closeStore()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	hub := realtime.NewHub(0)
	services := service.NewService(repos, hub, service.Options{
		Location: cfg.Location,
		DeviceID: cfg.Simulator.DeviceID,
	})
	sessions := session.NewManager(store, session.NewCookieCodec(cfg.Session.Secret, cfg.Session.TTL))
	apiHandler := handlers.NewHandler(services, sessions, log, handlers.Options{
		StaticDir:          cfg.StaticDir,
		Location:           cfg.Location,
		TrustedProxies:     cfg.TrustedProxies,
		CookieName:         cfg.Session.CookieName,
		CookieSecure:       cfg.Session.Secure,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimit.PerMinute,
	})

	if cfg.Simulator.Enabled {
		log.Infow("pulse simulator enabled", "device_id", cfg.Simulator.DeviceID, "interval", cfg.Simulator.Interval)
		go services.Simulator.Run(ctx, cfg.Simulator.Interval)
	}

	// start HTTP server
	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, log)
	log.Infow("server started", "port", cfg.Port, "timezone", cfg.Location.String(), "session_backend", cfg.Session.Backend)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// openSessionStore builds the configured session backend and returns its closer.
func openSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (session.Store, func()) {
	if cfg.Session.Backend == config.SessionRedis {
		rc := session.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx).Err(); err != nil {
			log.Fatalw("failed to connect to redis", "addr", cfg.Redis.Addr, "err", err)
		}
		return session.NewRedisStore(rc, cfg.Session.TTL), func() { closeRedis(rc, log) }
	}

	mem := session.NewMemoryStore(cfg.Session.TTL)
	go mem.RunSweeper(ctx, sweepInterval)
	return mem, func() {}
}

func closeRedis(rc *redis.Client, log *logger.Logger) {
	if err := rc.Close(); err != nil {
		log.Errorw("failed to close redis", "err", err)
	}
}

func closeDB(sqlDB *sql.DB, log *logger.Logger) {
	if err := sqlDB.Close(); err != nil {
		log.Errorw("failed to close sqlite", "err", err)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
