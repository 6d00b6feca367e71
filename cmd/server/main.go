package main

import (
	"github.com/inkstream-app/backend/internal/cache"
	"github.com/inkstream-app/backend/internal/router"
	"github.com/inkstream-app/backend/internal/validators"
	"github.com/inkstream-app/backend/pkg/config"
	"github.com/inkstream-app/backend/pkg/log"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := log.New(cfg.LogLevel, cfg.Env)

	// Initialize storage connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer db.CloseDB()

	// The page cache prefers Redis when configured so replicas share the
	// cached global feed; otherwise it is process-local.
	var pageCache cache.PageCache
	if db.Redis != nil {
		pageCache = cache.NewRedis(db.Redis)
	} else {
		pageCache = cache.NewMemory()
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.New()

	// Setup global middleware
	router.SetupMiddleware(e, logger)

	// Setup routes and dependencies
	err = router.SetupRoutes(e, db.Postgres, pageCache, logger, router.Options{
		JWTSecret:    cfg.JWTSecret,
		PageSize:     cfg.PageSize,
		FeedCacheTTL: cfg.FeedCacheTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up routes")
	}

	// Start server
	logger.Info().Str("port", cfg.Port).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
