package router

import (
	"time"

	"github.com/inkstream-app/backend/internal/cache"
	"github.com/inkstream-app/backend/internal/feed"
	"github.com/inkstream-app/backend/internal/handlers"
	"github.com/inkstream-app/backend/internal/middleware"
	"github.com/inkstream-app/backend/internal/models"
	"github.com/inkstream-app/backend/internal/repositories"
	"github.com/inkstream-app/backend/internal/social"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Options carries the tunables the routes need beyond their stores.
type Options struct {
	JWTSecret    string
	PageSize     int
	FeedCacheTTL time.Duration
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger zerolog.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Prometheus())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB, pageCache cache.PageCache, logger zerolog.Logger, opts Options) error {
	// AutoMigrate models
	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
	if err != nil {
		return err
	}

	// Health check and metrics - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	groupRepo := repositories.NewPostgresGroupRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)

	// --- Core services ---
	graph := social.NewGraph(followRepo, logger)
	assembler := feed.NewAssembler(postRepo, groupRepo, userRepo, graph, opts.PageSize)

	// Session parsing applies everywhere; protected routes add RequireAuth.
	e.Use(middleware.Session(opts.JWTSecret))

	// --- Auth routes ---
	authGroup := e.Group("/auth")
	authHandler := handlers.NewAuthHandler(userRepo, opts.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Public routes ---
	feedHandler := handlers.NewFeedHandler(assembler, graph, pageCache, opts.FeedCacheTTL)
	feedHandler.RegisterFeedRoutes(e)

	postHandler := handlers.NewPostHandler(postRepo, groupRepo, commentRepo)
	postHandler.RegisterPostRoutes(e)

	groupHandler := handlers.NewGroupHandler(groupRepo)
	groupHandler.RegisterGroupRoutes(e)

	// --- Protected routes (anonymous viewers are sent to login) ---
	protected := e.Group("")
	protected.Use(middleware.RequireAuth())

	feedHandler.RegisterFollowingFeedRoute(protected)
	postHandler.RegisterProtectedPostRoutes(protected)
	groupHandler.RegisterProtectedGroupRoutes(protected)
	authHandler.RegisterProtectedAuthRoutes(protected)

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo)
	commentHandler.RegisterCommentRoutes(protected)

	followHandler := handlers.NewFollowHandler(graph, userRepo)
	followHandler.RegisterFollowRoutes(protected)

	return nil
}
