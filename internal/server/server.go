// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/TheAXPerience/ScrapPages/docs" // swagger docs
	"github.com/TheAXPerience/ScrapPages/internal/bootstrap"
	"github.com/TheAXPerience/ScrapPages/internal/config"
	"github.com/TheAXPerience/ScrapPages/internal/featureflags"
	"github.com/TheAXPerience/ScrapPages/internal/middleware"
	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/notifications"
	"github.com/TheAXPerience/ScrapPages/internal/repository"
	"github.com/TheAXPerience/ScrapPages/internal/service"
	"github.com/TheAXPerience/ScrapPages/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          storage.Store
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager
	now            func() time.Time

	userService    *service.UserService
	profileService *service.ProfileService
	scrapService   *service.ScrapService
	commentService *service.CommentService
	likeService    *service.LikeService
	tagService     *service.TagService
}

// NewServer connects every backing service described by cfg and builds a Server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return nil, fmt.Errorf("runtime init failed: %w", err)
	}
	return NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Store)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis/storage.
// A nil Redis client disables realtime events and Redis-backed rate limits.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.Store) (*Server, error) {
	if db == nil || store == nil {
		return nil, fmt.Errorf("database and storage are required")
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	scrapRepo := repository.NewScrapRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		store:          store,
		promMiddleware: middleware.InitMetrics("scrappages-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		now:            time.Now,
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
	}
	events := server.notifier

	server.userService = service.NewUserService(userRepo, profileRepo, store)
	server.profileService = service.NewProfileService(profileRepo, store)
	server.scrapService = service.NewScrapService(scrapRepo, userRepo, store, events, cfg.UploadMaxBytes())
	server.scrapService.SetPreviewGate(server.featureFlags.Gate(featureflags.ImagePreviews))
	server.commentService = service.NewCommentService(commentRepo, scrapRepo, events)
	server.likeService = service.NewLikeService(likeRepo, server.scrapService, server.commentService, events)
	server.tagService = service.NewTagService(tagRepo, scrapRepo, events)

	return server, nil
}

// NewApp builds the fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "ScrapPages API",
		BodyLimit: int(s.config.UploadMaxBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fe.Message)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if sentry.CurrentHub().Client() != nil {
		app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true, WaitForDelivery: false}))
	}

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(middleware.TracingMiddleware())

	// Security headers; media files are served cross-origin to the frontend.
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: s.config.AllowedOrigins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON("Too many requests, please try again later.")
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if local, ok := s.store.(*storage.LocalStore); ok {
		app.Static(s.config.MediaURL, local.Root(), fiber.Static{ByteRange: true})
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/feature-flags", s.GetFeatureFlags)

	auth := api.Group("/auth")
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	scraps := api.Group("/scraps")
	scraps.Get("/", s.ListScraps)
	scraps.Post("/", s.AuthRequired(),
		middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_scrap"), s.CreateScrap)
	// Static segment before the generic /:sid routes.
	scraps.Get("/tagged/:tname", s.ListTaggedScraps)

	scraps.Get("/:sid/comments", s.ListComments)
	scraps.Post("/:sid/comments", s.AuthRequired(),
		middleware.RateLimit(s.redis, 30, time.Minute, "create_comment"), s.CreateComment)
	scraps.Post("/:sid/comments/:cid/like", s.AuthRequired(), s.LikeComment)
	scraps.Delete("/:sid/comments/:cid/like", s.AuthRequired(), s.UnlikeComment)
	scraps.Get("/:sid/comments/:cid", s.GetComment)
	scraps.Post("/:sid/comments/:cid", s.AuthRequired(),
		middleware.RateLimit(s.redis, 30, time.Minute, "create_comment"), s.CreateReply)
	scraps.Put("/:sid/comments/:cid", s.AuthRequired(), s.UpdateComment)
	scraps.Delete("/:sid/comments/:cid", s.AuthRequired(), s.DeleteComment)

	scraps.Post("/:sid/like", s.AuthRequired(), s.LikeScrap)
	scraps.Delete("/:sid/like", s.AuthRequired(), s.UnlikeScrap)

	scraps.Get("/:sid/tags", s.ListTags)
	scraps.Post("/:sid/tags", s.AuthRequired(), s.AddTag)
	scraps.Delete("/:sid/tags", s.AuthRequired(), s.RemoveTag)

	scraps.Get("/:sid", s.GetScrap)
	scraps.Put("/:sid", s.AuthRequired(), s.UpdateScrap)
	scraps.Delete("/:sid", s.AuthRequired(), s.DeleteScrap)

	profiles := api.Group("/profiles")
	profiles.Get("/", s.ListProfiles)
	profiles.Post("/", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.CreateAccount)
	profiles.Get("/:username/scraps", s.ListUserScraps)
	profiles.Get("/:username", s.GetProfile)
	profiles.Put("/:username", s.AuthRequired(), s.UpdateProfile)
	profiles.Delete("/:username", s.AuthRequired(), s.DeleteAccount)

	// Viewers may connect anonymously; a valid token tags the connection with its user.
	api.Get("/ws", s.WebSocketUpgrade, s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   s.now().UTC(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: without it the API runs uncached and without realtime events.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"storage":  s.store.Driver(),
		},
		"time": s.now().UTC(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start realtime wiring",
				slog.String("hub", s.hub.Name()),
				slog.String("error", err.Error()),
			)
		}
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
