// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "townsquare/docs" // swagger docs
	"townsquare/internal/cache"
	"townsquare/internal/config"
	"townsquare/internal/database"
	"townsquare/internal/mail"
	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/notifications"
	"townsquare/internal/payments"
	"townsquare/internal/repository"
	"townsquare/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "townsquare-api"
	tokenAudience = "townsquare-client"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo       repository.UserRepository
	eventRepo      repository.EventRepository
	newsRepo       repository.NewsRepository
	directoryRepo  repository.DirectoryRepository
	teamRepo       repository.TeamRepository
	enrollmentRepo repository.EnrollmentRepository
	commentRepo    repository.CommentRepository
	reactionRepo   repository.ReactionRepository
	imageRepo      repository.ImageRepository
	registry       repository.ContentRegistry

	notifier *notifications.Notifier
	hub      *notifications.Hub
	mailer   *mail.Mailer

	userService       *service.UserService
	eventService      *service.EventService
	newsService       *service.NewsService
	directoryService  *service.DirectoryService
	enrollmentService *service.EnrollmentService
	commentService    *service.CommentService
	reactionService   *service.ReactionService
	imageService      *service.ImageService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	registry := repository.NewContentRegistry(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("townsquare-api"),
		userRepo:       repository.NewUserRepository(db),
		eventRepo:      repository.NewEventRepository(db),
		newsRepo:       repository.NewNewsRepository(db),
		directoryRepo:  repository.NewDirectoryRepository(db),
		teamRepo:       repository.NewTeamRepository(db),
		enrollmentRepo: repository.NewEnrollmentRepository(db),
		commentRepo:    repository.NewCommentRepository(db, registry),
		reactionRepo:   repository.NewReactionRepository(db),
		imageRepo:      repository.NewImageRepository(db),
		registry:       registry,
		mailer:         mail.NewMailer(cfg),
		hub:            notifications.NewHub(),
	}

	var paymentProvider payments.Provider = payments.Disabled{}
	if cfg.PaymentEndpoint != "" {
		paymentProvider = payments.NewHTTPProvider(cfg.PaymentEndpoint, cfg.PaymentAPIKey)
	}

	server.userService = service.NewUserService(server.userRepo)
	server.eventService = service.NewEventService(server.eventRepo, registry, paymentProvider, server.isAdminByUserID)
	server.newsService = service.NewNewsService(server.newsRepo, registry, server.isAdminByUserID)
	server.directoryService = service.NewDirectoryService(server.directoryRepo, registry, server.isAdminByUserID)
	server.enrollmentService = service.NewEnrollmentService(server.enrollmentRepo, server.mailer, server.isAdminByUserID)
	server.commentService = service.NewCommentService(server.commentRepo, registry, server.isAdminByUserID)
	server.reactionService = service.NewReactionService(server.reactionRepo, registry)
	server.imageService = service.NewImageService(server.imageRepo, cfg)

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (120 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Townsquare Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.AuthRequired(), s.Refresh)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Public browse routes. OptionalAuth lets signed-in callers see
	// their own reaction state and their own unpublished content.
	events := api.Group("/events", s.OptionalAuth())
	events.Get("/", s.GetEvents)
	events.Get("/:id/attendees", s.GetEventAttendees)
	events.Get("/:id/comments", s.GetComments(models.ContentTypeEvent))
	events.Get("/:id/reactions", s.GetReactions(models.ContentTypeEvent))
	events.Get("/:id", s.GetEvent)

	news := api.Group("/news", s.OptionalAuth())
	news.Get("/", s.GetNewsArticles)
	news.Get("/:id/comments", s.GetComments(models.ContentTypeNews))
	news.Get("/:id/reactions", s.GetReactions(models.ContentTypeNews))
	news.Get("/:id", s.GetNewsArticle)

	directory := api.Group("/directory", s.OptionalAuth())
	directory.Get("/", s.GetListings)
	directory.Get("/categories", s.GetDirectoryCategories)
	directory.Get("/:id/comments", s.GetComments(models.ContentTypeDirectory))
	directory.Get("/:id/reactions", s.GetReactions(models.ContentTypeDirectory))
	directory.Get("/:slug", s.GetListingBySlug)

	api.Get("/team", s.GetTeamMembers)
	api.Get("/comments/:id/replies", s.GetReplies)
	api.Get("/comments/:id/reactions", s.OptionalAuth(), s.GetReactions(models.ContentTypeComment))

	// Image serving (hash-addressed, immutable)
	api.Get("/media/i/:hash/:file", s.ServeImage)

	// Contact form
	api.Post("/contact", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "contact"), s.SubmitContactForm)

	// Live feed; anonymous watchers allowed
	api.Get("/ws", s.OptionalAuth(), s.LiveFeedHandler())

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/", s.GetAllUsers)
	users.Post("/:id/promote-admin", s.AdminRequired(), s.PromoteToAdmin)
	users.Post("/:id/demote-admin", s.AdminRequired(), s.DemoteFromAdmin)
	users.Get("/:id", s.GetUserProfile)

	// Event writes
	eventsW := protected.Group("/events")
	eventsW.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_event"), s.CreateEvent)
	eventsW.Post("/sweep", s.AdminRequired(), s.RunEventSweep)
	eventsW.Post("/:id/rsvp", s.RSVPToEvent)
	eventsW.Post("/:id/payment-confirm", s.ConfirmEventPayment)
	eventsW.Post("/:id/active", s.AdminRequired(), s.SetEventActive)
	eventsW.Post("/:id/like", s.ToggleReaction(models.ContentTypeEvent, models.ReactionLike))
	eventsW.Post("/:id/dislike", s.ToggleReaction(models.ContentTypeEvent, models.ReactionDislike))
	eventsW.Post("/:id/comments", middleware.RateLimit(
		s.redis, 6, time.Minute, "create_comment"), s.CreateComment(models.ContentTypeEvent))
	eventsW.Put("/:id", s.UpdateEvent)
	eventsW.Delete("/:id", s.DeleteEvent)

	// News writes (admin-only, enforced in the service)
	newsW := protected.Group("/news")
	newsW.Post("/", s.CreateNewsArticle)
	newsW.Post("/:id/like", s.ToggleReaction(models.ContentTypeNews, models.ReactionLike))
	newsW.Post("/:id/dislike", s.ToggleReaction(models.ContentTypeNews, models.ReactionDislike))
	newsW.Post("/:id/comments", middleware.RateLimit(
		s.redis, 6, time.Minute, "create_comment"), s.CreateComment(models.ContentTypeNews))
	newsW.Put("/:id", s.UpdateNewsArticle)
	newsW.Delete("/:id", s.DeleteNewsArticle)

	// Directory writes
	directoryW := protected.Group("/directory")
	directoryW.Post("/", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "create_listing"), s.CreateListing)
	directoryW.Post("/:id/approve", s.AdminRequired(), s.SetListingApproval)
	directoryW.Post("/:id/like", s.ToggleReaction(models.ContentTypeDirectory, models.ReactionLike))
	directoryW.Post("/:id/dislike", s.ToggleReaction(models.ContentTypeDirectory, models.ReactionDislike))
	directoryW.Post("/:id/comments", middleware.RateLimit(
		s.redis, 6, time.Minute, "create_comment"), s.CreateComment(models.ContentTypeDirectory))
	directoryW.Put("/:id", s.UpdateListing)
	directoryW.Delete("/:id", s.DeleteListing)

	// Comment management
	comments := protected.Group("/comments")
	comments.Post("/:id/like", s.ToggleReaction(models.ContentTypeComment, models.ReactionLike))
	comments.Post("/:id/dislike", s.ToggleReaction(models.ContentTypeComment, models.ReactionDislike))
	comments.Post("/:id/flag", s.FlagComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	// Team member management
	team := protected.Group("/team", s.AdminRequired())
	team.Post("/", s.CreateTeamMember)
	team.Put("/:id", s.UpdateTeamMember)
	team.Delete("/:id", s.DeleteTeamMember)

	// Course enrollments
	enrollments := protected.Group("/enrollments")
	enrollments.Post("/", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "enroll"), s.SubmitEnrollment)
	enrollments.Get("/me", s.GetMyEnrollments)
	enrollments.Get("/", s.AdminRequired(), s.GetAllEnrollments)
	enrollments.Put("/:id/status", s.UpdateEnrollmentStatus)

	// Image uploads
	protected.Post("/images", middleware.RateLimit(
		s.redis, 10, 10*time.Minute, "upload_image"), s.UploadImage)

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/comments/flagged", s.GetFlaggedComments)
	admin.Put("/comments/:id/status", s.SetCommentStatus)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.isAdmin(c, userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}

		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, _, err := s.parseToken(c.Context(), tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// OptionalAuth resolves the user from a Bearer token when one is
// presented but never rejects the request. Anonymous callers proceed
// without a userID local.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return c.Next()
		}
		userID, _, err := s.parseToken(c.Context(), tokenString)
		if err != nil {
			return c.Next()
		}
		c.Locals("userID", userID)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// parseToken validates an HS256 token and returns the subject user ID
// and the token's jti. Revoked jtis (logout) are rejected.
func (s *Server) parseToken(ctx context.Context, tokenString string) (uint, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", models.NewUnauthorizedError("Invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return 0, "", models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return 0, "", models.NewUnauthorizedError("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, "", models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := parseUserID(sub)
	if err != nil {
		return 0, "", models.NewUnauthorizedError("Invalid user ID in token")
	}

	jti, _ := claims["jti"].(string)
	if jti != "" && s.redis != nil {
		isBlacklisted, err := s.redis.Exists(ctx, "blacklist:"+jti).Result()
		if err == nil && isBlacklisted > 0 {
			return 0, "", models.NewUnauthorizedError("Token has been revoked")
		}
	}

	return userID, jti, nil
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName:   "Townsquare API",
		BodyLimit: int(s.config.ImageMaxUploadSizeMB+2) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("unhandled handler error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	s.StartBackground()

	slog.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// StartBackground launches the Redis feed wiring and the periodic event
// status sweep. Callers embedding the Server in tests can skip it.
func (s *Server) StartBackground() {
	if s.shutdownCtx == nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.shutdownCtx = ctx
		s.shutdownFn = cancel
	}

	if s.notifier != nil {
		if err := notifications.StartWiring(s.shutdownCtx, s.notifier, s.hub); err != nil {
			slog.Error("failed to start feed wiring", "error", err)
		}
	}

	go s.runEventSweepLoop(s.shutdownCtx)
}

// runEventSweepLoop reconciles event is_active flags on a timer so rows
// whose date passed overnight do not need a request to flip.
func (s *Server) runEventSweepLoop(ctx context.Context) {
	minutes := s.config.EventSweepMinutes
	if minutes <= 0 {
		return
	}
	ticker := time.NewTicker(time.Duration(minutes) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := s.eventService.SweepStatuses(ctx)
			if err != nil {
				slog.Error("event status sweep failed", "error", err)
				continue
			}
			if result.Deactivated > 0 || result.Reactivated > 0 {
				slog.Info("event status sweep applied",
					"deactivated", result.Deactivated,
					"reactivated", result.Reactivated)
			}
		}
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		s.hub.Shutdown()
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", "error", rerr)
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
