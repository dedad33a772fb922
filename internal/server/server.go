package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"scenecraft-backend/internal/auth"
	"scenecraft-backend/internal/breakdown"
	"scenecraft-backend/internal/cache"
	"scenecraft-backend/internal/config"
	"scenecraft-backend/internal/email"
	"scenecraft-backend/internal/handler"
	"scenecraft-backend/internal/relay"
	"scenecraft-backend/internal/storage"
)

// Server wraps the Fiber app and all route handlers
type Server struct {
	app                 *fiber.App
	cfg                 *config.Config
	db                  *gorm.DB
	hub                 *relay.Hub
	authHandler         *handler.AuthHandler
	projectHandler      *handler.ProjectHandler
	invitationHandler   *handler.InvitationHandler
	scriptHandler       *handler.ScriptHandler
	storyboardHandler   *handler.StoryboardHandler
	shotSequenceHandler *handler.ShotSequenceHandler
	breakdownHandler    *handler.BreakdownHandler
	uploadHandler       *handler.UploadHandler
	statsHandler        *handler.StatsHandler
	contactHandler      *handler.ContactHandler
	healthHandler       *handler.HealthHandler
	relayWSHandler      *handler.RelayWSHandler
	jwtManager          *auth.JWTManager
}

// New creates a new server instance
func New(cfg *config.Config, db *gorm.DB) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "SceneCraft Backend",
		ServerHeader:          "Fiber",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		Prefork:               false, // incompatible with WebSocket connections
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: false,
	})

	// Auth
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	oauthManager := auth.NewOAuthManager(&cfg.OAuth)
	authHandler := handler.NewAuthHandler(db, jwtManager, oauthManager, cfg.Server.FrontendURL, cfg.IsProduction())

	// Redis cache (optional)
	redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("⚠️ Redis connection failed: %v (comment caching disabled)", err)
		redisClient = nil
	} else if redisClient != nil {
		log.Printf("✅ Redis connected (%s)", cfg.Redis.Addr)
	} else {
		log.Println("ℹ️ Redis not configured (comment caching disabled)")
	}

	// S3 storage (optional)
	s3Service, err := storage.NewS3Service(context.Background(), cfg.S3)
	if err != nil {
		log.Printf("⚠️ S3 service initialization failed: %v (file upload disabled)", err)
		s3Service = nil
	} else if s3Service != nil {
		log.Printf("✅ S3 service initialized (bucket: %s)", cfg.S3.BucketName)
	} else {
		log.Println("ℹ️ S3 not configured (file upload disabled)")
	}

	// Invitation mail (optional)
	mailer := email.NewService(cfg.Email)
	if mailer.IsConfigured() {
		log.Printf("✅ Email service configured (%s)", cfg.Email.Host)
	} else {
		log.Println("ℹ️ Email service not configured (invitation mail disabled)")
	}

	// Scene breakdown with heuristic fallback
	analyzer := breakdown.NewService(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)

	hub := relay.NewHub()

	return &Server{
		app:                 app,
		cfg:                 cfg,
		db:                  db,
		hub:                 hub,
		authHandler:         authHandler,
		projectHandler:      handler.NewProjectHandler(db, redisClient),
		invitationHandler:   handler.NewInvitationHandler(db, mailer, cfg.Server.FrontendURL),
		scriptHandler:       handler.NewScriptHandler(db),
		storyboardHandler:   handler.NewStoryboardHandler(db),
		shotSequenceHandler: handler.NewShotSequenceHandler(db, s3Service),
		breakdownHandler:    handler.NewBreakdownHandler(analyzer),
		uploadHandler:       handler.NewUploadHandler(s3Service),
		statsHandler:        handler.NewStatsHandler(db),
		contactHandler:      handler.NewContactHandler(db),
		healthHandler:       handler.NewHealthHandler(db, redisClient),
		relayWSHandler:      handler.NewRelayWSHandler(hub),
		jwtManager:          jwtManager,
	}
}

// SetupMiddleware wires the global middleware chain
func (s *Server) SetupMiddleware() {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORS.AllowOrigins,
		AllowHeaders:     s.cfg.CORS.AllowHeaders,
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
}

// SetupRoutes registers all HTTP and WebSocket routes
func (s *Server) SetupRoutes() {
	// Rate limiter for credential endpoints (brute force protection)
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, please try again later",
			})
		},
	})

	api := s.app.Group("/api")

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authLimiter, s.authHandler.Register)
	authGroup.Post("/login", authLimiter, s.authHandler.Login)
	authGroup.Get("/profile", auth.AuthMiddleware(s.jwtManager), s.authHandler.Profile)
	authGroup.Get("/google", s.authHandler.GoogleRedirect)
	authGroup.Get("/google/callback", s.authHandler.GoogleCallback)
	authGroup.Get("/github", s.authHandler.GitHubRedirect)
	authGroup.Get("/github/callback", s.authHandler.GitHubCallback)

	// Projects
	projectGroup := api.Group("/projects")
	projectGroup.Get("/", s.projectHandler.List)
	projectGroup.Post("/", s.projectHandler.Create)
	projectGroup.Put("/:id", s.projectHandler.Update)
	projectGroup.Delete("/:id", s.projectHandler.Delete)
	projectGroup.Post("/:id/collaborators", s.projectHandler.AddCollaborator)
	projectGroup.Get("/:id/comments", s.projectHandler.GetComments)
	projectGroup.Post("/:id/comments", s.projectHandler.AddComment)

	// Invitations
	invitationGroup := api.Group("/invitations")
	invitationGroup.Post("/send-invitation", s.invitationHandler.Send)
	invitationGroup.Get("/details/:token", s.invitationHandler.Details)
	invitationGroup.Post("/accept/:token", s.invitationHandler.Accept)

	// Scripts
	scriptGroup := api.Group("/scripts")
	scriptGroup.Get("/:projectId", s.scriptHandler.Get)
	scriptGroup.Post("/:projectId", s.scriptHandler.Save)

	// Storyboards
	storyboardGroup := api.Group("/storyboards")
	storyboardGroup.Get("/:projectId", s.storyboardHandler.Get)
	storyboardGroup.Post("/:projectId", s.storyboardHandler.Save)

	// Shot sequences
	shotGroup := api.Group("/shot-sequence")
	shotGroup.Post("/create", s.shotSequenceHandler.Create)
	shotGroup.Get("/:projectId", s.shotSequenceHandler.GetByProject)
	shotGroup.Put("/:id", s.shotSequenceHandler.Update)
	shotGroup.Delete("/:id", s.shotSequenceHandler.Delete)

	// Scene breakdown
	api.Post("/breakdown/analyze", s.breakdownHandler.Analyze)

	// Uploads
	uploadGroup := api.Group("/upload")
	uploadGroup.Post("/audio", s.uploadHandler.UploadAudio)
	uploadGroup.Post("/image", s.uploadHandler.UploadImage)

	// Stats
	api.Get("/stats/:userId", s.statsHandler.UserStats)

	// Contact
	api.Post("/contact", s.contactHandler.Submit)

	// Health
	api.Get("/health", s.healthHandler.Check)
	api.Get("/health/live", s.healthHandler.Liveness)
	api.Get("/health/ready", s.healthHandler.Readiness)

	// WebSocket upgrade check
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Realtime relay endpoint
	s.app.Get("/ws", websocket.New(s.relayWSHandler.HandleWebSocket, websocket.Config{
		ReadBufferSize:  s.cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: s.cfg.WebSocket.WriteBufferSize,
	}))
}

// Start runs the server with graceful shutdown support
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("🛑 Shutting down server...")
		if err := s.Shutdown(); err != nil {
			log.Fatalf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 SceneCraft backend starting on %s", s.cfg.Server.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost%s/ws", s.cfg.Server.Port)

	return s.app.Listen(s.cfg.Server.Port)
}

// Shutdown stops the server
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(30 * time.Second)
}
