package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/42piotrnycz/new-web-app/internal/config"
	"github.com/42piotrnycz/new-web-app/internal/db"
	"github.com/42piotrnycz/new-web-app/internal/handler"
	"github.com/42piotrnycz/new-web-app/internal/handler/middleware"
	"github.com/42piotrnycz/new-web-app/internal/repository/postgres"
	"github.com/42piotrnycz/new-web-app/internal/service"
	"github.com/42piotrnycz/new-web-app/pkg/hash"
	"github.com/42piotrnycz/new-web-app/pkg/jwt"
	"github.com/42piotrnycz/new-web-app/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Apply schema migrations
	if err := db.Migrate(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// Initialize database connection
	conn, err := db.Open(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}()
	log.Println("✓ Database connection established")

	// Initialize validator
	validate := validator.NewValidator()

	// Initialize repositories
	userRepo := postgres.NewUserRepository(conn)
	sessionRepo := postgres.NewSessionRepository(conn)
	activityLog := postgres.NewActivityLogRepository(conn)

	// Initialize token codec
	tokenService := jwt.NewTokenService(
		[]byte(cfg.JWT.Secret),
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.Issuer,
	)

	// Initialize services
	sessionService := service.NewSessionService(sessionRepo, cfg.Session.RefreshTokenExpiry)
	authService := service.NewAuthService(userRepo, activityLog, sessionService, tokenService, hash.Verifier{})

	// Start the expired-session sweeper
	cleanupService := service.NewCleanupService(sessionService)
	if err := cleanupService.Start(cfg.Session.CleanupSchedule); err != nil {
		log.Fatalf("Failed to start session cleanup: %v", err)
	}
	defer cleanupService.Stop()
	log.Printf("✓ Session cleanup scheduled (%s)", cfg.Session.CleanupSchedule)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, validate, cfg.JWT.AccessTokenExpiry, cfg.Session.RefreshTokenExpiry)
	userHandler := handler.NewUserHandler(userRepo)
	healthHandler := handler.NewHealthHandler(conn)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Review App Auth v1.0",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	// Setup global middlewares
	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.CORSMiddleware(cfg.Server.AllowOrigin))

	// Setup routes behind the request authenticator
	authenticate := middleware.Authenticate(tokenService, authService)
	handler.SetupRoutes(app, authHandler, userHandler, healthHandler, authenticate)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("🚀 Server starting on http://localhost%s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		if err := app.Listen(addr); err != nil {
			log.Printf("❌ Server failed to start: %v", err)
			stop()
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Println("⏳ Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✓ Server stopped")
}
