package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/42piotrnycz/new-web-app/internal/handler/middleware"
)

func SetupRoutes(
	app *fiber.App,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	healthHandler *HealthHandler,
	authenticate fiber.Handler,
) {
	// Health checks (public, outside the authenticator)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	// Every API route runs through the request authenticator; it only
	// rejects on the forced-invalidate outcome, anonymous requests pass.
	api := app.Group("/api", authenticate)

	users := api.Group("/users")
	users.Post("/login", authHandler.Login)
	users.Post("/refresh", authHandler.Refresh)
	users.Post("/logout", authHandler.Logout)
	users.Post("/revoke-refresh", authHandler.Revoke)

	users.Get("/me", middleware.RequireAuth(), userHandler.GetMe)
}
