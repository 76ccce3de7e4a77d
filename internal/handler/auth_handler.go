package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/42piotrnycz/new-web-app/internal/service"
	"github.com/42piotrnycz/new-web-app/pkg/validator"
)

// Cookie names are part of the wire contract with the frontend.
const (
	accessCookieName  = "jwt"
	refreshCookieName = "refreshToken"
)

type AuthHandler struct {
	authService *service.AuthService
	validator   *validator.Validator
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

func NewAuthHandler(authService *service.AuthService, validator *validator.Validator, accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

// Login handles user login
// POST /api/users/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result, err := h.authService.Login(c.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid username or password",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	h.setAuthCookie(c, accessCookieName, result.Tokens.AccessToken, h.accessTTL)
	h.setAuthCookie(c, refreshCookieName, result.Tokens.RefreshToken, h.refreshTTL)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"userId":   result.UserID,
		"username": result.Username,
		"role":     result.Role,
	})
}

// Refresh rotates the refresh session and reissues both cookies
// POST /api/users/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	rawToken := c.Cookies(refreshCookieName)
	if rawToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Refresh token not found",
		})
	}

	result, err := h.authService.Refresh(c.Context(), rawToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired refresh token",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to refresh token",
		})
	}

	h.setAuthCookie(c, accessCookieName, result.Tokens.AccessToken, h.accessTTL)
	h.setAuthCookie(c, refreshCookieName, result.Tokens.RefreshToken, h.refreshTTL)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Token refreshed successfully",
	})
}

// Logout revokes the caller's sessions and clears both cookies. It always
// succeeds from the client's perspective.
// POST /api/users/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	username, _ := c.Locals("username").(string)
	h.authService.Logout(c.Context(), username)

	h.clearAuthCookie(c, accessCookieName)
	h.clearAuthCookie(c, refreshCookieName)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logout successful",
	})
}

// Revoke ends the current refresh session without a replacement
// POST /api/users/revoke-refresh
func (h *AuthHandler) Revoke(c *fiber.Ctx) error {
	rawToken := c.Cookies(refreshCookieName)
	if rawToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No refresh token found",
		})
	}

	if err := h.authService.Revoke(c.Context(), rawToken); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to revoke refresh token",
		})
	}

	h.clearAuthCookie(c, refreshCookieName)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Refresh token revoked successfully",
	})
}

func (h *AuthHandler) setAuthCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *AuthHandler) clearAuthCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
