package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/42piotrnycz/new-web-app/internal/service"
	"github.com/42piotrnycz/new-web-app/pkg/jwt"
)

// authExemptPaths bypass the live-session check even when a stale access
// token rides along: their whole purpose is to establish or re-establish a
// session, and rejecting them over a dead session would make recovery
// impossible.
var authExemptPaths = map[string]struct{}{
	"/api/users/login":          {},
	"/api/users/register":       {},
	"/api/users/refresh":        {},
	"/api/users/revoke-refresh": {},
}

// Authenticate is the per-request authentication gate. Outcomes:
//
//   - no credential: the request proceeds anonymously and downstream
//     authorization decides whether that is enough;
//   - malformed or expired access token: same as no credential, the token is
//     advisory and gets discarded silently;
//   - valid token with a live refresh session: the request proceeds as the
//     authenticated principal with the role claim from the token;
//   - valid token whose backing session is gone: forced teardown. The client
//     gets a 401 distinguishable from plain unauthenticated so it discards
//     its cached credentials instead of retrying.
//
// The access token is read from the "jwt" cookie first, then from the
// Authorization header; only one source is consulted per request.
func Authenticate(tokenService *jwt.TokenService, authService *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return c.Next()
		}

		claims, err := tokenService.Verify(token)
		if err != nil {
			// Malformed or expired: proceed as anonymous.
			return c.Next()
		}

		if _, exempt := authExemptPaths[c.Path()]; exempt {
			setPrincipal(c, claims.Subject, string(claims.Role))
			return c.Next()
		}

		live, err := authService.HasLiveSession(c.Context(), claims.Subject)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to verify session status",
			})
		}

		if !live {
			// Cryptographically valid token but the refresh session was
			// revoked elsewhere. Tell the client its session is dead.
			c.Set("X-Session-Expired", "true")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":          "Session expired - refresh token revoked",
				"sessionExpired": true,
			})
		}

		setPrincipal(c, claims.Subject, string(claims.Role))
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) string {
	if cookie := c.Cookies("jwt"); cookie != "" {
		return cookie
	}

	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

func setPrincipal(c *fiber.Ctx, username, role string) {
	c.Locals("username", username)
	c.Locals("role", role)
}
