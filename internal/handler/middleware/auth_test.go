package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/42piotrnycz/new-web-app/internal/domain"
	"github.com/42piotrnycz/new-web-app/internal/repository/memory"
	"github.com/42piotrnycz/new-web-app/internal/service"
	"github.com/42piotrnycz/new-web-app/pkg/hash"
	"github.com/42piotrnycz/new-web-app/pkg/jwt"
)

type gateFixture struct {
	app      *fiber.App
	auth     *service.AuthService
	sessions *service.SessionService
	tokens   *jwt.TokenService
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	users := memory.NewUserRepository()
	passwordHash, err := hash.HashPassword("password123")
	require.NoError(t, err)
	users.Add(&domain.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
	})

	sessions := service.NewSessionService(memory.NewSessionRepository(), 7*24*time.Hour)
	tokens := jwt.NewTokenService([]byte("test-secret"), time.Hour, "review-app")
	auth := service.NewAuthService(users, nil, sessions, tokens, hash.Verifier{})

	app := fiber.New()
	app.Use(Authenticate(tokens, auth))

	principal := func(c *fiber.Ctx) error {
		username, _ := c.Locals("username").(string)
		role, _ := c.Locals("role").(string)
		return c.JSON(fiber.Map{"username": username, "role": role})
	}
	app.Get("/api/reviews", principal)
	app.Post("/api/users/refresh", principal)

	return &gateFixture{app: app, auth: auth, sessions: sessions, tokens: tokens}
}

func (f *gateFixture) request(t *testing.T, method, path, cookie, bearer string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "jwt", Value: cookie})
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodePrincipal(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestNoCredentialProceedsAnonymously(t *testing.T) {
	f := newGateFixture(t)

	resp := f.request(t, "GET", "/api/reviews", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", decodePrincipal(t, resp)["username"])
}

func TestMalformedTokenIsDiscardedSilently(t *testing.T) {
	f := newGateFixture(t)

	resp := f.request(t, "GET", "/api/reviews", "", "garbage")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", decodePrincipal(t, resp)["username"])
}

func TestExpiredTokenIsDiscardedSilently(t *testing.T) {
	f := newGateFixture(t)

	expiredIssuer := jwt.NewTokenService([]byte("test-secret"), -time.Minute, "review-app")
	token, _, err := expiredIssuer.Issue("alice", domain.RoleUser)
	require.NoError(t, err)

	resp := f.request(t, "GET", "/api/reviews", "", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", decodePrincipal(t, resp)["username"])
}

func TestValidTokenWithLiveSession(t *testing.T) {
	f := newGateFixture(t)

	login, err := f.auth.Login(context.Background(), service.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	resp := f.request(t, "GET", "/api/reviews", login.Tokens.AccessToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodePrincipal(t, resp)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, string(domain.RoleUser), body["role"])
}

func TestRevokedSessionForcesTeardown(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()

	login, err := f.auth.Login(ctx, service.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	// Session dies elsewhere while the access token is still unexpired.
	require.NoError(t, f.sessions.RevokeAllForUser(ctx, 1))

	resp := f.request(t, "GET", "/api/reviews", login.Tokens.AccessToken, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("X-Session-Expired"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["sessionExpired"])
}

func TestAuthEndpointsBypassLivenessCheck(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()

	login, err := f.auth.Login(ctx, service.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, f.sessions.RevokeAllForUser(ctx, 1))

	// A dead session must not block the recovery endpoints.
	resp := f.request(t, "POST", "/api/users/refresh", login.Tokens.AccessToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", decodePrincipal(t, resp)["username"])
}

func TestCookieTakesPrecedenceOverHeader(t *testing.T) {
	f := newGateFixture(t)

	login, err := f.auth.Login(context.Background(), service.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	// Valid cookie, garbage header: only the cookie is consulted.
	resp := f.request(t, "GET", "/api/reviews", login.Tokens.AccessToken, "garbage")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", decodePrincipal(t, resp)["username"])
}
