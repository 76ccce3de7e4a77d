package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/42piotrnycz/new-web-app/internal/domain"
	"github.com/42piotrnycz/new-web-app/internal/handler/middleware"
	"github.com/42piotrnycz/new-web-app/internal/repository/memory"
	"github.com/42piotrnycz/new-web-app/internal/service"
	"github.com/42piotrnycz/new-web-app/pkg/hash"
	"github.com/42piotrnycz/new-web-app/pkg/jwt"
	"github.com/42piotrnycz/new-web-app/pkg/validator"
)

// newTestApp wires the full HTTP surface against in-memory repositories,
// mirroring the composition in cmd/main.go.
func newTestApp(t *testing.T) *fiber.App {
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
	users.Add(&domain.User{
		ID:           2,
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
	})

	sessions := service.NewSessionService(memory.NewSessionRepository(), 7*24*time.Hour)
	tokens := jwt.NewTokenService([]byte("test-secret"), time.Hour, "review-app")
	auth := service.NewAuthService(users, memory.NewActivityLogRepository(), sessions, tokens, hash.Verifier{})

	authHandler := NewAuthHandler(auth, validator.NewValidator(), tokens.AccessTTL(), sessions.RefreshTTL())
	userHandler := NewUserHandler(users)
	healthHandler := NewHealthHandler(nil)

	app := fiber.New()
	SetupRoutes(app, authHandler, userHandler, healthHandler, middleware.Authenticate(tokens, auth))
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func login(t *testing.T, app *fiber.App, username, password string) (accessCookie, refreshCookie *http.Cookie) {
	t.Helper()

	resp := doRequest(t, app, "POST", "/api/users/login", fiber.Map{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	accessCookie = cookieByName(resp, accessCookieName)
	refreshCookie = cookieByName(resp, refreshCookieName)
	require.NotNil(t, accessCookie)
	require.NotNil(t, refreshCookie)
	return accessCookie, refreshCookie
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestLoginSetsAuthCookies(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "POST", "/api/users/login", fiber.Map{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["userId"])
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, string(domain.RoleUser), body["role"])

	access := cookieByName(resp, accessCookieName)
	require.NotNil(t, access)
	assert.NotEmpty(t, access.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, "/", access.Path)

	refresh := cookieByName(resp, refreshCookieName)
	require.NotNil(t, refresh)
	assert.NotEmpty(t, refresh.Value)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, int(7*24*time.Hour/time.Second), refresh.MaxAge)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	wrongPassword := doRequest(t, app, "POST", "/api/users/login", fiber.Map{
		"username": "alice",
		"password": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, wrongPassword.StatusCode)

	unknownUser := doRequest(t, app, "POST", "/api/users/login", fiber.Map{
		"username": "mallory",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, unknownUser.StatusCode)

	// Identical message for both failure modes.
	assert.Equal(t, decodeBody(t, wrongPassword)["error"], decodeBody(t, unknownUser)["error"])
}

func TestLoginValidatesRequest(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "POST", "/api/users/login", fiber.Map{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["error"], "password is required")
}

func TestRefreshRotatesCookies(t *testing.T) {
	app := newTestApp(t)
	_, firstRefresh := login(t, app, "alice", "password123")

	resp := doRequest(t, app, "POST", "/api/users/refresh", nil, firstRefresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rotated := cookieByName(resp, refreshCookieName)
	require.NotNil(t, rotated)
	assert.NotEqual(t, firstRefresh.Value, rotated.Value)
	require.NotNil(t, cookieByName(resp, accessCookieName))

	// The consumed token is gone; replaying it fails.
	replay := doRequest(t, app, "POST", "/api/users/refresh", nil, firstRefresh)
	assert.Equal(t, http.StatusUnauthorized, replay.StatusCode)

	// The rotated token keeps working.
	again := doRequest(t, app, "POST", "/api/users/refresh", nil, rotated)
	assert.Equal(t, http.StatusOK, again.StatusCode)
}

func TestRefreshWithoutCookie(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "POST", "/api/users/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutEndsSession(t *testing.T) {
	app := newTestApp(t)
	access, _ := login(t, app, "alice", "password123")

	resp := doRequest(t, app, "POST", "/api/users/logout", nil, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Both cookies are cleared on the way out.
	for _, name := range []string{accessCookieName, refreshCookieName} {
		cleared := cookieByName(resp, name)
		require.NotNil(t, cleared, name)
		assert.Empty(t, cleared.Value)
		assert.LessOrEqual(t, cleared.MaxAge, 0)
	}

	// The access token has not expired, but its session is dead now.
	me := doRequest(t, app, "GET", "/api/users/me", nil, access)
	assert.Equal(t, http.StatusUnauthorized, me.StatusCode)
	assert.Equal(t, "true", me.Header.Get("X-Session-Expired"))
	assert.Equal(t, true, decodeBody(t, me)["sessionExpired"])
}

func TestLogoutWithoutCredential(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "POST", "/api/users/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSecondLoginDisplacesFirst(t *testing.T) {
	app := newTestApp(t)

	firstAccess, firstRefresh := login(t, app, "bob", "password123")
	secondAccess, _ := login(t, app, "bob", "password123")

	// The first device's refresh token no longer works.
	resp := doRequest(t, app, "POST", "/api/users/refresh", nil, firstRefresh)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Its access token gets the forced-invalidate treatment.
	me := doRequest(t, app, "GET", "/api/users/me", nil, firstAccess)
	assert.Equal(t, http.StatusUnauthorized, me.StatusCode)
	assert.Equal(t, "true", me.Header.Get("X-Session-Expired"))

	// The second device is unaffected.
	me = doRequest(t, app, "GET", "/api/users/me", nil, secondAccess)
	require.Equal(t, http.StatusOK, me.StatusCode)
	assert.Equal(t, "bob", decodeBody(t, me)["username"])
}

func TestRevokeRefreshToken(t *testing.T) {
	app := newTestApp(t)
	_, refresh := login(t, app, "alice", "password123")

	resp := doRequest(t, app, "POST", "/api/users/revoke-refresh", nil, refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cleared := cookieByName(resp, refreshCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// No replacement is issued; the old token is dead.
	replay := doRequest(t, app, "POST", "/api/users/refresh", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, replay.StatusCode)
}

func TestRevokeWithoutCookie(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "POST", "/api/users/revoke-refresh", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMeRequiresPrincipal(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "GET", "/api/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetMeReturnsIdentity(t *testing.T) {
	app := newTestApp(t)
	access, _ := login(t, app, "alice", "password123")

	resp := doRequest(t, app, "GET", "/api/users/me", nil, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, string(domain.RoleUser), body["role"])
}
