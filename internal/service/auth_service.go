package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/42piotrnycz/new-web-app/internal/domain"
	"github.com/42piotrnycz/new-web-app/internal/repository"
	"github.com/42piotrnycz/new-web-app/pkg/jwt"
)

// ErrInvalidCredentials is returned for both unknown usernames and wrong
// passwords so login failures do not reveal which accounts exist.
var ErrInvalidCredentials = errors.New("invalid username or password")

// CredentialVerifier is the boundary to the password hashing scheme.
type CredentialVerifier interface {
	Matches(plaintext, hash string) (bool, error)
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	UserID   int64
	Username string
	Role     domain.Role
	Tokens   domain.TokenPair
}

type RefreshResult struct {
	Tokens domain.TokenPair
}

// AuthService composes the token codec and the session service into the
// full lifecycle transitions: login, refresh, logout and revoke.
type AuthService struct {
	userRepo     repository.UserRepository
	activityLog  repository.ActivityLogRepository
	sessions     *SessionService
	tokenService *jwt.TokenService
	verifier     CredentialVerifier
}

func NewAuthService(
	userRepo repository.UserRepository,
	activityLog repository.ActivityLogRepository,
	sessions *SessionService,
	tokenService *jwt.TokenService,
	verifier CredentialVerifier,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		activityLog:  activityLog,
		sessions:     sessions,
		tokenService: tokenService,
		verifier:     verifier,
	}
}

// Login verifies credentials, establishes the user's single active refresh
// session and mints an access token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.verifier.Matches(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	refreshToken, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.tokenService.Issue(user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	s.record(ctx, user.ID, "LOGGED IN")

	return &LoginResult{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Tokens: domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    expiresAt,
		},
	}, nil
}

// Refresh rotates the refresh session and mints a new access token for its
// owner. No access token is issued when rotation fails.
func (s *AuthService) Refresh(ctx context.Context, rawRefreshToken string) (*RefreshResult, error) {
	userID, newRefreshToken, err := s.sessions.Rotate(ctx, rawRefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.tokenService.Issue(user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	return &RefreshResult{
		Tokens: domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
			ExpiresAt:    expiresAt,
		},
	}, nil
}

// Logout revokes every session of the user when one is known from the
// request context. It never fails from the client's point of view; server
// side errors are logged and swallowed.
func (s *AuthService) Logout(ctx context.Context, username string) {
	if username == "" {
		return
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		log.Printf("[AUTH] logout: could not resolve user %q: %v", username, err)
		return
	}

	if err := s.sessions.RevokeAllForUser(ctx, user.ID); err != nil {
		log.Printf("[AUTH] logout: could not revoke sessions for user %q: %v", username, err)
		return
	}

	s.record(ctx, user.ID, "LOGGED OUT")
}

// Revoke ends the session behind the raw refresh token without issuing a
// replacement.
func (s *AuthService) Revoke(ctx context.Context, rawRefreshToken string) error {
	return s.sessions.Revoke(ctx, rawRefreshToken)
}

// HasLiveSession is the liveness guard the request authenticator consults
// for an already-verified subject.
func (s *AuthService) HasLiveSession(ctx context.Context, username string) (bool, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	return s.sessions.HasLiveSession(ctx, user.ID)
}

// record writes to the activity log sink; failures are logged, not propagated.
func (s *AuthService) record(ctx context.Context, userID int64, action string) {
	if s.activityLog == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.activityLog.Record(recordCtx, userID, action); err != nil {
		log.Printf("[AUTH] failed to record activity for user %d: %v", userID, err)
	}
}
