package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/42piotrnycz/new-web-app/internal/domain"
	"github.com/42piotrnycz/new-web-app/internal/repository"
)

// ErrInvalidRefreshToken covers expired, revoked and unknown refresh tokens
// uniformly so callers cannot probe which one it was.
var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

// SessionService enforces the session policy on top of the session store:
// one non-revoked refresh session per user, single-use rotation, and the
// liveness query the request authenticator relies on. It holds no state
// between calls; every mutation is a single store operation.
type SessionService struct {
	sessionRepo repository.SessionRepository
	refreshTTL  time.Duration
}

func NewSessionService(sessionRepo repository.SessionRepository, refreshTTL time.Duration) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		refreshTTL:  refreshTTL,
	}
}

// RefreshTTL returns the configured refresh session lifetime.
func (s *SessionService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// Create revokes every prior session of the user and then persists a fresh
// one, returning the raw refresh token. The revoke happens first so that a
// racing login cannot sweep away the session this call creates; under
// concurrent logins for the same user the last writer wins, which still
// satisfies the single-active-session invariant.
func (s *SessionService) Create(ctx context.Context, userID int64) (string, error) {
	if _, err := s.sessionRepo.RevokeAllForUser(ctx, userID); err != nil {
		return "", err
	}

	return s.create(ctx, userID)
}

func (s *SessionService) create(ctx context.Context, userID int64) (string, error) {
	raw, err := newRefreshToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := &domain.RefreshSession{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hashToken(raw),
		ExpiresAt: now.Add(s.refreshTTL),
		Revoked:   false,
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", err
	}

	return raw, nil
}

// Rotate exchanges a valid refresh token for a fresh one bound to the same
// owner. Refresh tokens are single-use: the conditional revoke succeeds for
// exactly one of any number of concurrent callers, the rest get
// ErrInvalidRefreshToken.
func (s *SessionService) Rotate(ctx context.Context, rawToken string) (int64, string, error) {
	tokenHash := hashToken(rawToken)

	session, err := s.sessionRepo.GetValidByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return 0, "", ErrInvalidRefreshToken
		}
		return 0, "", err
	}

	revoked, err := s.sessionRepo.RevokeIfActive(ctx, tokenHash)
	if err != nil {
		return 0, "", err
	}
	if !revoked {
		// Lost the race to a concurrent rotation of the same token.
		return 0, "", ErrInvalidRefreshToken
	}

	raw, err := s.create(ctx, session.UserID)
	if err != nil {
		return 0, "", err
	}

	return session.UserID, raw, nil
}

// HasLiveSession reports whether the user owns at least one non-revoked,
// unexpired session.
func (s *SessionService) HasLiveSession(ctx context.Context, userID int64) (bool, error) {
	sessions, err := s.sessionRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return false, err
	}

	now := time.Now()
	for _, session := range sessions {
		if !session.Expired(now) {
			return true, nil
		}
	}

	return false, nil
}

// Revoke marks the session of the given raw token as revoked. Revoking an
// unknown or already-revoked token is a no-op success.
func (s *SessionService) Revoke(ctx context.Context, rawToken string) error {
	return s.sessionRepo.Revoke(ctx, hashToken(rawToken))
}

// RevokeAllForUser revokes every active session of the user.
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID int64) error {
	_, err := s.sessionRepo.RevokeAllForUser(ctx, userID)
	return err
}

// CleanupExpired deletes sessions whose expiry has passed, revoked or not.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpiredBefore(ctx, time.Now())
}

// newRefreshToken draws 32 bytes from crypto/rand, base64url-encoded.
func newRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashToken derives the storage lookup key from a raw token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
