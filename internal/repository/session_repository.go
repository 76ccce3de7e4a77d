package repository

import (
	"context"
	"errors"
	"time"

	"github.com/42piotrnycz/new-web-app/internal/domain"
)

// ErrSessionNotFound covers unknown, revoked and expired sessions uniformly.
// Callers must not learn which of the three it was.
var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(ctx context.Context, session *domain.RefreshSession) error

	// GetValidByTokenHash returns the session only if it is neither revoked
	// nor expired; everything else is ErrSessionNotFound.
	GetValidByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshSession, error)

	// GetActiveByUser returns all non-revoked sessions for the owner,
	// regardless of expiry.
	GetActiveByUser(ctx context.Context, userID int64) ([]*domain.RefreshSession, error)

	// RevokeIfActive flips revoked on the matching non-revoked row and
	// reports whether this call did the flipping. Exactly one of any number
	// of concurrent callers observes true.
	RevokeIfActive(ctx context.Context, tokenHash string) (bool, error)

	// Revoke is the idempotent variant: revoking an already-revoked or
	// unknown session is a no-op success.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeAllForUser revokes every active session of the owner and returns
	// how many rows were touched.
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)

	// DeleteExpiredBefore removes rows whose expiry is before cutoff,
	// revoked or not, and returns the count.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
