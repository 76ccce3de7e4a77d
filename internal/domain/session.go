package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshSession is the persisted, authoritative half of a login. The raw
// refresh token is handed to the client once and never stored; the row keeps
// only its SHA-256 hash. A session is usable iff it is not revoked and not
// past its expiry. Revocation is monotonic: once set it is never cleared.
type RefreshSession struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (s *RefreshSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *RefreshSession) Valid(now time.Time) bool {
	return !s.Revoked && !s.Expired(now)
}
