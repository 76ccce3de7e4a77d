package memory

import (
	"context"
	"sync"
	"time"

	"github.com/42piotrnycz/new-web-app/internal/domain"
	"github.com/42piotrnycz/new-web-app/internal/repository"
)

// SessionRepository is a mutex-guarded in-memory session store. It mirrors
// the conditional-update semantics of the PostgreSQL implementation so the
// rotation race behaves the same way in tests.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.RefreshSession // token hash -> session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*domain.RefreshSession),
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.RefreshSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.TokenHash] = &copied
	return nil
}

func (r *SessionRepository) GetValidByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tokenHash]
	if !ok || !s.Valid(time.Now()) {
		return nil, repository.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *SessionRepository) GetActiveByUser(ctx context.Context, userID int64) ([]*domain.RefreshSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.RefreshSession
	for _, s := range r.sessions {
		if s.UserID == userID && !s.Revoked {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *SessionRepository) RevokeIfActive(ctx context.Context, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tokenHash]
	if !ok || s.Revoked {
		return false, nil
	}
	s.Revoked = true
	return true, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.RevokeIfActive(ctx, tokenHash)
	return err
}

func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		if s.UserID == userID && !s.Revoked {
			s.Revoked = true
			n++
		}
	}
	return n, nil
}

func (r *SessionRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for hash, s := range r.sessions {
		if s.ExpiresAt.Before(cutoff) {
			delete(r.sessions, hash)
			n++
		}
	}
	return n, nil
}
