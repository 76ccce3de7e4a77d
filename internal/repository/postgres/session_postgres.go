package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/42piotrnycz/new-web-app/internal/domain"
	"github.com/42piotrnycz/new-web-app/internal/repository"
)

type sessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository.
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.RefreshSession) error {
	query := `
		INSERT INTO refresh_sessions (
			id, user_id, token_hash, expires_at, revoked, created_at
		) VALUES (
			:id, :user_id, :token_hash, :expires_at, :revoked, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *sessionRepository) GetValidByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshSession, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM refresh_sessions
		WHERE token_hash = $1 AND revoked = FALSE AND expires_at > $2`

	var session domain.RefreshSession
	err := r.db.GetContext(ctx, &session, query, tokenHash, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Unknown, revoked and expired all collapse into not-found.
			return nil, repository.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session by token: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) GetActiveByUser(ctx context.Context, userID int64) ([]*domain.RefreshSession, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM refresh_sessions
		WHERE user_id = $1 AND revoked = FALSE
		ORDER BY created_at DESC`

	var sessions []*domain.RefreshSession
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get sessions by user id: %w", err)
	}

	return sessions, nil
}

// RevokeIfActive is the rotation-race arbiter: the conditional UPDATE
// succeeds for exactly one of any number of concurrent callers presenting
// the same token.
func (r *sessionRepository) RevokeIfActive(ctx context.Context, tokenHash string) (bool, error) {
	query := `UPDATE refresh_sessions SET revoked = TRUE WHERE token_hash = $1 AND revoked = FALSE`

	result, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return false, fmt.Errorf("failed to revoke session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.RevokeIfActive(ctx, tokenHash)
	return err
}

func (r *sessionRepository) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	query := `UPDATE refresh_sessions SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions for user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

func (r *sessionRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM refresh_sessions WHERE expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
