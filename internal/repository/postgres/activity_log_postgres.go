package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/42piotrnycz/new-web-app/internal/repository"
)

type activityLogRepository struct {
	db *sqlx.DB
}

// NewActivityLogRepository creates the PostgreSQL activity log sink.
func NewActivityLogRepository(db *sqlx.DB) repository.ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Record(ctx context.Context, userID int64, action string) error {
	query := `INSERT INTO user_logs (user_id, action, created_at) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, userID, action, time.Now()); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	return nil
}
