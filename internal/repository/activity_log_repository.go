package repository

import "context"

// ActivityLogRepository is the fire-and-forget sink for user activity events.
// Callers log failures instead of propagating them.
type ActivityLogRepository interface {
	Record(ctx context.Context, userID int64, action string) error
}
