package memory

import (
	"context"
	"sync"
)

type activityEntry struct {
	UserID int64
	Action string
}

// ActivityLogRepository collects recorded events for inspection in tests.
type ActivityLogRepository struct {
	mu       sync.Mutex
	entries  []activityEntry
	failWith error
}

func NewActivityLogRepository() *ActivityLogRepository {
	return &ActivityLogRepository{}
}

// FailWith makes every subsequent Record call return err.
func (r *ActivityLogRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

func (r *ActivityLogRepository) Record(ctx context.Context, userID int64, action string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.entries = append(r.entries, activityEntry{UserID: userID, Action: action})
	return nil
}

// Count returns how many events were recorded.
func (r *ActivityLogRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
