package memory

import (
	"context"
	"sync"

	"github.com/42piotrnycz/new-web-app/internal/domain"
	"github.com/42piotrnycz/new-web-app/internal/repository"
)

// UserRepository is an in-memory identity store double.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[int64]*domain.User
	byName map[string]int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int64]*domain.User),
		byName: make(map[string]int64),
	}
}

// Add registers a user for test setup.
func (r *UserRepository) Add(user *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	r.byName[user.Username] = user.ID
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *r.users[id]
	return &copied, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}
