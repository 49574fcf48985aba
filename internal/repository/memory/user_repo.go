package memory

import (
	"context"
	"sync"
	"time"

	"parklot/internal/domain"
	"parklot/internal/repository"
)

type memUserRepository struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.User // keyed by username
}

func NewUserRepository() repository.UserRepository {
	return &memUserRepository{users: make(map[string]*domain.User)}
}

func (r *memUserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return nil, repository.ErrDuplicateEntry
	}
	r.nextID++
	now := time.Now().UTC()
	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[stored.Username] = &stored

	copied := stored
	return &copied, nil
}

func (r *memUserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepository) FindByID(_ context.Context, id int) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepository) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}
