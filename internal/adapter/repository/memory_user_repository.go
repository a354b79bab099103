package repository

import (
	"context"
	"sync"

	"droplink/internal/domain/entity"
	"droplink/internal/domain/repository"
	"droplink/pkg/errors"
)

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewMemoryUserRepository() repository.UserRepository {
	return &memoryUserRepository{
		users: make(map[string]*entity.User),
	}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	u := *user
	return &u, nil
}
