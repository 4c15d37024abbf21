package storage

import (
	"context"
	"sync"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище диалогов бота
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[int64]*entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]*entity.User),
	}
}

// Get возвращает пользователя по ID, при первом обращении создаёт его в главном меню.
// Чат обновляется, если пользователь пишет из другого чата.
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		user = entity.NewUser(userID, chatID)
		r.users[userID] = user
	}
	user.ChatID = chatID

	return user, nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = user
	r.mu.Unlock()

	return nil
}

// UpdateState меняет состояние известного пользователя
func (r *MemoryUserRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return port.ErrNotFound
	}
	user.SetState(state)

	return nil
}

var _ port.UserRepository = (*MemoryUserRepository)(nil)
