package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/port"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.ErrorIs(t, repo.UpdateState(ctx, 1, entity.StateAwaitingFaultID), port.ErrNotFound)

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)

	require.NoError(t, repo.UpdateState(ctx, 1, entity.StateAwaitingFaultID))
	again, err := repo.Get(ctx, 1, 11)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingFaultID, again.State)
	require.Equal(t, int64(11), again.ChatID)
}

func TestMemoryUserRepository_ConcurrentGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	users := make([]*entity.User, 16)
	var wg sync.WaitGroup
	for i := range users {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			users[i], _ = repo.Get(ctx, 7, 70)
		}()
	}
	wg.Wait()

	for _, u := range users {
		require.Same(t, users[0], u)
	}
}
