package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/infrastructure/storage"
)

func TestUserService_BeginFaultLookupAndCancel(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.BeginFaultLookup(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingFaultID, user.State)

	user, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestUserService_SetState(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.SetState(ctx, 2, 20, entity.StateAwaitingFaultID)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingFaultID, user.State)

	got, err := svc.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingFaultID, got.State)
}
