package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
)

func TestBlacklistRepository(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewBlacklistRepository(testPool)

	t.Run("miss returns ErrNotBlocked", func(t *testing.T) {
		_, err := repo.GetByUserID(ctx, "42")
		assert.ErrorIs(t, err, apperrors.ErrNotBlocked)
	})

	t.Run("add and get", func(t *testing.T) {
		entry, err := domain.NewBlacklistEntry("42", "Иван", "спам", "7")
		require.NoError(t, err)

		created, err := repo.Add(ctx, entry)
		require.NoError(t, err)
		require.NotZero(t, created.ID)

		loaded, err := repo.GetByUserID(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, "Иван", loaded.PublicName)
		assert.Equal(t, "спам", loaded.Reason)
		assert.Equal(t, "7", loaded.BlockedBy)
	})

	t.Run("duplicate add returns ErrAlreadyBlocked", func(t *testing.T) {
		entry, err := domain.NewBlacklistEntry("42", "Иван", "", "7")
		require.NoError(t, err)

		_, err = repo.Add(ctx, entry)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyBlocked)
	})

	t.Run("list user ids", func(t *testing.T) {
		entry, err := domain.NewBlacklistEntry("13", "", "", "7")
		require.NoError(t, err)
		_, err = repo.Add(ctx, entry)
		require.NoError(t, err)

		ids, err := repo.ListUserIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"13", "42"}, ids)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, repo.Remove(ctx, "42"))

		_, err := repo.GetByUserID(ctx, "42")
		assert.ErrorIs(t, err, apperrors.ErrNotBlocked)

		assert.ErrorIs(t, repo.Remove(ctx, "42"), apperrors.ErrNotBlocked)
	})
}

func TestAdminRepository(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewAdminRepository(testPool)

	t.Run("miss returns ErrAdminNotFound", func(t *testing.T) {
		_, err := repo.GetByTelegramID(ctx, "7")
		assert.ErrorIs(t, err, apperrors.ErrAdminNotFound)
	})

	t.Run("add and get", func(t *testing.T) {
		created, err := repo.Add(ctx, &domain.Admin{TelegramID: "7"})
		require.NoError(t, err)
		require.NotZero(t, created.ID)

		loaded, err := repo.GetByTelegramID(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, "7", loaded.TelegramID)
	})

	t.Run("duplicate add is idempotent", func(t *testing.T) {
		first, err := repo.GetByTelegramID(ctx, "7")
		require.NoError(t, err)

		again, err := repo.Add(ctx, &domain.Admin{TelegramID: "7"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	})

	t.Run("list", func(t *testing.T) {
		_, err := repo.Add(ctx, &domain.Admin{TelegramID: "8"})
		require.NoError(t, err)

		admins, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, admins, 2)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, repo.Remove(ctx, "8"))
		assert.ErrorIs(t, repo.Remove(ctx, "8"), apperrors.ErrAdminNotFound)
	})
}
