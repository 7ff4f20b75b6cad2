package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
	"github.com/avetra/support-bot-backend/internal/core/mocks"
	"github.com/avetra/support-bot-backend/internal/core/services"
)

func TestBlacklistService_IsBlacklisted(t *testing.T) {
	ctx := context.Background()

	t.Run("listed user", func(t *testing.T) {
		repo := mocks.NewMockBlacklistRepository()
		svc := services.NewBlacklistService(repo, mocks.NewMockTicketRepository(), testLogger())

		repo.On("GetByUserID", ctx, "42").Return(&domain.BlacklistEntry{UserID: "42"}, nil)

		blocked, err := svc.IsBlacklisted(ctx, "42")

		require.NoError(t, err)
		assert.True(t, blocked)
	})

	t.Run("unlisted user", func(t *testing.T) {
		repo := mocks.NewMockBlacklistRepository()
		svc := services.NewBlacklistService(repo, mocks.NewMockTicketRepository(), testLogger())

		repo.On("GetByUserID", ctx, "42").Return(nil, apperrors.ErrNotBlocked)

		blocked, err := svc.IsBlacklisted(ctx, "42")

		require.NoError(t, err)
		assert.False(t, blocked)
	})
}

func TestBlacklistService_Block(t *testing.T) {
	ctx := context.Background()

	t.Run("sources public name from latest ticket", func(t *testing.T) {
		repo := mocks.NewMockBlacklistRepository()
		tickets := mocks.NewMockTicketRepository()
		svc := services.NewBlacklistService(repo, tickets, testLogger())

		latest, err := domain.NewTicket("42", domain.CategoryBug, "Иван", "спам")
		require.NoError(t, err)

		repo.On("GetByUserID", ctx, "42").Return(nil, apperrors.ErrNotBlocked)
		tickets.On("LatestByOwner", ctx, "42").Return(latest, nil)
		repo.On("Add", ctx, mock.MatchedBy(func(e *domain.BlacklistEntry) bool {
			return e.UserID == "42" && e.PublicName == "Иван" && e.Reason == "спам" && e.BlockedBy == "7"
		})).Return(&domain.BlacklistEntry{ID: 1, UserID: "42", PublicName: "Иван"}, nil)

		entry, err := svc.Block(ctx, "42", "спам", "7")

		require.NoError(t, err)
		assert.Equal(t, "Иван", entry.PublicName)
		repo.AssertExpectations(t)
	})

	t.Run("no ticket history falls back to sentinel name", func(t *testing.T) {
		repo := mocks.NewMockBlacklistRepository()
		tickets := mocks.NewMockTicketRepository()
		svc := services.NewBlacklistService(repo, tickets, testLogger())

		repo.On("GetByUserID", ctx, "42").Return(nil, apperrors.ErrNotBlocked)
		tickets.On("LatestByOwner", ctx, "42").Return(nil, apperrors.ErrTicketNotFound)
		repo.On("Add", ctx, mock.MatchedBy(func(e *domain.BlacklistEntry) bool {
			return e.PublicName == domain.UnknownPublicName
		})).Return(&domain.BlacklistEntry{ID: 1, UserID: "42", PublicName: domain.UnknownPublicName}, nil)

		entry, err := svc.Block(ctx, "42", "", "7")

		require.NoError(t, err)
		assert.Equal(t, domain.UnknownPublicName, entry.PublicName)
	})

	t.Run("already blocked", func(t *testing.T) {
		repo := mocks.NewMockBlacklistRepository()
		svc := services.NewBlacklistService(repo, mocks.NewMockTicketRepository(), testLogger())

		repo.On("GetByUserID", ctx, "42").Return(&domain.BlacklistEntry{UserID: "42"}, nil)

		_, err := svc.Block(ctx, "42", "", "7")

		assert.ErrorIs(t, err, apperrors.ErrAlreadyBlocked)
		repo.AssertNotCalled(t, "Add")
	})
}

func TestBlacklistService_Unblock(t *testing.T) {
	ctx := context.Background()

	t.Run("removes listed user", func(t *testing.T) {
		repo := mocks.NewMockBlacklistRepository()
		svc := services.NewBlacklistService(repo, mocks.NewMockTicketRepository(), testLogger())

		repo.On("GetByUserID", ctx, "42").Return(&domain.BlacklistEntry{UserID: "42"}, nil)
		repo.On("Remove", ctx, "42").Return(nil)

		require.NoError(t, svc.Unblock(ctx, "42"))
		repo.AssertExpectations(t)
	})

	t.Run("unlisted user", func(t *testing.T) {
		repo := mocks.NewMockBlacklistRepository()
		svc := services.NewBlacklistService(repo, mocks.NewMockTicketRepository(), testLogger())

		repo.On("GetByUserID", ctx, "42").Return(nil, apperrors.ErrNotBlocked)

		assert.ErrorIs(t, svc.Unblock(ctx, "42"), apperrors.ErrNotBlocked)
		repo.AssertNotCalled(t, "Remove")
	})
}
