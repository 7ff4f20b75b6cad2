package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
)

func TestNewTicket(t *testing.T) {
	t.Run("creates active ticket with opening user message", func(t *testing.T) {
		ticket, err := domain.NewTicket("42", domain.CategoryBug, "Иван", "кнопка не работает")

		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, ticket.Status)
		assert.Equal(t, "42", ticket.OwnerID)
		assert.Equal(t, domain.CategoryBug, ticket.Category)
		require.Len(t, ticket.Messages, 1)
		assert.Equal(t, domain.RoleUser, ticket.Messages[0].Role)
		assert.Equal(t, "Иван", ticket.Messages[0].SenderName)
		assert.Equal(t, "кнопка не работает", ticket.Messages[0].Text)
		assert.False(t, ticket.CreatedAt.IsZero())
		assert.Equal(t, ticket.CreatedAt, ticket.UpdatedAt)
	})

	t.Run("rejects empty owner", func(t *testing.T) {
		_, err := domain.NewTicket("", domain.CategoryBug, "Иван", "текст")
		assert.ErrorIs(t, err, apperrors.ErrOwnerRequired)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := domain.NewTicket("42", domain.Category("Другое"), "Иван", "текст")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCategory)
	})

	t.Run("rejects empty message", func(t *testing.T) {
		_, err := domain.NewTicket("42", domain.CategoryGeneral, "Иван", "")
		assert.ErrorIs(t, err, apperrors.ErrMessageRequired)
	})
}

func TestTicket_Append(t *testing.T) {
	ticket, err := domain.NewTicket("42", domain.CategoryGeneral, "Иван", "вопрос")
	require.NoError(t, err)

	t.Run("appends in order and bumps UpdatedAt", func(t *testing.T) {
		createdAt := ticket.UpdatedAt

		require.NoError(t, ticket.Append(domain.RoleAdmin, "Мария", "ответ"))
		require.NoError(t, ticket.Append(domain.RoleUser, "Иван", "уточнение"))

		require.Len(t, ticket.Messages, 3)
		assert.Equal(t, domain.RoleAdmin, ticket.Messages[1].Role)
		assert.Equal(t, domain.RoleUser, ticket.Messages[2].Role)
		assert.False(t, ticket.UpdatedAt.Before(createdAt))
	})

	t.Run("rejects empty text", func(t *testing.T) {
		assert.ErrorIs(t, ticket.Append(domain.RoleAdmin, "Мария", ""), apperrors.ErrMessageRequired)
	})
}

func TestTicket_Close(t *testing.T) {
	ticket, err := domain.NewTicket("42", domain.CategoryIdeas, "Иван", "идея")
	require.NoError(t, err)

	require.NoError(t, ticket.Close())
	assert.Equal(t, domain.StatusClosed, ticket.Status)
	assert.False(t, ticket.IsActive())

	// Closed stays closed.
	assert.ErrorIs(t, ticket.Close(), apperrors.ErrTicketClosed)
}

func TestTicket_OpeningMessage(t *testing.T) {
	t.Run("returns first message", func(t *testing.T) {
		ticket, err := domain.NewTicket("42", domain.CategoryBug, "Иван", "первое")
		require.NoError(t, err)
		require.NoError(t, ticket.Append(domain.RoleAdmin, "Мария", "второе"))

		msg := ticket.OpeningMessage()
		require.NotNil(t, msg)
		assert.Equal(t, "первое", msg.Text)
	})

	t.Run("nil for empty log", func(t *testing.T) {
		empty := &domain.Ticket{}
		assert.Nil(t, empty.OpeningMessage())
	})
}

func TestCategory_IsValid(t *testing.T) {
	for _, category := range domain.Categories() {
		assert.True(t, category.IsValid(), string(category))
	}
	assert.False(t, domain.Category("Другое").IsValid())
	assert.False(t, domain.Category("").IsValid())
}
