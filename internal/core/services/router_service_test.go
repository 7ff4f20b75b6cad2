package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
	"github.com/avetra/support-bot-backend/internal/core/mocks"
	"github.com/avetra/support-bot-backend/internal/core/ports"
	"github.com/avetra/support-bot-backend/internal/core/services"
	"github.com/avetra/support-bot-backend/internal/core/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type routerFixture struct {
	tickets     *mocks.MockTicketRepository
	blacklist   *mocks.MockBlacklistService
	sessions    *session.Tracker
	notifier    *mocks.MockNotifier
	recorder    *mocks.MockCreationRecorder
	broadcaster *mocks.MockEventBroadcaster
	svc         *services.RouterService
}

func newRouterFixture(quota int) *routerFixture {
	f := &routerFixture{
		tickets:     mocks.NewMockTicketRepository(),
		blacklist:   mocks.NewMockBlacklistService(),
		sessions:    session.NewTracker(),
		notifier:    mocks.NewMockNotifier(),
		recorder:    mocks.NewMockCreationRecorder(),
		broadcaster: mocks.NewMockEventBroadcaster(),
	}
	f.svc = services.NewRouterService(
		f.tickets, f.blacklist, f.sessions, f.notifier, f.recorder, f.broadcaster, quota, testLogger(),
	)
	return f
}

func TestRouterService_BeginTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("puts actor into composing state", func(t *testing.T) {
		f := newRouterFixture(2)

		require.NoError(t, f.svc.BeginTicket(ctx, "42", domain.CategoryBug))

		entry := f.sessions.Get("42")
		assert.Equal(t, session.StateCreatingTicket, entry.State)
		assert.Equal(t, domain.CategoryBug, entry.Category)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		f := newRouterFixture(2)

		err := f.svc.BeginTicket(ctx, "42", domain.Category("Другое"))

		assert.ErrorIs(t, err, apperrors.ErrInvalidCategory)
		assert.Equal(t, session.StateIdle, f.sessions.Get("42").State)
	})
}

func TestRouterService_SubmitTicket(t *testing.T) {
	ctx := context.Background()
	params := ports.SubmitTicketParams{ActorID: "42", DisplayName: "Иван", Text: "кнопка не работает"}

	t.Run("creates ticket and consumes composing state", func(t *testing.T) {
		f := newRouterFixture(2)
		f.sessions.Set("42", session.Entry{State: session.StateCreatingTicket, Category: domain.CategoryBug})

		created := &domain.Ticket{ID: 7, OwnerID: "42", Category: domain.CategoryBug, Status: domain.StatusActive}
		f.tickets.On("CountActiveByOwner", ctx, "42").Return(0, nil)
		f.blacklist.On("IsBlacklisted", ctx, "42").Return(false, nil)
		f.tickets.On("Create", ctx, mock.AnythingOfType("*domain.Ticket")).Return(created, nil)
		f.recorder.On("RecordCreation").Return()
		f.broadcaster.On("Broadcast", mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventTicketCreated && e.TicketID == 7
		})).Return(nil)

		ticket, err := f.svc.SubmitTicket(ctx, params)

		require.NoError(t, err)
		assert.Equal(t, int64(7), ticket.ID)
		assert.Equal(t, session.StateIdle, f.sessions.Get("42").State)
		f.tickets.AssertExpectations(t)
		f.recorder.AssertExpectations(t)
		f.broadcaster.AssertExpectations(t)
	})

	t.Run("fails without composing state", func(t *testing.T) {
		f := newRouterFixture(2)

		ticket, err := f.svc.SubmitTicket(ctx, params)

		assert.Nil(t, ticket)
		assert.ErrorIs(t, err, apperrors.ErrCategoryMissing)
		f.tickets.AssertNotCalled(t, "Create")
	})

	t.Run("rejects at quota and still clears state", func(t *testing.T) {
		f := newRouterFixture(2)
		f.sessions.Set("42", session.Entry{State: session.StateCreatingTicket, Category: domain.CategoryBug})

		f.tickets.On("CountActiveByOwner", ctx, "42").Return(2, nil)

		ticket, err := f.svc.SubmitTicket(ctx, params)

		assert.Nil(t, ticket)
		assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)
		assert.Equal(t, session.StateIdle, f.sessions.Get("42").State)
		f.tickets.AssertNotCalled(t, "Create")
	})

	t.Run("rejects blacklisted owner", func(t *testing.T) {
		f := newRouterFixture(2)
		f.sessions.Set("42", session.Entry{State: session.StateCreatingTicket, Category: domain.CategoryBug})

		f.tickets.On("CountActiveByOwner", ctx, "42").Return(0, nil)
		f.blacklist.On("IsBlacklisted", ctx, "42").Return(true, nil)

		ticket, err := f.svc.SubmitTicket(ctx, params)

		assert.Nil(t, ticket)
		assert.ErrorIs(t, err, apperrors.ErrBlacklisted)
		f.tickets.AssertNotCalled(t, "Create")
	})
}

func TestRouterService_Triage(t *testing.T) {
	ctx := context.Background()
	category := domain.CategoryGeneral

	triageFilter := func(f ports.TicketFilter) bool {
		return f.Status != nil && *f.Status == domain.StatusActive &&
			f.Category != nil && *f.Category == category
	}

	t.Run("oldest ticket wins, blacklisted owners excluded", func(t *testing.T) {
		f := newRouterFixture(2)

		f.blacklist.On("BlockedUserIDs", ctx).Return([]string{"13"}, nil)
		f.tickets.On("List", ctx, mock.MatchedBy(func(filter ports.TicketFilter) bool {
			return triageFilter(filter) && len(filter.OwnerNotIn) == 1 && filter.OwnerNotIn[0] == "13"
		})).Return([]*domain.Ticket{
			{ID: 1, OwnerID: "42", Category: category},
			{ID: 2, OwnerID: "43", Category: category},
		}, nil)

		ticket, err := f.svc.TriageOldest(ctx, "7", category)

		require.NoError(t, err)
		assert.Equal(t, int64(1), ticket.ID)
	})

	t.Run("empty category", func(t *testing.T) {
		f := newRouterFixture(2)

		f.blacklist.On("BlockedUserIDs", ctx).Return([]string{}, nil)
		f.tickets.On("List", ctx, mock.MatchedBy(triageFilter)).Return([]*domain.Ticket{}, nil)

		_, err := f.svc.TriageOldest(ctx, "7", category)

		assert.ErrorIs(t, err, apperrors.ErrNoTicketsFound)
	})

	t.Run("next returns the following ticket", func(t *testing.T) {
		f := newRouterFixture(2)

		f.blacklist.On("BlockedUserIDs", ctx).Return([]string{}, nil)
		f.tickets.On("List", ctx, mock.MatchedBy(triageFilter)).Return([]*domain.Ticket{
			{ID: 1}, {ID: 2}, {ID: 3},
		}, nil)

		ticket, err := f.svc.NextTicket(ctx, "7", 2, category)

		require.NoError(t, err)
		assert.Equal(t, int64(3), ticket.ID)
	})

	t.Run("next past the end", func(t *testing.T) {
		f := newRouterFixture(2)

		f.blacklist.On("BlockedUserIDs", ctx).Return([]string{}, nil)
		f.tickets.On("List", ctx, mock.MatchedBy(triageFilter)).Return([]*domain.Ticket{
			{ID: 1}, {ID: 2},
		}, nil)

		_, err := f.svc.NextTicket(ctx, "7", 2, category)

		assert.ErrorIs(t, err, apperrors.ErrNoMoreTickets)
	})

	t.Run("next after a vanished current ticket", func(t *testing.T) {
		f := newRouterFixture(2)

		f.blacklist.On("BlockedUserIDs", ctx).Return([]string{}, nil)
		f.tickets.On("List", ctx, mock.MatchedBy(triageFilter)).Return([]*domain.Ticket{
			{ID: 1}, {ID: 3},
		}, nil)

		_, err := f.svc.NextTicket(ctx, "7", 2, category)

		assert.ErrorIs(t, err, apperrors.ErrNoMoreTickets)
	})
}

func TestRouterService_RelayAdminReply(t *testing.T) {
	ctx := context.Background()

	newActiveTicket := func() *domain.Ticket {
		ticket, err := domain.NewTicket("42", domain.CategoryBug, "Иван", "кнопка не работает")
		require.NoError(t, err)
		ticket.ID = 7
		return ticket
	}

	t.Run("relays and keeps the binding for follow-ups", func(t *testing.T) {
		f := newRouterFixture(2)
		f.svc.BeginReply("admin", 7)

		ticket := newActiveTicket()
		f.tickets.On("GetByID", ctx, int64(7)).Return(ticket, nil)
		f.tickets.On("Update", ctx, ticket).Return(ticket, nil)
		f.notifier.On("Send", ctx, "42", "Ответ на ваш тикет #7: проверьте обновление").Return(nil)

		params := ports.RelayParams{ActorID: "admin", DisplayName: "Мария", Text: "проверьте обновление"}
		updated, err := f.svc.RelayAdminReply(ctx, params)

		require.NoError(t, err)
		require.Len(t, updated.Messages, 2)
		assert.Equal(t, domain.RoleAdmin, updated.Messages[1].Role)

		// Admin leaves the composing state but stays bound to the ticket.
		assert.Equal(t, session.StateIdle, f.sessions.Get("admin").State)
		boundID, ok := f.sessions.ActiveReply("admin")
		assert.True(t, ok)
		assert.Equal(t, int64(7), boundID)

		// The owner's next message routes back to this admin.
		owner := f.sessions.Get("42")
		assert.Equal(t, session.StateReplyingToAdmin, owner.State)
		assert.Equal(t, "admin", owner.AdminID)
		f.notifier.AssertExpectations(t)
	})

	t.Run("no binding", func(t *testing.T) {
		f := newRouterFixture(2)

		_, err := f.svc.RelayAdminReply(ctx, ports.RelayParams{ActorID: "admin", Text: "ответ"})

		assert.ErrorIs(t, err, apperrors.ErrNoActiveTicket)
		f.tickets.AssertNotCalled(t, "GetByID")
	})

	t.Run("vanished ticket", func(t *testing.T) {
		f := newRouterFixture(2)
		f.svc.BeginReply("admin", 7)

		f.tickets.On("GetByID", ctx, int64(7)).Return(nil, apperrors.ErrTicketNotFound)

		_, err := f.svc.RelayAdminReply(ctx, ports.RelayParams{ActorID: "admin", Text: "ответ"})

		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})

	t.Run("reply survives a failed delivery", func(t *testing.T) {
		f := newRouterFixture(2)
		f.svc.BeginReply("admin", 7)

		ticket := newActiveTicket()
		f.tickets.On("GetByID", ctx, int64(7)).Return(ticket, nil)
		f.tickets.On("Update", ctx, ticket).Return(ticket, nil)
		f.notifier.On("Send", ctx, "42", mock.AnythingOfType("string")).Return(assert.AnError)

		_, err := f.svc.RelayAdminReply(ctx, ports.RelayParams{ActorID: "admin", DisplayName: "Мария", Text: "ответ"})

		require.NoError(t, err)
	})
}

func TestRouterService_RelayUserFollowUp(t *testing.T) {
	ctx := context.Background()

	t.Run("routes the follow-up to the bound admin", func(t *testing.T) {
		f := newRouterFixture(2)
		f.sessions.BindReply("admin", 7)
		f.sessions.Set("42", session.Entry{State: session.StateReplyingToAdmin, AdminID: "admin"})

		ticket, err := domain.NewTicket("42", domain.CategoryBug, "Иван", "кнопка не работает")
		require.NoError(t, err)
		ticket.ID = 7
		f.tickets.On("GetByID", ctx, int64(7)).Return(ticket, nil)
		f.tickets.On("Update", ctx, ticket).Return(ticket, nil)
		f.notifier.On("Send", ctx, "admin", "Сообщение от Иван по тикету #7: всё ещё не работает").Return(nil)

		updated, err := f.svc.RelayUserFollowUp(ctx, ports.RelayParams{
			ActorID: "42", DisplayName: "Иван", Text: "всё ещё не работает",
		})

		require.NoError(t, err)
		require.Len(t, updated.Messages, 2)
		assert.Equal(t, domain.RoleUser, updated.Messages[1].Role)

		// The user's state is consumed; the admin stays bound.
		assert.Equal(t, session.StateIdle, f.sessions.Get("42").State)
		_, ok := f.sessions.ActiveReply("admin")
		assert.True(t, ok)
		f.notifier.AssertExpectations(t)
	})

	t.Run("idle user has nothing to follow up", func(t *testing.T) {
		f := newRouterFixture(2)

		_, err := f.svc.RelayUserFollowUp(ctx, ports.RelayParams{ActorID: "42", Text: "текст"})

		assert.ErrorIs(t, err, apperrors.ErrNoActiveTicket)
	})

	t.Run("stale binding clears the user state", func(t *testing.T) {
		f := newRouterFixture(2)
		f.sessions.Set("42", session.Entry{State: session.StateReplyingToAdmin, AdminID: "admin"})
		// The admin cancelled in the meantime, no binding remains.

		_, err := f.svc.RelayUserFollowUp(ctx, ports.RelayParams{ActorID: "42", Text: "текст"})

		assert.ErrorIs(t, err, apperrors.ErrNoActiveTicket)
		assert.Equal(t, session.StateIdle, f.sessions.Get("42").State)
	})
}

func TestRouterService_CancelReply(t *testing.T) {
	f := newRouterFixture(2)
	f.svc.BeginReply("admin", 7)

	f.svc.CancelReply("admin")

	_, ok := f.sessions.ActiveReply("admin")
	assert.False(t, ok)
	assert.Equal(t, session.StateIdle, f.sessions.Get("admin").State)

	// Cancelling again is a no-op.
	f.svc.CancelReply("admin")
}

func TestRouterService_CloseTicket(t *testing.T) {
	ctx := context.Background()

	newActiveTicket := func() *domain.Ticket {
		ticket, err := domain.NewTicket("42", domain.CategoryBug, "Иван", "вопрос")
		require.NoError(t, err)
		ticket.ID = 7
		return ticket
	}

	t.Run("admin close notifies the owner", func(t *testing.T) {
		f := newRouterFixture(2)

		ticket := newActiveTicket()
		f.tickets.On("GetByID", ctx, int64(7)).Return(ticket, nil)
		f.tickets.On("Update", ctx, ticket).Return(ticket, nil)
		f.notifier.On("SendMenu", ctx, "42", "Ваш тикет #7 был закрыт администратором.").Return(nil)
		f.broadcaster.On("Broadcast", mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventTicketClosed && e.TicketID == 7
		})).Return(nil)

		updated, err := f.svc.CloseTicket(ctx, ports.CloseTicketParams{ActorID: "admin", IsAdmin: true, TicketID: 7})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusClosed, updated.Status)
		f.notifier.AssertExpectations(t)
	})

	t.Run("owner close is silent", func(t *testing.T) {
		f := newRouterFixture(2)

		ticket := newActiveTicket()
		f.tickets.On("GetByID", ctx, int64(7)).Return(ticket, nil)
		f.tickets.On("Update", ctx, ticket).Return(ticket, nil)
		f.broadcaster.On("Broadcast", mock.AnythingOfType("domain.Event")).Return(nil)

		_, err := f.svc.CloseTicket(ctx, ports.CloseTicketParams{ActorID: "42", IsAdmin: false, TicketID: 7})

		require.NoError(t, err)
		f.notifier.AssertNotCalled(t, "SendMenu")
	})

	t.Run("closing a closed ticket mutates nothing", func(t *testing.T) {
		f := newRouterFixture(2)

		ticket := newActiveTicket()
		require.NoError(t, ticket.Close())
		f.tickets.On("GetByID", ctx, int64(7)).Return(ticket, nil)

		_, err := f.svc.CloseTicket(ctx, ports.CloseTicketParams{ActorID: "admin", IsAdmin: true, TicketID: 7})

		assert.ErrorIs(t, err, apperrors.ErrTicketClosed)
		f.tickets.AssertNotCalled(t, "Update")
	})

	t.Run("vanished ticket", func(t *testing.T) {
		f := newRouterFixture(2)

		f.tickets.On("GetByID", ctx, int64(7)).Return(nil, apperrors.ErrTicketNotFound)

		_, err := f.svc.CloseTicket(ctx, ports.CloseTicketParams{ActorID: "admin", IsAdmin: true, TicketID: 7})

		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}

func TestRouterService_ExportLog(t *testing.T) {
	ctx := context.Background()

	t.Run("renders the conversation", func(t *testing.T) {
		f := newRouterFixture(2)

		ticket, err := domain.NewTicket("42", domain.CategoryBug, "Иван", "вопрос")
		require.NoError(t, err)
		ticket.ID = 7
		f.tickets.On("GetByID", ctx, int64(7)).Return(ticket, nil)

		filename, content, err := f.svc.ExportLog(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, "ticket-7.txt", filename)
		assert.Contains(t, string(content), "Тикет #7")
		assert.Contains(t, string(content), "вопрос")
	})

	t.Run("vanished ticket", func(t *testing.T) {
		f := newRouterFixture(2)

		f.tickets.On("GetByID", ctx, int64(7)).Return(nil, apperrors.ErrTicketNotFound)

		_, _, err := f.svc.ExportLog(ctx, 7)

		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}
