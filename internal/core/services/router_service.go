package services

import (
	"context"
	"log/slog"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
	"github.com/avetra/support-bot-backend/internal/core/ports"
	"github.com/avetra/support-bot-backend/internal/core/session"
	"github.com/avetra/support-bot-backend/internal/core/text"
)

// RouterService implements the conversation state machine and ticket-routing
// engine. Session state is consulted and mutated before any storage or
// transport I/O so no in-memory lock is ever held across a suspension point.
type RouterService struct {
	tickets     ports.TicketRepository
	blacklist   ports.BlacklistService
	sessions    *session.Tracker
	notifier    ports.Notifier
	recorder    ports.CreationRecorder
	broadcaster ports.EventBroadcaster
	quota       int
	logger      *slog.Logger
}

var _ ports.RouterService = (*RouterService)(nil)

// NewRouterService creates a new ticket router. quota is the maximum number
// of active tickets one owner may hold.
func NewRouterService(
	tickets ports.TicketRepository,
	blacklist ports.BlacklistService,
	sessions *session.Tracker,
	notifier ports.Notifier,
	recorder ports.CreationRecorder,
	broadcaster ports.EventBroadcaster,
	quota int,
	logger *slog.Logger,
) *RouterService {
	return &RouterService{
		tickets:     tickets,
		blacklist:   blacklist,
		sessions:    sessions,
		notifier:    notifier,
		recorder:    recorder,
		broadcaster: broadcaster,
		quota:       quota,
		logger:      logger.With("component", "router"),
	}
}

// BeginTicket transitions a non-admin actor into the composing state with
// the chosen category pending.
func (s *RouterService) BeginTicket(ctx context.Context, actorID string, category domain.Category) error {
	if !category.IsValid() {
		return apperrors.ErrInvalidCategory
	}
	s.sessions.Set(actorID, session.Entry{
		State:    session.StateCreatingTicket,
		Category: category,
	})
	return nil
}

// SubmitTicket creates a ticket from the composing actor's text. The actor's
// state is consumed up front: whatever the outcome, the composing turn is
// over and the actor returns to idle.
func (s *RouterService) SubmitTicket(ctx context.Context, params ports.SubmitTicketParams) (*domain.Ticket, error) {
	entry := s.sessions.Get(params.ActorID)
	s.sessions.Clear(params.ActorID)

	if entry.State != session.StateCreatingTicket || entry.Category == "" {
		return nil, apperrors.ErrCategoryMissing
	}

	active, err := s.tickets.CountActiveByOwner(ctx, params.ActorID)
	if err != nil {
		return nil, err
	}
	if active >= s.quota {
		return nil, apperrors.ErrQuotaExceeded
	}

	blocked, err := s.blacklist.IsBlacklisted(ctx, params.ActorID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, apperrors.ErrBlacklisted
	}

	ticket, err := domain.NewTicket(params.ActorID, entry.Category, params.DisplayName, params.Text)
	if err != nil {
		return nil, err
	}

	created, err := s.tickets.Create(ctx, ticket)
	if err != nil {
		return nil, err
	}

	s.recorder.RecordCreation()
	_ = s.broadcaster.Broadcast(domain.Event{
		Type:     domain.EventTicketCreated,
		Payload:  created,
		TicketID: created.ID,
	})

	s.logger.Info("ticket created",
		"ticket_id", created.ID,
		"category", string(created.Category),
	)
	return created, nil
}

// TriageOldest returns the chronologically oldest active ticket in the
// category whose owner is not blacklisted.
func (s *RouterService) TriageOldest(ctx context.Context, adminID string, category domain.Category) (*domain.Ticket, error) {
	tickets, err := s.listTriage(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, apperrors.ErrNoTicketsFound
	}
	return tickets[0], nil
}

// NextTicket re-runs the triage query and returns the ticket immediately
// following currentID in createdAt order. The list is recomputed per call,
// so concurrent creates and closes may shift the ordering between calls.
func (s *RouterService) NextTicket(ctx context.Context, adminID string, currentID int64, category domain.Category) (*domain.Ticket, error) {
	tickets, err := s.listTriage(ctx, category)
	if err != nil {
		return nil, err
	}
	for i, t := range tickets {
		if t.ID == currentID && i < len(tickets)-1 {
			return tickets[i+1], nil
		}
	}
	return nil, apperrors.ErrNoMoreTickets
}

func (s *RouterService) listTriage(ctx context.Context, category domain.Category) ([]*domain.Ticket, error) {
	blockedIDs, err := s.blacklist.BlockedUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	status := domain.StatusActive
	return s.tickets.List(ctx, ports.TicketFilter{
		Status:     &status,
		Category:   &category,
		OwnerNotIn: blockedIDs,
	})
}

// BeginReply binds the admin to the ticket and puts them into the replying
// state. The ticket's existence is validated lazily, when the text arrives.
func (s *RouterService) BeginReply(adminID string, ticketID int64) {
	s.sessions.BindReply(adminID, ticketID)
	s.sessions.Set(adminID, session.Entry{State: session.StateReplyingTicket})
}

// CancelReply clears the actor's reply binding and state unconditionally.
// Safe to call when nothing is in flight.
func (s *RouterService) CancelReply(actorID string) {
	s.sessions.ClearReply(actorID)
	s.sessions.Clear(actorID)
}

// RelayAdminReply appends the admin's reply to their bound ticket and
// forwards it to the owning user. The binding is left intact so the admin
// can keep replying; the owner is flipped into the direct-reply state so
// their next plain-text message routes back to this admin.
func (s *RouterService) RelayAdminReply(ctx context.Context, params ports.RelayParams) (*domain.Ticket, error) {
	ticketID, ok := s.sessions.ActiveReply(params.ActorID)
	if !ok {
		return nil, apperrors.ErrNoActiveTicket
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if err := ticket.Append(domain.RoleAdmin, params.DisplayName, params.Text); err != nil {
		return nil, err
	}
	updated, err := s.tickets.Update(ctx, ticket)
	if err != nil {
		return nil, err
	}

	// The reply is persisted; a failed delivery must not undo it.
	if err := s.notifier.Send(ctx, updated.OwnerID, text.AdminReply(updated.ID, params.Text)); err != nil {
		s.logger.Warn("failed to deliver admin reply",
			"ticket_id", updated.ID,
			"error", err,
		)
	}

	s.sessions.Clear(params.ActorID)
	s.sessions.Set(updated.OwnerID, session.Entry{
		State:   session.StateReplyingToAdmin,
		AdminID: params.ActorID,
	})
	return updated, nil
}

// RelayUserFollowUp appends the user's follow-up to the ticket their admin
// is still bound to and forwards it to that admin. Only the user's state is
// cleared; the admin's binding survives so they can keep replying without
// re-opening the ticket.
func (s *RouterService) RelayUserFollowUp(ctx context.Context, params ports.RelayParams) (*domain.Ticket, error) {
	entry := s.sessions.Get(params.ActorID)
	if entry.State != session.StateReplyingToAdmin || entry.AdminID == "" {
		return nil, apperrors.ErrNoActiveTicket
	}

	ticketID, ok := s.sessions.ActiveReply(entry.AdminID)
	if !ok {
		s.sessions.Clear(params.ActorID)
		return nil, apperrors.ErrNoActiveTicket
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if err := ticket.Append(domain.RoleUser, params.DisplayName, params.Text); err != nil {
		return nil, err
	}
	updated, err := s.tickets.Update(ctx, ticket)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Send(ctx, entry.AdminID, text.UserFollowUp(updated.ID, params.DisplayName, params.Text)); err != nil {
		s.logger.Warn("failed to deliver user follow-up",
			"ticket_id", updated.ID,
			"error", err,
		)
	}

	s.sessions.Clear(params.ActorID)
	return updated, nil
}

// CloseTicket transitions the ticket to closed. Closing an absent or
// already-closed ticket mutates nothing. The owner is notified only when an
// administrator closed the ticket.
func (s *RouterService) CloseTicket(ctx context.Context, params ports.CloseTicketParams) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, params.TicketID)
	if err != nil {
		return nil, err
	}
	if err := ticket.Close(); err != nil {
		return nil, err
	}

	updated, err := s.tickets.Update(ctx, ticket)
	if err != nil {
		return nil, err
	}

	if params.IsAdmin {
		if err := s.notifier.SendMenu(ctx, updated.OwnerID, text.TicketClosedByAdmin(updated.ID)); err != nil {
			s.logger.Warn("failed to notify owner of close",
				"ticket_id", updated.ID,
				"error", err,
			)
		}
	}

	_ = s.broadcaster.Broadcast(domain.Event{
		Type:     domain.EventTicketClosed,
		TicketID: updated.ID,
	})

	s.logger.Info("ticket closed", "ticket_id", updated.ID, "by_admin", params.IsAdmin)
	return updated, nil
}

// ExportLog renders the ticket's conversation log as a downloadable
// plain-text document.
func (s *RouterService) ExportLog(ctx context.Context, ticketID int64) (string, []byte, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return "", nil, err
	}
	return text.TicketLogFilename(ticket.ID), []byte(text.RenderTicketLog(ticket)), nil
}
