package ports

import (
	"context"

	"github.com/avetra/support-bot-backend/internal/core/domain"
)

// SubmitTicketParams is the input for creating a ticket from the text an
// actor sent while in the composing state.
type SubmitTicketParams struct {
	ActorID     string
	DisplayName string
	Text        string
}

// RelayParams is the input for relaying a reply across the ticket.
type RelayParams struct {
	ActorID     string
	DisplayName string
	Text        string
}

// CloseTicketParams is the input for closing a ticket.
type CloseTicketParams struct {
	ActorID  string
	IsAdmin  bool
	TicketID int64
}

// RouterService is the conversation state machine and ticket-routing engine.
type RouterService interface {
	// BeginTicket puts a non-admin actor into the composing state with the
	// chosen category pending.
	BeginTicket(ctx context.Context, actorID string, category domain.Category) error
	// SubmitTicket turns the pending category plus the submitted text into a
	// persisted active ticket.
	SubmitTicket(ctx context.Context, params SubmitTicketParams) (*domain.Ticket, error)
	// TriageOldest pops the chronologically oldest active ticket in the
	// category whose owner is not blacklisted.
	TriageOldest(ctx context.Context, adminID string, category domain.Category) (*domain.Ticket, error)
	// NextTicket returns the ticket following currentID in the recomputed
	// triage order.
	NextTicket(ctx context.Context, adminID string, currentID int64, category domain.Category) (*domain.Ticket, error)
	// BeginReply binds the admin to a ticket and puts them into the replying
	// state. The ticket is validated lazily, when the reply text arrives.
	BeginReply(adminID string, ticketID int64)
	// CancelReply clears the actor's reply binding and state. Idempotent.
	CancelReply(actorID string)
	// RelayAdminReply appends the admin's reply to the bound ticket and
	// forwards it to the owning user.
	RelayAdminReply(ctx context.Context, params RelayParams) (*domain.Ticket, error)
	// RelayUserFollowUp appends the user's follow-up to the ticket the admin
	// is bound to and forwards it to that admin.
	RelayUserFollowUp(ctx context.Context, params RelayParams) (*domain.Ticket, error)
	// CloseTicket transitions the ticket to closed and, when closed by an
	// admin, notifies the owner.
	CloseTicket(ctx context.Context, params CloseTicketParams) (*domain.Ticket, error)
	// ExportLog renders the ticket's conversation log as a plain-text file.
	ExportLog(ctx context.Context, ticketID int64) (filename string, content []byte, err error)
}

// BlacklistService gates ticket creation and triage visibility.
type BlacklistService interface {
	IsBlacklisted(ctx context.Context, userID string) (bool, error)
	Block(ctx context.Context, userID, reason, blockingAdmin string) (*domain.BlacklistEntry, error)
	Unblock(ctx context.Context, userID string) error
	BlockedUserIDs(ctx context.Context) ([]string, error)
}

// AdminService maintains and queries the administrator set.
type AdminService interface {
	// Reconcile upserts the configured identities and prunes stale ones.
	Reconcile(ctx context.Context, configuredIDs []string) error
	// IsAdmin is the membership predicate used for role dispatch.
	IsAdmin(ctx context.Context, actorID string) (bool, error)
	// List returns the current administrator set.
	List(ctx context.Context) ([]*domain.Admin, error)
}

// Notifier is the outbound side of the chat transport. Implementations must
// tolerate slow or failing recipients; callers log and swallow errors.
type Notifier interface {
	// Send delivers a plain text message to the actor.
	Send(ctx context.Context, actorID, text string) error
	// SendMenu delivers a text message with the category menu attached.
	SendMenu(ctx context.Context, actorID, text string) error
}

// CreationRecorder receives ticket-creation events for time-windowed
// notification batching.
type CreationRecorder interface {
	RecordCreation()
}

// EventBroadcaster fans ticket lifecycle events out to ops dashboards.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}
