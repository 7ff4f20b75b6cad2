package ports

import (
	"context"
	"time"

	"github.com/avetra/support-bot-backend/internal/core/domain"
)

// TicketFilter narrows ticket list queries. Results are always ordered by
// CreatedAt ascending so triage pops the oldest ticket first.
type TicketFilter struct {
	Status     *domain.TicketStatus
	Category   *domain.Category
	OwnerNotIn []string
}

// TicketRepository is the port for durable ticket storage.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]*domain.Ticket, error)
	CountActiveByOwner(ctx context.Context, ownerID string) (int, error)
	ListActiveCreatedSince(ctx context.Context, since time.Time) ([]*domain.Ticket, error)
	LatestByOwner(ctx context.Context, ownerID string) (*domain.Ticket, error)
}

// BlacklistRepository is the port for the persistent deny-list.
type BlacklistRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.BlacklistEntry, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	Add(ctx context.Context, entry *domain.BlacklistEntry) (*domain.BlacklistEntry, error)
	Remove(ctx context.Context, userID string) error
}

// AdminRepository is the port for the administrator set.
type AdminRepository interface {
	List(ctx context.Context) ([]*domain.Admin, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*domain.Admin, error)
	Add(ctx context.Context, admin *domain.Admin) (*domain.Admin, error)
	Remove(ctx context.Context, telegramID string) error
}
