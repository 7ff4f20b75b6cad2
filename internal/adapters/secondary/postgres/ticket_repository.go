package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
	"github.com/avetra/support-bot-backend/internal/core/ports"
)

// TicketRepository is the secondary adapter for ticket persistence. A ticket
// row carries the envelope; the conversation lives in ticket_messages, ordered
// by position within the ticket.
type TicketRepository struct {
	pool *pgxpool.Pool
}

// Ensure TicketRepository implements the ports.TicketRepository interface.
var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(pool *pgxpool.Pool) ports.TicketRepository {
	return &TicketRepository{pool: pool}
}

// Create persists a new ticket with its opening message in one transaction.
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ticket create: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created := *ticket
	err = tx.QueryRow(ctx,
		`INSERT INTO tickets (owner_id, category, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		ticket.OwnerID, string(ticket.Category), string(ticket.Status), ticket.CreatedAt, ticket.UpdatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}

	if err := insertMessages(ctx, tx, created.ID, 0, ticket.Messages); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ticket create: %w", err)
	}
	return &created, nil
}

// GetByID retrieves a single ticket with its full conversation.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	var category, status string
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, category, status, created_at, updated_at
		 FROM tickets WHERE id = $1`,
		id,
	).Scan(&ticket.ID, &ticket.OwnerID, &category, &status, &ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("select ticket: %w", err)
	}
	ticket.Category = domain.Category(category)
	ticket.Status = domain.TicketStatus(status)

	messages, err := r.loadMessages(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	ticket.Messages = messages[id]
	return ticket, nil
}

// Update persists the ticket envelope and appends any messages added since
// the last write. Existing messages are immutable, only the tail grows.
func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ticket update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE tickets SET status = $2, updated_at = $3 WHERE id = $1`,
		ticket.ID, string(ticket.Status), ticket.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrTicketNotFound
	}

	var stored int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM ticket_messages WHERE ticket_id = $1`,
		ticket.ID,
	).Scan(&stored); err != nil {
		return nil, fmt.Errorf("count ticket messages: %w", err)
	}

	if stored < len(ticket.Messages) {
		if err := insertMessages(ctx, tx, ticket.ID, stored, ticket.Messages[stored:]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ticket update: %w", err)
	}
	return ticket, nil
}

// List returns tickets matching the filter, oldest first.
func (r *TicketRepository) List(ctx context.Context, filter ports.TicketFilter) ([]*domain.Ticket, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT id, owner_id, category, status, created_at, updated_at FROM tickets`)

	var conditions []string
	var args []any
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if len(filter.OwnerNotIn) > 0 {
		args = append(args, filter.OwnerNotIn)
		conditions = append(conditions, fmt.Sprintf("owner_id != ALL($%d)", len(args)))
	}
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	query.WriteString(" ORDER BY created_at ASC, id ASC")

	return r.listTickets(ctx, query.String(), args...)
}

// CountActiveByOwner counts the owner's active tickets for quota enforcement.
func (r *TicketRepository) CountActiveByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tickets WHERE owner_id = $1 AND status = $2`,
		ownerID, string(domain.StatusActive),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active tickets: %w", err)
	}
	return count, nil
}

// ListActiveCreatedSince returns active tickets created at or after the cutoff.
func (r *TicketRepository) ListActiveCreatedSince(ctx context.Context, since time.Time) ([]*domain.Ticket, error) {
	return r.listTickets(ctx,
		`SELECT id, owner_id, category, status, created_at, updated_at
		 FROM tickets
		 WHERE status = $1 AND created_at >= $2
		 ORDER BY created_at ASC, id ASC`,
		string(domain.StatusActive), since,
	)
}

// LatestByOwner returns the owner's most recently created ticket.
func (r *TicketRepository) LatestByOwner(ctx context.Context, ownerID string) (*domain.Ticket, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM tickets WHERE owner_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		ownerID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("select latest ticket: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *TicketRepository) listTickets(ctx context.Context, query string, args ...any) ([]*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	var ids []int64
	for rows.Next() {
		ticket := &domain.Ticket{}
		var category, status string
		if err := rows.Scan(&ticket.ID, &ticket.OwnerID, &category, &status, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		ticket.Category = domain.Category(category)
		ticket.Status = domain.TicketStatus(status)
		tickets = append(tickets, ticket)
		ids = append(ids, ticket.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	if len(tickets) == 0 {
		return nil, nil
	}

	messages, err := r.loadMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, ticket := range tickets {
		ticket.Messages = messages[ticket.ID]
	}
	return tickets, nil
}

// loadMessages fetches the conversations for a batch of tickets in one query.
func (r *TicketRepository) loadMessages(ctx context.Context, ticketIDs []int64) (map[int64][]domain.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ticket_id, role, sender_name, body, sent_at
		 FROM ticket_messages
		 WHERE ticket_id = ANY($1)
		 ORDER BY ticket_id, position`,
		ticketIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("load ticket messages: %w", err)
	}
	defer rows.Close()

	messages := make(map[int64][]domain.Message, len(ticketIDs))
	for rows.Next() {
		var ticketID int64
		var role string
		msg := domain.Message{}
		if err := rows.Scan(&ticketID, &role, &msg.SenderName, &msg.Text, &msg.SentAt); err != nil {
			return nil, fmt.Errorf("scan ticket message: %w", err)
		}
		msg.Role = domain.SenderRole(role)
		messages[ticketID] = append(messages[ticketID], msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket messages: %w", err)
	}
	return messages, nil
}

func insertMessages(ctx context.Context, tx pgx.Tx, ticketID int64, offset int, messages []domain.Message) error {
	for i, msg := range messages {
		_, err := tx.Exec(ctx,
			`INSERT INTO ticket_messages (ticket_id, position, role, sender_name, body, sent_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			ticketID, offset+i, string(msg.Role), msg.SenderName, msg.Text, msg.SentAt,
		)
		if err != nil {
			return fmt.Errorf("insert ticket message: %w", err)
		}
	}
	return nil
}
