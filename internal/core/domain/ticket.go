package domain

import (
	"time"

	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
)

// TicketStatus represents the lifecycle state of a ticket.
type TicketStatus string

const (
	StatusActive TicketStatus = "active"
	StatusClosed TicketStatus = "closed"
)

// IsValid reports whether the status is one of the known states.
func (s TicketStatus) IsValid() bool {
	return s == StatusActive || s == StatusClosed
}

// Category is one of the fixed support categories offered to users.
type Category string

const (
	CategoryIdeas   Category = "Идеи и предложения"
	CategoryBug     Category = "Сообщить об ошибке"
	CategoryGeneral Category = "Общие вопросы"
)

// Categories returns all categories in menu order.
func Categories() []Category {
	return []Category{CategoryIdeas, CategoryBug, CategoryGeneral}
}

// IsValid reports whether the category is part of the fixed set.
func (c Category) IsValid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// SenderRole identifies which side of the conversation authored a message.
type SenderRole string

const (
	RoleUser  SenderRole = "user"
	RoleAdmin SenderRole = "admin"
)

// Message is a single entry in a ticket's append-only conversation log.
type Message struct {
	Role       SenderRole
	SenderName string
	Text       string
	SentAt     time.Time
}

// Ticket is the core domain entity: a support conversation between one user
// and the admin pool. The message log is append-only, ordered by SentAt, and
// always opens with a user message.
type Ticket struct {
	ID        int64
	OwnerID   string
	Category  Category
	Messages  []Message
	Status    TicketStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTicket creates a valid new active ticket from its opening user message.
func NewTicket(ownerID string, category Category, senderName, text string) (*Ticket, error) {
	if ownerID == "" {
		return nil, apperrors.ErrOwnerRequired
	}
	if !category.IsValid() {
		return nil, apperrors.ErrInvalidCategory
	}
	if text == "" {
		return nil, apperrors.ErrMessageRequired
	}

	now := time.Now().UTC()
	return &Ticket{
		OwnerID:  ownerID,
		Category: category,
		Status:   StatusActive,
		Messages: []Message{{
			Role:       RoleUser,
			SenderName: senderName,
			Text:       text,
			SentAt:     now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Append adds a message to the conversation log.
func (t *Ticket) Append(role SenderRole, senderName, text string) error {
	if text == "" {
		return apperrors.ErrMessageRequired
	}
	now := time.Now().UTC()
	t.Messages = append(t.Messages, Message{
		Role:       role,
		SenderName: senderName,
		Text:       text,
		SentAt:     now,
	})
	t.UpdatedAt = now
	return nil
}

// Close transitions the ticket to closed. The only legal transition is
// active -> closed; a closed ticket is never reopened.
func (t *Ticket) Close() error {
	if t.Status == StatusClosed {
		return apperrors.ErrTicketClosed
	}
	t.Status = StatusClosed
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// IsActive reports whether the ticket still accepts replies and triage.
func (t *Ticket) IsActive() bool {
	return t.Status == StatusActive
}

// OpeningMessage returns the first message of the log, which by invariant is
// the user's original request.
func (t *Ticket) OpeningMessage() *Message {
	if len(t.Messages) == 0 {
		return nil
	}
	return &t.Messages[0]
}

// IsOwnedBy reports whether the given actor opened this ticket.
func (t *Ticket) IsOwnedBy(actorID string) bool {
	return t.OwnerID == actorID
}
