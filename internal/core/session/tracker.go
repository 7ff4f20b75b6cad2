// Package session holds the process-local conversational state of every
// actor. It is a loss-tolerant cache: a restart simply drops everyone back
// to idle and forces them to restart their flow.
package session

import (
	"sync"

	"github.com/avetra/support-bot-backend/internal/core/domain"
)

// State is an actor's current conversational mode.
type State string

const (
	StateIdle            State = "idle"
	StateCreatingTicket  State = "creating_ticket"
	StateReplyingTicket  State = "replying_ticket"
	StateReplyingToAdmin State = "replying_to_admin"
)

// Entry is the transient context attached to an actor's state.
type Entry struct {
	State State
	// Category is pending while the actor composes a new ticket.
	Category domain.Category
	// AdminID is set while the actor's next plain-text message routes back
	// to a specific admin.
	AdminID string
}

// Tracker is a concurrency-safe map of actor identity to conversational
// state, plus the admins' active-reply bindings. Entries are independent;
// no cross-actor ordering is provided or needed.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]Entry
	// replies maps an admin identity to the ticket they are replying to.
	// The binding is keyed by admin alone, so starting a second reply
	// rebinds the admin and any in-flight follow-up lands on the new ticket.
	replies map[string]int64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[string]Entry),
		replies: make(map[string]int64),
	}
}

// Set stores the actor's state, overwriting any previous entry.
func (t *Tracker) Set(actorID string, e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[actorID] = e
}

// Get returns the actor's state, or an idle entry if none is stored.
func (t *Tracker) Get(actorID string) Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.entries[actorID]; ok {
		return e
	}
	return Entry{State: StateIdle}
}

// Clear removes the actor's state. Clearing an absent entry is a no-op.
func (t *Tracker) Clear(actorID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, actorID)
}

// BindReply records which ticket the admin is currently replying to.
func (t *Tracker) BindReply(adminID string, ticketID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies[adminID] = ticketID
}

// ActiveReply returns the admin's bound ticket, if any.
func (t *Tracker) ActiveReply(adminID string) (int64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.replies[adminID]
	return id, ok
}

// ClearReply removes the admin's reply binding. Idempotent.
func (t *Tracker) ClearReply(adminID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.replies, adminID)
}
