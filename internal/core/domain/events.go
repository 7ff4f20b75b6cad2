package domain

// EventType defines the type of real-time ops event.
type EventType string

const (
	EventTicketCreated EventType = "TICKET_CREATED"
	EventTicketClosed  EventType = "TICKET_CLOSED"
	EventDigestSent    EventType = "DIGEST_SENT"
)

// Event is the payload streamed to connected ops dashboards.
type Event struct {
	Type     EventType   `json:"type"`
	Payload  interface{} `json:"payload,omitempty"`
	TicketID int64       `json:"ticketId,omitempty"`
}
