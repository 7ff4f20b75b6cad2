package text

import (
	"fmt"
	"strings"
	"time"

	"github.com/avetra/support-bot-backend/internal/core/domain"
)

// RenderTicketLog produces the plain-text export of a ticket's conversation
// log: a header line with the id, category and opening text, followed by
// chronological "timestamp — role (name): text" lines. UTF-8, no escaping.
func RenderTicketLog(t *domain.Ticket) string {
	var b strings.Builder

	opening := ""
	if msg := t.OpeningMessage(); msg != nil {
		opening = msg.Text
	}
	fmt.Fprintf(&b, "Тикет #%d — %s: %s\n", t.ID, t.Category, opening)

	for _, msg := range t.Messages {
		fmt.Fprintf(&b, "%s — %s (%s): %s\n",
			msg.SentAt.UTC().Format(time.RFC3339),
			msg.Role,
			msg.SenderName,
			msg.Text,
		)
	}
	return b.String()
}

// TicketLogFilename names the exported document for a ticket.
func TicketLogFilename(ticketID int64) string {
	return fmt.Sprintf("ticket-%d.txt", ticketID)
}
