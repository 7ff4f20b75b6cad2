package telegram

import (
	"strconv"

	tele "gopkg.in/telebot.v3"

	"github.com/avetra/support-bot-backend/internal/core/domain"
)

// Callback uniques. Keyboard construction and handler registration must
// agree on these.
const (
	uniqueTicketReply = "ticket_reply"
	uniqueTicketNext  = "ticket_next"
	uniqueTicketClose = "ticket_close"
	uniqueTicketLog   = "ticket_log"
	uniqueCancelView  = "ticket_cancel_view"
	uniqueCancelReply = "reply_cancel"
)

// CategoryMenu is the one-time reply keyboard offering the fixed categories.
func CategoryMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}

	rows := make([]tele.Row, 0, len(domain.Categories()))
	for _, category := range domain.Categories() {
		rows = append(rows, menu.Row(menu.Text(string(category))))
	}
	menu.Reply(rows...)
	return menu
}

// TicketSelector is the inline keyboard attached to a triage card. The
// ticket id plus category travel in the callback data so browsing can
// re-run the same filtered query.
func TicketSelector(ticketID int64, category domain.Category) *tele.ReplyMarkup {
	selector := &tele.ReplyMarkup{}
	id := strconv.FormatInt(ticketID, 10)

	selector.Inline(
		selector.Row(
			selector.Data("Ответить", uniqueTicketReply, id),
			selector.Data("Следующий тикет", uniqueTicketNext, id, string(category)),
			selector.Data("Закрыть тикет", uniqueTicketClose, id),
		),
		selector.Row(selector.Data("Скачать лог", uniqueTicketLog, id)),
		selector.Row(selector.Data("Отмена", uniqueCancelView)),
	)
	return selector
}

// CloseTicketSelector is the single close affordance attached to the
// creation acknowledgment.
func CloseTicketSelector(ticketID int64) *tele.ReplyMarkup {
	selector := &tele.ReplyMarkup{}
	selector.Inline(
		selector.Row(selector.Data("Закрыть тикет", uniqueTicketClose, strconv.FormatInt(ticketID, 10))),
	)
	return selector
}

// CancelReplySelector lets an admin abandon a reply in progress.
func CancelReplySelector() *tele.ReplyMarkup {
	selector := &tele.ReplyMarkup{}
	selector.Inline(
		selector.Row(selector.Data("Отменить", uniqueCancelReply)),
	)
	return selector
}
