package text

import (
	"fmt"
	"strings"
	"time"

	"github.com/avetra/support-bot-backend/internal/core/domain"
)

// User-visible replies. Kept in one place so the handlers stay thin.

// Welcome greets a non-admin actor and offers the category menu.
func Welcome(appName string, maxTickets int) string {
	return fmt.Sprintf(
		"Добро пожаловать в поддержку %s! Выберите категорию, чтобы создать обращение (максимум %d):",
		appName, maxTickets,
	)
}

// WelcomeAdmin greets an administrator.
func WelcomeAdmin() string {
	return "Список тикетов"
}

// DescribeRequest asks the user for the opening message of a new ticket.
func DescribeRequest(category domain.Category) string {
	return fmt.Sprintf("Пожалуйста, опишите ваш запрос в категории %q:", string(category))
}

// TicketCreated acknowledges a new ticket to its owner.
func TicketCreated(ticketID int64) string {
	return fmt.Sprintf(
		"Спасибо, что обратились к нам, номер вашего обращения #%d. Если ваш вопрос был решён, нажмите на кнопку ниже. Среднее время ответа: ~1 день.",
		ticketID,
	)
}

// QuotaExceeded rejects a submission once the owner's active-ticket quota
// is reached.
func QuotaExceeded(max int) string {
	return fmt.Sprintf("У вас уже есть %s. Пожалуйста, дождитесь их обработки.",
		Declension(max, "активный тикет", "активных тикета", "активных тикетов"))
}

// Blacklisted rejects a submission from a deny-listed user.
func Blacklisted() string {
	return "Вы не можете создавать обращения."
}

// CategoryMissing reports corrupted composing state.
func CategoryMissing() string {
	return "Произошла ошибка: категория не найдена."
}

// TicketView renders the triage card shown to an admin.
func TicketView(t *domain.Ticket) string {
	opening := ""
	if msg := t.OpeningMessage(); msg != nil {
		opening = msg.Text
	}
	return fmt.Sprintf("Тикет #%d\nКатегория: %s\nСообщение: %s", t.ID, t.Category, opening)
}

// NoTicketsInCategory tells an admin the category inbox is empty.
func NoTicketsInCategory() string {
	return "Нет активных тикетов в этой категории."
}

// NoMoreTickets ends an admin's browsing run.
func NoMoreTickets() string {
	return "Нет больше тикетов."
}

// WriteYourReply prompts the admin for reply text.
func WriteYourReply() string {
	return "Напишите ваш ответ:"
}

// ReplyCanceled confirms a cancelled reply.
func ReplyCanceled() string {
	return "Ответ на тикет отменен."
}

// ReplySent confirms a relayed reply to its author.
func ReplySent() string {
	return "Ответ был отправлен."
}

// TicketNotFound reports a vanished ticket.
func TicketNotFound() string {
	return "Тикет не найден."
}

// TicketClosedOrMissing reports a close attempt on an absent or already
// closed ticket.
func TicketClosedOrMissing() string {
	return "Тикет не найден или уже закрыт."
}

// TicketClosed confirms a close to the closing actor.
func TicketClosed(ticketID int64) string {
	return fmt.Sprintf("Тикет #%d закрыт.", ticketID)
}

// TicketClosedByAdmin notifies the owner their ticket was closed.
func TicketClosedByAdmin(ticketID int64) string {
	return fmt.Sprintf("Ваш тикет #%d был закрыт администратором.", ticketID)
}

// AdminReply prefixes a relayed admin reply for the owning user.
func AdminReply(ticketID int64, reply string) string {
	return fmt.Sprintf("Ответ на ваш тикет #%d: %s", ticketID, reply)
}

// UserFollowUp prefixes a relayed user follow-up for the admin.
func UserFollowUp(ticketID int64, senderName, text string) string {
	return fmt.Sprintf("Сообщение от %s по тикету #%d: %s", senderName, ticketID, text)
}

// ViewCanceled confirms leaving the triage view.
func ViewCanceled() string {
	return "Просмотр тикетов отменен."
}

// Blocked confirms a blacklist addition to the blocking admin.
func Blocked(publicName string) string {
	return fmt.Sprintf("Пользователь %s заблокирован.", publicName)
}

// AlreadyBlocked reports a duplicate block attempt.
func AlreadyBlocked() string {
	return "Пользователь уже заблокирован."
}

// Unblocked confirms a blacklist removal.
func Unblocked() string {
	return "Пользователь разблокирован."
}

// NotBlocked reports an unblock attempt for an unlisted user.
func NotBlocked() string {
	return "Пользователь не найден в чёрном списке."
}

// GenericFailure is the catch-all reply for storage failures.
func GenericFailure() string {
	return "Произошла ошибка. Попробуйте ещё раз позже."
}

// Digest summarises ticket volume by category over a period. counts is
// rendered in fixed category order; categories without tickets are skipped.
func Digest(period time.Duration, total int, counts map[domain.Category]int, singular, few, many string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "За последние %s было получено %s:",
		FormatDuration(period), Declension(total, singular, few, many))
	for _, category := range domain.Categories() {
		if n := counts[category]; n > 0 {
			fmt.Fprintf(&b, "\n%s: %d", category, n)
		}
	}
	return b.String()
}

// ThresholdDigest is the immediate digest fired when the notification window
// crosses the volume threshold.
func ThresholdDigest(window time.Duration, total int, counts map[domain.Category]int) string {
	return Digest(window, total, counts, "новое обращение", "новых обращения", "новых обращений")
}

// PeriodicDigest is the fixed-interval digest of all active tickets.
func PeriodicDigest(interval time.Duration, total int, counts map[domain.Category]int) string {
	return Digest(interval, total, counts, "обращение", "обращения", "обращений")
}
