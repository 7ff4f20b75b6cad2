package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"github.com/avetra/support-bot-backend/internal/core/ports"
)

// Notifier is the outbound half of the Telegram transport. It is the only
// path the core uses to reach an actor who did not initiate the current
// update (digest fan-out, cross-party relays, close notices).
type Notifier struct {
	bot    *tele.Bot
	logger *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier backed by the running bot.
func NewNotifier(bot *tele.Bot, logger *slog.Logger) *Notifier {
	return &Notifier{
		bot:    bot,
		logger: logger.With("component", "telegram_notifier"),
	}
}

// Send delivers a plain text message to the actor.
func (n *Notifier) Send(ctx context.Context, actorID, text string) error {
	recipient, err := recipientFor(actorID)
	if err != nil {
		return err
	}
	_, err = n.bot.Send(recipient, text)
	return err
}

// SendMenu delivers a text message with the category menu attached, putting
// the recipient back at the start of the flow.
func (n *Notifier) SendMenu(ctx context.Context, actorID, text string) error {
	recipient, err := recipientFor(actorID)
	if err != nil {
		return err
	}
	_, err = n.bot.Send(recipient, text, CategoryMenu())
	return err
}

func recipientFor(actorID string) (tele.Recipient, error) {
	id, err := strconv.ParseInt(actorID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid actor id %q: %w", actorID, err)
	}
	return tele.ChatID(id), nil
}
