package telegram

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v3"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
	"github.com/avetra/support-bot-backend/internal/core/ports"
	"github.com/avetra/support-bot-backend/internal/core/session"
	"github.com/avetra/support-bot-backend/internal/core/text"
	"github.com/avetra/support-bot-backend/internal/infrastructure/logging"
)

// Handler wires Telegram updates into the ticket router. It resolves the
// actor's role and conversational state, dispatches to a named router
// operation, and translates domain errors into user-visible replies.
type Handler struct {
	bot        *tele.Bot
	router     ports.RouterService
	blacklist  ports.BlacklistService
	admins     ports.AdminService
	sessions   *session.Tracker
	appName    string
	maxTickets int
	logger     *slog.Logger
}

// NewHandler creates the Telegram update handler.
func NewHandler(
	bot *tele.Bot,
	router ports.RouterService,
	blacklist ports.BlacklistService,
	admins ports.AdminService,
	sessions *session.Tracker,
	appName string,
	maxTickets int,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:        bot,
		router:     router,
		blacklist:  blacklist,
		admins:     admins,
		sessions:   sessions,
		appName:    appName,
		maxTickets: maxTickets,
		logger:     logger.With("component", "telegram_handler"),
	}
}

// Register attaches all routes to the bot.
func (h *Handler) Register() {
	h.bot.Handle("/start", h.onStart)
	h.bot.Handle("/block", h.onBlock)
	h.bot.Handle("/unblock", h.onUnblock)
	h.bot.Handle(tele.OnText, h.onText)

	h.bot.Handle(&tele.Btn{Unique: uniqueTicketReply}, h.onReplyButton)
	h.bot.Handle(&tele.Btn{Unique: uniqueTicketNext}, h.onNextButton)
	h.bot.Handle(&tele.Btn{Unique: uniqueTicketClose}, h.onCloseButton)
	h.bot.Handle(&tele.Btn{Unique: uniqueTicketLog}, h.onLogButton)
	h.bot.Handle(&tele.Btn{Unique: uniqueCancelView}, h.onCancelView)
	h.bot.Handle(&tele.Btn{Unique: uniqueCancelReply}, h.onCancelReply)
}

func (h *Handler) onStart(c tele.Context) error {
	ctx, actorID := h.eventContext(c)

	isAdmin, err := h.admins.IsAdmin(ctx, actorID)
	if err != nil {
		h.logger.Error("admin lookup failed", "error", err)
		return c.Send(text.GenericFailure())
	}

	if isAdmin {
		return c.Send(text.WelcomeAdmin(), CategoryMenu())
	}
	return c.Send(text.Welcome(h.appName, h.maxTickets), CategoryMenu())
}

// onText handles every plain-text message: a category menu press, ticket
// text from a composing user, an admin's reply, or a user's follow-up.
// Category presses win; otherwise the session state decides.
func (h *Handler) onText(c tele.Context) error {
	ctx, actorID := h.eventContext(c)

	if category := domain.Category(c.Text()); category.IsValid() {
		return h.onCategory(ctx, c, actorID, category)
	}

	switch h.sessions.Get(actorID).State {
	case session.StateCreatingTicket:
		return h.submitTicket(ctx, c, actorID)
	case session.StateReplyingTicket:
		return h.relayAdminReply(ctx, c, actorID)
	case session.StateReplyingToAdmin:
		return h.relayUserFollowUp(ctx, c, actorID)
	default:
		// Free text from an idle actor is not part of any flow.
		return nil
	}
}

// onCategory dispatches a category selection on the caller's role: triage
// for admins, ticket composition for everyone else.
func (h *Handler) onCategory(ctx context.Context, c tele.Context, actorID string, category domain.Category) error {
	isAdmin, err := h.admins.IsAdmin(ctx, actorID)
	if err != nil {
		h.logger.Error("admin lookup failed", "error", err)
		return c.Send(text.GenericFailure())
	}

	if isAdmin {
		return h.triage(ctx, c, actorID, category)
	}

	if err := h.router.BeginTicket(ctx, actorID, category); err != nil {
		return c.Send(text.GenericFailure())
	}
	return c.Send(text.DescribeRequest(category))
}

func (h *Handler) triage(ctx context.Context, c tele.Context, adminID string, category domain.Category) error {
	ticket, err := h.router.TriageOldest(ctx, adminID, category)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoTicketsFound) {
			return c.Send(text.NoTicketsInCategory(), CategoryMenu())
		}
		h.logger.Error("triage failed", "error", err)
		return c.Send(text.GenericFailure(), CategoryMenu())
	}
	return c.Send(text.TicketView(ticket), TicketSelector(ticket.ID, category))
}

func (h *Handler) submitTicket(ctx context.Context, c tele.Context, actorID string) error {
	ticket, err := h.router.SubmitTicket(ctx, ports.SubmitTicketParams{
		ActorID:     actorID,
		DisplayName: displayName(c.Sender()),
		Text:        c.Text(),
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrQuotaExceeded):
			return c.Send(text.QuotaExceeded(h.maxTickets))
		case errors.Is(err, apperrors.ErrBlacklisted):
			return c.Send(text.Blacklisted())
		case errors.Is(err, apperrors.ErrCategoryMissing):
			return c.Send(text.CategoryMissing())
		default:
			h.logger.Error("ticket submission failed", "error", err)
			return c.Send(text.GenericFailure())
		}
	}
	return c.Send(text.TicketCreated(ticket.ID), CloseTicketSelector(ticket.ID))
}

func (h *Handler) relayAdminReply(ctx context.Context, c tele.Context, adminID string) error {
	_, err := h.router.RelayAdminReply(ctx, ports.RelayParams{
		ActorID:     adminID,
		DisplayName: displayName(c.Sender()),
		Text:        c.Text(),
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoActiveTicket):
			// Stray text without a bound ticket; not an error the admin
			// needs to hear about.
			return nil
		case errors.Is(err, apperrors.ErrTicketNotFound):
			return c.Send(text.TicketNotFound())
		default:
			h.logger.Error("admin reply relay failed", "error", err)
			return c.Send(text.GenericFailure())
		}
	}
	return c.Send(text.ReplySent())
}

func (h *Handler) relayUserFollowUp(ctx context.Context, c tele.Context, userID string) error {
	_, err := h.router.RelayUserFollowUp(ctx, ports.RelayParams{
		ActorID:     userID,
		DisplayName: displayName(c.Sender()),
		Text:        c.Text(),
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoActiveTicket):
			return nil
		case errors.Is(err, apperrors.ErrTicketNotFound):
			return c.Send(text.TicketNotFound())
		default:
			h.logger.Error("user follow-up relay failed", "error", err)
			return c.Send(text.GenericFailure())
		}
	}
	return c.Send(text.ReplySent())
}

func (h *Handler) onReplyButton(c tele.Context) error {
	_, actorID := h.eventContext(c)

	ticketID, err := callbackTicketID(c)
	if err != nil {
		return c.Respond()
	}

	h.router.BeginReply(actorID, ticketID)
	if err := c.Send(text.WriteYourReply(), CancelReplySelector()); err != nil {
		return err
	}
	return c.Respond()
}

func (h *Handler) onNextButton(c tele.Context) error {
	ctx, actorID := h.eventContext(c)

	args := c.Args()
	if len(args) < 2 {
		return c.Respond()
	}
	currentID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Respond()
	}
	category := domain.Category(args[1])

	ticket, err := h.router.NextTicket(ctx, actorID, currentID, category)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoMoreTickets) {
			if err := c.Send(text.NoMoreTickets(), CategoryMenu()); err != nil {
				return err
			}
			return c.Respond()
		}
		h.logger.Error("next ticket failed", "error", err)
		if err := c.Send(text.GenericFailure()); err != nil {
			return err
		}
		return c.Respond()
	}

	if err := c.Edit(text.TicketView(ticket), TicketSelector(ticket.ID, category)); err != nil {
		return err
	}
	return c.Respond()
}

func (h *Handler) onCloseButton(c tele.Context) error {
	ctx, actorID := h.eventContext(c)

	ticketID, err := callbackTicketID(c)
	if err != nil {
		return c.Respond()
	}

	isAdmin, err := h.admins.IsAdmin(ctx, actorID)
	if err != nil {
		h.logger.Error("admin lookup failed", "error", err)
		if err := c.Send(text.GenericFailure(), CategoryMenu()); err != nil {
			return err
		}
		return c.Respond()
	}

	ticket, err := h.router.CloseTicket(ctx, ports.CloseTicketParams{
		ActorID:  actorID,
		IsAdmin:  isAdmin,
		TicketID: ticketID,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrTicketNotFound) || errors.Is(err, apperrors.ErrTicketClosed) {
			if err := c.Edit(text.TicketClosedOrMissing()); err != nil {
				return err
			}
			return c.Respond()
		}
		h.logger.Error("close ticket failed", "error", err)
		if err := c.Send(text.GenericFailure(), CategoryMenu()); err != nil {
			return err
		}
		return c.Respond()
	}

	if err := c.Edit(text.TicketClosed(ticket.ID)); err != nil {
		return err
	}
	return c.Respond()
}

func (h *Handler) onLogButton(c tele.Context) error {
	ctx, _ := h.eventContext(c)

	ticketID, err := callbackTicketID(c)
	if err != nil {
		return c.Respond()
	}

	filename, content, err := h.router.ExportLog(ctx, ticketID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTicketNotFound) {
			if err := c.Send(text.TicketNotFound()); err != nil {
				return err
			}
			return c.Respond()
		}
		h.logger.Error("log export failed", "error", err)
		if err := c.Send(text.GenericFailure()); err != nil {
			return err
		}
		return c.Respond()
	}

	document := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(content)),
		FileName: filename,
	}
	if err := c.Send(document); err != nil {
		return err
	}
	return c.Respond()
}

func (h *Handler) onCancelView(c tele.Context) error {
	_ = c.Delete()
	if err := c.Send(text.ViewCanceled(), CategoryMenu()); err != nil {
		return err
	}
	return c.Respond()
}

func (h *Handler) onCancelReply(c tele.Context) error {
	_, actorID := h.eventContext(c)

	h.router.CancelReply(actorID)
	if err := c.Send(text.ReplyCanceled()); err != nil {
		return err
	}
	return c.Respond()
}

// onBlock handles "/block <userID> <reason...>" from an administrator.
func (h *Handler) onBlock(c tele.Context) error {
	ctx, actorID := h.eventContext(c)

	isAdmin, err := h.admins.IsAdmin(ctx, actorID)
	if err != nil || !isAdmin {
		return nil
	}

	args := strings.SplitN(strings.TrimSpace(c.Message().Payload), " ", 2)
	if args[0] == "" {
		return c.Send("Использование: /block <ID пользователя> <причина>")
	}
	userID := args[0]
	reason := ""
	if len(args) > 1 {
		reason = args[1]
	}

	entry, err := h.blacklist.Block(ctx, userID, reason, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyBlocked) {
			return c.Send(text.AlreadyBlocked())
		}
		h.logger.Error("block failed", "error", err)
		return c.Send(text.GenericFailure())
	}
	return c.Send(text.Blocked(entry.PublicName))
}

// onUnblock handles "/unblock <userID>" from an administrator.
func (h *Handler) onUnblock(c tele.Context) error {
	ctx, actorID := h.eventContext(c)

	isAdmin, err := h.admins.IsAdmin(ctx, actorID)
	if err != nil || !isAdmin {
		return nil
	}

	userID := strings.TrimSpace(c.Message().Payload)
	if userID == "" {
		return c.Send("Использование: /unblock <ID пользователя>")
	}

	if err := h.blacklist.Unblock(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotBlocked) {
			return c.Send(text.NotBlocked())
		}
		h.logger.Error("unblock failed", "error", err)
		return c.Send(text.GenericFailure())
	}
	return c.Send(text.Unblocked())
}

// eventContext builds the per-update context carrying a correlation id and
// the acting actor's identity for log enrichment.
func (h *Handler) eventContext(c tele.Context) (context.Context, string) {
	actorID := ""
	if sender := c.Sender(); sender != nil {
		actorID = strconv.FormatInt(sender.ID, 10)
	}
	ctx := logging.WithUpdateID(context.Background(), uuid.NewString())
	ctx = logging.WithActorID(ctx, actorID)
	return ctx, actorID
}

func callbackTicketID(c tele.Context) (int64, error) {
	args := c.Args()
	if len(args) == 0 {
		return 0, apperrors.ErrTicketNotFound
	}
	return strconv.ParseInt(args[0], 10, 64)
}

// displayName derives a human-readable name for the ticket log from the
// Telegram profile, preferring the real name over the @username.
func displayName(sender *tele.User) string {
	if sender == nil {
		return domain.UnknownPublicName
	}
	name := strings.TrimSpace(strings.TrimSpace(sender.FirstName) + " " + strings.TrimSpace(sender.LastName))
	if name != "" {
		return name
	}
	if sender.Username != "" {
		return sender.Username
	}
	return strconv.FormatInt(sender.ID, 10)
}
