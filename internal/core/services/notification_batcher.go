package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	"github.com/avetra/support-bot-backend/internal/core/ports"
	"github.com/avetra/support-bot-backend/internal/core/text"
)

// BatcherConfig holds the notification batcher's timing knobs.
type BatcherConfig struct {
	// Window is the sliding duration over which creation events are counted.
	Window time.Duration
	// Threshold is the event count within Window that fires an immediate digest.
	Threshold int
	// Interval is the wall-clock period of the unconditional digest.
	Interval time.Duration
}

// BatcherOption customises a NotificationBatcher.
type BatcherOption func(*NotificationBatcher)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) BatcherOption {
	return func(b *NotificationBatcher) {
		b.now = now
	}
}

// NotificationBatcher aggregates ticket-creation events into digests so the
// admin pool is not pinged per ticket. Two independent triggers share the
// digest path: a volume threshold over a sliding window, and a fixed
// interval. The timestamp window is the batcher's only mutable state and is
// never held locked across store queries or sends.
type NotificationBatcher struct {
	tickets     ports.TicketRepository
	admins      ports.AdminService
	notifier    ports.Notifier
	broadcaster ports.EventBroadcaster
	cfg         BatcherConfig
	logger      *slog.Logger
	now         func() time.Time

	mu     sync.Mutex
	window []time.Time
}

var _ ports.CreationRecorder = (*NotificationBatcher)(nil)

// NewNotificationBatcher creates a new batcher.
func NewNotificationBatcher(
	tickets ports.TicketRepository,
	admins ports.AdminService,
	notifier ports.Notifier,
	broadcaster ports.EventBroadcaster,
	cfg BatcherConfig,
	logger *slog.Logger,
	opts ...BatcherOption,
) *NotificationBatcher {
	b := &NotificationBatcher{
		tickets:     tickets,
		admins:      admins,
		notifier:    notifier,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      logger.With("component", "notification_batcher"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RecordCreation appends the current time to the window, prunes entries
// older than the window duration and, once the threshold is reached, clears
// the window and fires an immediate digest. The trigger decision is made
// under the lock; the digest itself runs after release.
func (b *NotificationBatcher) RecordCreation() {
	now := b.now()

	b.mu.Lock()
	b.window = append(b.window, now)
	pruned := b.window[:0]
	for _, ts := range b.window {
		if now.Sub(ts) <= b.cfg.Window {
			pruned = append(pruned, ts)
		}
	}
	b.window = pruned

	fire := len(b.window) >= b.cfg.Threshold
	if fire {
		b.window = nil
	}
	b.mu.Unlock()

	if fire {
		go b.sendThresholdDigest(context.Background())
	}
}

// WindowSize returns the current number of tracked creation events.
func (b *NotificationBatcher) WindowSize() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.window)
}

// Run drives the periodic digest until ctx is cancelled. Individual tick
// failures are logged and never stop the ticker.
func (b *NotificationBatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	b.logger.Info("periodic notifier started", "interval", b.cfg.Interval.String())
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("periodic notifier stopped")
			return
		case <-ticker.C:
			b.sendPeriodicDigest(ctx)
		}
	}
}

func (b *NotificationBatcher) sendThresholdDigest(ctx context.Context) {
	since := b.now().Add(-b.cfg.Window)
	tickets, err := b.tickets.ListActiveCreatedSince(ctx, since)
	if err != nil {
		b.logger.Error("failed to query tickets for threshold digest", "error", err)
		return
	}
	if len(tickets) == 0 {
		return
	}

	message := text.ThresholdDigest(b.cfg.Window, len(tickets), countByCategory(tickets))
	b.deliver(ctx, message, true)
}

func (b *NotificationBatcher) sendPeriodicDigest(ctx context.Context) {
	status := domain.StatusActive
	tickets, err := b.tickets.List(ctx, ports.TicketFilter{Status: &status})
	if err != nil {
		b.logger.Error("failed to query tickets for periodic digest", "error", err)
		return
	}
	if len(tickets) == 0 {
		return
	}

	message := text.PeriodicDigest(b.cfg.Interval, len(tickets), countByCategory(tickets))
	b.deliver(ctx, message, false)
}

// deliver fans the digest out to every administrator. A failed send to one
// admin must not abort sends to the remaining admins.
func (b *NotificationBatcher) deliver(ctx context.Context, message string, withMenu bool) {
	admins, err := b.admins.List(ctx)
	if err != nil {
		b.logger.Error("failed to list admins for digest", "error", err)
		return
	}

	delivered := 0
	for _, admin := range admins {
		var sendErr error
		if withMenu {
			sendErr = b.notifier.SendMenu(ctx, admin.TelegramID, message)
		} else {
			sendErr = b.notifier.Send(ctx, admin.TelegramID, message)
		}
		if sendErr != nil {
			b.logger.Warn("failed to deliver digest",
				"telegram_id", admin.TelegramID,
				"error", sendErr,
			)
			continue
		}
		delivered++
	}

	_ = b.broadcaster.Broadcast(domain.Event{Type: domain.EventDigestSent, Payload: message})
	b.logger.Info("digest delivered", "admins", delivered, "of", len(admins))
}

func countByCategory(tickets []*domain.Ticket) map[domain.Category]int {
	counts := make(map[domain.Category]int)
	for _, t := range tickets {
		counts[t.Category]++
	}
	return counts
}
