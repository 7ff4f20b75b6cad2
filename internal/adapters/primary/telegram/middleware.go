package telegram

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"

	"github.com/avetra/support-bot-backend/internal/infrastructure/logging"
)

// RateLimiter provides per-actor rate limiting of inbound updates.
type RateLimiter struct {
	visitors map[int64]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig holds rate limiter configuration
type RateLimiterConfig struct {
	RequestsPerSecond float64       // Updates allowed per second per actor
	BurstSize         int           // Maximum burst size
	CleanupInterval   time.Duration // How often to clean up old visitors
	TTL               time.Duration // How long to keep inactive visitors
}

// DefaultRateLimiterConfig returns a sensible default configuration
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstSize:         5,
		CleanupInterval:   time.Minute,
		TTL:               5 * time.Minute,
	}
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[int64]*visitor),
		rate:     rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.BurstSize,
	}

	// Start background cleanup goroutine
	go rl.cleanupVisitors(cfg.CleanupInterval, cfg.TTL)

	return rl
}

// getVisitor returns the limiter for the given actor, creating one if necessary
func (rl *RateLimiter) getVisitor(actorID int64) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[actorID]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[actorID] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors removes actors that haven't been seen recently
func (rl *RateLimiter) cleanupVisitors(interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for actorID, v := range rl.visitors {
			if time.Since(v.lastSeen) > ttl {
				delete(rl.visitors, actorID)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware drops updates from actors exceeding their rate. Dropped updates
// are swallowed silently; spamming the bot earns no reply at all.
func (rl *RateLimiter) Middleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return next(c)
		}
		if !rl.getVisitor(sender.ID).Allow() {
			return nil
		}
		return next(c)
	}
}

// Recover returns a middleware that keeps a panicking handler from taking
// the poller down.
func Recover(logger *slog.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					logging.LogPanic(logger, r)
				}
			}()
			return next(c)
		}
	}
}

// UpdateLogger returns a middleware that logs every inbound update with its
// duration and outcome.
func UpdateLogger(logger *slog.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			attrs := []any{
				"update_id", c.Update().ID,
				"duration_ms", duration.Milliseconds(),
			}
			if sender := c.Sender(); sender != nil {
				attrs = append(attrs, "actor_id", sender.ID)
			}
			if c.Callback() != nil {
				attrs = append(attrs, "kind", "callback")
			} else {
				attrs = append(attrs, "kind", "message")
			}

			if err != nil {
				attrs = append(attrs, "error", err)
				logger.Error("update handled", attrs...)
			} else {
				logger.Info("update handled", attrs...)
			}
			return err
		}
	}
}
