package domain

import "time"

// Admin is a member of the administrator pool, identified by their Telegram
// account id. The set is reconciled against the configured allow-list at
// startup; membership is the only form of admin authentication.
type Admin struct {
	ID         int64
	TelegramID string
	CreatedAt  time.Time
}
