package domain

import (
	"time"

	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
)

// UnknownPublicName is recorded when a blocked user has no ticket history to
// source a display name from.
const UnknownPublicName = "unknown"

// BlacklistEntry is a persistent deny-list record. At most one active entry
// exists per user identity; its presence gates ticket creation and hides the
// user's tickets from admin triage.
type BlacklistEntry struct {
	ID         int64
	UserID     string
	PublicName string
	Reason     string
	BlockedBy  string
	BlockedAt  time.Time
}

// NewBlacklistEntry creates a valid new blacklist entry.
func NewBlacklistEntry(userID, publicName, reason, blockedBy string) (*BlacklistEntry, error) {
	if userID == "" {
		return nil, apperrors.ErrOwnerRequired
	}
	if publicName == "" {
		publicName = UnknownPublicName
	}
	return &BlacklistEntry{
		UserID:     userID,
		PublicName: publicName,
		Reason:     reason,
		BlockedBy:  blockedBy,
		BlockedAt:  time.Now().UTC(),
	}, nil
}
