package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
	"github.com/avetra/support-bot-backend/internal/core/ports"
)

// BlacklistService is the deny-list gate consulted before ticket creation
// and before listing tickets for triage.
type BlacklistService struct {
	blacklist ports.BlacklistRepository
	tickets   ports.TicketRepository
	logger    *slog.Logger
}

var _ ports.BlacklistService = (*BlacklistService)(nil)

// NewBlacklistService creates a new blacklist gate. The ticket repository is
// used to source a display name for newly blocked users.
func NewBlacklistService(
	blacklist ports.BlacklistRepository,
	tickets ports.TicketRepository,
	logger *slog.Logger,
) *BlacklistService {
	return &BlacklistService{
		blacklist: blacklist,
		tickets:   tickets,
		logger:    logger.With("component", "blacklist"),
	}
}

// IsBlacklisted reports whether an active entry exists for the user.
func (s *BlacklistService) IsBlacklisted(ctx context.Context, userID string) (bool, error) {
	_, err := s.blacklist.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotBlocked) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Block adds the user to the deny-list. The display name is taken from the
// sender name on the user's most recent ticket's opening message, falling
// back to the "unknown" sentinel for users with no ticket history.
func (s *BlacklistService) Block(ctx context.Context, userID, reason, blockingAdmin string) (*domain.BlacklistEntry, error) {
	blocked, err := s.IsBlacklisted(ctx, userID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, apperrors.ErrAlreadyBlocked
	}

	publicName := domain.UnknownPublicName
	latest, err := s.tickets.LatestByOwner(ctx, userID)
	if err == nil {
		if msg := latest.OpeningMessage(); msg != nil && msg.SenderName != "" {
			publicName = msg.SenderName
		}
	} else if !errors.Is(err, apperrors.ErrTicketNotFound) {
		return nil, err
	}

	entry, err := domain.NewBlacklistEntry(userID, publicName, reason, blockingAdmin)
	if err != nil {
		return nil, err
	}

	created, err := s.blacklist.Add(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user blocked", "public_name", created.PublicName, "blocked_by", blockingAdmin)
	return created, nil
}

// Unblock removes the user from the deny-list.
func (s *BlacklistService) Unblock(ctx context.Context, userID string) error {
	blocked, err := s.IsBlacklisted(ctx, userID)
	if err != nil {
		return err
	}
	if !blocked {
		return apperrors.ErrNotBlocked
	}
	if err := s.blacklist.Remove(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user unblocked")
	return nil
}

// BlockedUserIDs returns all deny-listed user identities, used to exclude
// their tickets from triage queries.
func (s *BlacklistService) BlockedUserIDs(ctx context.Context) ([]string, error) {
	return s.blacklist.ListUserIDs(ctx)
}
