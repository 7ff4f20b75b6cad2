package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
	"github.com/avetra/support-bot-backend/internal/core/ports"
)

// AdminService maintains the administrator set and answers the membership
// predicate used for role dispatch.
type AdminService struct {
	admins ports.AdminRepository
	logger *slog.Logger
}

var _ ports.AdminService = (*AdminService)(nil)

// NewAdminService creates a new admin service.
func NewAdminService(admins ports.AdminRepository, logger *slog.Logger) *AdminService {
	return &AdminService{
		admins: admins,
		logger: logger.With("component", "admins"),
	}
}

// Reconcile brings the stored administrator set in line with the configured
// allow-list: missing identities are added, stale ones removed. Idempotent.
func (s *AdminService) Reconcile(ctx context.Context, configuredIDs []string) error {
	configured := make(map[string]bool, len(configuredIDs))
	for _, id := range configuredIDs {
		configured[id] = true

		_, err := s.admins.GetByTelegramID(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrAdminNotFound) {
			return err
		}
		if _, err := s.admins.Add(ctx, &domain.Admin{TelegramID: id}); err != nil {
			return err
		}
		s.logger.Info("admin added", "telegram_id", id)
	}

	stored, err := s.admins.List(ctx)
	if err != nil {
		return err
	}
	for _, admin := range stored {
		if configured[admin.TelegramID] {
			continue
		}
		if err := s.admins.Remove(ctx, admin.TelegramID); err != nil {
			return err
		}
		s.logger.Info("admin removed", "telegram_id", admin.TelegramID)
	}
	return nil
}

// IsAdmin reports whether the actor belongs to the administrator set.
func (s *AdminService) IsAdmin(ctx context.Context, actorID string) (bool, error) {
	_, err := s.admins.GetByTelegramID(ctx, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAdminNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns the current administrator set.
func (s *AdminService) List(ctx context.Context) ([]*domain.Admin, error) {
	return s.admins.List(ctx)
}
