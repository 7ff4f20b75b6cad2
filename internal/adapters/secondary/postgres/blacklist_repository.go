package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
	"github.com/avetra/support-bot-backend/internal/core/ports"
)

// uniqueViolation is the postgres error code for duplicate keys.
const uniqueViolation = "23505"

// BlacklistRepository is the secondary adapter for the persistent deny-list.
type BlacklistRepository struct {
	pool *pgxpool.Pool
}

var _ ports.BlacklistRepository = (*BlacklistRepository)(nil)

// NewBlacklistRepository creates a new blacklist repository.
func NewBlacklistRepository(pool *pgxpool.Pool) ports.BlacklistRepository {
	return &BlacklistRepository{pool: pool}
}

// GetByUserID returns the entry for the user, or ErrNotBlocked.
func (r *BlacklistRepository) GetByUserID(ctx context.Context, userID string) (*domain.BlacklistEntry, error) {
	entry := &domain.BlacklistEntry{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, public_name, reason, blocked_by, blocked_at
		 FROM blacklist WHERE user_id = $1`,
		userID,
	).Scan(&entry.ID, &entry.UserID, &entry.PublicName, &entry.Reason, &entry.BlockedBy, &entry.BlockedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotBlocked
		}
		return nil, fmt.Errorf("select blacklist entry: %w", err)
	}
	return entry, nil
}

// ListUserIDs returns every blocked user id.
func (r *BlacklistRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM blacklist ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blacklist: %w", err)
	}
	return ids, nil
}

// Add inserts the entry, returning ErrAlreadyBlocked on a duplicate user.
func (r *BlacklistRepository) Add(ctx context.Context, entry *domain.BlacklistEntry) (*domain.BlacklistEntry, error) {
	created := *entry
	err := r.pool.QueryRow(ctx,
		`INSERT INTO blacklist (user_id, public_name, reason, blocked_by, blocked_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		entry.UserID, entry.PublicName, entry.Reason, entry.BlockedBy, entry.BlockedAt,
	).Scan(&created.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperrors.ErrAlreadyBlocked
		}
		return nil, fmt.Errorf("insert blacklist entry: %w", err)
	}
	return &created, nil
}

// Remove deletes the entry, returning ErrNotBlocked when absent.
func (r *BlacklistRepository) Remove(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blacklist WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotBlocked
	}
	return nil
}
