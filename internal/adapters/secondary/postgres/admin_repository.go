package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	apperrors "github.com/avetra/support-bot-backend/internal/core/errors"
	"github.com/avetra/support-bot-backend/internal/core/ports"
)

// AdminRepository is the secondary adapter for the administrator set.
type AdminRepository struct {
	pool *pgxpool.Pool
}

var _ ports.AdminRepository = (*AdminRepository)(nil)

// NewAdminRepository creates a new admin repository.
func NewAdminRepository(pool *pgxpool.Pool) ports.AdminRepository {
	return &AdminRepository{pool: pool}
}

// List returns every administrator.
func (r *AdminRepository) List(ctx context.Context) ([]*domain.Admin, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, telegram_id, created_at FROM admins ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var admins []*domain.Admin
	for rows.Next() {
		admin := &domain.Admin{}
		if err := rows.Scan(&admin.ID, &admin.TelegramID, &admin.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, admin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admins: %w", err)
	}
	return admins, nil
}

// GetByTelegramID returns the admin, or ErrAdminNotFound.
func (r *AdminRepository) GetByTelegramID(ctx context.Context, telegramID string) (*domain.Admin, error) {
	admin := &domain.Admin{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, telegram_id, created_at FROM admins WHERE telegram_id = $1`,
		telegramID,
	).Scan(&admin.ID, &admin.TelegramID, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAdminNotFound
		}
		return nil, fmt.Errorf("select admin: %w", err)
	}
	return admin, nil
}

// Add inserts the admin. Inserting an existing telegram id returns the stored
// row unchanged, reconciliation relies on this being idempotent.
func (r *AdminRepository) Add(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
	created := *admin
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO admins (telegram_id, created_at)
		 VALUES ($1, $2)
		 RETURNING id`,
		created.TelegramID, created.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return r.GetByTelegramID(ctx, admin.TelegramID)
		}
		return nil, fmt.Errorf("insert admin: %w", err)
	}
	return &created, nil
}

// Remove deletes the admin, returning ErrAdminNotFound when absent.
func (r *AdminRepository) Remove(ctx context.Context, telegramID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAdminNotFound
	}
	return nil
}
