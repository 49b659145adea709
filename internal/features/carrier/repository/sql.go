package repository

import (
	"context"
	"database/sql"
	"time"

	"carbon-forest-backend/internal/features/carrier/models"
	"carbon-forest-backend/internal/platform/db"
)

type sqlRepository struct {
	db *db.DB
}

func New(d *db.DB) Repository { return &sqlRepository{db: d} }

func (r *sqlRepository) CreateCarrier(ctx context.Context, userID string, kind models.Kind, now time.Time) error {
	const q = `INSERT INTO carriers (user_id, kind, stage, growth_progress, created_at, updated_at)
	           VALUES (?, ?, 1, 0, ?, ?)`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), userID, string(kind), now.Unix(), now.Unix())
	return err
}

func (r *sqlRepository) GetCarrier(ctx context.Context, userID string) (*models.Carrier, error) {
	const q = `SELECT user_id, kind, stage, growth_progress, created_at, updated_at
	           FROM carriers WHERE user_id = ?`
	var (
		c                models.Carrier
		kind             string
		created, updated int64
	)
	row := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), userID)
	err := row.Scan(&c.UserID, &kind, &c.Stage, &c.GrowthProgress, &created, &updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	c.Kind = models.Kind(kind)
	c.CreatedAt = time.Unix(created, 0)
	c.UpdatedAt = time.Unix(updated, 0)
	return &c, nil
}

func (r *sqlRepository) GetAvailableEnergy(ctx context.Context, userID string) (float64, bool, error) {
	const q = `SELECT current_energy FROM carbon_accounts WHERE user_id = ?`
	var energy float64
	err := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), userID).Scan(&energy)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return energy, true, nil
}

func (r *sqlRepository) AdvanceStage(ctx context.Context, userID string, from, to int, now time.Time) (bool, error) {
	const q = `UPDATE carriers SET stage = ?, growth_progress = 0, updated_at = ?
	           WHERE user_id = ? AND stage = ?`
	res, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), to, now.Unix(), userID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sqlRepository) AddGrowth(ctx context.Context, userID string, points int, now time.Time) error {
	const q = `UPDATE carriers SET growth_progress = growth_progress + ?, updated_at = ?
	           WHERE user_id = ?`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), points, now.Unix(), userID)
	return err
}
