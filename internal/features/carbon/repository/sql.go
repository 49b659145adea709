package repository

import (
	"context"
	"database/sql"
	"time"

	"carbon-forest-backend/internal/features/carbon/models"
	"carbon-forest-backend/internal/platform/db"
)

type sqlRepository struct {
	db *db.DB
}

func New(d *db.DB) Repository { return &sqlRepository{db: d} }

func (r *sqlRepository) InsertEmission(ctx context.Context, e *models.Emission) error {
	const q = `INSERT INTO carbon_emissions (id, user_id, category, amount, note, emission_date, verified, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	verified := 0
	if e.Verified {
		verified = 1
	}
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q),
		e.ID, e.UserID, string(e.Category), e.Amount, e.Note, e.Date, verified, e.CreatedAt.Unix())
	return err
}

func (r *sqlRepository) GetEmission(ctx context.Context, id, userID string) (*models.Emission, error) {
	const q = `SELECT id, user_id, category, amount, note, emission_date, verified, created_at
	           FROM carbon_emissions WHERE id = ? AND user_id = ?`
	return scanEmission(r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), id, userID))
}

func (r *sqlRepository) ListEmissions(ctx context.Context, userID string, f models.ListFilter) ([]models.Emission, error) {
	q := `SELECT id, user_id, category, amount, note, emission_date, verified, created_at
	      FROM carbon_emissions WHERE user_id = ?`
	args := []any{userID}
	if f.Category != "" {
		q += ` AND category = ?`
		args = append(args, string(f.Category))
	}
	if f.From != "" {
		q += ` AND emission_date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		q += ` AND emission_date <= ?`
		args = append(args, f.To)
	}
	q += ` ORDER BY emission_date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Q(ctx).QueryContext(ctx, r.db.Bind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Emission
	for rows.Next() {
		e, err := scanEmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *sqlRepository) UpdateEmission(ctx context.Context, e *models.Emission) (bool, error) {
	const q = `UPDATE carbon_emissions
	           SET category = ?, amount = ?, note = ?, emission_date = ?
	           WHERE id = ? AND user_id = ?`
	res, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q),
		string(e.Category), e.Amount, e.Note, e.Date, e.ID, e.UserID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sqlRepository) DeleteEmission(ctx context.Context, id, userID string) (bool, error) {
	const q = `DELETE FROM carbon_emissions WHERE id = ? AND user_id = ?`
	res, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sqlRepository) AdjustFootprint(ctx context.Context, userID string, footprintDelta, reductionDelta float64, now time.Time) error {
	const q = `UPDATE carbon_accounts
	           SET carbon_footprint = carbon_footprint + ?, carbon_reduction = carbon_reduction + ?, updated_at = ?
	           WHERE user_id = ?`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), footprintDelta, reductionDelta, now.Unix(), userID)
	return err
}

func (r *sqlRepository) StatsTotals(ctx context.Context, userID, from, to string) (float64, int, error) {
	const q = `SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM carbon_emissions
	           WHERE user_id = ? AND emission_date >= ? AND emission_date <= ?`
	var (
		total float64
		count int
	)
	err := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), userID, from, to).Scan(&total, &count)
	return total, count, err
}

func (r *sqlRepository) StatsByCategory(ctx context.Context, userID, from, to string) ([]models.CategoryStat, error) {
	const q = `SELECT category, COALESCE(SUM(amount), 0), COUNT(*) FROM carbon_emissions
	           WHERE user_id = ? AND emission_date >= ? AND emission_date <= ?
	           GROUP BY category ORDER BY category`
	rows, err := r.db.Q(ctx).QueryContext(ctx, r.db.Bind(q), userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CategoryStat
	for rows.Next() {
		var (
			s   models.CategoryStat
			cat string
		)
		if err := rows.Scan(&cat, &s.Amount, &s.Count); err != nil {
			return nil, err
		}
		s.Category = models.Category(cat)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sqlRepository) StatsDaily(ctx context.Context, userID, from, to string) ([]models.DailyStat, error) {
	const q = `SELECT emission_date, COALESCE(SUM(amount), 0) FROM carbon_emissions
	           WHERE user_id = ? AND emission_date >= ? AND emission_date <= ?
	           GROUP BY emission_date ORDER BY emission_date`
	rows, err := r.db.Q(ctx).QueryContext(ctx, r.db.Bind(q), userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DailyStat
	for rows.Next() {
		var s models.DailyStat
		if err := rows.Scan(&s.Date, &s.Amount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmission(row rowScanner) (*models.Emission, error) {
	var (
		e        models.Emission
		cat      string
		verified int
		created  int64
	)
	err := row.Scan(&e.ID, &e.UserID, &cat, &e.Amount, &e.Note, &e.Date, &verified, &created)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	e.Category = models.Category(cat)
	e.Verified = verified != 0
	e.CreatedAt = time.Unix(created, 0)
	return &e, nil
}
