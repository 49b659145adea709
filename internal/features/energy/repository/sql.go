package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"carbon-forest-backend/internal/features/energy/models"
	"carbon-forest-backend/internal/platform/db"
)

type sqlRepository struct {
	db *db.DB
}

func New(d *db.DB) Repository { return &sqlRepository{db: d} }

func (r *sqlRepository) CreateAccount(ctx context.Context, userID string, now time.Time) error {
	const q = `INSERT INTO carbon_accounts (user_id, total_energy, current_energy, total_energy_used,
	           carbon_footprint, carbon_reduction, level, updated_at)
	           VALUES (?, 0, 0, 0, 0, 0, 1, ?)`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), userID, now.Unix())
	return err
}

func (r *sqlRepository) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	const q = `SELECT user_id, total_energy, current_energy, total_energy_used,
	           carbon_footprint, carbon_reduction, level, updated_at
	           FROM carbon_accounts WHERE user_id = ?`
	var (
		a       models.Account
		updated int64
	)
	row := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), userID)
	err := row.Scan(&a.UserID, &a.TotalEnergy, &a.CurrentEnergy, &a.TotalEnergyUsed,
		&a.CarbonFootprint, &a.CarbonReduction, &a.Level, &updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.UpdatedAt = time.Unix(updated, 0)
	return &a, nil
}

func (r *sqlRepository) ApplyAccrual(ctx context.Context, userID string, delta float64, now time.Time) error {
	const q = `UPDATE carbon_accounts
	           SET total_energy = total_energy + ?, current_energy = current_energy + ?, updated_at = ?
	           WHERE user_id = ?`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), delta, delta, now.Unix(), userID)
	return err
}

func (r *sqlRepository) SpendEnergy(ctx context.Context, userID string, amount float64, now time.Time) error {
	const q = `UPDATE carbon_accounts
	           SET current_energy = current_energy - ?, total_energy_used = total_energy_used + ?, updated_at = ?
	           WHERE user_id = ?`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), amount, amount, now.Unix(), userID)
	return err
}

func (r *sqlRepository) SetLevel(ctx context.Context, userID string, level int, now time.Time) error {
	const q = `UPDATE carbon_accounts SET level = ?, updated_at = ? WHERE user_id = ?`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), level, now.Unix(), userID)
	return err
}

func (r *sqlRepository) GetCarrierStage(ctx context.Context, userID string) (int, bool, error) {
	const q = `SELECT stage FROM carriers WHERE user_id = ?`
	var stage int
	err := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), userID).Scan(&stage)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return stage, true, nil
}

func (r *sqlRepository) CountAvailableBalls(ctx context.Context, userID string, now time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM energy_balls
	           WHERE user_id = ? AND status = 'available' AND expires_at > ?`
	var n int
	err := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), userID, now.Unix()).Scan(&n)
	return n, err
}

func (r *sqlRepository) InsertBall(ctx context.Context, ball *models.EnergyBall) error {
	const q = `INSERT INTO energy_balls (id, user_id, amount, lat, lng, status, created_at, expires_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q),
		ball.ID, ball.UserID, ball.Amount, ball.Lat, ball.Lng, string(ball.Status),
		ball.CreatedAt.Unix(), ball.ExpiresAt.Unix())
	return err
}

func (r *sqlRepository) GetAvailableBall(ctx context.Context, ballID, userID string, now time.Time) (*models.EnergyBall, error) {
	const q = `SELECT id, user_id, amount, lat, lng, status, created_at, expires_at, collected_at
	           FROM energy_balls
	           WHERE id = ? AND user_id = ? AND status = 'available' AND expires_at > ?`
	ball, err := scanBall(r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), ballID, userID, now.Unix()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ball, err
}

// MarkBallCollected flips an available ball to collected. The status guard
// makes a replayed collect a no-op reported as false.
func (r *sqlRepository) MarkBallCollected(ctx context.Context, ballID string, now time.Time) (bool, error) {
	const q = `UPDATE energy_balls SET status = 'collected', collected_at = ?
	           WHERE id = ? AND status = 'available' AND expires_at > ?`
	res, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), now.Unix(), ballID, now.Unix())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *sqlRepository) ListAvailableBalls(ctx context.Context, userID string, now time.Time, limit int) ([]models.EnergyBall, error) {
	const q = `SELECT id, user_id, amount, lat, lng, status, created_at, expires_at, collected_at
	           FROM energy_balls
	           WHERE user_id = ? AND status = 'available' AND expires_at > ?
	           ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.Q(ctx).QueryContext(ctx, r.db.Bind(q), userID, now.Unix(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBalls(rows)
}

func (r *sqlRepository) ListExpiredBalls(ctx context.Context, now time.Time) ([]models.EnergyBall, error) {
	const q = `SELECT id, user_id, amount, lat, lng, status, created_at, expires_at, collected_at
	           FROM energy_balls
	           WHERE status = 'available' AND expires_at <= ?`
	rows, err := r.db.Q(ctx).QueryContext(ctx, r.db.Bind(q), now.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBalls(rows)
}

func (r *sqlRepository) MarkBallExpired(ctx context.Context, ballID string) (bool, error) {
	const q = `UPDATE energy_balls SET status = 'expired' WHERE id = ? AND status = 'available'`
	res, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), ballID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *sqlRepository) InsertOverflow(ctx context.Context, o *models.Overflow) error {
	const q = `INSERT INTO overflow_energy (id, user_id, ball_id, amount, claimed, created_at)
	           VALUES (?, ?, ?, ?, 0, ?)`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q),
		o.ID, o.UserID, o.BallID, o.Amount, o.CreatedAt.Unix())
	return err
}

func (r *sqlRepository) SumUnclaimedOverflow(ctx context.Context, ownerID string) (float64, error) {
	const q = `SELECT COALESCE(SUM(amount), 0) FROM overflow_energy
	           WHERE user_id = ? AND claimed = 0`
	var total float64
	err := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), ownerID).Scan(&total)
	return total, err
}

// ClaimOverflow consumes every unclaimed record of the owner in one guarded
// update; the returned row count is zero when a concurrent claim won.
func (r *sqlRepository) ClaimOverflow(ctx context.Context, ownerID, helperID string, now time.Time) (int64, error) {
	const q = `UPDATE overflow_energy SET claimed = 1, claimed_by = ?, claimed_at = ?
	           WHERE user_id = ? AND claimed = 0`
	res, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), helperID, now.Unix(), ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sqlRepository) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	const q = `INSERT INTO energy_transactions (id, user_id, tx_type, amount, source, description, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q),
		t.ID, t.UserID, string(t.Type), t.Amount, t.Source, t.Description, t.CreatedAt.Unix())
	return err
}

func (r *sqlRepository) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	const q = `SELECT id, user_id, tx_type, amount, source, description, created_at
	           FROM energy_transactions WHERE user_id = ?
	           ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.Q(ctx).QueryContext(ctx, r.db.Bind(q), userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var (
			t       models.Transaction
			txType  string
			created int64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &txType, &t.Amount, &t.Source, &t.Description, &created); err != nil {
			return nil, err
		}
		t.Type = models.TxType(txType)
		t.CreatedAt = time.Unix(created, 0)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *sqlRepository) InsertWateringRecord(ctx context.Context, userID string, ballsGenerated int, now time.Time) error {
	const q = `INSERT INTO watering_records (id, user_id, balls_generated, created_at)
	           VALUES (?, ?, ?, ?)`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q),
		uuid.New().String(), userID, ballsGenerated, now.Unix())
	return err
}

func (r *sqlRepository) TodayCollectedEnergy(ctx context.Context, userID string, dayStart time.Time) (float64, error) {
	const q = `SELECT COALESCE(SUM(amount), 0) FROM energy_transactions
	           WHERE user_id = ? AND tx_type = 'gain' AND source = 'ball_collect' AND created_at >= ?`
	var total float64
	err := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), userID, dayStart.Unix()).Scan(&total)
	return total, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBall(row rowScanner) (*models.EnergyBall, error) {
	var (
		b         models.EnergyBall
		status    string
		created   int64
		expires   int64
		collected sql.NullInt64
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Amount, &b.Lat, &b.Lng, &status,
		&created, &expires, &collected); err != nil {
		return nil, err
	}
	b.Status = models.BallStatus(status)
	b.CreatedAt = time.Unix(created, 0)
	b.ExpiresAt = time.Unix(expires, 0)
	if collected.Valid {
		t := time.Unix(collected.Int64, 0)
		b.CollectedAt = &t
	}
	return &b, nil
}

func collectBalls(rows *sql.Rows) ([]models.EnergyBall, error) {
	var balls []models.EnergyBall
	for rows.Next() {
		b, err := scanBall(rows)
		if err != nil {
			return nil, err
		}
		balls = append(balls, *b)
	}
	return balls, rows.Err()
}
