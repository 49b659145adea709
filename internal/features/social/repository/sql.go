package repository

import (
	"context"
	"database/sql"
	"time"

	carriermodels "carbon-forest-backend/internal/features/carrier/models"
	"carbon-forest-backend/internal/features/social/models"
	"carbon-forest-backend/internal/platform/db"
)

type sqlRepository struct {
	db *db.DB
}

func New(d *db.DB) Repository { return &sqlRepository{db: d} }

func (r *sqlRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM users WHERE id = ?`
	var n int
	err := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), userID).Scan(&n)
	return n > 0, err
}

func (r *sqlRepository) InsertFriendship(ctx context.Context, f *models.Friendship) error {
	const q = `INSERT INTO friendships (id, user_id, friend_id, status, created_at)
	           VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q),
		f.ID, f.UserID, f.FriendID, string(f.Status), f.CreatedAt.Unix())
	return err
}

func (r *sqlRepository) GetFriendship(ctx context.Context, id string) (*models.Friendship, error) {
	const q = `SELECT id, user_id, friend_id, status, created_at FROM friendships WHERE id = ?`
	return scanFriendship(r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), id))
}

func (r *sqlRepository) FindBetween(ctx context.Context, userID, otherID string) (*models.Friendship, error) {
	const q = `SELECT id, user_id, friend_id, status, created_at FROM friendships
	           WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)`
	return scanFriendship(r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), userID, otherID, otherID, userID))
}

func (r *sqlRepository) SetStatus(ctx context.Context, id string, from, to models.FriendshipStatus) (bool, error) {
	const q = `UPDATE friendships SET status = ? WHERE id = ? AND status = ?`
	res, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sqlRepository) DeleteFriendship(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM friendships WHERE id = ?`
	res, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sqlRepository) ListFriends(ctx context.Context, userID string) ([]models.Friend, error) {
	const q = `SELECT f.id, u.id, u.username, u.nickname, f.created_at
	           FROM friendships f
	           JOIN users u ON u.id = CASE WHEN f.user_id = ? THEN f.friend_id ELSE f.user_id END
	           WHERE (f.user_id = ? OR f.friend_id = ?) AND f.status = 'accepted'
	           ORDER BY f.created_at DESC`
	rows, err := r.db.Q(ctx).QueryContext(ctx, r.db.Bind(q), userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Friend
	for rows.Next() {
		var (
			f     models.Friend
			since int64
		)
		if err := rows.Scan(&f.FriendshipID, &f.UserID, &f.Username, &f.Nickname, &since); err != nil {
			return nil, err
		}
		f.Since = time.Unix(since, 0)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *sqlRepository) ListIncomingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	const q = `SELECT f.id, f.user_id, u.username, f.created_at
	           FROM friendships f
	           JOIN users u ON u.id = f.user_id
	           WHERE f.friend_id = ? AND f.status = 'pending'
	           ORDER BY f.created_at DESC`
	rows, err := r.db.Q(ctx).QueryContext(ctx, r.db.Bind(q), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FriendRequest
	for rows.Next() {
		var (
			req     models.FriendRequest
			created int64
		)
		if err := rows.Scan(&req.FriendshipID, &req.FromUserID, &req.FromUsername, &created); err != nil {
			return nil, err
		}
		req.CreatedAt = time.Unix(created, 0)
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *sqlRepository) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM friendships
	           WHERE ((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?))
	           AND status = 'accepted'`
	var n int
	err := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), userID, otherID, otherID, userID).Scan(&n)
	return n > 0, err
}

func (r *sqlRepository) LeaderboardByEnergy(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	const q = `SELECT u.id, u.username, u.nickname, a.total_energy, a.level
	           FROM carbon_accounts a
	           JOIN users u ON u.id = a.user_id
	           ORDER BY a.total_energy DESC, u.username ASC
	           LIMIT ?`
	rows, err := r.db.Q(ctx).QueryContext(ctx, r.db.Bind(q), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Nickname, &e.TotalEnergy, &e.Level); err != nil {
			return nil, err
		}
		e.Rank = len(out) + 1
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *sqlRepository) LeaderboardByStage(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	const q = `SELECT u.id, u.username, u.nickname, c.stage
	           FROM carriers c
	           JOIN users u ON u.id = c.user_id
	           ORDER BY c.stage DESC, c.growth_progress DESC, u.username ASC
	           LIMIT ?`
	rows, err := r.db.Q(ctx).QueryContext(ctx, r.db.Bind(q), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Nickname, &e.Stage); err != nil {
			return nil, err
		}
		e.StageName = carriermodels.StageName(e.Stage)
		e.Rank = len(out) + 1
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanFriendship(row *sql.Row) (*models.Friendship, error) {
	var (
		f       models.Friendship
		status  string
		created int64
	)
	err := row.Scan(&f.ID, &f.UserID, &f.FriendID, &status, &created)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	f.Status = models.FriendshipStatus(status)
	f.CreatedAt = time.Unix(created, 0)
	return &f, nil
}
