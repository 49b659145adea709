package repository

import (
	"context"
	"database/sql"
	"time"

	"carbon-forest-backend/internal/features/user/models"
	"carbon-forest-backend/internal/platform/db"
)

type sqlRepository struct {
	db *db.DB
}

func New(d *db.DB) Repository { return &sqlRepository{db: d} }

func (r *sqlRepository) CreateUser(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (id, username, email, password_hash, nickname, user_type, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q),
		u.ID, u.Username, u.Email, u.PasswordHash, u.Nickname, string(u.UserType), u.CreatedAt.Unix())
	return err
}

func (r *sqlRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	const q = `SELECT id, username, email, password_hash, nickname, user_type, created_at
	           FROM users WHERE id = ?`
	return r.scanUser(ctx, q, id)
}

func (r *sqlRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const q = `SELECT id, username, email, password_hash, nickname, user_type, created_at
	           FROM users WHERE username = ?`
	return r.scanUser(ctx, q, username)
}

func (r *sqlRepository) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	const q = `SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`
	var n int
	err := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), username, email).Scan(&n)
	return n > 0, err
}

func (r *sqlRepository) scanUser(ctx context.Context, q string, arg any) (*models.User, error) {
	var (
		u       models.User
		utype   string
		created int64
	)
	row := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), arg)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Nickname, &utype, &created)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.UserType = models.UserType(utype)
	u.CreatedAt = time.Unix(created, 0)
	return &u, nil
}
