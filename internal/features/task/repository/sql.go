package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"carbon-forest-backend/internal/features/task/models"
	"carbon-forest-backend/internal/platform/db"
)

type sqlRepository struct {
	db *db.DB
}

func New(d *db.DB) Repository { return &sqlRepository{db: d} }

func (r *sqlRepository) GetTask(ctx context.Context, id string) (*models.Task, error) {
	const q = `SELECT id, name, task_type, energy_reward, cooldown_hours, enabled
	           FROM tasks WHERE id = ?`
	var (
		t       models.Task
		ttype   string
		enabled int
	)
	row := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), id)
	err := row.Scan(&t.ID, &t.Name, &ttype, &t.EnergyReward, &t.CooldownHours, &enabled)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.Type = models.TaskType(ttype)
	t.Enabled = enabled != 0
	return &t, nil
}

func (r *sqlRepository) ListWithStatus(ctx context.Context, userID string) ([]models.TaskStatus, error) {
	const q = `SELECT t.id, t.name, t.task_type, t.energy_reward, t.cooldown_hours, t.enabled,
	           COALESCE(ut.completed_count, 0), COALESCE(ut.last_completed_at, 0)
	           FROM tasks t
	           LEFT JOIN user_tasks ut ON ut.task_id = t.id AND ut.user_id = ?
	           WHERE t.enabled = 1
	           ORDER BY t.id`
	rows, err := r.db.Q(ctx).QueryContext(ctx, r.db.Bind(q), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TaskStatus
	for rows.Next() {
		var (
			s       models.TaskStatus
			ttype   string
			enabled int
			last    int64
		)
		err := rows.Scan(&s.ID, &s.Name, &ttype, &s.EnergyReward, &s.CooldownHours, &enabled,
			&s.CompletedCount, &last)
		if err != nil {
			return nil, err
		}
		s.Type = models.TaskType(ttype)
		s.Enabled = enabled != 0
		if last > 0 {
			t := time.Unix(last, 0)
			s.LastCompletedAt = &t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sqlRepository) GetCompletion(ctx context.Context, userID, taskID string) (int, time.Time, error) {
	const q = `SELECT completed_count, last_completed_at FROM user_tasks
	           WHERE user_id = ? AND task_id = ?`
	var (
		count int
		last  int64
	)
	err := r.db.Q(ctx).QueryRowContext(ctx, r.db.Bind(q), userID, taskID).Scan(&count, &last)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, time.Time{}, nil
		}
		return 0, time.Time{}, err
	}
	if last == 0 {
		return count, time.Time{}, nil
	}
	return count, time.Unix(last, 0), nil
}

func (r *sqlRepository) RecordCompletion(ctx context.Context, userID, taskID string, now time.Time) (int, error) {
	const q = `INSERT INTO user_tasks (id, user_id, task_id, completed_count, last_completed_at)
	           VALUES (?, ?, ?, 1, ?)
	           ON CONFLICT (user_id, task_id) DO UPDATE
	           SET completed_count = user_tasks.completed_count + 1,
	               last_completed_at = excluded.last_completed_at`
	_, err := r.db.Q(ctx).ExecContext(ctx, r.db.Bind(q), uuid.NewString(), userID, taskID, now.Unix())
	if err != nil {
		return 0, err
	}
	count, _, err := r.GetCompletion(ctx, userID, taskID)
	return count, err
}
