package repository

import (
	"context"
	"time"

	"carbon-forest-backend/internal/features/task/models"
)

type Repository interface {
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListWithStatus(ctx context.Context, userID string) ([]models.TaskStatus, error)
	// GetCompletion returns (count, lastCompleted, error); a user who never
	// completed the task gets (0, zero time, nil).
	GetCompletion(ctx context.Context, userID, taskID string) (int, time.Time, error)
	// RecordCompletion upserts the per-user row and returns the new count.
	RecordCompletion(ctx context.Context, userID, taskID string, now time.Time) (int, error)
}
