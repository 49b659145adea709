package service

import (
	"context"
	"time"

	"carbon-forest-backend/internal/common/apperr"
	"carbon-forest-backend/internal/common/logger"
	energyservice "carbon-forest-backend/internal/features/energy/service"
	"carbon-forest-backend/internal/features/task/models"
	"carbon-forest-backend/internal/features/task/repository"
	"carbon-forest-backend/internal/platform/db"
)

// Service serves the task catalog and awards cooldown-gated completions
// through the energy ledger.
type Service struct {
	db      *db.DB
	repo    repository.Repository
	ledger  *energyservice.Ledger
	carrier energyservice.Carrier
	now     func() time.Time
}

func New(d *db.DB, repo repository.Repository, ledger *energyservice.Ledger, carrier energyservice.Carrier) *Service {
	return &Service{db: d, repo: repo, ledger: ledger, carrier: carrier, now: time.Now}
}

// List returns the enabled tasks with per-user availability.
func (s *Service) List(ctx context.Context, userID string) ([]models.TaskStatus, error) {
	tasks, err := s.repo.ListWithStatus(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	now := s.now()
	for i := range tasks {
		s.fillAvailability(&tasks[i], now)
	}
	return tasks, nil
}

func (s *Service) fillAvailability(t *models.TaskStatus, now time.Time) {
	if t.Type == models.TypeOnce && t.CompletedCount > 0 {
		t.Available = false
		return
	}
	if t.CooldownHours > 0 && t.LastCompletedAt != nil {
		readyAt := t.LastCompletedAt.Add(time.Duration(t.CooldownHours) * time.Hour)
		if now.Before(readyAt) {
			t.Available = false
			t.AvailableAt = &readyAt
			return
		}
	}
	t.Available = true
}

// Complete awards a task's energy once its gate allows: once-tasks a single
// time, cooldown tasks after the cooldown. Award and completion record
// commit together.
func (s *Service) Complete(ctx context.Context, userID, taskID string) (*models.CompleteResult, error) {
	var result models.CompleteResult
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		task, err := s.repo.GetTask(ctx, taskID)
		if err != nil {
			return apperr.Storage(err)
		}
		if task == nil {
			return ErrTaskNotFound
		}
		if !task.Enabled {
			return ErrTaskDisabled
		}

		count, last, err := s.repo.GetCompletion(ctx, userID, taskID)
		if err != nil {
			return apperr.Storage(err)
		}
		now := s.now()
		if task.Type == models.TypeOnce && count > 0 {
			return ErrAlreadyCompleted
		}
		if task.CooldownHours > 0 && !last.IsZero() {
			if readyAt := last.Add(time.Duration(task.CooldownHours) * time.Hour); now.Before(readyAt) {
				return ErrOnCooldown
			}
		}

		newCount, err := s.repo.RecordCompletion(ctx, userID, taskID, now)
		if err != nil {
			return apperr.Storage(err)
		}
		applied, err := s.ledger.ApplyDelta(ctx, userID, task.EnergyReward,
			"task_reward", "completed task "+task.Name)
		if err != nil {
			return err
		}

		result = models.CompleteResult{
			TaskID:         taskID,
			EnergyReward:   task.EnergyReward,
			EnergyApplied:  applied,
			CompletedCount: newCount,
		}
		upgraded, err := s.carrier.AutoUpgrade(ctx, userID)
		if err != nil {
			logger.Debug().Err(err).Str("user_id", userID).Msg("Auto-upgrade check failed")
			return nil
		}
		result.CarrierUpgraded = upgraded
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("user_id", userID).Str("task_id", taskID).
		Float64("energy", result.EnergyApplied).Msg("Task completed")
	return &result, nil
}
