package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"carbon-forest-backend/internal/common/apperr"
	"carbon-forest-backend/internal/common/logger"
	"carbon-forest-backend/internal/features/carbon/models"
	"carbon-forest-backend/internal/features/carbon/repository"
	energyservice "carbon-forest-backend/internal/features/energy/service"
	"carbon-forest-backend/internal/platform/db"
)

const dateLayout = "2006-01-02"

// Service records activities and keeps the account's footprint totals in
// step with the emission history.
type Service struct {
	db      *db.DB
	repo    repository.Repository
	ledger  *energyservice.Ledger
	balls   *energyservice.BallService
	carrier energyservice.Carrier
	now     func() time.Time
}

func New(d *db.DB, repo repository.Repository, ledger *energyservice.Ledger,
	balls *energyservice.BallService, carrier energyservice.Carrier) *Service {
	return &Service{db: d, repo: repo, ledger: ledger, balls: balls, carrier: carrier, now: time.Now}
}

// LogActivity records one activity: the emission row, the footprint totals,
// the clamped energy accrual, a best-effort bonus ball and the progression
// check, all in one transaction. A full ball field or a failed upgrade never
// rolls back the record.
func (s *Service) LogActivity(ctx context.Context, userID string, category models.Category, value float64, note, date string) (*models.ActivityResult, error) {
	comp, err := Compute(category, value)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if date == "" {
		date = now.Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	result := models.ActivityResult{
		Record: models.Emission{
			ID:        uuid.NewString(),
			UserID:    userID,
			Category:  category,
			Amount:    comp.Emission,
			Note:      note,
			Date:      date,
			CreatedAt: now,
		},
		Computation: comp,
	}

	err = s.db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.InsertEmission(ctx, &result.Record); err != nil {
			return apperr.Storage(err)
		}
		if err := s.repo.AdjustFootprint(ctx, userID, comp.Emission, comp.Reduction, now); err != nil {
			return apperr.Storage(err)
		}
		applied, err := s.ledger.ApplyDelta(ctx, userID, comp.Energy,
			"carbon_activity", "logged a "+string(category)+" activity")
		if err != nil {
			return err
		}
		result.EnergyApplied = applied

		if _, err := s.balls.Generate(ctx, userID, 0); err != nil {
			if !errors.Is(err, energyservice.ErrBallLimitExceeded) {
				return err
			}
			logger.Debug().Str("user_id", userID).Msg("Ball field full, no bonus ball")
		} else {
			result.BallGenerated = true
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
	logger.Info().Str("user_id", userID).Str("category", string(category)).
		Float64("emission", comp.Emission).Float64("energy", result.EnergyApplied).
		Msg("Activity logged")
	return &result, nil
}

// History returns the user's emission records, newest first.
func (s *Service) History(ctx context.Context, userID string, f models.ListFilter) ([]models.Emission, error) {
	if f.Category != "" {
		if _, ok := models.Factors[f.Category]; !ok {
			return nil, ErrInvalidCategory
		}
	}
	for _, d := range []string{f.From, f.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return nil, ErrInvalidDate
		}
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	records, err := s.repo.ListEmissions(ctx, userID, f)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return records, nil
}

// UpdateInput is a bounded partial update of an emission record. Changing
// the category requires resupplying the activity value so the emission can
// be recomputed.
type UpdateInput struct {
	Category *models.Category
	Value    *float64
	Note     *string
	Date     *string
}

// Update edits a record and moves the footprint totals by the emission
// delta. Energy already granted for the original record is not revisited.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*models.Emission, error) {
	var updated *models.Emission
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		record, err := s.repo.GetEmission(ctx, id, userID)
		if err != nil {
			return apperr.Storage(err)
		}
		if record == nil {
			return ErrRecordNotFound
		}
		oldAmount := record.Amount

		if in.Category != nil && *in.Category != record.Category {
			if in.Value == nil {
				return ErrValueRequired
			}
			record.Category = *in.Category
		}
		if in.Value != nil {
			comp, err := Compute(record.Category, *in.Value)
			if err != nil {
				return err
			}
			record.Amount = comp.Emission
		}
		if in.Note != nil {
			record.Note = *in.Note
		}
		if in.Date != nil {
			if _, err := time.Parse(dateLayout, *in.Date); err != nil {
				return ErrInvalidDate
			}
			record.Date = *in.Date
		}

		ok, err := s.repo.UpdateEmission(ctx, record)
		if err != nil {
			return apperr.Storage(err)
		}
		if !ok {
			return ErrRecordNotFound
		}
		if delta := record.Amount - oldAmount; delta != 0 {
			reductionDelta := round2(delta * (models.BaselineMultiplier - 1))
			if err := s.repo.AdjustFootprint(ctx, userID, delta, reductionDelta, s.now()); err != nil {
				return apperr.Storage(err)
			}
		}
		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a record and backs its emission out of the footprint
// totals.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.db.RunInTx(ctx, func(ctx context.Context) error {
		record, err := s.repo.GetEmission(ctx, id, userID)
		if err != nil {
			return apperr.Storage(err)
		}
		if record == nil {
			return ErrRecordNotFound
		}
		ok, err := s.repo.DeleteEmission(ctx, id, userID)
		if err != nil {
			return apperr.Storage(err)
		}
		if !ok {
			return ErrRecordNotFound
		}
		reduction := round2(record.Amount * (models.BaselineMultiplier - 1))
		if err := s.repo.AdjustFootprint(ctx, userID, -record.Amount, -reduction, s.now()); err != nil {
			return apperr.Storage(err)
		}
		return nil
	})
}

// Stats summarizes emissions over a calendar period ending today.
func (s *Service) Stats(ctx context.Context, userID, period string) (*models.Stats, error) {
	now := s.now()
	to := now.Format(dateLayout)
	var from string
	switch period {
	case "", "month":
		period = "month"
		from = now.AddDate(0, -1, 0).Format(dateLayout)
	case "day":
		from = to
	case "week":
		from = now.AddDate(0, 0, -6).Format(dateLayout)
	case "year":
		from = now.AddDate(-1, 0, 0).Format(dateLayout)
	default:
		return nil, ErrInvalidPeriod
	}

	total, count, err := s.repo.StatsTotals(ctx, userID, from, to)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	byCategory, err := s.repo.StatsByCategory(ctx, userID, from, to)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	daily, err := s.repo.StatsDaily(ctx, userID, from, to)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &models.Stats{
		Period:     period,
		From:       from,
		To:         to,
		Total:      round2(total),
		Count:      count,
		ByCategory: byCategory,
		Daily:      daily,
	}, nil
}
