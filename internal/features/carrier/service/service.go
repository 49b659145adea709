package service

import (
	"context"
	"time"

	"carbon-forest-backend/internal/common/apperr"
	"carbon-forest-backend/internal/common/logger"
	"carbon-forest-backend/internal/features/carrier/models"
	"carbon-forest-backend/internal/features/carrier/repository"
	"carbon-forest-backend/internal/platform/db"
)

// EnergySpender debits the upgrade cost from the user's account. Implemented
// by the energy ledger.
type EnergySpender interface {
	Spend(ctx context.Context, userID string, amount float64, source, description string) error
}

// Service manages the growth carrier: creation, the progression check and
// the stage upgrade that consumes stored energy.
type Service struct {
	db      *db.DB
	repo    repository.Repository
	spender EnergySpender
	now     func() time.Time
}

func New(d *db.DB, repo repository.Repository, spender EnergySpender) *Service {
	return &Service{db: d, repo: repo, spender: spender, now: time.Now}
}

// Create plants a stage-1 carrier for the user. Only the tree is modeled;
// other kinds are rejected instead of silently substituted.
func (s *Service) Create(ctx context.Context, userID string, kind models.Kind) (*models.Carrier, error) {
	switch kind {
	case "":
		kind = models.KindTree
	case models.KindTree:
	case models.KindAnimal, models.KindBuilding:
		return nil, ErrUnsupportedKind
	default:
		return nil, ErrUnsupportedKind
	}

	existing, err := s.repo.GetCarrier(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if existing != nil {
		return nil, ErrCarrierExists
	}
	now := s.now()
	if err := s.repo.CreateCarrier(ctx, userID, kind, now); err != nil {
		return nil, apperr.Storage(err)
	}
	return &models.Carrier{
		UserID:    userID,
		Kind:      kind,
		Stage:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Evaluate runs the progression check: current and next stage, the stored
// energy clamped to the current ceiling, and whether an upgrade is possible.
func (s *Service) Evaluate(ctx context.Context, userID string) (*models.Evaluation, error) {
	carrier, err := s.repo.GetCarrier(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if carrier == nil {
		return nil, ErrCarrierNotFound
	}
	energy, _, err := s.repo.GetAvailableEnergy(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return s.evaluate(carrier, energy), nil
}

func (s *Service) evaluate(carrier *models.Carrier, energy float64) *models.Evaluation {
	ceiling := models.MaxEnergy(carrier.Stage)
	if energy > ceiling {
		energy = ceiling
	}
	ev := &models.Evaluation{
		Current: models.StageInfo{
			Stage:     carrier.Stage,
			Name:      models.StageName(carrier.Stage),
			MaxEnergy: ceiling,
		},
		Kind:            carrier.Kind,
		GrowthProgress:  carrier.GrowthProgress,
		AvailableEnergy: energy,
	}
	if carrier.Stage < models.MaxStage {
		next := carrier.Stage + 1
		ev.Next = &models.StageInfo{
			Stage:          next,
			Name:           models.StageName(next),
			MaxEnergy:      models.MaxEnergy(next),
			EnergyRequired: models.EnergyRequired(next),
		}
		ev.CanUpgrade = energy >= ev.Next.EnergyRequired
	}
	return ev
}

// Upgrade advances the carrier one stage, spending the entry cost of the new
// stage. Stage change and debit commit together.
func (s *Service) Upgrade(ctx context.Context, userID string) (*models.UpgradeResult, error) {
	var result models.UpgradeResult
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		carrier, err := s.repo.GetCarrier(ctx, userID)
		if err != nil {
			return apperr.Storage(err)
		}
		if carrier == nil {
			return ErrCarrierNotFound
		}
		if carrier.Stage >= models.MaxStage {
			return ErrAlreadyMaxStage
		}
		next := carrier.Stage + 1
		cost := models.EnergyRequired(next)

		energy, found, err := s.repo.GetAvailableEnergy(ctx, userID)
		if err != nil {
			return apperr.Storage(err)
		}
		if !found || energy < cost {
			return ErrInsufficientEnergy
		}

		advanced, err := s.repo.AdvanceStage(ctx, userID, carrier.Stage, next, s.now())
		if err != nil {
			return apperr.Storage(err)
		}
		if !advanced {
			return ErrAlreadyMaxStage
		}
		if err := s.spender.Spend(ctx, userID, cost, "carrier_upgrade", "carrier evolved to "+models.StageName(next)); err != nil {
			return err
		}
		result = models.UpgradeResult{
			NewStage:        next,
			NewStageName:    models.StageName(next),
			EnergyCost:      cost,
			RemainingEnergy: energy - cost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("user_id", userID).Int("stage", result.NewStage).
		Float64("cost", result.EnergyCost).Msg("Carrier upgraded")
	return &result, nil
}

// AutoUpgrade performs an upgrade when the progression check allows one.
// It reports false without error when the carrier is simply not ready.
func (s *Service) AutoUpgrade(ctx context.Context, userID string) (bool, error) {
	carrier, err := s.repo.GetCarrier(ctx, userID)
	if err != nil {
		return false, apperr.Storage(err)
	}
	if carrier == nil || carrier.Stage >= models.MaxStage {
		return false, nil
	}
	energy, _, err := s.repo.GetAvailableEnergy(ctx, userID)
	if err != nil {
		return false, apperr.Storage(err)
	}
	if !s.evaluate(carrier, energy).CanUpgrade {
		return false, nil
	}
	if _, err := s.Upgrade(ctx, userID); err != nil {
		return false, err
	}
	return true, nil
}

// RecordGrowth adds growth points earned by care actions such as watering.
func (s *Service) RecordGrowth(ctx context.Context, userID string, points int) error {
	if points <= 0 {
		return nil
	}
	if err := s.repo.AddGrowth(ctx, userID, points, s.now()); err != nil {
		return apperr.Storage(err)
	}
	return nil
}
