package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"carbon-forest-backend/internal/common/apperr"
	"carbon-forest-backend/internal/common/logger"
	"carbon-forest-backend/internal/features/energy/models"
	"carbon-forest-backend/internal/features/energy/repository"
	"carbon-forest-backend/internal/platform/db"
	"carbon-forest-backend/internal/utils/random"
)

// Carrier is the slice of the progression state machine the ball lifecycle
// needs: the post-accrual upgrade check and the cosmetic growth counter.
type Carrier interface {
	AutoUpgrade(ctx context.Context, userID string) (bool, error)
	RecordGrowth(ctx context.Context, userID string, points int) error
}

// BallService manages the energy-ball lifecycle: weighted generation,
// lazy expiry into overflow, and collection into the ledger.
type BallService struct {
	db      *db.DB
	repo    repository.Repository
	ledger  *Ledger
	carrier Carrier
	rng     random.Source
	draw    *random.Weighted[float64]
	now     func() time.Time
}

func NewBallService(d *db.DB, repo repository.Repository, ledger *Ledger, carrier Carrier, rng random.Source) *BallService {
	return &BallService{
		db:      d,
		repo:    repo,
		ledger:  ledger,
		carrier: carrier,
		rng:     rng,
		draw:    random.NewWeighted(models.BallAmounts, models.BallWeights),
		now:     time.Now,
	}
}

// Generate creates one available ball for the user. A non-positive amount
// means "draw one from the weighted value set". Fails when the user already
// holds the maximum number of available, unexpired balls.
func (s *BallService) Generate(ctx context.Context, userID string, amount float64) (*models.EnergyBall, error) {
	var ball *models.EnergyBall
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		b, err := s.generateLocked(ctx, userID, amount)
		if err != nil {
			return err
		}
		ball = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ball, nil
}

// generateLocked is the in-transaction body of Generate, shared with the
// watering batch.
func (s *BallService) generateLocked(ctx context.Context, userID string, amount float64) (*models.EnergyBall, error) {
	now := s.now()
	count, err := s.repo.CountAvailableBalls(ctx, userID, now)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if count >= models.MaxAvailableBalls {
		return nil, ErrBallLimitExceeded
	}

	if amount <= 0 {
		amount = s.draw.Pick(s.rng)
	}
	ball := &models.EnergyBall{
		ID:        uuid.New().String(),
		UserID:    userID,
		Amount:    amount,
		Lat:       random.Float64Between(s.rng, 0.10, 0.90),
		Lng:       random.Float64Between(s.rng, 0.10, 0.90),
		Status:    models.BallAvailable,
		CreatedAt: now,
		ExpiresAt: now.Add(models.BallTTL),
	}
	if err := s.repo.InsertBall(ctx, ball); err != nil {
		return nil, apperr.Storage(err)
	}
	return ball, nil
}

// Collect redeems an available, unexpired ball: one transaction marks it
// collected, credits the ledger (clamped by the stage ceiling) and runs the
// auto-upgrade check. Replaying a collect on the same id fails cleanly and
// credits nothing.
func (s *BallService) Collect(ctx context.Context, userID, ballID string) (*models.CollectResult, error) {
	var result *models.CollectResult
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		now := s.now()
		ball, err := s.repo.GetAvailableBall(ctx, ballID, userID, now)
		if err != nil {
			return apperr.Storage(err)
		}
		if ball == nil {
			return ErrBallNotFoundOrExpired
		}
		ok, err := s.repo.MarkBallCollected(ctx, ballID, now)
		if err != nil {
			return apperr.Storage(err)
		}
		if !ok {
			return ErrBallNotFoundOrExpired
		}

		applied, err := s.ledger.ApplyDelta(ctx, userID, ball.Amount, "ball_collect", "collected energy ball")
		if err != nil {
			return err
		}

		result = &models.CollectResult{
			BallID:        ballID,
			EnergyAmount:  ball.Amount,
			EnergyApplied: applied,
		}
		result.CarrierUpgraded = s.tryAutoUpgrade(ctx, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("user_id", userID).Str("ball_id", ballID).
		Float64("amount", result.EnergyAmount).Msg("Energy ball collected")
	return result, nil
}

// ProcessExpired converts every available ball past its expiry into an
// overflow record worth amount×OverflowRate. Each ball gets its own
// transaction so one failure doesn't block the batch. Expiry is only ever
// triggered from read paths; there is no background sweep, so staleness is
// bounded by the time since the last relevant read.
func (s *BallService) ProcessExpired(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.repo.ListExpiredBalls(ctx, now)
	if err != nil {
		return 0, apperr.Storage(err)
	}

	processed := 0
	for _, ball := range expired {
		err := s.db.RunInTx(ctx, func(ctx context.Context) error {
			ok, err := s.repo.MarkBallExpired(ctx, ball.ID)
			if err != nil {
				return apperr.Storage(err)
			}
			if !ok {
				// Lost the race with a concurrent collect or expiry pass.
				return nil
			}
			return s.repo.InsertOverflow(ctx, &models.Overflow{
				ID:        uuid.New().String(),
				UserID:    ball.UserID,
				BallID:    ball.ID,
				Amount:    round2(ball.Amount * models.OverflowRate),
				CreatedAt: now,
			})
		})
		if err != nil {
			logger.Error().Err(err).Str("ball_id", ball.ID).Msg("Expired ball processing failed")
			continue
		}
		processed++
	}
	return processed, nil
}

// List triggers expiry processing, then returns the user's available balls,
// most recent first, capped at the per-user maximum.
func (s *BallService) List(ctx context.Context, userID string) ([]models.EnergyBall, error) {
	if _, err := s.ProcessExpired(ctx); err != nil {
		return nil, err
	}
	balls, err := s.repo.ListAvailableBalls(ctx, userID, s.now(), models.MaxAvailableBalls)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return balls, nil
}

// Water generates up to three new balls (never beyond the per-user cap),
// records the watering and bumps the cosmetic growth counter. Watering costs
// no energy.
func (s *BallService) Water(ctx context.Context, userID string) (*models.WaterResult, error) {
	var result models.WaterResult
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		now := s.now()
		count, err := s.repo.CountAvailableBalls(ctx, userID, now)
		if err != nil {
			return apperr.Storage(err)
		}
		toGenerate := models.MaxAvailableBalls - count
		if toGenerate > 3 {
			toGenerate = 3
		}
		for i := 0; i < toGenerate; i++ {
			if _, err := s.generateLocked(ctx, userID, 0); err != nil {
				return err
			}
			result.BallsGenerated++
		}
		if err := s.repo.InsertWateringRecord(ctx, userID, result.BallsGenerated, now); err != nil {
			return apperr.Storage(err)
		}
		if err := s.carrier.RecordGrowth(ctx, userID, 1); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("user_id", userID).Int("balls", result.BallsGenerated).Msg("Carrier watered")
	return &result, nil
}

// TodayEnergy reports energy collected from balls since local midnight, for
// the profile stats block. Other gains (task rewards, overflow shares) do not
// count.
func (s *BallService) TodayEnergy(ctx context.Context, userID string) (float64, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	total, err := s.repo.TodayCollectedEnergy(ctx, userID, dayStart)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return total, nil
}

// tryAutoUpgrade runs the progression check after an accrual. A failed bonus
// upgrade never rolls back the credit that triggered it.
func (s *BallService) tryAutoUpgrade(ctx context.Context, userID string) bool {
	upgraded, err := s.carrier.AutoUpgrade(ctx, userID)
	if err != nil {
		logger.Debug().Err(err).Str("user_id", userID).Msg("Auto-upgrade check failed")
		return false
	}
	return upgraded
}
