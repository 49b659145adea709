package repository

import (
	"context"
	"time"

	"carbon-forest-backend/internal/features/energy/models"
)

// Repository persists accounts, energy balls, overflow records and the
// transaction log. Implementations must route every statement through the
// store handle's context-aware queryer so they join the caller's
// transaction.
type Repository interface {
	CreateAccount(ctx context.Context, userID string, now time.Time) error
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
	ApplyAccrual(ctx context.Context, userID string, delta float64, now time.Time) error
	SpendEnergy(ctx context.Context, userID string, amount float64, now time.Time) error
	SetLevel(ctx context.Context, userID string, level int, now time.Time) error
	GetCarrierStage(ctx context.Context, userID string) (int, bool, error)

	CountAvailableBalls(ctx context.Context, userID string, now time.Time) (int, error)
	InsertBall(ctx context.Context, ball *models.EnergyBall) error
	GetAvailableBall(ctx context.Context, ballID, userID string, now time.Time) (*models.EnergyBall, error)
	MarkBallCollected(ctx context.Context, ballID string, now time.Time) (bool, error)
	ListAvailableBalls(ctx context.Context, userID string, now time.Time, limit int) ([]models.EnergyBall, error)
	ListExpiredBalls(ctx context.Context, now time.Time) ([]models.EnergyBall, error)
	MarkBallExpired(ctx context.Context, ballID string) (bool, error)

	InsertOverflow(ctx context.Context, o *models.Overflow) error
	SumUnclaimedOverflow(ctx context.Context, ownerID string) (float64, error)
	ClaimOverflow(ctx context.Context, ownerID, helperID string, now time.Time) (int64, error)

	InsertTransaction(ctx context.Context, t *models.Transaction) error
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)

	InsertWateringRecord(ctx context.Context, userID string, ballsGenerated int, now time.Time) error
	TodayCollectedEnergy(ctx context.Context, userID string, dayStart time.Time) (float64, error)
}
