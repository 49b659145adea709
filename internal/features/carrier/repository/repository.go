package repository

import (
	"context"
	"time"

	"carbon-forest-backend/internal/features/carrier/models"
)

type Repository interface {
	CreateCarrier(ctx context.Context, userID string, kind models.Kind, now time.Time) error
	GetCarrier(ctx context.Context, userID string) (*models.Carrier, error)
	// GetAvailableEnergy reads the spendable balance from the user's account.
	GetAvailableEnergy(ctx context.Context, userID string) (float64, bool, error)
	// AdvanceStage moves the carrier from one stage to the next. The guard on
	// the current stage makes a concurrent or replayed upgrade a no-op
	// reported as false.
	AdvanceStage(ctx context.Context, userID string, from, to int, now time.Time) (bool, error)
	AddGrowth(ctx context.Context, userID string, points int, now time.Time) error
}
