package repository

import (
	"context"
	"time"

	"carbon-forest-backend/internal/features/carbon/models"
)

type Repository interface {
	InsertEmission(ctx context.Context, e *models.Emission) error
	GetEmission(ctx context.Context, id, userID string) (*models.Emission, error)
	ListEmissions(ctx context.Context, userID string, f models.ListFilter) ([]models.Emission, error)
	UpdateEmission(ctx context.Context, e *models.Emission) (bool, error)
	DeleteEmission(ctx context.Context, id, userID string) (bool, error)
	// AdjustFootprint applies signed deltas to the account's footprint and
	// reduction totals.
	AdjustFootprint(ctx context.Context, userID string, footprintDelta, reductionDelta float64, now time.Time) error
	StatsTotals(ctx context.Context, userID, from, to string) (float64, int, error)
	StatsByCategory(ctx context.Context, userID, from, to string) ([]models.CategoryStat, error)
	StatsDaily(ctx context.Context, userID, from, to string) ([]models.DailyStat, error)
}
