package service

import (
	"math"

	"carbon-forest-backend/internal/features/carbon/models"
)

// Compute derives the footprint math for an activity: the emission it caused,
// the baseline it replaced, the reduction achieved and the energy earned.
// Every figure is rounded to two decimals; energy never goes negative.
func Compute(category models.Category, value float64) (models.Computation, error) {
	factor, ok := models.Factors[category]
	if !ok {
		return models.Computation{}, ErrInvalidCategory
	}
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return models.Computation{}, ErrInvalidValue
	}
	emission := round2(value * factor)
	baseline := round2(emission * models.BaselineMultiplier)
	reduction := round2(baseline - emission)
	energy := round2(reduction * models.EnergyPerKg)
	if energy < 0 {
		energy = 0
	}
	return models.Computation{
		Emission:  emission,
		Baseline:  baseline,
		Reduction: reduction,
		Energy:    energy,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
