package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-forest-backend/internal/features/carbon/models"
	"carbon-forest-backend/internal/features/carbon/repository"
	carriermodels "carbon-forest-backend/internal/features/carrier/models"
	carrierrepo "carbon-forest-backend/internal/features/carrier/repository"
	carrierservice "carbon-forest-backend/internal/features/carrier/service"
	energymodels "carbon-forest-backend/internal/features/energy/models"
	energyrepo "carbon-forest-backend/internal/features/energy/repository"
	energyservice "carbon-forest-backend/internal/features/energy/service"
	"carbon-forest-backend/internal/platform/db"
	"carbon-forest-backend/internal/utils/random"
)

type harness struct {
	svc    *Service
	ledger *energyservice.Ledger
	balls  *energyservice.BallService
	cRepo  carrierrepo.Repository
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	d, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, db.Migrate(ctx, d))

	eRepo := energyrepo.New(d)
	ledger := energyservice.NewLedger(d, eRepo)
	cRepo := carrierrepo.New(d)
	carriers := carrierservice.New(d, cRepo, ledger)
	balls := energyservice.NewBallService(d, eRepo, ledger, carriers, random.NewSeeded(1))

	return &harness{
		svc:    New(d, repository.New(d), ledger, balls, carriers),
		ledger: ledger,
		balls:  balls,
		cRepo:  cRepo,
	}
}

func (h *harness) newUser(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	userID := uuid.NewString()
	require.NoError(t, h.ledger.CreateAccount(ctx, userID))
	require.NoError(t, h.cRepo.CreateCarrier(ctx, userID, carriermodels.KindTree, time.Now()))
	return userID
}

func TestLogActivity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	result, err := h.svc.LogActivity(ctx, userID, models.CategoryCompute, 100, "cloud batch", "")
	require.NoError(t, err)
	assert.Equal(t, 2.0, result.Computation.Emission)
	assert.Equal(t, 4.0, result.Computation.Energy)
	assert.Equal(t, 4.0, result.EnergyApplied)
	assert.True(t, result.BallGenerated)
	assert.False(t, result.CarrierUpgraded)

	account, err := h.ledger.Account(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, account.CarbonFootprint)
	assert.Equal(t, 0.4, account.CarbonReduction)
	assert.Equal(t, 4.0, account.CurrentEnergy)

	history, err := h.svc.History(ctx, userID, models.ListFilter{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "cloud batch", history[0].Note)
	assert.Equal(t, models.CategoryCompute, history[0].Category)
}

func TestLogActivitySkipsBallWhenFieldFull(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	for i := 0; i < energymodels.MaxAvailableBalls; i++ {
		_, err := h.balls.Generate(ctx, userID, 5)
		require.NoError(t, err)
	}

	result, err := h.svc.LogActivity(ctx, userID, models.CategoryTravel, 10, "", "")
	require.NoError(t, err)
	assert.False(t, result.BallGenerated)
	assert.Equal(t, 4.0, result.EnergyApplied)
}

func TestLogActivityRejectsBadDate(t *testing.T) {
	h := newHarness(t)
	userID := h.newUser(t)

	_, err := h.svc.LogActivity(context.Background(), userID, models.CategoryTravel, 10, "", "03/01/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestUpdateRecomputesFootprint(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	logged, err := h.svc.LogActivity(ctx, userID, models.CategoryTravel, 10, "", "")
	require.NoError(t, err)

	newValue := 20.0
	updated, err := h.svc.Update(ctx, userID, logged.Record.ID, UpdateInput{Value: &newValue})
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.Amount)

	account, err := h.ledger.Account(ctx, userID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, account.CarbonFootprint, 1e-9)
	assert.InDelta(t, 0.8, account.CarbonReduction, 1e-9)

	cat := models.CategoryFood
	_, err = h.svc.Update(ctx, userID, logged.Record.ID, UpdateInput{Category: &cat})
	assert.ErrorIs(t, err, ErrValueRequired)

	_, err = h.svc.Update(ctx, userID, "missing", UpdateInput{Value: &newValue})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeleteBacksOutFootprint(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	logged, err := h.svc.LogActivity(ctx, userID, models.CategoryShopping, 10, "", "")
	require.NoError(t, err)

	require.NoError(t, h.svc.Delete(ctx, userID, logged.Record.ID))

	account, err := h.ledger.Account(ctx, userID)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, account.CarbonFootprint, 1e-9)
	assert.InDelta(t, 0.0, account.CarbonReduction, 1e-9)

	err = h.svc.Delete(ctx, userID, logged.Record.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	history, err := h.svc.History(ctx, userID, models.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	_, err := h.svc.LogActivity(ctx, userID, models.CategoryTravel, 10, "", "")
	require.NoError(t, err)
	_, err = h.svc.LogActivity(ctx, userID, models.CategoryFood, 10, "", "")
	require.NoError(t, err)

	stats, err := h.svc.Stats(ctx, userID, "day")
	require.NoError(t, err)
	assert.Equal(t, "day", stats.Period)
	assert.Equal(t, 2, stats.Count)
	assert.InDelta(t, 2.5, stats.Total, 1e-9)
	assert.Len(t, stats.ByCategory, 2)
	assert.Len(t, stats.Daily, 1)

	_, err = h.svc.Stats(ctx, userID, "decade")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestHistoryFilterValidation(t *testing.T) {
	h := newHarness(t)
	userID := h.newUser(t)

	_, err := h.svc.History(context.Background(), userID, models.ListFilter{Category: "flying"})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = h.svc.History(context.Background(), userID, models.ListFilter{From: "bad-date"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}
