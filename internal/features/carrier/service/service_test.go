package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-forest-backend/internal/features/carrier/models"
	"carbon-forest-backend/internal/features/carrier/repository"
	energyrepo "carbon-forest-backend/internal/features/energy/repository"
	energyservice "carbon-forest-backend/internal/features/energy/service"
	"carbon-forest-backend/internal/platform/db"
)

type harness struct {
	repo   repository.Repository
	ledger *energyservice.Ledger
	svc    *Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	d, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, db.Migrate(ctx, d))

	repo := repository.New(d)
	ledger := energyservice.NewLedger(d, energyrepo.New(d))
	return &harness{
		repo:   repo,
		ledger: ledger,
		svc:    New(d, repo, ledger),
	}
}

func (h *harness) newUser(t *testing.T) string {
	t.Helper()
	userID := uuid.NewString()
	require.NoError(t, h.ledger.CreateAccount(context.Background(), userID))
	return userID
}

func TestCreateCarrier(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	carrier, err := h.svc.Create(ctx, userID, "")
	require.NoError(t, err)
	assert.Equal(t, models.KindTree, carrier.Kind)
	assert.Equal(t, 1, carrier.Stage)

	_, err = h.svc.Create(ctx, userID, models.KindTree)
	assert.ErrorIs(t, err, ErrCarrierExists)
}

func TestCreateRejectsUnsupportedKinds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	_, err := h.svc.Create(ctx, userID, models.KindAnimal)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
	_, err = h.svc.Create(ctx, userID, models.KindBuilding)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
	_, err = h.svc.Create(ctx, userID, "dragon")
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestEvaluate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	_, err := h.svc.Evaluate(ctx, userID)
	assert.ErrorIs(t, err, ErrCarrierNotFound)

	_, err = h.svc.Create(ctx, userID, models.KindTree)
	require.NoError(t, err)

	eval, err := h.svc.Evaluate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, eval.Current.Stage)
	assert.Equal(t, "seed", eval.Current.Name)
	assert.Equal(t, 100.0, eval.Current.MaxEnergy)
	require.NotNil(t, eval.Next)
	assert.Equal(t, "sapling", eval.Next.Name)
	assert.Equal(t, 100.0, eval.Next.EnergyRequired)
	assert.False(t, eval.CanUpgrade)

	_, err = h.ledger.ApplyDelta(ctx, userID, 100, "test", "")
	require.NoError(t, err)

	eval, err = h.svc.Evaluate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, eval.AvailableEnergy)
	assert.True(t, eval.CanUpgrade)
}

func TestUpgrade(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	_, err := h.svc.Create(ctx, userID, models.KindTree)
	require.NoError(t, err)

	_, err = h.svc.Upgrade(ctx, userID)
	assert.ErrorIs(t, err, ErrInsufficientEnergy)

	_, err = h.ledger.ApplyDelta(ctx, userID, 100, "test", "")
	require.NoError(t, err)

	result, err := h.svc.Upgrade(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.NewStage)
	assert.Equal(t, "sapling", result.NewStageName)
	assert.Equal(t, 100.0, result.EnergyCost)
	assert.Equal(t, 0.0, result.RemainingEnergy)

	account, err := h.ledger.Account(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, account.CurrentEnergy)
	assert.Equal(t, 100.0, account.TotalEnergyUsed)
}

func TestUpgradeStopsAtMaxStage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	_, err := h.svc.Create(ctx, userID, models.KindTree)
	require.NoError(t, err)

	// Walk the whole ladder: fill the current ceiling, upgrade, repeat.
	for stage := 1; stage < models.MaxStage; stage++ {
		for {
			applied, err := h.ledger.ApplyDelta(ctx, userID, models.MaxEnergy(stage), "test", "")
			require.NoError(t, err)
			if applied == 0 {
				break
			}
		}
		result, err := h.svc.Upgrade(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, stage+1, result.NewStage)
	}

	_, err = h.svc.Upgrade(ctx, userID)
	assert.ErrorIs(t, err, ErrAlreadyMaxStage)
}

func TestAutoUpgrade(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	_, err := h.svc.Create(ctx, userID, models.KindTree)
	require.NoError(t, err)

	upgraded, err := h.svc.AutoUpgrade(ctx, userID)
	require.NoError(t, err)
	assert.False(t, upgraded)

	_, err = h.ledger.ApplyDelta(ctx, userID, 100, "test", "")
	require.NoError(t, err)

	upgraded, err = h.svc.AutoUpgrade(ctx, userID)
	require.NoError(t, err)
	assert.True(t, upgraded)

	carrier, err := h.repo.GetCarrier(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, carrier.Stage)
}

func TestRecordGrowth(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	_, err := h.svc.Create(ctx, userID, models.KindTree)
	require.NoError(t, err)

	require.NoError(t, h.svc.RecordGrowth(ctx, userID, 2))
	require.NoError(t, h.svc.RecordGrowth(ctx, userID, 0))

	carrier, err := h.repo.GetCarrier(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, carrier.GrowthProgress)
}
