package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	carriermodels "carbon-forest-backend/internal/features/carrier/models"
	carrierrepo "carbon-forest-backend/internal/features/carrier/repository"
	carrierservice "carbon-forest-backend/internal/features/carrier/service"
	energyrepo "carbon-forest-backend/internal/features/energy/repository"
	energyservice "carbon-forest-backend/internal/features/energy/service"
	"carbon-forest-backend/internal/features/task/repository"
	"carbon-forest-backend/internal/platform/db"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

type harness struct {
	svc    *Service
	ledger *energyservice.Ledger
	cRepo  carrierrepo.Repository
	clock  *clock
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

	svc := New(d, repository.New(d), ledger, carriers)
	clk := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = clk.now

	return &harness{svc: svc, ledger: ledger, cRepo: cRepo, clock: clk}
}

func (h *harness) newUser(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	userID := uuid.NewString()
	require.NoError(t, h.ledger.CreateAccount(ctx, userID))
	require.NoError(t, h.cRepo.CreateCarrier(ctx, userID, carriermodels.KindTree, h.clock.t))
	return userID
}

func TestListSeedTasks(t *testing.T) {
	h := newHarness(t)
	userID := h.newUser(t)

	tasks, err := h.svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		assert.True(t, task.Available, task.ID)
		assert.Zero(t, task.CompletedCount, task.ID)
	}
}

func TestCompleteAwardsEnergy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	result, err := h.svc.Complete(ctx, userID, "daily-checkin")
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.EnergyReward)
	assert.Equal(t, 10.0, result.EnergyApplied)
	assert.Equal(t, 1, result.CompletedCount)

	account, err := h.ledger.Account(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, account.CurrentEnergy)
}

func TestCompleteCooldown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	_, err := h.svc.Complete(ctx, userID, "daily-checkin")
	require.NoError(t, err)

	_, err = h.svc.Complete(ctx, userID, "daily-checkin")
	assert.ErrorIs(t, err, ErrOnCooldown)

	h.clock.t = h.clock.t.Add(23 * time.Hour)
	_, err = h.svc.Complete(ctx, userID, "daily-checkin")
	assert.ErrorIs(t, err, ErrOnCooldown)

	h.clock.t = h.clock.t.Add(2 * time.Hour)
	result, err := h.svc.Complete(ctx, userID, "daily-checkin")
	require.NoError(t, err)
	assert.Equal(t, 2, result.CompletedCount)

	tasks, err := h.svc.List(ctx, userID)
	require.NoError(t, err)
	for _, task := range tasks {
		if task.ID == "daily-checkin" {
			assert.False(t, task.Available)
			require.NotNil(t, task.AvailableAt)
			assert.Equal(t, h.clock.t.Add(24*time.Hour).Unix(), task.AvailableAt.Unix())
		}
	}
}

func TestCompleteOnceTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	_, err := h.svc.Complete(ctx, userID, "invite-friend")
	require.NoError(t, err)

	_, err = h.svc.Complete(ctx, userID, "invite-friend")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestCompleteUnknownTask(t *testing.T) {
	h := newHarness(t)
	userID := h.newUser(t)

	_, err := h.svc.Complete(context.Background(), userID, "no-such-task")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestCompleteTriggersAutoUpgrade(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	_, err := h.ledger.ApplyDelta(ctx, userID, 95, "test", "")
	require.NoError(t, err)

	// 5 of the 10-point reward fit under the stage-1 ceiling; the full
	// balance then covers the stage-2 entry cost.
	result, err := h.svc.Complete(ctx, userID, "daily-checkin")
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.EnergyApplied)
	assert.True(t, result.CarrierUpgraded)

	carrier, err := h.cRepo.GetCarrier(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, carrier.Stage)
}
