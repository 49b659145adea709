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
	"carbon-forest-backend/internal/features/energy/models"
	"carbon-forest-backend/internal/features/energy/repository"
	"carbon-forest-backend/internal/platform/db"
	"carbon-forest-backend/internal/utils/random"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

type stubFriends struct {
	friends bool
}

func (s stubFriends) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	return s.friends, nil
}

type harness struct {
	db          *db.DB
	repo        repository.Repository
	carrierRepo carrierrepo.Repository
	ledger      *Ledger
	carriers    *carrierservice.Service
	balls       *BallService
	clock       *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	d, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, db.Migrate(ctx, d))

	repo := repository.New(d)
	cRepo := carrierrepo.New(d)
	ledger := NewLedger(d, repo)
	carriers := carrierservice.New(d, cRepo, ledger)
	balls := NewBallService(d, repo, ledger, carriers, random.NewSeeded(1))

	clk := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ledger.now = clk.now
	balls.now = clk.now

	return &harness{
		db:          d,
		repo:        repo,
		carrierRepo: cRepo,
		ledger:      ledger,
		carriers:    carriers,
		balls:       balls,
		clock:       clk,
	}
}

func (h *harness) newUser(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	userID := uuid.NewString()
	require.NoError(t, h.ledger.CreateAccount(ctx, userID))
	require.NoError(t, h.carrierRepo.CreateCarrier(ctx, userID, carriermodels.KindTree, h.clock.t))
	return userID
}

func TestApplyDeltaClampsToStageCeiling(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	applied, err := h.ledger.ApplyDelta(ctx, userID, 95, "test", "")
	require.NoError(t, err)
	assert.Equal(t, 95.0, applied)

	// Stage 1 caps the balance at 100; only 5 of the next 10 fit.
	applied, err = h.ledger.ApplyDelta(ctx, userID, 10, "test", "")
	require.NoError(t, err)
	assert.Equal(t, 5.0, applied)

	account, err := h.ledger.Account(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, account.CurrentEnergy)
	assert.Equal(t, 100.0, account.TotalEnergy)
	assert.Equal(t, 2, account.Level)

	// Fully clamped accrual succeeds but applies nothing and logs no row.
	applied, err = h.ledger.ApplyDelta(ctx, userID, 50, "test", "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, applied)

	txs, err := h.ledger.Transactions(ctx, userID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestApplyDeltaUnknownAccount(t *testing.T) {
	h := newHarness(t)
	_, err := h.ledger.ApplyDelta(context.Background(), "nobody", 10, "test", "")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestSpend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	_, err := h.ledger.ApplyDelta(ctx, userID, 80, "test", "")
	require.NoError(t, err)

	require.NoError(t, h.ledger.Spend(ctx, userID, 50, "test", ""))

	account, err := h.ledger.Account(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, account.CurrentEnergy)
	assert.Equal(t, 50.0, account.TotalEnergyUsed)
	assert.Equal(t, 80.0, account.TotalEnergy)

	err = h.ledger.Spend(ctx, userID, 100, "test", "")
	assert.ErrorIs(t, err, ErrInsufficientEnergy)
}

func TestGenerateRespectsBallLimit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	for i := 0; i < models.MaxAvailableBalls; i++ {
		_, err := h.balls.Generate(ctx, userID, 0)
		require.NoError(t, err)
	}
	_, err := h.balls.Generate(ctx, userID, 0)
	assert.ErrorIs(t, err, ErrBallLimitExceeded)
}

func TestGenerateDrawsWeightedAmounts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	ball, err := h.balls.Generate(ctx, userID, 0)
	require.NoError(t, err)
	assert.Contains(t, models.BallAmounts, ball.Amount)
	assert.GreaterOrEqual(t, ball.Lat, 0.10)
	assert.Less(t, ball.Lat, 0.90)
	assert.Equal(t, h.clock.t.Add(models.BallTTL).Unix(), ball.ExpiresAt.Unix())
}

func TestCollectIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	ball, err := h.balls.Generate(ctx, userID, 10)
	require.NoError(t, err)

	result, err := h.balls.Collect(ctx, userID, ball.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.EnergyAmount)
	assert.Equal(t, 10.0, result.EnergyApplied)

	// Replaying the collect credits nothing.
	_, err = h.balls.Collect(ctx, userID, ball.ID)
	assert.ErrorIs(t, err, ErrBallNotFoundOrExpired)

	account, err := h.ledger.Account(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, account.CurrentEnergy)
}

func TestCollectClampsAndAutoUpgrades(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	_, err := h.ledger.ApplyDelta(ctx, userID, 95, "test", "")
	require.NoError(t, err)

	ball, err := h.balls.Generate(ctx, userID, 10)
	require.NoError(t, err)

	result, err := h.balls.Collect(ctx, userID, ball.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.EnergyApplied)
	assert.True(t, result.CarrierUpgraded)

	// The upgrade consumed the full stage-2 entry cost.
	carrier, err := h.carrierRepo.GetCarrier(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, carrier.Stage)

	account, err := h.ledger.Account(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, account.CurrentEnergy)
	assert.Equal(t, 100.0, account.TotalEnergy)
}

func TestExpiredBallsBecomeOverflow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	ball, err := h.balls.Generate(ctx, userID, 10)
	require.NoError(t, err)

	h.clock.t = h.clock.t.Add(models.BallTTL + time.Minute)

	// Collecting past the TTL fails and triggers nothing.
	_, err = h.balls.Collect(ctx, userID, ball.ID)
	assert.ErrorIs(t, err, ErrBallNotFoundOrExpired)

	// The list read path sweeps the expired ball into overflow.
	available, err := h.balls.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, available)

	sum, err := h.repo.SumUnclaimedOverflow(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, sum)

	// A second sweep finds nothing new.
	processed, err := h.balls.ProcessExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestTodayEnergyCountsOnlyBallCollections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	ball, err := h.balls.Generate(ctx, userID, 10)
	require.NoError(t, err)
	_, err = h.balls.Collect(ctx, userID, ball.ID)
	require.NoError(t, err)

	// Task rewards are gains too but stay out of the collected stat.
	_, err = h.ledger.ApplyDelta(ctx, userID, 20, "task_reward", "")
	require.NoError(t, err)

	today, err := h.balls.TodayEnergy(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, today)

	// A collect from a previous day rolls off at midnight.
	h.clock.t = h.clock.t.Add(24 * time.Hour)
	today, err = h.balls.TodayEnergy(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, today)
}

func TestWaterGeneratesUpToCap(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.newUser(t)

	result, err := h.balls.Water(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.BallsGenerated)

	result, err = h.balls.Water(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.BallsGenerated)

	// Field full: watering still succeeds but grows nothing new.
	result, err = h.balls.Water(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.BallsGenerated)

	carrier, err := h.carrierRepo.GetCarrier(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, carrier.GrowthProgress)
}

func TestOverflowClaimPolicy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.newUser(t)
	helper := h.newUser(t)

	seedOverflow := func(amount float64) {
		require.NoError(t, h.repo.InsertOverflow(ctx, &models.Overflow{
			ID:        uuid.NewString(),
			UserID:    owner,
			BallID:    uuid.NewString(),
			Amount:    amount,
			CreatedAt: h.clock.t,
		}))
	}
	seedOverflow(6)
	seedOverflow(4)

	svc := NewOverflowService(h.db, h.repo, h.ledger, stubFriends{friends: true})
	svc.now = h.clock.now

	_, err := svc.Claim(ctx, owner, owner)
	assert.ErrorIs(t, err, ErrSelfHelpNotAllowed)

	strangers := NewOverflowService(h.db, h.repo, h.ledger, stubFriends{friends: false})
	_, err = strangers.Claim(ctx, helper, owner)
	assert.ErrorIs(t, err, ErrNotFriends)

	_, err = svc.Claim(ctx, helper, "nobody-with-overflow")
	assert.ErrorIs(t, err, ErrNothingToClaim)
}

func TestOverflowClaimSplitsThirtySeventy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.newUser(t)
	helper := h.newUser(t)

	require.NoError(t, h.repo.InsertOverflow(ctx, &models.Overflow{
		ID:        uuid.NewString(),
		UserID:    owner,
		BallID:    uuid.NewString(),
		Amount:    10,
		CreatedAt: h.clock.t,
	}))

	svc := NewOverflowService(h.db, h.repo, h.ledger, stubFriends{friends: true})
	svc.now = h.clock.now

	total, err := svc.Check(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 10.0, total)

	result, err := svc.Claim(ctx, helper, owner)
	require.NoError(t, err)
	assert.Equal(t, 3.0, result.HelperGain)
	assert.Equal(t, 7.0, result.OwnerKeep)

	helperAccount, err := h.ledger.Account(ctx, helper)
	require.NoError(t, err)
	assert.Equal(t, 3.0, helperAccount.CurrentEnergy)

	ownerAccount, err := h.ledger.Account(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 7.0, ownerAccount.CurrentEnergy)

	// The pool is consumed exactly once.
	_, err = svc.Claim(ctx, helper, owner)
	assert.ErrorIs(t, err, ErrNothingToClaim)

	total, err = svc.Check(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}
