package service

import (
	"context"
	"math"
	"time"

	"carbon-forest-backend/internal/common/apperr"
	"carbon-forest-backend/internal/common/logger"
	carriermodels "carbon-forest-backend/internal/features/carrier/models"
	"carbon-forest-backend/internal/features/energy/models"
	"carbon-forest-backend/internal/features/energy/repository"
	"carbon-forest-backend/internal/platform/db"
)

// Ledger is the sole mutator of a user's accumulated and available energy.
// Every multi-step change runs inside a transaction; when the caller already
// opened one, the ledger joins it instead of nesting.
type Ledger struct {
	db   *db.DB
	repo repository.Repository
	now  func() time.Time
}

func NewLedger(d *db.DB, repo repository.Repository) *Ledger {
	return &Ledger{db: d, repo: repo, now: time.Now}
}

// CreateAccount initializes an empty carbon account for a new user.
func (l *Ledger) CreateAccount(ctx context.Context, userID string) error {
	if err := l.repo.CreateAccount(ctx, userID, l.now()); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// Account returns the user's carbon account.
func (l *Ledger) Account(ctx context.Context, userID string) (*models.Account, error) {
	account, err := l.repo.GetAccount(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// ApplyDelta credits rawDelta to the account, clamped so the available
// balance never exceeds the current carrier stage's ceiling. A fully clamped
// accrual is a structural no-op that still succeeds; the accumulated total
// only moves by what was actually applied.
func (l *Ledger) ApplyDelta(ctx context.Context, userID string, rawDelta float64, source, description string) (float64, error) {
	var applied float64
	err := l.db.RunInTx(ctx, func(ctx context.Context) error {
		account, err := l.Account(ctx, userID)
		if err != nil {
			return err
		}

		ceiling := l.stageCeiling(ctx, userID)
		applied = round2(math.Min(math.Max(rawDelta, 0), ceiling-account.CurrentEnergy))
		if applied <= 0 {
			applied = 0
			logger.Debug().
				Str("user_id", userID).
				Float64("raw_delta", rawDelta).
				Float64("ceiling", ceiling).
				Msg("Energy accrual clamped to zero")
			return nil
		}

		now := l.now()
		if err := l.repo.ApplyAccrual(ctx, userID, applied, now); err != nil {
			return apperr.Storage(err)
		}
		if err := l.repo.InsertTransaction(ctx, &models.Transaction{
			UserID:      userID,
			Type:        models.TxGain,
			Amount:      applied,
			Source:      source,
			Description: description,
			CreatedAt:   now,
		}); err != nil {
			return apperr.Storage(err)
		}

		// Levels derive from the lifetime total and never go down.
		newLevel := models.LevelFor(account.TotalEnergy + applied)
		if newLevel > account.Level {
			if err := l.repo.SetLevel(ctx, userID, newLevel, now); err != nil {
				return apperr.Storage(err)
			}
			logger.Info().Str("user_id", userID).Int("level", newLevel).Msg("User level up")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// Spend debits amount from the available balance and tracks it in the
// lifetime energy-used counter. Fails when the balance is short.
func (l *Ledger) Spend(ctx context.Context, userID string, amount float64, source, description string) error {
	return l.db.RunInTx(ctx, func(ctx context.Context) error {
		account, err := l.Account(ctx, userID)
		if err != nil {
			return err
		}
		if account.CurrentEnergy < amount {
			return ErrInsufficientEnergy
		}
		now := l.now()
		if err := l.repo.SpendEnergy(ctx, userID, amount, now); err != nil {
			return apperr.Storage(err)
		}
		if err := l.repo.InsertTransaction(ctx, &models.Transaction{
			UserID:      userID,
			Type:        models.TxSpend,
			Amount:      amount,
			Source:      source,
			Description: description,
			CreatedAt:   now,
		}); err != nil {
			return apperr.Storage(err)
		}
		return nil
	})
}

// Transactions returns the audit log, most recent first.
func (l *Ledger) Transactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	txs, err := l.repo.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return txs, nil
}

// stageCeiling resolves the available-energy cap from the carrier stage.
// Accounts without a carrier row fall back to the terminal ceiling, matching
// the store's historical behavior.
func (l *Ledger) stageCeiling(ctx context.Context, userID string) float64 {
	stage, ok, err := l.repo.GetCarrierStage(ctx, userID)
	if err != nil || !ok {
		return carriermodels.MaxEnergy(carriermodels.MaxStage)
	}
	return carriermodels.MaxEnergy(stage)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
