package service

import (
	"context"
	"time"

	"carbon-forest-backend/internal/common/apperr"
	"carbon-forest-backend/internal/common/logger"
	"carbon-forest-backend/internal/features/energy/models"
	"carbon-forest-backend/internal/features/energy/repository"
	"carbon-forest-backend/internal/platform/db"
)

// FriendChecker reports whether an accepted friendship exists between two
// users. Implemented by the social feature.
type FriendChecker interface {
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
}

// OverflowService redistributes the reduced-value energy of expired balls:
// a friend may claim the owner's pool, splitting it 30/70 between helper
// and owner in one atomic transfer.
type OverflowService struct {
	db      *db.DB
	repo    repository.Repository
	ledger  *Ledger
	friends FriendChecker
	now     func() time.Time
}

func NewOverflowService(d *db.DB, repo repository.Repository, ledger *Ledger, friends FriendChecker) *OverflowService {
	return &OverflowService{db: d, repo: repo, ledger: ledger, friends: friends, now: time.Now}
}

// Check sums the owner's unclaimed overflow energy.
func (s *OverflowService) Check(ctx context.Context, ownerID string) (float64, error) {
	total, err := s.repo.SumUnclaimedOverflow(ctx, ownerID)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return round2(total), nil
}

// Claim lets helper collect owner's overflow pool. The source records are
// consumed exactly once and both shares are credited through the ledger's
// clamped accrual path; all three balance changes commit together or not at
// all.
func (s *OverflowService) Claim(ctx context.Context, helperID, ownerID string) (*models.ClaimResult, error) {
	if helperID == ownerID {
		return nil, ErrSelfHelpNotAllowed
	}
	friends, err := s.friends.AreFriends(ctx, helperID, ownerID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if !friends {
		return nil, ErrNotFriends
	}

	var result models.ClaimResult
	err = s.db.RunInTx(ctx, func(ctx context.Context) error {
		total, err := s.repo.SumUnclaimedOverflow(ctx, ownerID)
		if err != nil {
			return apperr.Storage(err)
		}
		if total <= 0 {
			return ErrNothingToClaim
		}
		claimed, err := s.repo.ClaimOverflow(ctx, ownerID, helperID, s.now())
		if err != nil {
			return apperr.Storage(err)
		}
		if claimed == 0 {
			return ErrNothingToClaim
		}

		result.HelperGain = round2(total * models.HelperShare)
		result.OwnerKeep = round2(total * models.OwnerShare)

		if _, err := s.ledger.ApplyDelta(ctx, helperID, result.HelperGain,
			"help_collect", "claimed a friend's overflow energy"); err != nil {
			return err
		}
		if _, err := s.ledger.ApplyDelta(ctx, ownerID, result.OwnerKeep,
			"overflow_keep", "retained share of claimed overflow energy"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("helper_id", helperID).Str("owner_id", ownerID).
		Float64("helper_gain", result.HelperGain).Float64("owner_keep", result.OwnerKeep).
		Msg("Overflow energy claimed")
	return &result, nil
}
