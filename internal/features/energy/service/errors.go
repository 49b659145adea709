package service

import "carbon-forest-backend/internal/common/apperr"

var (
	ErrAccountNotFound       = apperr.New(apperr.KindNotFound, "carbon account not found")
	ErrInsufficientEnergy    = apperr.New(apperr.KindConflict, "insufficient energy")
	ErrBallLimitExceeded     = apperr.New(apperr.KindConflict, "energy ball limit reached")
	ErrBallNotFoundOrExpired = apperr.New(apperr.KindNotFound, "energy ball not found or expired")
	ErrSelfHelpNotAllowed    = apperr.New(apperr.KindPolicy, "cannot claim your own overflow energy")
	ErrNotFriends            = apperr.New(apperr.KindPolicy, "overflow energy can only be claimed for a friend")
	ErrNothingToClaim        = apperr.New(apperr.KindConflict, "no overflow energy to claim")
)
