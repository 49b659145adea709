package service

import "carbon-forest-backend/internal/common/apperr"

var (
	ErrSelfFriendship    = apperr.New(apperr.KindValidation, "cannot befriend yourself")
	ErrUserNotFound      = apperr.New(apperr.KindNotFound, "user not found")
	ErrFriendshipExists  = apperr.New(apperr.KindConflict, "friendship or request already exists")
	ErrRequestNotFound   = apperr.New(apperr.KindNotFound, "friend request not found")
	ErrNotYourRequest    = apperr.New(apperr.KindPolicy, "only the recipient can answer a friend request")
	ErrNotYourFriendship = apperr.New(apperr.KindPolicy, "friendship does not involve you")
	ErrInvalidBoard      = apperr.New(apperr.KindValidation, "leaderboard type must be energy or stage")
)
