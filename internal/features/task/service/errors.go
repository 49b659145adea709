package service

import "carbon-forest-backend/internal/common/apperr"

var (
	ErrTaskNotFound     = apperr.New(apperr.KindNotFound, "task not found")
	ErrTaskDisabled     = apperr.New(apperr.KindConflict, "task is disabled")
	ErrAlreadyCompleted = apperr.New(apperr.KindConflict, "task already completed")
	ErrOnCooldown       = apperr.New(apperr.KindConflict, "task is on cooldown")
)
