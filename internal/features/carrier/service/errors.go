package service

import "carbon-forest-backend/internal/common/apperr"

var (
	ErrCarrierNotFound    = apperr.New(apperr.KindNotFound, "carrier not found")
	ErrCarrierExists      = apperr.New(apperr.KindConflict, "carrier already exists")
	ErrUnsupportedKind    = apperr.New(apperr.KindValidation, "unsupported carrier kind")
	ErrAlreadyMaxStage    = apperr.New(apperr.KindConflict, "carrier is already at the final stage")
	ErrInsufficientEnergy = apperr.New(apperr.KindConflict, "not enough energy to upgrade")
)
