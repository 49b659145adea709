package service

import "carbon-forest-backend/internal/common/apperr"

var (
	ErrInvalidCategory = apperr.New(apperr.KindValidation, "unknown activity category")
	ErrInvalidValue    = apperr.New(apperr.KindValidation, "activity value must be positive")
	ErrInvalidDate     = apperr.New(apperr.KindValidation, "date must be YYYY-MM-DD")
	ErrInvalidPeriod   = apperr.New(apperr.KindValidation, "period must be day, week, month or year")
	ErrValueRequired   = apperr.New(apperr.KindValidation, "value is required when changing the category")
	ErrRecordNotFound  = apperr.New(apperr.KindNotFound, "emission record not found")
)
