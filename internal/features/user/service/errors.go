package service

import "carbon-forest-backend/internal/common/apperr"

var (
	ErrInvalidUsername    = apperr.New(apperr.KindValidation, "username must be 3-32 characters")
	ErrInvalidEmail       = apperr.New(apperr.KindValidation, "email address is invalid")
	ErrWeakPassword       = apperr.New(apperr.KindValidation, "password must be at least 6 characters")
	ErrUserExists         = apperr.New(apperr.KindConflict, "username or email already registered")
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "invalid username or password")
	ErrUserNotFound       = apperr.New(apperr.KindNotFound, "user not found")
)
