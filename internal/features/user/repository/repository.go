package repository

import (
	"context"

	"carbon-forest-backend/internal/features/user/models"
)

type Repository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
}
