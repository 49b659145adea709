package repository

import (
	"context"

	"carbon-forest-backend/internal/features/social/models"
)

type Repository interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	InsertFriendship(ctx context.Context, f *models.Friendship) error
	GetFriendship(ctx context.Context, id string) (*models.Friendship, error)
	// FindBetween returns any friendship row connecting the two users in
	// either direction.
	FindBetween(ctx context.Context, userID, otherID string) (*models.Friendship, error)
	SetStatus(ctx context.Context, id string, from, to models.FriendshipStatus) (bool, error)
	DeleteFriendship(ctx context.Context, id string) (bool, error)
	ListFriends(ctx context.Context, userID string) ([]models.Friend, error)
	ListIncomingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error)
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
	LeaderboardByEnergy(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	LeaderboardByStage(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}
