package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"carbon-forest-backend/internal/common/apperr"
	"carbon-forest-backend/internal/common/cache"
	"carbon-forest-backend/internal/common/logger"
	"carbon-forest-backend/internal/features/social/models"
	"carbon-forest-backend/internal/features/social/repository"
)

const (
	leaderboardSize = 50
	leaderboardTTL  = time.Minute
)

// Service manages friendships and the cached leaderboards. Friendships gate
// the overflow-claim policy, so AreFriends is part of the public surface.
type Service struct {
	repo  repository.Repository
	cache *cache.Service
	now   func() time.Time
}

func New(repo repository.Repository, c *cache.Service) *Service {
	return &Service{repo: repo, cache: c, now: time.Now}
}

// Request sends a friend request to another user.
func (s *Service) Request(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	if userID == friendID {
		return nil, ErrSelfFriendship
	}
	exists, err := s.repo.UserExists(ctx, friendID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}
	between, err := s.repo.FindBetween(ctx, userID, friendID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if between != nil {
		return nil, ErrFriendshipExists
	}
	f := models.Friendship{
		ID:        uuid.NewString(),
		UserID:    userID,
		FriendID:  friendID,
		Status:    models.StatusPending,
		CreatedAt: s.now(),
	}
	if err := s.repo.InsertFriendship(ctx, &f); err != nil {
		return nil, apperr.Storage(err)
	}
	logger.Info().Str("user_id", userID).Str("friend_id", friendID).Msg("Friend request sent")
	return &f, nil
}

// Accept confirms a pending request. Only the recipient may accept.
func (s *Service) Accept(ctx context.Context, userID, friendshipID string) error {
	return s.answer(ctx, userID, friendshipID, models.StatusAccepted)
}

// Reject declines a pending request and removes it.
func (s *Service) Reject(ctx context.Context, userID, friendshipID string) error {
	f, err := s.pendingFor(ctx, userID, friendshipID)
	if err != nil {
		return err
	}
	ok, err := s.repo.DeleteFriendship(ctx, f.ID)
	if err != nil {
		return apperr.Storage(err)
	}
	if !ok {
		return ErrRequestNotFound
	}
	return nil
}

func (s *Service) answer(ctx context.Context, userID, friendshipID string, to models.FriendshipStatus) error {
	f, err := s.pendingFor(ctx, userID, friendshipID)
	if err != nil {
		return err
	}
	ok, err := s.repo.SetStatus(ctx, f.ID, models.StatusPending, to)
	if err != nil {
		return apperr.Storage(err)
	}
	if !ok {
		return ErrRequestNotFound
	}
	return nil
}

func (s *Service) pendingFor(ctx context.Context, userID, friendshipID string) (*models.Friendship, error) {
	f, err := s.repo.GetFriendship(ctx, friendshipID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if f == nil || f.Status != models.StatusPending {
		return nil, ErrRequestNotFound
	}
	if f.FriendID != userID {
		return nil, ErrNotYourRequest
	}
	return f, nil
}

// Remove deletes an accepted friendship. Either side may remove it.
func (s *Service) Remove(ctx context.Context, userID, friendshipID string) error {
	f, err := s.repo.GetFriendship(ctx, friendshipID)
	if err != nil {
		return apperr.Storage(err)
	}
	if f == nil {
		return ErrRequestNotFound
	}
	if f.UserID != userID && f.FriendID != userID {
		return ErrNotYourFriendship
	}
	ok, err := s.repo.DeleteFriendship(ctx, f.ID)
	if err != nil {
		return apperr.Storage(err)
	}
	if !ok {
		return ErrRequestNotFound
	}
	return nil
}

// Friends lists the user's accepted connections.
func (s *Service) Friends(ctx context.Context, userID string) ([]models.Friend, error) {
	friends, err := s.repo.ListFriends(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return friends, nil
}

// Requests lists pending requests addressed to the user.
func (s *Service) Requests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	requests, err := s.repo.ListIncomingRequests(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return requests, nil
}

// AreFriends reports an accepted friendship in either direction.
func (s *Service) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	return s.repo.AreFriends(ctx, userID, otherID)
}

// Leaderboard returns the global ranking, cached for a minute.
func (s *Service) Leaderboard(ctx context.Context, boardType models.LeaderboardType) ([]models.LeaderboardEntry, error) {
	if boardType == "" {
		boardType = models.LeaderboardEnergy
	}
	if boardType != models.LeaderboardEnergy && boardType != models.LeaderboardStage {
		return nil, ErrInvalidBoard
	}

	key := "leaderboard:" + string(boardType)
	var cached []models.LeaderboardEntry
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.Warn().Err(err).Str("key", key).Msg("Leaderboard cache read failed")
	}

	var (
		entries []models.LeaderboardEntry
		err     error
	)
	switch boardType {
	case models.LeaderboardEnergy:
		entries, err = s.repo.LeaderboardByEnergy(ctx, leaderboardSize)
	case models.LeaderboardStage:
		entries, err = s.repo.LeaderboardByStage(ctx, leaderboardSize)
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if err := s.cache.Set(ctx, key, entries, leaderboardTTL); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Leaderboard cache write failed")
	}
	return entries, nil
}
