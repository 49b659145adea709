package models

import "time"

type FriendshipStatus string

const (
	StatusPending  FriendshipStatus = "pending"
	StatusAccepted FriendshipStatus = "accepted"
)

// Friendship is a directed request row; user_id asked, friend_id answers.
type Friendship struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	FriendID  string           `json:"friend_id"`
	Status    FriendshipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// Friend is one accepted connection, seen from the requesting user's side.
type Friend struct {
	FriendshipID string    `json:"friendship_id"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Nickname     string    `json:"nickname"`
	Since        time.Time `json:"since"`
}

// FriendRequest is an incoming pending request.
type FriendRequest struct {
	FriendshipID string    `json:"friendship_id"`
	FromUserID   string    `json:"from_user_id"`
	FromUsername string    `json:"from_username"`
	CreatedAt    time.Time `json:"created_at"`
}

type LeaderboardType string

const (
	LeaderboardEnergy LeaderboardType = "energy"
	LeaderboardStage  LeaderboardType = "stage"
)

// LeaderboardEntry is one ranked row. Stage fields are zero for the energy
// board and vice versa.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	Nickname    string  `json:"nickname"`
	TotalEnergy float64 `json:"total_energy,omitempty"`
	Level       int     `json:"level,omitempty"`
	Stage       int     `json:"stage,omitempty"`
	StageName   string  `json:"stage_name,omitempty"`
}
