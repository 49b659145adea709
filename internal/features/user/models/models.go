package models

import (
	"time"

	carriermodels "carbon-forest-backend/internal/features/carrier/models"
	energymodels "carbon-forest-backend/internal/features/energy/models"
)

type UserType string

const (
	TypePersonal   UserType = "personal"
	TypeEnterprise UserType = "enterprise"
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	UserType  UserType  `json:"user_type"`
	CreatedAt time.Time `json:"created_at"`

	// PasswordHash never leaves the server.
	PasswordHash string `json:"-"`
}

// AuthResult is the register/login payload: the user plus a signed token.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Profile aggregates the user with their game state for /users/me.
type Profile struct {
	User        User                      `json:"user"`
	Account     *energymodels.Account     `json:"account,omitempty"`
	Carrier     *carriermodels.Evaluation `json:"carrier,omitempty"`
	Balls       []energymodels.EnergyBall `json:"balls"`
	TodayEnergy float64                   `json:"today_energy"`
}
