package models

import "time"

const (
	// BallTTL is how long an energy ball stays collectable.
	BallTTL = 24 * time.Hour
	// MaxAvailableBalls is the per-user cap on simultaneously available balls.
	MaxAvailableBalls = 5
	// OverflowRate is the fraction of an expired ball's value that becomes
	// claimable overflow energy.
	OverflowRate = 0.5
	// HelperShare / OwnerShare split a claimed overflow pool.
	HelperShare = 0.3
	OwnerShare  = 0.7
)

// Ball amounts and their draw weights. This distribution is a tunable
// policy, not a contract; the draw goes through a seedable source.
var (
	BallAmounts = []float64{5, 10, 15}
	BallWeights = []int{60, 30, 10}
)

// levelThresholds maps experience level to the accumulated energy needed to
// reach it. Levels only ever go up.
var levelThresholds = []struct {
	Level int
	Total float64
}{
	{1, 0},
	{2, 100},
	{3, 500},
	{4, 2000},
	{5, 5000},
}

// LevelFor returns the highest level whose threshold the accumulated total
// meets.
func LevelFor(total float64) int {
	level := 1
	for _, t := range levelThresholds {
		if total >= t.Total {
			level = t.Level
		}
	}
	return level
}

// Account is a user's carbon account. TotalEnergy is the monotonic lifetime
// total; CurrentEnergy is the spendable balance capped by the carrier
// stage's ceiling.
type Account struct {
	UserID          string    `json:"user_id"`
	TotalEnergy     float64   `json:"total_energy"`
	CurrentEnergy   float64   `json:"current_energy"`
	TotalEnergyUsed float64   `json:"total_energy_used"`
	CarbonFootprint float64   `json:"carbon_footprint"`
	CarbonReduction float64   `json:"carbon_reduction"`
	Level           int       `json:"level"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BallStatus string

const (
	BallAvailable BallStatus = "available"
	BallCollected BallStatus = "collected"
	BallExpired   BallStatus = "expired"
)

type EnergyBall struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Amount      float64    `json:"amount"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	Status      BallStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CollectedAt *time.Time `json:"collected_at,omitempty"`
}

// Overflow is the reduced-value remainder of an expired ball, claimable
// exactly once by a friend of the owner.
type Overflow struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	BallID    string     `json:"ball_id"`
	Amount    float64    `json:"amount"`
	Claimed   bool       `json:"claimed"`
	ClaimedBy string     `json:"claimed_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
}

type TxType string

const (
	TxGain  TxType = "gain"
	TxSpend TxType = "spend"
)

// Transaction is one row of the audit log kept alongside every balance
// change.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        TxType    `json:"type"`
	Amount      float64   `json:"amount"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type CollectResult struct {
	BallID          string  `json:"ball_id"`
	EnergyAmount    float64 `json:"energy_amount"`
	EnergyApplied   float64 `json:"energy_applied"`
	CarrierUpgraded bool    `json:"carrier_upgraded"`
}

type WaterResult struct {
	BallsGenerated int `json:"balls_generated"`
}

type ClaimResult struct {
	HelperGain float64 `json:"helper_gain"`
	OwnerKeep  float64 `json:"owner_keep"`
}
