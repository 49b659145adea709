package models

import "time"

// Category is the closed set of trackable activity categories. Each maps an
// activity value in its own unit to kilograms of CO2e.
type Category string

const (
	CategoryCompute  Category = "compute"
	CategoryTravel   Category = "travel"
	CategoryShopping Category = "shopping"
	CategoryFood     Category = "food"
	CategoryDaily    Category = "daily"
)

// Factors convert an activity value to kg CO2e.
var Factors = map[Category]float64{
	CategoryCompute:  0.02,
	CategoryTravel:   0.2,
	CategoryShopping: 0.1,
	CategoryFood:     0.05,
	CategoryDaily:    0.03,
}

const (
	// BaselineMultiplier models the conventional alternative the tracked
	// activity replaced.
	BaselineMultiplier = 1.2
	// EnergyPerKg converts avoided kilograms of CO2e to game energy.
	EnergyPerKg = 10.0
)

// Emission is one recorded activity. Amount is the computed emission in kg
// CO2e; Date is the activity's calendar day (YYYY-MM-DD).
type Emission struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Category  Category  `json:"category"`
	Amount    float64   `json:"amount"`
	Note      string    `json:"note"`
	Date      string    `json:"date"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// Computation is the derived footprint math for one activity.
type Computation struct {
	Emission  float64 `json:"emission"`
	Baseline  float64 `json:"baseline"`
	Reduction float64 `json:"reduction"`
	Energy    float64 `json:"energy"`
}

// ActivityResult reports everything a logged activity triggered.
type ActivityResult struct {
	Record          Emission    `json:"record"`
	Computation     Computation `json:"computation"`
	EnergyApplied   float64     `json:"energy_applied"`
	BallGenerated   bool        `json:"ball_generated"`
	CarrierUpgraded bool        `json:"carrier_upgraded"`
}

// CategoryStat is a per-category slice of a stats period.
type CategoryStat struct {
	Category Category `json:"category"`
	Amount   float64  `json:"amount"`
	Count    int      `json:"count"`
}

// DailyStat is a per-day slice of a stats period.
type DailyStat struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Stats summarizes emissions over a period.
type Stats struct {
	Period     string         `json:"period"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Total      float64        `json:"total"`
	Count      int            `json:"count"`
	ByCategory []CategoryStat `json:"by_category"`
	Daily      []DailyStat    `json:"daily"`
}

// ListFilter bounds an emission history query.
type ListFilter struct {
	Category Category
	From     string
	To       string
	Limit    int
	Offset   int
}
