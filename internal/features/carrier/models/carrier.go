package models

import "time"

// MaxStage is the terminal growth stage; no transition leaves it.
const MaxStage = 4

// Kind is the carrier variant. Only the tree is fully modeled; the other
// kinds are recognized but rejected as unsupported rather than silently
// defaulted.
type Kind string

const (
	KindTree     Kind = "tree"
	KindAnimal   Kind = "animal"
	KindBuilding Kind = "building"
)

// energyRequired[s] is the cost of entering stage s (stage 1 is free).
var energyRequired = [MaxStage + 1]float64{0, 0, 100, 1000, 5000}

// maxEnergy[s] is the storable-energy ceiling while in stage s. It doubles
// as the promotion-readiness threshold: a full store means eligible to
// evolve.
var maxEnergy = [MaxStage + 1]float64{0, 100, 1000, 5000, 10000}

var stageNames = [MaxStage + 1]string{"", "seed", "sapling", "tree", "forest"}

// EnergyRequired returns the cost of entering the given stage.
func EnergyRequired(stage int) float64 {
	if stage < 1 || stage > MaxStage {
		return 0
	}
	return energyRequired[stage]
}

// MaxEnergy returns the available-energy ceiling for the given stage.
// Out-of-range stages fall back to the terminal ceiling.
func MaxEnergy(stage int) float64 {
	if stage < 1 || stage > MaxStage {
		return maxEnergy[MaxStage]
	}
	return maxEnergy[stage]
}

// StageName returns the derived display name for a stage.
func StageName(stage int) string {
	if stage < 1 || stage > MaxStage {
		return "unknown"
	}
	return stageNames[stage]
}

type Carrier struct {
	UserID         string    `json:"user_id"`
	Kind           Kind      `json:"kind"`
	Stage          int       `json:"stage"`
	GrowthProgress int       `json:"growth_progress"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StageInfo describes one stage of a carrier for presentation.
type StageInfo struct {
	Stage          int     `json:"stage"`
	Name           string  `json:"name"`
	MaxEnergy      float64 `json:"max_energy"`
	EnergyRequired float64 `json:"energy_required,omitempty"`
}

// Evaluation is the result of the progression check. AvailableEnergy is
// clamped to the current stage's ceiling for display.
type Evaluation struct {
	Current         StageInfo  `json:"current"`
	Next            *StageInfo `json:"next,omitempty"`
	Kind            Kind       `json:"kind"`
	GrowthProgress  int        `json:"growth_progress"`
	AvailableEnergy float64    `json:"available_energy"`
	CanUpgrade      bool       `json:"can_upgrade"`
}

type UpgradeResult struct {
	NewStage        int     `json:"new_stage"`
	NewStageName    string  `json:"new_stage_name"`
	EnergyCost      float64 `json:"energy_cost"`
	RemainingEnergy float64 `json:"remaining_energy"`
}
