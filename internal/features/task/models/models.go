package models

import "time"

type TaskType string

const (
	TypeDaily TaskType = "daily"
	TypeOnce  TaskType = "once"
)

type Task struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Type          TaskType `json:"type"`
	EnergyReward  float64  `json:"energy_reward"`
	CooldownHours int      `json:"cooldown_hours"`
	Enabled       bool     `json:"enabled"`
}

// TaskStatus is a task joined with the user's completion state.
type TaskStatus struct {
	Task
	CompletedCount  int        `json:"completed_count"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
	Available       bool       `json:"available"`
	AvailableAt     *time.Time `json:"available_at,omitempty"`
}

// CompleteResult reports what a completion awarded.
type CompleteResult struct {
	TaskID          string  `json:"task_id"`
	EnergyReward    float64 `json:"energy_reward"`
	EnergyApplied   float64 `json:"energy_applied"`
	CompletedCount  int     `json:"completed_count"`
	CarrierUpgraded bool    `json:"carrier_upgraded"`
}
