package models

import "time"

// Day range covered by the dataset (one month).
const (
	FirstDay = 1
	LastDay  = 30
)

// Checklist tags for the peak/off-peak scatter.
const (
	PeakHour    = "peak-hour"
	NonPeakHour = "non-peak-hour"
)

// DriverVehicle identifies the driver+vehicle pair picked by hovering the map
type DriverVehicle struct {
	Driver  string `json:"driver"`
	Vehicle string `json:"vehicle"`
}

// ControlState is the current value of every UI control in one session
type ControlState struct {
	Day    int            `json:"day"`
	Driver string         `json:"driver"`
	Hover  *DriverVehicle `json:"hover,omitempty"` // nil until a map point is hovered
	Hours  []string       `json:"hours"`
}

// Session is a single interactive dashboard session
type Session struct {
	ID        string       `json:"id"`
	State     ControlState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
