package models

// Event represents a single telemetry event recorded on a bus
type Event struct {
	Day       int     `json:"day"`
	Hour      int     `json:"hour"`
	Vehicle   string  `json:"vehicle"`
	Driver    string  `json:"driver"`
	EventType string  `json:"event"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"` // km/h
}

// DailySummary holds the precomputed per-day aggregates
type DailySummary struct {
	Day          int     `json:"day"`
	EventCount   int     `json:"event_count"`
	HighestSpeed float64 `json:"highest_speed"`
	LowestSpeed  float64 `json:"lowest_speed"`
}

// SummaryRow is one named row of the month-wide summary table
type SummaryRow struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// OverallSummary is the month-wide summary table. Columns names the value
// columns shared by every row.
type OverallSummary struct {
	Columns []string     `json:"columns"`
	Rows    []SummaryRow `json:"rows"`
}

// DailyAverageSpeed is the fleet-wide average speed for one day
type DailyAverageSpeed struct {
	Day   int     `json:"day"`
	Speed float64 `json:"speed"`
}

// HourlySpeed is one (hour, speed) observation
type HourlySpeed struct {
	Hour  int     `json:"hour"`
	Speed float64 `json:"speed"`
}
