package views

import (
	"testing"

	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/models"
)

var testEvents = []models.Event{
	{Day: 1, Hour: 7, Vehicle: "SBS1234A", Driver: "Ahmad", EventType: "Harsh Braking", Latitude: 1.35, Longitude: 103.82, Speed: 30},
	{Day: 1, Hour: 8, Vehicle: "SBS6289D", Driver: "Ridwan", EventType: "Speeding", Latitude: 1.36, Longitude: 103.85, Speed: 40},
	{Day: 1, Hour: 19, Vehicle: "SBS6289D", Driver: "Ridwan", EventType: "Harsh Braking", Latitude: 1.30, Longitude: 103.80, Speed: 20},
	{Day: 2, Hour: 10, Vehicle: "SBS1234A", Driver: "Siti", EventType: "Speeding", Latitude: 1.40, Longitude: 103.90, Speed: 45},
	{Day: 3, Hour: 12, Vehicle: "SBS6289D", Driver: "Ridwan", EventType: "Speeding", Latitude: 1.33, Longitude: 103.84, Speed: 35},
	{Day: 3, Hour: 22, Vehicle: "SBS1234A", Driver: "Ridwan", EventType: "Idling", Latitude: 1.32, Longitude: 103.83, Speed: 5},
}

func newTestStore(t *testing.T) *dataset.Store {
	t.Helper()

	var daily []models.DailySummary
	var avg []models.DailyAverageSpeed
	// Day 30 is left out of the summary on purpose.
	for d := models.LastDay - 1; d >= models.FirstDay; d-- {
		daily = append(daily, models.DailySummary{Day: d, EventCount: d * 2, HighestSpeed: 50 + float64(d), LowestSpeed: 1.5})
	}
	for d := models.FirstDay; d <= models.LastDay; d++ {
		if d == 15 {
			continue
		}
		avg = append(avg, models.DailyAverageSpeed{Day: d, Speed: 20 + float64(d)/2})
	}
	overall := models.OverallSummary{
		Columns: []string{"Speed", "Events"},
		Rows: []models.SummaryRow{
			{Label: "mean", Values: []float64{27.456, 3.2}},
			{Label: "max", Values: []float64{80, 12}},
		},
	}
	hourly := []models.HourlySpeed{{Hour: 0, Speed: 10}, {Hour: 7, Speed: 22.5}, {Hour: 7, Speed: 30}, {Hour: 18, Speed: 18}, {Hour: 23, Speed: 40}}

	ds, err := dataset.New(testEvents, daily, overall, avg, hourly)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return ds
}
