package views

import (
	"fmt"

	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/models"
)

// DaySummary returns the card values for day
func DaySummary(ds *dataset.Store, day int) (models.DaySummary, error) {
	if err := checkDay(day); err != nil {
		return models.DaySummary{}, err
	}
	row, ok := ds.DailySummary(day)
	if !ok {
		return models.DaySummary{}, fmt.Errorf("%w: no summary row for day %d", ErrDayNotFound, day)
	}
	return models.DaySummary{
		Day:          row.Day,
		EventCount:   row.EventCount,
		HighestSpeed: formatSpeed(row.HighestSpeed),
		LowestSpeed:  formatSpeed(row.LowestSpeed),
	}, nil
}
