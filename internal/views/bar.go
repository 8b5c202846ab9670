package views

import (
	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/models"
)

const (
	barColor      = "grey"
	barHighlight  = "blue"
	barChartTitle = "No. of events per day."
)

// DailyEventBars returns one bar per day of the month, ordered by day, with
// the selected day highlighted. Days without a summary row get a zero bar.
func DailyEventBars(ds *dataset.Store, day int) (models.BarView, error) {
	if err := checkDay(day); err != nil {
		return models.BarView{}, err
	}

	view := models.BarView{
		Title: barChartTitle,
		Day:   day,
		Bars:  make([]models.Bar, 0, models.LastDay-models.FirstDay+1),
	}
	for d := models.FirstDay; d <= models.LastDay; d++ {
		bar := models.Bar{Day: d, Color: barColor}
		if row, ok := ds.DailySummary(d); ok {
			bar.EventCount = row.EventCount
		}
		if d == day {
			bar.Color = barHighlight
			bar.Highlighted = true
		}
		view.Bars = append(view.Bars, bar)
	}
	return view, nil
}
