package views

import (
	"fmt"

	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/models"
)

const (
	scatterTitle = "Average Speed against Time"
	scatterColor = "black"
	bandOpacity  = 0.5
)

type hourRange struct{ from, to int }

var (
	peakRanges    = []hourRange{{6, 9}, {18, 20}}
	nonPeakRanges = []hourRange{{9, 18}, {20, 24}, {0, 6}}
	bandColors    = map[string]string{
		models.PeakHour:    "#f26d99",
		models.NonPeakHour: "#66e9ff",
	}
)

// PeakScatter plots every (hour, speed) point and shades the hour bands
// whose tags are selected. The selection never changes the points.
func PeakScatter(ds *dataset.Store, selection []string) (models.ScatterView, error) {
	selected, err := parseHours(selection)
	if err != nil {
		return models.ScatterView{}, err
	}

	hourly := ds.HourlySpeeds()
	view := models.ScatterView{
		Title:  scatterTitle,
		Color:  scatterColor,
		Points: make([]models.ScatterPoint, 0, len(hourly)),
		Bands:  []models.Band{},
	}
	for _, h := range hourly {
		view.Points = append(view.Points, models.ScatterPoint{Hour: h.Hour, Speed: h.Speed})
	}

	if selected[models.PeakHour] {
		view.Bands = append(view.Bands, bands(models.PeakHour, peakRanges)...)
	}
	if selected[models.NonPeakHour] {
		view.Bands = append(view.Bands, bands(models.NonPeakHour, nonPeakRanges)...)
	}
	return view, nil
}

func parseHours(selection []string) (map[string]bool, error) {
	selected := make(map[string]bool, len(selection))
	for _, tag := range selection {
		if _, ok := bandColors[tag]; !ok {
			return nil, fmt.Errorf("%w: unknown hour tag %q", ErrInvalidControl, tag)
		}
		selected[tag] = true
	}
	return selected, nil
}

func bands(tag string, ranges []hourRange) []models.Band {
	out := make([]models.Band, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, models.Band{
			Tag:     tag,
			From:    r.from,
			To:      r.to,
			Color:   bandColors[tag],
			Opacity: bandOpacity,
		})
	}
	return out
}
