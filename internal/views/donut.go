package views

import (
	"fmt"

	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/models"
)

const (
	donutTitle = "Total Count of Types of Events in month of June"
	donutHole  = 0.5
	allRing    = "All drivers"
)

// EventTypeDonut breaks events down by type, once for the whole fleet and
// once for driver. Both rings list the same categories in the same order.
func EventTypeDonut(ds *dataset.Store, driver string) (models.DonutView, error) {
	if driver == "" {
		return models.DonutView{}, fmt.Errorf("%w: driver is required", ErrInvalidControl)
	}

	categories := ds.EventTypes()
	allCounts := make(map[string]int, len(categories))
	driverCounts := make(map[string]int, len(categories))
	ds.ForEachEvent(func(e models.Event) {
		allCounts[e.EventType]++
		if e.Driver == driver {
			driverCounts[e.EventType]++
		}
	})

	selected := ring(driver, categories, driverCounts)
	return models.DonutView{
		Title:      donutTitle,
		Driver:     driver,
		Categories: categories,
		Hole:       donutHole,
		All:        ring(allRing, categories, allCounts),
		Selected:   selected,
		Empty:      selected.Total == 0,
	}, nil
}

func ring(name string, categories []string, counts map[string]int) models.DonutRing {
	r := models.DonutRing{Name: name, Slices: make([]models.DonutSlice, 0, len(categories))}
	for _, c := range categories {
		r.Total += counts[c]
	}
	for _, c := range categories {
		s := models.DonutSlice{EventType: c, Count: counts[c]}
		if r.Total > 0 {
			s.Proportion = float64(s.Count) / float64(r.Total)
		}
		r.Slices = append(r.Slices, s)
	}
	return r
}
