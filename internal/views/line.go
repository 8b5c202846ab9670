package views

import (
	"fmt"
	"sort"

	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/models"
)

const (
	allDriversName  = "Avg. all"
	allDriversColor = "rgb(255, 0, 0)"
	driverColor     = "rgb(0, 0, 0)"
	lineShape       = "spline"
	lineYMax        = 50
)

// DriverSpeedLine compares the daily mean speed of one driver+vehicle pair
// with the fleet-wide daily average. Days on which the pair has no events are
// left out of the driver series; the line is drawn across the gap.
func DriverSpeedLine(ds *dataset.Store, pair models.DriverVehicle) (models.LineView, error) {
	if pair.Driver == "" || pair.Vehicle == "" {
		return models.LineView{}, fmt.Errorf("%w: driver and vehicle are required", ErrInvalidControl)
	}

	all := ds.DailyAverageSpeeds()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Day < all[j].Day })
	allPoints := make([]models.LinePoint, 0, len(all))
	for _, a := range all {
		allPoints = append(allPoints, models.LinePoint{Day: a.Day, Speed: a.Speed})
	}

	type acc struct {
		sum float64
		n   int
	}
	byDay := make(map[int]*acc)
	ds.ForEachEvent(func(e models.Event) {
		if e.Driver != pair.Driver || e.Vehicle != pair.Vehicle {
			return
		}
		a, ok := byDay[e.Day]
		if !ok {
			a = &acc{}
			byDay[e.Day] = a
		}
		a.sum += e.Speed
		a.n++
	})

	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)
	driverPoints := make([]models.LinePoint, 0, len(days))
	for _, d := range days {
		a := byDay[d]
		driverPoints = append(driverPoints, models.LinePoint{Day: d, Speed: a.sum / float64(a.n)})
	}

	return models.LineView{
		Title: fmt.Sprintf("Driver: %s, Vehicle: %s", pair.Driver, pair.Vehicle),
		Pair:  pair,
		AllDays: models.LineSeries{
			Name:        allDriversName,
			Color:       allDriversColor,
			Shape:       lineShape,
			ConnectGaps: true,
			Points:      allPoints,
		},
		Driver: models.LineSeries{
			Name:        pair.Driver,
			Color:       driverColor,
			Shape:       lineShape,
			ConnectGaps: true,
			Points:      driverPoints,
		},
		YMin:  0,
		YMax:  lineYMax,
		Empty: len(driverPoints) == 0,
	}, nil
}
