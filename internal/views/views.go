// Package views computes the dashboard's derived views.
//
// Every function here is a pure function of its control value and the
// read-only dataset: the same inputs always give the same view, and nothing
// is cached between calls.
package views

import (
	"errors"
	"fmt"
	"strconv"

	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/models"
)

var (
	// ErrDayNotFound is returned when no daily summary row exists for a day
	ErrDayNotFound = errors.New("day not found")
	// ErrUnknownView is returned for a view name that does not exist
	ErrUnknownView = errors.New("unknown view")
	// ErrInvalidControl is returned when a control value cannot be used
	ErrInvalidControl = errors.New("invalid control value")
)

// Name identifies a derived view
type Name string

const (
	DaySummaryView Name = "day-summary"
	BarView        Name = "bar"
	MapView        Name = "map"
	LineView       Name = "line"
	DonutView      Name = "donut"
	ScatterView    Name = "scatter"
)

// All lists every derived view in display order
var All = []Name{DaySummaryView, BarView, MapView, LineView, DonutView, ScatterView}

// ParseName validates a view name
func ParseName(s string) (Name, error) {
	for _, n := range All {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Options carries the configured inputs that are not control values
type Options struct {
	DefaultPair models.DriverVehicle
	MapToken    string
}

// Pair resolves the driver+vehicle pair for the line view. A session that
// has not hovered the map, or has cleared its hover, uses the default pair.
func (o Options) Pair(state models.ControlState) models.DriverVehicle {
	if state.Hover != nil && state.Hover.Driver != "" && state.Hover.Vehicle != "" {
		return *state.Hover
	}
	return o.DefaultPair
}

// Compute evaluates one view against the control state
func Compute(ds *dataset.Store, name Name, state models.ControlState, opts Options) (interface{}, error) {
	switch name {
	case DaySummaryView:
		return DaySummary(ds, state.Day)
	case BarView:
		return DailyEventBars(ds, state.Day)
	case MapView:
		return EventMap(ds, state.Day, opts.MapToken)
	case LineView:
		return DriverSpeedLine(ds, opts.Pair(state))
	case DonutView:
		return EventTypeDonut(ds, state.Driver)
	case ScatterView:
		return PeakScatter(ds, state.Hours)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
}

func checkDay(day int) error {
	if day < models.FirstDay || day > models.LastDay {
		return fmt.Errorf("%w: %d outside [%d,%d]", ErrDayNotFound, day, models.FirstDay, models.LastDay)
	}
	return nil
}

func formatSpeed(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " km/h"
}
