package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"bus-telemetry-dashboard/internal/models"
	"bus-telemetry-dashboard/internal/views"
)

// ErrUnknownControl is returned for a control name that has no binding
var ErrUnknownControl = errors.New("unknown control")

// Control names a UI input
type Control string

const (
	DaySlider      Control = "slider"
	MapHover       Control = "map-hover"
	DriverDropdown Control = "driver-dropdown"
	HourChecklist  Control = "hour-checklist"
)

// Widget names a display region
type Widget string

const (
	Cards    Widget = "cards"
	BarFig   Widget = "bar-fig"
	MapFig   Widget = "map-fig"
	LineFig  Widget = "line-fig"
	DonutFig Widget = "donut-fig"
	DotFig   Widget = "dot-fig"
)

// Binding routes a view's output to a widget
type Binding struct {
	Widget Widget     `json:"widget"`
	View   views.Name `json:"view"`
}

// Bindings lists, per control, the views recomputed when it changes
var Bindings = map[Control][]Binding{
	DaySlider: {
		{Widget: Cards, View: views.DaySummaryView},
		{Widget: BarFig, View: views.BarView},
		{Widget: MapFig, View: views.MapView},
	},
	MapHover: {
		{Widget: LineFig, View: views.LineView},
	},
	DriverDropdown: {
		{Widget: DonutFig, View: views.DonutView},
	},
	HourChecklist: {
		{Widget: DotFig, View: views.ScatterView},
	},
}

// Controls lists the controls in the order their widgets are laid out
var Controls = []Control{DaySlider, MapHover, DriverDropdown, HourChecklist}

// ParseControl validates a control name
func ParseControl(s string) (Control, error) {
	c := Control(s)
	if _, ok := Bindings[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownControl, s)
	}
	return c, nil
}

// WidgetFor returns the widget that displays view
func WidgetFor(name views.Name) (Widget, bool) {
	for _, c := range Controls {
		for _, b := range Bindings[c] {
			if b.View == name {
				return b.Widget, true
			}
		}
	}
	return "", false
}

// Apply decodes a control's new value into state. Only the JSON shape is
// checked here; whether the value yields data is up to the bound views.
func Apply(state *models.ControlState, control Control, value json.RawMessage) error {
	if control != MapHover && isNull(value) {
		return fmt.Errorf("%w: %s needs a value", views.ErrInvalidControl, control)
	}
	switch control {
	case DaySlider:
		var day int
		if err := json.Unmarshal(value, &day); err != nil {
			return fmt.Errorf("%w: day must be an integer: %v", views.ErrInvalidControl, err)
		}
		state.Day = day
	case MapHover:
		var hover *models.DriverVehicle
		if err := json.Unmarshal(value, &hover); err != nil {
			return fmt.Errorf("%w: hover must be {driver, vehicle} or null: %v", views.ErrInvalidControl, err)
		}
		if hover != nil && (hover.Driver == "" || hover.Vehicle == "") {
			return fmt.Errorf("%w: hover needs both driver and vehicle", views.ErrInvalidControl)
		}
		state.Hover = hover
	case DriverDropdown:
		var driver string
		if err := json.Unmarshal(value, &driver); err != nil {
			return fmt.Errorf("%w: driver must be a string: %v", views.ErrInvalidControl, err)
		}
		state.Driver = driver
	case HourChecklist:
		var hours []string
		if err := json.Unmarshal(value, &hours); err != nil {
			return fmt.Errorf("%w: hours must be a list of tags: %v", views.ErrInvalidControl, err)
		}
		if hours == nil {
			hours = []string{}
		}
		state.Hours = hours
	default:
		return fmt.Errorf("%w: %q", ErrUnknownControl, control)
	}
	return nil
}

func isNull(value json.RawMessage) bool {
	v := bytes.TrimSpace(value)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}
