package session

import (
	"errors"

	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/models"
	"bus-telemetry-dashboard/internal/views"
)

// Error kinds reported for a view that could not be computed
const (
	KindNotFound       = "not_found"
	KindInvalidControl = "invalid_control"
	KindInternal       = "internal"
)

// ViewError is the typed failure of a single view
type ViewError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Update is the result pushed to one widget
type Update struct {
	Widget Widget      `json:"widget"`
	View   views.Name  `json:"view"`
	Data   interface{} `json:"data,omitempty"`
	Error  *ViewError  `json:"error,omitempty"`
}

// Failed reports whether the view could not be computed
func (u Update) Failed() bool { return u.Error != nil }

// ErrorKind classifies a view error
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, views.ErrDayNotFound):
		return KindNotFound
	case errors.Is(err, views.ErrInvalidControl):
		return KindInvalidControl
	default:
		return KindInternal
	}
}

func compute(ds *dataset.Store, b Binding, state models.ControlState, opts views.Options) Update {
	u := Update{Widget: b.Widget, View: b.View}
	data, err := views.Compute(ds, b.View, state, opts)
	if err != nil {
		u.Error = &ViewError{Kind: ErrorKind(err), Message: err.Error()}
		return u
	}
	u.Data = data
	return u
}

// Dispatch recomputes every view bound to control. A failing view yields an
// Update with Error set and does not stop the others.
func Dispatch(ds *dataset.Store, state models.ControlState, control Control, opts views.Options) []Update {
	bindings := Bindings[control]
	updates := make([]Update, 0, len(bindings))
	for _, b := range bindings {
		updates = append(updates, compute(ds, b, state, opts))
	}
	return updates
}

// RenderAll computes every widget, as on the first load of a session
func RenderAll(ds *dataset.Store, state models.ControlState, opts views.Options) []Update {
	var updates []Update
	for _, c := range Controls {
		updates = append(updates, Dispatch(ds, state, c, opts)...)
	}
	return updates
}
