package views

import (
	"github.com/golang/geo/s2"

	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/models"
)

const (
	mapTitle = "Mapbox of Locations Travelled Per Vehicle"
	mapZoom  = 11
)

// Palette is the categorical colour cycle shared by vehicles and event types
var Palette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// VehicleColors assigns a palette colour to every vehicle in the dataset so a
// vehicle keeps its colour whichever day is shown.
func VehicleColors(ds *dataset.Store) map[string]string {
	colors := make(map[string]string)
	for i, v := range ds.Vehicles() {
		colors[v] = Palette[i%len(Palette)]
	}
	return colors
}

// EventMap returns one point per event recorded on day
func EventMap(ds *dataset.Store, day int, token string) (models.MapView, error) {
	if err := checkDay(day); err != nil {
		return models.MapView{}, err
	}

	all := VehicleColors(ds)
	view := models.MapView{
		Title:  mapTitle,
		Day:    day,
		Points: []models.MapPoint{},
		Colors: make(map[string]string),
		Token:  token,
	}

	rect := s2.EmptyRect()
	ds.ForEachEvent(func(e models.Event) {
		if e.Day != day {
			return
		}
		view.Points = append(view.Points, models.MapPoint{
			Hour:      e.Hour,
			Vehicle:   e.Vehicle,
			Driver:    e.Driver,
			Latitude:  e.Latitude,
			Longitude: e.Longitude,
			Color:     all[e.Vehicle],
		})
		view.Colors[e.Vehicle] = all[e.Vehicle]
		rect = rect.AddPoint(s2.LatLngFromDegrees(e.Latitude, e.Longitude))
	})

	if len(view.Points) == 0 {
		view.Empty = true
		return view, nil
	}
	view.Viewport = viewport(rect)
	return view, nil
}

func viewport(rect s2.Rect) *models.Viewport {
	center := rect.Center()
	return &models.Viewport{
		CenterLat: center.Lat.Degrees(),
		CenterLng: center.Lng.Degrees(),
		MinLat:    rect.Lo().Lat.Degrees(),
		MinLng:    rect.Lo().Lng.Degrees(),
		MaxLat:    rect.Hi().Lat.Degrees(),
		MaxLng:    rect.Hi().Lng.Degrees(),
		Zoom:      mapZoom,
	}
}
