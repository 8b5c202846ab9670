// Package render draws derived views as PNG images with go-chart.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"bus-telemetry-dashboard/internal/models"
	"bus-telemetry-dashboard/internal/views"
)

// ErrNotRenderable is returned for views that have no image form
var ErrNotRenderable = errors.New("view has no image rendering")

// Default image size
const (
	Width  = 900
	Height = 420
)

// PNG writes the image rendering of view to w
func PNG(w io.Writer, view interface{}) error {
	switch v := view.(type) {
	case models.BarView:
		return barChart(w, v)
	case models.MapView:
		return mapChart(w, v)
	case models.LineView:
		return lineChart(w, v)
	case models.DonutView:
		return donutChart(w, v)
	case models.ScatterView:
		return scatterChart(w, v)
	default:
		return fmt.Errorf("%w: %T", ErrNotRenderable, view)
	}
}

// pointStyle renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

var namedColors = map[string]drawing.Color{
	"grey":  {R: 128, G: 128, B: 128, A: 255},
	"gray":  {R: 128, G: 128, B: 128, A: 255},
	"blue":  {R: 0, G: 0, B: 255, A: 255},
	"black": {R: 0, G: 0, B: 0, A: 255},
	"red":   {R: 255, G: 0, B: 0, A: 255},
	"white": {R: 255, G: 255, B: 255, A: 255},
}

// parseColor understands the colour notations used by the views:
// names, "#rrggbb" and "rgb(r, g, b)". Anything else is grey.
func parseColor(s string) drawing.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err == nil {
			return drawing.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
		}
	}
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(s, "rgb("), ")"), ",")
		if len(parts) == 3 {
			var rgb [3]uint8
			ok := true
			for i, p := range parts {
				n, err := strconv.Atoi(strings.TrimSpace(p))
				if err != nil || n < 0 || n > 255 {
					ok = false
					break
				}
				rgb[i] = uint8(n)
			}
			if ok {
				return drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
			}
		}
	}
	return namedColors["grey"]
}

func withOpacity(c drawing.Color, opacity float64) drawing.Color {
	c.A = uint8(math.Round(255 * math.Max(0, math.Min(1, opacity))))
	return c
}

// blank writes an empty white image, used when there is nothing to plot
func blank(w io.Writer, width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return png.Encode(w, img)
}

func barChart(w io.Writer, v models.BarView) error {
	maxCount := 1.0
	bars := make([]chart.Value, 0, len(v.Bars))
	for _, b := range v.Bars {
		c := parseColor(b.Color)
		bars = append(bars, chart.Value{
			Label: strconv.Itoa(b.Day),
			Value: float64(b.EventCount),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		})
		maxCount = math.Max(maxCount, float64(b.EventCount))
	}
	if len(bars) == 0 {
		return blank(w, Width, Height)
	}

	barWidth := (Width-120)/len(bars) - 4
	if barWidth < 2 {
		barWidth = 2
	}
	bc := chart.BarChart{
		Title:      v.Title,
		Width:      Width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 45, Left: 10, Right: 10, Bottom: 10}},
		BarWidth:   barWidth,
		BarSpacing: 4,
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: maxCount * 1.1}},
		Bars:       bars,
	}
	return bc.Render(chart.PNG, w)
}

func mapChart(w io.Writer, v models.MapView) error {
	if v.Empty || v.Viewport == nil {
		return blank(w, Width, Height)
	}

	byVehicle := make(map[string]*chart.ContinuousSeries)
	for _, p := range v.Points {
		s, ok := byVehicle[p.Vehicle]
		if !ok {
			s = &chart.ContinuousSeries{Name: p.Vehicle, Style: pointStyle(parseColor(p.Color))}
			byVehicle[p.Vehicle] = s
		}
		s.XValues = append(s.XValues, p.Longitude)
		s.YValues = append(s.YValues, p.Latitude)
	}
	vehicles := make([]string, 0, len(byVehicle))
	for k := range byVehicle {
		vehicles = append(vehicles, k)
	}
	sort.Strings(vehicles)

	series := make([]chart.Series, 0, len(vehicles))
	for _, k := range vehicles {
		series = append(series, *byVehicle[k])
	}

	vp := v.Viewport
	ch := chart.Chart{
		Title:      v.Title,
		Width:      Width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 45, Left: 10, Right: 10, Bottom: 10}},
		XAxis:      chart.XAxis{Name: "Longitude", Range: padded(vp.MinLng, vp.MaxLng)},
		YAxis:      chart.YAxis{Name: "Latitude", Range: padded(vp.MinLat, vp.MaxLat)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

// padded widens [min,max] so single points and flat ranges still render
func padded(min, max float64) *chart.ContinuousRange {
	pad := (max - min) * 0.05
	if pad == 0 {
		pad = 0.01
	}
	return &chart.ContinuousRange{Min: min - pad, Max: max + pad}
}

func lineSeries(s models.LineSeries) (chart.ContinuousSeries, bool) {
	if len(s.Points) == 0 {
		return chart.ContinuousSeries{}, false
	}
	cs := chart.ContinuousSeries{
		Name:  s.Name,
		Style: chart.Style{StrokeColor: parseColor(s.Color), StrokeWidth: 2},
	}
	for _, p := range s.Points {
		cs.XValues = append(cs.XValues, float64(p.Day))
		cs.YValues = append(cs.YValues, p.Speed)
	}
	return cs, true
}

func lineChart(w io.Writer, v models.LineView) error {
	var series []chart.Series
	for _, s := range []models.LineSeries{v.AllDays, v.Driver} {
		if cs, ok := lineSeries(s); ok {
			series = append(series, cs)
		}
	}
	if len(series) == 0 {
		return blank(w, Width, Height)
	}

	ch := chart.Chart{
		Title:      v.Title,
		Width:      Width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		XAxis:      chart.XAxis{Name: "Day", Range: &chart.ContinuousRange{Min: models.FirstDay, Max: models.LastDay}},
		YAxis:      chart.YAxis{Name: "Avg speed", Range: &chart.ContinuousRange{Min: v.YMin, Max: v.YMax}},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

func pieImage(r models.DonutRing, width, height int) (image.Image, error) {
	var values []chart.Value
	for i, s := range r.Slices {
		if s.Count == 0 {
			continue
		}
		c := parseColor(views.Palette[i%len(views.Palette)])
		values = append(values, chart.Value{
			Label: s.EventType,
			Value: float64(s.Count),
			Style: chart.Style{FillColor: c, StrokeColor: namedColors["white"]},
		})
	}
	if len(values) == 0 {
		values = []chart.Value{{Label: "no data", Value: 1, Style: chart.Style{FillColor: namedColors["grey"]}}}
	}

	pc := chart.PieChart{
		Title:  r.Name,
		Width:  width,
		Height: height,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// donutChart draws the two rings side by side in one image
func donutChart(w io.Writer, v models.DonutView) error {
	half := Width / 2
	left, err := pieImage(v.All, half, Height)
	if err != nil {
		return fmt.Errorf("all drivers ring: %w", err)
	}
	right, err := pieImage(v.Selected, half, Height)
	if err != nil {
		return fmt.Errorf("driver ring: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, half*2, Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, half, Height), left, left.Bounds().Min, draw.Over)
	draw.Draw(img, image.Rect(half, 0, half*2, Height), right, right.Bounds().Min, draw.Over)
	return png.Encode(w, img)
}

func scatterChart(w io.Writer, v models.ScatterView) error {
	if len(v.Points) == 0 {
		return blank(w, Width, Height)
	}

	top := 1.0
	pts := chart.ContinuousSeries{Name: "Speed", Style: pointStyle(parseColor(v.Color))}
	for _, p := range v.Points {
		pts.XValues = append(pts.XValues, float64(p.Hour))
		pts.YValues = append(pts.YValues, p.Speed)
		top = math.Max(top, p.Speed)
	}
	top *= 1.1

	series := make([]chart.Series, 0, len(v.Bands)+1)
	for _, b := range v.Bands {
		fill := withOpacity(parseColor(b.Color), b.Opacity)
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{float64(b.From), float64(b.To)},
			YValues: []float64{top, top},
			Style:   chart.Style{StrokeWidth: 0, StrokeColor: fill, FillColor: fill},
		})
	}
	// points last so they sit on top of the bands
	series = append(series, pts)

	ch := chart.Chart{
		Title:      v.Title,
		Width:      Width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		XAxis:      chart.XAxis{Name: "Hour", Range: &chart.ContinuousRange{Min: 0, Max: 24}},
		YAxis:      chart.YAxis{Name: "Speed", Range: &chart.ContinuousRange{Min: 0, Max: top}},
		Series:     series,
	}
	return ch.Render(chart.PNG, w)
}
