package render

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"bus-telemetry-dashboard/internal/models"
)

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want drawing.Color
	}{
		{"blue", drawing.Color{R: 0, G: 0, B: 255, A: 255}},
		{"Grey", drawing.Color{R: 128, G: 128, B: 128, A: 255}},
		{"#f26d99", drawing.Color{R: 0xf2, G: 0x6d, B: 0x99, A: 255}},
		{"rgb(255, 0, 0)", drawing.Color{R: 255, G: 0, B: 0, A: 255}},
		{"rgb(300, 0, 0)", drawing.Color{R: 128, G: 128, B: 128, A: 255}},
		{"chartreuse", drawing.Color{R: 128, G: 128, B: 128, A: 255}},
	}
	for _, c := range cases {
		if got := parseColor(c.in); got != c.want {
			t.Fatalf("parseColor(%q) = %+v want %+v", c.in, got, c.want)
		}
	}
	if got := withOpacity(parseColor("#66e9ff"), 0.5); got.A != 128 {
		t.Fatalf("opacity alpha got %d", got.A)
	}
}

func decodeSize(t *testing.T, buf *bytes.Buffer) (int, int) {
	t.Helper()
	cfg, err := png.DecodeConfig(buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestPNG(t *testing.T) {
	var bars []models.Bar
	for d := models.FirstDay; d <= models.LastDay; d++ {
		b := models.Bar{Day: d, EventCount: d % 7, Color: "grey"}
		if d == 4 {
			b.Color, b.Highlighted = "blue", true
		}
		bars = append(bars, b)
	}

	viewsToRender := map[string]interface{}{
		"bar": models.BarView{Title: "bars", Day: 4, Bars: bars},
		"map": models.MapView{
			Title: "map",
			Points: []models.MapPoint{
				{Vehicle: "A", Latitude: 1.3, Longitude: 103.8, Color: "#636EFA"},
				{Vehicle: "B", Latitude: 1.4, Longitude: 103.9, Color: "#EF553B"},
			},
			Viewport: &models.Viewport{MinLat: 1.3, MaxLat: 1.4, MinLng: 103.8, MaxLng: 103.9},
		},
		"empty-map": models.MapView{Empty: true},
		"line": models.LineView{
			Title:   "line",
			AllDays: models.LineSeries{Name: "Avg. all", Color: "rgb(255, 0, 0)", Points: []models.LinePoint{{Day: 1, Speed: 20}, {Day: 2, Speed: 25}}},
			Driver:  models.LineSeries{Name: "d", Color: "rgb(0, 0, 0)"},
			YMax:    50,
		},
		"empty-line": models.LineView{YMax: 50},
		"scatter": models.ScatterView{
			Color:  "black",
			Points: []models.ScatterPoint{{Hour: 1, Speed: 10}, {Hour: 7, Speed: 30}},
			Bands:  []models.Band{{Tag: models.PeakHour, From: 6, To: 9, Color: "#f26d99", Opacity: 0.5}},
		},
	}
	for name, v := range viewsToRender {
		var buf bytes.Buffer
		if err := PNG(&buf, v); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if w, h := decodeSize(t, &buf); w != Width || h != Height {
			t.Fatalf("%s: size %dx%d", name, w, h)
		}
	}
}

func TestPNGDonutSideBySide(t *testing.T) {
	v := models.DonutView{
		All: models.DonutRing{Name: "All drivers", Total: 3, Slices: []models.DonutSlice{
			{EventType: "Idling", Count: 1}, {EventType: "Speeding", Count: 2},
		}},
		Selected: models.DonutRing{Name: "Nobody", Slices: []models.DonutSlice{
			{EventType: "Idling"}, {EventType: "Speeding"},
		}},
		Empty: true,
	}
	var buf bytes.Buffer
	if err := PNG(&buf, v); err != nil {
		t.Fatal(err)
	}
	if w, h := decodeSize(t, &buf); w != (Width/2)*2 || h != Height {
		t.Fatalf("size %dx%d", w, h)
	}
}

func TestPNGRejectsCards(t *testing.T) {
	if err := PNG(&bytes.Buffer{}, models.DaySummary{Day: 1}); !errors.Is(err, ErrNotRenderable) {
		t.Fatalf("expected ErrNotRenderable got %v", err)
	}
}

// markedPixels counts pixels close to #f26d99 inside the middle fifth of the
// image width, between 25% and 75% of its height.
func markedPixels(t *testing.T, buf *bytes.Buffer) int {
	t.Helper()
	img, err := png.Decode(buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	b := img.Bounds()
	area := image.Rect(b.Min.X+b.Dx()*2/5, b.Min.Y+b.Dy()/4, b.Min.X+b.Dx()*3/5, b.Min.Y+b.Dy()*3/4)

	near := func(v uint32, want int) bool {
		d := int(v>>8) - want
		return d > -40 && d < 40
	}
	n := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if near(r, 0xf2) && near(g, 0x6d) && near(bl, 0x99) {
				n++
			}
		}
	}
	return n
}

func TestPointSeriesDrawNoLines(t *testing.T) {
	cases := []struct {
		name string
		view interface{}
	}{
		{"scatter", models.ScatterView{
			Color:  "#f26d99",
			Points: []models.ScatterPoint{{Hour: 1, Speed: 5}, {Hour: 22, Speed: 45}},
			Bands:  []models.Band{},
		}},
		{"map", models.MapView{
			Points: []models.MapPoint{
				{Vehicle: "A", Latitude: 1.30, Longitude: 103.80, Color: "#f26d99"},
				{Vehicle: "A", Latitude: 1.40, Longitude: 103.90, Color: "#f26d99"},
			},
			Viewport: &models.Viewport{MinLat: 1.30, MaxLat: 1.40, MinLng: 103.80, MaxLng: 103.90},
		}},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := PNG(&buf, c.view); err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if n := markedPixels(t, &buf); n != 0 {
			t.Fatalf("%s: %d point-coloured pixels between the points, expected none", c.name, n)
		}
	}
}
