package models

// DaySummary feeds the four cards next to the day slider
type DaySummary struct {
	Day          int    `json:"day"`
	EventCount   int    `json:"event_count"`
	HighestSpeed string `json:"highest_speed"`
	LowestSpeed  string `json:"lowest_speed"`
}

// Bar is one bar of the daily event-count chart
type Bar struct {
	Day         int    `json:"day"`
	EventCount  int    `json:"event_count"`
	Color       string `json:"color"`
	Highlighted bool   `json:"highlighted"`
}

// BarView is the daily event-count bar chart
type BarView struct {
	Title string `json:"title"`
	Day   int    `json:"day"`
	Bars  []Bar  `json:"bars"`
}

// MapPoint is one event plotted on the map with its hover metadata
type MapPoint struct {
	Hour      int     `json:"hour"`
	Vehicle   string  `json:"vehicle"`
	Driver    string  `json:"driver"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Color     string  `json:"color"`
}

// Viewport is the map area that contains every plotted point
type Viewport struct {
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
	MinLat    float64 `json:"min_lat"`
	MinLng    float64 `json:"min_lng"`
	MaxLat    float64 `json:"max_lat"`
	MaxLng    float64 `json:"max_lng"`
	Zoom      int     `json:"zoom"`
}

// MapView is the event-location map for one day
type MapView struct {
	Title    string            `json:"title"`
	Day      int               `json:"day"`
	Points   []MapPoint        `json:"points"`
	Colors   map[string]string `json:"colors"` // vehicle -> colour
	Viewport *Viewport         `json:"viewport,omitempty"`
	Token    string            `json:"token,omitempty"`
	Empty    bool              `json:"empty"`
}

// LinePoint is one day's value in a line series
type LinePoint struct {
	Day   int     `json:"day"`
	Speed float64 `json:"speed"`
}

// LineSeries is a single line of the driver-speed chart
type LineSeries struct {
	Name        string      `json:"name"`
	Color       string      `json:"color"`
	Shape       string      `json:"shape"`
	ConnectGaps bool        `json:"connect_gaps"`
	Points      []LinePoint `json:"points"`
}

// LineView compares one driver+vehicle pair against the fleet average
type LineView struct {
	Title   string        `json:"title"`
	Pair    DriverVehicle `json:"pair"`
	AllDays LineSeries    `json:"all"`
	Driver  LineSeries    `json:"driver"`
	YMin    float64       `json:"y_min"`
	YMax    float64       `json:"y_max"`
	Empty   bool          `json:"empty"`
}

// DonutSlice is one event-type share of a donut ring
type DonutSlice struct {
	EventType  string  `json:"event"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion"`
}

// DonutRing is one proportions-of-total breakdown
type DonutRing struct {
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Slices []DonutSlice `json:"slices"`
}

// DonutView holds the fleet-wide and per-driver event-type rings
type DonutView struct {
	Title      string    `json:"title"`
	Driver     string    `json:"driver"`
	Categories []string  `json:"categories"`
	Hole       float64   `json:"hole"`
	All        DonutRing `json:"all"`
	Selected   DonutRing `json:"selected"`
	Empty      bool      `json:"empty"`
}

// ScatterPoint is one (hour, speed) dot
type ScatterPoint struct {
	Hour  int     `json:"hour"`
	Speed float64 `json:"speed"`
}

// Band is a shaded hour range [From, To) laid over the scatter
type Band struct {
	Tag     string  `json:"tag"`
	From    int     `json:"from"`
	To      int     `json:"to"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// ScatterView is the peak/off-peak speed scatter
type ScatterView struct {
	Title  string         `json:"title"`
	Color  string         `json:"color"`
	Points []ScatterPoint `json:"points"`
	Bands  []Band         `json:"bands"`
}

// SummaryTable is the static data summary table
type SummaryTable struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// DriverOptions lists the driver dropdown choices
type DriverOptions struct {
	Drivers []string `json:"drivers"`
	Default string   `json:"default"`
}
