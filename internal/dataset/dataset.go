// Package dataset holds the five precomputed tables the dashboard reads.
//
// A Store is loaded once and never mutated afterwards. Callers only ever see
// copies of its rows: slice accessors return fresh slices and ForEachEvent
// hands out values, so nothing a view does can reach the shared tables.
package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"bus-telemetry-dashboard/internal/models"
	"bus-telemetry-dashboard/internal/parser"
)

// Files names the CSV file of each table inside the data directory
type Files struct {
	Events        string
	DailySummary  string
	Overall       string
	DailyAvgSpeed string
	HourlySpeed   string
}

// DefaultFiles returns the file names written by the offline preparation step
func DefaultFiles() Files {
	return Files{
		Events:        "data_main.csv",
		DailySummary:  "mini_container.csv",
		Overall:       "summary.csv",
		DailyAvgSpeed: "avg_speed.csv",
		HourlySpeed:   "time_speed.csv",
	}
}

// Store is the read-only in-memory dataset
type Store struct {
	events  []models.Event
	daily   []models.DailySummary
	overall models.OverallSummary
	avg     []models.DailyAverageSpeed
	hourly  []models.HourlySpeed

	dayIndex    map[int]int
	drivers     []string
	vehicles    []string
	eventTypes  []string
	fingerprint string
}

// Counts reports the number of rows per table
type Counts struct {
	Events        int `json:"events"`
	DailySummary  int `json:"daily_summary"`
	Overall       int `json:"overall_summary"`
	DailyAvgSpeed int `json:"daily_avg_speed"`
	HourlySpeed   int `json:"hourly_speed"`
}

// Load reads the five tables from dir using the default file names
func Load(dir string) (*Store, error) {
	return LoadFiles(dir, DefaultFiles())
}

// LoadFiles reads the five tables from dir. Any missing or malformed table
// fails the whole load.
func LoadFiles(dir string, files Files) (*Store, error) {
	var (
		events  []models.Event
		daily   []models.DailySummary
		overall models.OverallSummary
		avg     []models.DailyAverageSpeed
		hourly  []models.HourlySpeed
	)

	steps := []struct {
		name  string
		parse func(f *os.File) error
	}{
		{files.Events, func(f *os.File) (err error) { events, err = parser.ParseEvents(f); return }},
		{files.DailySummary, func(f *os.File) (err error) { daily, err = parser.ParseDailySummary(f); return }},
		{files.Overall, func(f *os.File) (err error) { overall, err = parser.ParseOverallSummary(f); return }},
		{files.DailyAvgSpeed, func(f *os.File) (err error) { avg, err = parser.ParseDailyAverageSpeed(f); return }},
		{files.HourlySpeed, func(f *os.File) (err error) { hourly, err = parser.ParseHourlySpeed(f); return }},
	}

	for _, step := range steps {
		path := filepath.Join(dir, step.name)
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		err = step.parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	return New(events, daily, overall, avg, hourly)
}

// New builds a Store from already parsed tables. The inputs are copied.
func New(events []models.Event, daily []models.DailySummary, overall models.OverallSummary,
	avg []models.DailyAverageSpeed, hourly []models.HourlySpeed) (*Store, error) {

	s := &Store{
		events:   slices.Clone(events),
		daily:    slices.Clone(daily),
		overall:  cloneOverall(overall),
		avg:      slices.Clone(avg),
		hourly:   slices.Clone(hourly),
		dayIndex: make(map[int]int, len(daily)),
	}

	for i, d := range s.daily {
		if _, dup := s.dayIndex[d.Day]; dup {
			return nil, fmt.Errorf("daily summary: duplicate day %d", d.Day)
		}
		s.dayIndex[d.Day] = i
	}

	seenDriver := make(map[string]bool)
	seenType := make(map[string]bool)
	seenVehicle := make(map[string]bool)
	for _, e := range s.events {
		if !seenVehicle[e.Vehicle] {
			seenVehicle[e.Vehicle] = true
			s.vehicles = append(s.vehicles, e.Vehicle)
		}
		if !seenDriver[e.Driver] {
			seenDriver[e.Driver] = true
			s.drivers = append(s.drivers, e.Driver)
		}
		if !seenType[e.EventType] {
			seenType[e.EventType] = true
			s.eventTypes = append(s.eventTypes, e.EventType)
		}
	}
	sort.Strings(s.eventTypes)
	sort.Strings(s.vehicles)

	fp, err := s.computeFingerprint()
	if err != nil {
		return nil, err
	}
	s.fingerprint = fp
	return s, nil
}

func cloneOverall(o models.OverallSummary) models.OverallSummary {
	out := models.OverallSummary{Columns: slices.Clone(o.Columns)}
	if o.Rows != nil {
		out.Rows = make([]models.SummaryRow, len(o.Rows))
		for i, r := range o.Rows {
			out.Rows[i] = models.SummaryRow{Label: r.Label, Values: slices.Clone(r.Values)}
		}
	}
	return out
}

// Events returns a copy of the events table in source order
func (s *Store) Events() []models.Event {
	return slices.Clone(s.events)
}

// ForEachEvent calls fn with a copy of every event in source order
func (s *Store) ForEachEvent(fn func(e models.Event)) {
	for _, e := range s.events {
		fn(e)
	}
}

// DailySummaries returns a copy of the daily summary table
func (s *Store) DailySummaries() []models.DailySummary {
	return slices.Clone(s.daily)
}

// DailySummary looks up the summary row for day
func (s *Store) DailySummary(day int) (models.DailySummary, bool) {
	i, ok := s.dayIndex[day]
	if !ok {
		return models.DailySummary{}, false
	}
	return s.daily[i], true
}

// Overall returns a deep copy of the overall summary table
func (s *Store) Overall() models.OverallSummary {
	return cloneOverall(s.overall)
}

// DailyAverageSpeeds returns a copy of the fleet-wide daily average table
func (s *Store) DailyAverageSpeeds() []models.DailyAverageSpeed {
	return slices.Clone(s.avg)
}

// HourlySpeeds returns a copy of the hourly speed table
func (s *Store) HourlySpeeds() []models.HourlySpeed {
	return slices.Clone(s.hourly)
}

// Drivers returns the unique drivers in source order
func (s *Store) Drivers() []string {
	return slices.Clone(s.drivers)
}

// Vehicles returns the unique vehicle ids, sorted
func (s *Store) Vehicles() []string {
	return slices.Clone(s.vehicles)
}

// EventTypes returns the unique event types, sorted
func (s *Store) EventTypes() []string {
	return slices.Clone(s.eventTypes)
}

// Counts returns the row count of every table
func (s *Store) Counts() Counts {
	return Counts{
		Events:        len(s.events),
		DailySummary:  len(s.daily),
		Overall:       len(s.overall.Rows),
		DailyAvgSpeed: len(s.avg),
		HourlySpeed:   len(s.hourly),
	}
}

// Fingerprint is a hash over the table contents computed at load time
func (s *Store) Fingerprint() string {
	return s.fingerprint
}

// Snapshot re-hashes the current table contents. It equals Fingerprint as
// long as nothing has modified the tables.
func (s *Store) Snapshot() (string, error) {
	return s.computeFingerprint()
}

func (s *Store) computeFingerprint() (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, table := range []interface{}{s.events, s.daily, s.overall, s.avg, s.hourly} {
		if err := enc.Encode(table); err != nil {
			return "", fmt.Errorf("failed to hash dataset: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
