package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"bus-telemetry-dashboard/internal/models"
)

// Table names used in load errors
const (
	TableEvents        = "events"
	TableDailySummary  = "daily_summary"
	TableOverall       = "overall_summary"
	TableDailyAvgSpeed = "daily_avg_speed"
	TableHourlySpeed   = "hourly_speed"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyTable    = errors.New("table has no rows")
)

// LoadError describes why an input table could not be loaded
type LoadError struct {
	Table  string
	Line   int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(e.Table)
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *LoadError) Unwrap() error { return e.Err }

// row is one CSV record with its header index
type row struct {
	table   string
	line    int
	record  []string
	indices map[string]int
}

func (r row) value(key string) string {
	if idx, ok := r.indices[key]; ok && idx < len(r.record) {
		return strings.TrimSpace(r.record[idx])
	}
	return ""
}

func (r row) fail(column string, err error) error {
	return &LoadError{Table: r.table, Line: r.line, Column: column, Err: err}
}

func (r row) str(key string) (string, error) {
	v := r.value(key)
	if v == "" {
		return "", r.fail(key, errors.New("empty value"))
	}
	return v, nil
}

func (r row) float(key string) (float64, error) {
	v, err := strconv.ParseFloat(r.value(key), 64)
	if err != nil {
		return 0, r.fail(key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, r.fail(key, fmt.Errorf("non-finite value %q", r.value(key)))
	}
	return v, nil
}

// int accepts "7" as well as "7.0", which the offline pipeline emits for
// integer columns that passed through a float dtype.
func (r row) int(key string) (int, error) {
	raw := r.value(key)
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, r.fail(key, err)
	}
	if f != math.Trunc(f) {
		return 0, r.fail(key, fmt.Errorf("not an integer: %q", raw))
	}
	if math.Abs(f) > math.MaxInt32 {
		return 0, r.fail(key, fmt.Errorf("integer out of range: %q", raw))
	}
	return int(f), nil
}

// speed is a finite, non-negative float
func (r row) speed(key string) (float64, error) {
	v, err := r.float(key)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, r.fail(key, fmt.Errorf("negative speed %v", v))
	}
	return v, nil
}

func (r row) ranged(key string, min, max int) (int, error) {
	n, err := r.int(key)
	if err != nil {
		return 0, err
	}
	if n < min || n > max {
		return 0, r.fail(key, fmt.Errorf("%d out of range [%d,%d]", n, min, max))
	}
	return n, nil
}

// readTable reads a header plus all records, checking that the required
// columns are present. Header names are matched lower-cased and trimmed.
func readTable(r io.Reader, table string, required []string) ([]string, []row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			err = errors.New("missing header")
		}
		return nil, nil, &LoadError{Table: table, Line: 1, Err: err}
	}

	indices := make(map[string]int)
	for i, h := range header {
		indices[normalize(h)] = i
	}
	for _, col := range required {
		if _, ok := indices[col]; !ok {
			return nil, nil, &LoadError{Table: table, Column: col, Err: ErrMissingColumn}
		}
	}

	var rows []row
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return nil, nil, &LoadError{Table: table, Line: lineNum, Err: err}
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		rows = append(rows, row{table: table, line: lineNum, record: record, indices: indices})
	}
	if len(rows) == 0 {
		return nil, nil, &LoadError{Table: table, Err: ErrEmptyTable}
	}
	return header, rows, nil
}

func normalize(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// ParseEvents parses the per-event table (data_main.csv)
func ParseEvents(r io.Reader) ([]models.Event, error) {
	_, rows, err := readTable(r, TableEvents,
		[]string{"day", "hour", "vehicle", "driver", "event", "latitude", "longitude", "speed"})
	if err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(rows))
	for _, rw := range rows {
		var e models.Event
		if e.Day, err = rw.ranged("day", models.FirstDay, models.LastDay); err != nil {
			return nil, err
		}
		if e.Hour, err = rw.ranged("hour", 0, 23); err != nil {
			return nil, err
		}
		if e.Vehicle, err = rw.str("vehicle"); err != nil {
			return nil, err
		}
		if e.Driver, err = rw.str("driver"); err != nil {
			return nil, err
		}
		if e.EventType, err = rw.str("event"); err != nil {
			return nil, err
		}
		if e.Latitude, err = rw.float("latitude"); err != nil {
			return nil, err
		}
		if e.Longitude, err = rw.float("longitude"); err != nil {
			return nil, err
		}
		if e.Speed, err = rw.float("speed"); err != nil {
			return nil, err
		}
		if errs := ValidateEvent(&e); len(errs) > 0 {
			return nil, rw.fail("", errors.New(strings.Join(errs, "; ")))
		}
		events = append(events, e)
	}
	return events, nil
}

// ParseDailySummary parses the per-day summary table (mini_container.csv)
func ParseDailySummary(r io.Reader) ([]models.DailySummary, error) {
	_, rows, err := readTable(r, TableDailySummary,
		[]string{"day", "event count", "highest speed", "lowest speed"})
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	out := make([]models.DailySummary, 0, len(rows))
	for _, rw := range rows {
		var s models.DailySummary
		if s.Day, err = rw.ranged("day", models.FirstDay, models.LastDay); err != nil {
			return nil, err
		}
		if seen[s.Day] {
			return nil, rw.fail("day", fmt.Errorf("duplicate day %d", s.Day))
		}
		seen[s.Day] = true
		if s.EventCount, err = rw.int("event count"); err != nil {
			return nil, err
		}
		if s.EventCount < 0 {
			return nil, rw.fail("event count", errors.New("negative count"))
		}
		if s.HighestSpeed, err = rw.speed("highest speed"); err != nil {
			return nil, err
		}
		if s.LowestSpeed, err = rw.speed("lowest speed"); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ParseOverallSummary parses summary.csv. The first column holds the row
// label (its header is empty or pandas' "Unnamed: 0"), every other column is
// numeric.
func ParseOverallSummary(r io.Reader) (models.OverallSummary, error) {
	header, rows, err := readTable(r, TableOverall, nil)
	if err != nil {
		return models.OverallSummary{}, err
	}
	if len(header) < 2 {
		return models.OverallSummary{}, &LoadError{Table: TableOverall, Line: 1, Err: errors.New("expected a label column and at least one value column")}
	}

	summary := models.OverallSummary{Columns: make([]string, 0, len(header)-1)}
	for _, h := range header[1:] {
		summary.Columns = append(summary.Columns, strings.TrimSpace(h))
	}
	for _, rw := range rows {
		if len(rw.record) != len(header) {
			return models.OverallSummary{}, rw.fail("", fmt.Errorf("expected %d fields, got %d", len(header), len(rw.record)))
		}
		sr := models.SummaryRow{
			Label:  strings.TrimSpace(rw.record[0]),
			Values: make([]float64, 0, len(header)-1),
		}
		for i, col := range summary.Columns {
			v, err := strconv.ParseFloat(strings.TrimSpace(rw.record[i+1]), 64)
			if err != nil {
				return models.OverallSummary{}, rw.fail(col, err)
			}
			sr.Values = append(sr.Values, v)
		}
		summary.Rows = append(summary.Rows, sr)
	}
	return summary, nil
}

// ParseDailyAverageSpeed parses the fleet-wide daily average table (avg_speed.csv)
func ParseDailyAverageSpeed(r io.Reader) ([]models.DailyAverageSpeed, error) {
	_, rows, err := readTable(r, TableDailyAvgSpeed, []string{"day", "speed"})
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	out := make([]models.DailyAverageSpeed, 0, len(rows))
	for _, rw := range rows {
		var a models.DailyAverageSpeed
		if a.Day, err = rw.ranged("day", models.FirstDay, models.LastDay); err != nil {
			return nil, err
		}
		if seen[a.Day] {
			return nil, rw.fail("day", fmt.Errorf("duplicate day %d", a.Day))
		}
		seen[a.Day] = true
		if a.Speed, err = rw.speed("speed"); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// ParseHourlySpeed parses the (hour, speed) table (time_speed.csv)
func ParseHourlySpeed(r io.Reader) ([]models.HourlySpeed, error) {
	_, rows, err := readTable(r, TableHourlySpeed, []string{"hour", "speed"})
	if err != nil {
		return nil, err
	}

	out := make([]models.HourlySpeed, 0, len(rows))
	for _, rw := range rows {
		var h models.HourlySpeed
		if h.Hour, err = rw.ranged("hour", 0, 23); err != nil {
			return nil, err
		}
		if h.Speed, err = rw.speed("speed"); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// ValidateEvent validates an event row
func ValidateEvent(e *models.Event) []string {
	var errors []string

	if e.Vehicle == "" {
		errors = append(errors, "vehicle is required")
	}
	if e.Driver == "" {
		errors = append(errors, "driver is required")
	}
	if e.Latitude < -90 || e.Latitude > 90 {
		errors = append(errors, "latitude must be between -90 and 90")
	}
	if e.Longitude < -180 || e.Longitude > 180 {
		errors = append(errors, "longitude must be between -180 and 180")
	}
	if e.Speed < 0 {
		errors = append(errors, "speed cannot be negative")
	}

	return errors
}
