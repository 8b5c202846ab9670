package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bus-telemetry-dashboard/internal/models"
	"bus-telemetry-dashboard/internal/parser"
)

func writeTables(t *testing.T, tables map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range tables {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func validTables() map[string]string {
	return map[string]string{
		"data_main.csv": "day,hour,vehicle,driver,event,latitude,longitude,speed\n" +
			"1,7,SBS9999Z,Siti,Speeding,1.35,103.82,42\n" +
			"1,8,SBS1234A,Ahmad,Harsh Braking,1.36,103.85,30\n" +
			"2,9,SBS9999Z,Siti,Idling,1.30,103.80,0\n",
		"mini_container.csv": "day,event count,highest speed,lowest speed\n1,2,42,30\n2,1,0,0\n",
		"summary.csv":        ",speed\ncount,3\nmean,24\n",
		"avg_speed.csv":      "day,speed\n1,36\n2,0\n",
		"time_speed.csv":     "hour,speed\n7,42\n8,30\n9,0\n",
	}
}

func TestLoad(t *testing.T) {
	ds, err := Load(writeTables(t, validTables()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	c := ds.Counts()
	if c != (Counts{Events: 3, DailySummary: 2, Overall: 2, DailyAvgSpeed: 2, HourlySpeed: 3}) {
		t.Fatalf("unexpected counts: %+v", c)
	}
	if d := ds.Drivers(); len(d) != 2 || d[0] != "Siti" || d[1] != "Ahmad" {
		t.Fatalf("drivers should keep source order: %v", d)
	}
	if v := ds.Vehicles(); len(v) != 2 || v[0] != "SBS1234A" {
		t.Fatalf("vehicles should be sorted: %v", v)
	}
	if et := ds.EventTypes(); len(et) != 3 || et[0] != "Harsh Braking" {
		t.Fatalf("event types should be sorted: %v", et)
	}
	if row, ok := ds.DailySummary(2); !ok || row.EventCount != 1 {
		t.Fatalf("DailySummary(2) = %+v, %v", row, ok)
	}
	if _, ok := ds.DailySummary(3); ok {
		t.Fatal("day 3 should be absent")
	}
	if len(ds.Fingerprint()) != 64 {
		t.Fatalf("unexpected fingerprint %q", ds.Fingerprint())
	}
}

func TestLoadFailsFast(t *testing.T) {
	missing := validTables()
	delete(missing, "avg_speed.csv")
	if _, err := Load(writeTables(t, missing)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected missing file error, got %v", err)
	}

	broken := validTables()
	broken["time_speed.csv"] = "hour,speed\n7,fast\n"
	_, err := Load(writeTables(t, broken))
	var le *parser.LoadError
	if !errors.As(err, &le) || le.Table != parser.TableHourlySpeed || le.Column != "speed" {
		t.Fatalf("expected hourly speed LoadError, got %v", err)
	}
}

func TestNewRejectsDuplicateDays(t *testing.T) {
	daily := []models.DailySummary{{Day: 1}, {Day: 1}}
	if _, err := New(nil, daily, models.OverallSummary{}, nil, nil); err == nil {
		t.Fatal("expected duplicate day error")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	events := []models.Event{{Day: 1, Hour: 7, Vehicle: "V1", Driver: "D1", EventType: "Speeding", Speed: 10}}
	overall := models.OverallSummary{Columns: []string{"speed"}, Rows: []models.SummaryRow{{Label: "mean", Values: []float64{10}}}}
	ds, err := New(events, []models.DailySummary{{Day: 1, EventCount: 1}}, overall, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	events[0].Speed = 99
	overall.Rows[0].Values[0] = 99

	got := ds.Events()
	got[0].Driver = "changed"
	o := ds.Overall()
	o.Rows[0].Values[0] = 77
	ds.ForEachEvent(func(e models.Event) { e.Speed = 55 })

	if e := ds.Events()[0]; e.Speed != 10 || e.Driver != "D1" {
		t.Fatalf("event table was modified: %+v", e)
	}
	if v := ds.Overall().Rows[0].Values[0]; v != 10 {
		t.Fatalf("overall table was modified: %v", v)
	}
	snap, err := ds.Snapshot()
	if err != nil || snap != ds.Fingerprint() {
		t.Fatalf("snapshot %q differs from fingerprint %q (%v)", snap, ds.Fingerprint(), err)
	}
}
