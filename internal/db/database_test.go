package db

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"bus-telemetry-dashboard/internal/models"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSessionLifecycle(t *testing.T) {
	database := openTestDB(t)
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	s := &models.Session{
		ID:        "s1",
		State:     models.ControlState{Day: 1, Driver: "Ridwan", Hours: []string{models.PeakHour, models.NonPeakHour}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := database.CreateSession(s); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := database.GetSession("s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if !reflect.DeepEqual(got.State, s.State) {
		t.Fatalf("state mismatch got %+v want %+v", got.State, s.State)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at got %v", got.CreatedAt)
	}

	s.State.Day = 12
	s.State.Hover = &models.DriverVehicle{Driver: "Siti", Vehicle: "SBS1234A"}
	s.State.Hours = nil
	s.UpdatedAt = now.Add(time.Minute)
	if err := database.SaveSession(s); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	got, _ = database.GetSession("s1")
	if got.State.Day != 12 || got.State.Hover == nil || *got.State.Hover != *s.State.Hover || len(got.State.Hours) != 0 {
		t.Fatalf("updated state mismatch %+v", got.State)
	}

	s.State.Hover = nil
	if err := database.SaveSession(s); err != nil {
		t.Fatal(err)
	}
	got, _ = database.GetSession("s1")
	if got.State.Hover != nil {
		t.Fatalf("hover should be cleared, got %+v", got.State.Hover)
	}

	stats, err := database.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats["total_sessions"].(int64) != 1 {
		t.Fatalf("stats %v", stats)
	}

	if err := database.DeleteSession("s1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := database.GetSession("s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound got %v", err)
	}
	if err := database.DeleteSession("s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound got %v", err)
	}
	if err := database.SaveSession(s); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound got %v", err)
	}
}

func TestListAndPruneSessions(t *testing.T) {
	database := openTestDB(t)
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		ts := base.Add(time.Duration(i) * 24 * time.Hour)
		s := &models.Session{ID: id, State: models.ControlState{Day: 1, Driver: "d"}, CreatedAt: ts, UpdatedAt: ts}
		if err := database.CreateSession(s); err != nil {
			t.Fatal(err)
		}
	}

	list, err := database.ListSessions(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].ID != "new" || list[2].ID != "old" {
		t.Fatalf("unexpected order %+v", list)
	}
	if list, _ := database.ListSessions(1); len(list) != 1 {
		t.Fatalf("limit ignored: %d", len(list))
	}

	n, err := database.PruneSessions(base.Add(36 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 pruned got %d", n)
	}
	if _, err := database.GetSession("new"); err != nil {
		t.Fatalf("newest session should survive: %v", err)
	}
}
