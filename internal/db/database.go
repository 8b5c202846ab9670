package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bus-telemetry-dashboard/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// ErrSessionNotFound is returned when a session id is unknown
var ErrSessionNotFound = errors.New("session not found")

// Database wraps the SQLite connection holding session control state
type Database struct {
	conn *sql.DB
}

// New creates a new database connection
func New(dbPath string) (*Database, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	db := &Database{conn: conn}

	if err := db.initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

// initialize creates tables and indexes
func (db *Database) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		day INTEGER NOT NULL,
		driver TEXT NOT NULL,
		hover_driver TEXT,
		hover_vehicle TEXT,
		hours TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.conn.Close()
}

func hoverColumns(h *models.DriverVehicle) (sql.NullString, sql.NullString) {
	if h == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: h.Driver, Valid: true}, sql.NullString{String: h.Vehicle, Valid: true}
}

func encodeHours(hours []string) (string, error) {
	if hours == nil {
		hours = []string{}
	}
	b, err := json.Marshal(hours)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CreateSession stores a new session
func (db *Database) CreateSession(s *models.Session) error {
	hours, err := encodeHours(s.State.Hours)
	if err != nil {
		return err
	}
	hoverDriver, hoverVehicle := hoverColumns(s.State.Hover)

	query := `
		INSERT INTO sessions (id, day, driver, hover_driver, hover_vehicle, hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.conn.Exec(query, s.ID, s.State.Day, s.State.Driver, hoverDriver, hoverVehicle,
		hours, s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	return err
}

// SaveSession updates the control state of an existing session
func (db *Database) SaveSession(s *models.Session) error {
	hours, err := encodeHours(s.State.Hours)
	if err != nil {
		return err
	}
	hoverDriver, hoverVehicle := hoverColumns(s.State.Hover)

	query := `
		UPDATE sessions
		SET day = ?, driver = ?, hover_driver = ?, hover_vehicle = ?, hours = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := db.conn.Exec(query, s.State.Day, s.State.Driver, hoverDriver, hoverVehicle,
		hours, s.UpdatedAt.UTC(), s.ID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

const sessionColumns = `id, day, driver, hover_driver, hover_vehicle, hours, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (*models.Session, error) {
	var s models.Session
	var hoverDriver, hoverVehicle sql.NullString
	var hours string

	err := row.Scan(&s.ID, &s.State.Day, &s.State.Driver, &hoverDriver, &hoverVehicle,
		&hours, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if hoverDriver.Valid && hoverVehicle.Valid {
		s.State.Hover = &models.DriverVehicle{Driver: hoverDriver.String, Vehicle: hoverVehicle.String}
	}
	if err := json.Unmarshal([]byte(hours), &s.State.Hours); err != nil {
		return nil, fmt.Errorf("session %s: bad hours column: %w", s.ID, err)
	}
	return &s, nil
}

// GetSession retrieves a session by ID
func (db *Database) GetSession(id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`

	s, err := scanSession(db.conn.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return s, err
}

// DeleteSession removes a session
func (db *Database) DeleteSession(id string) error {
	result, err := db.conn.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListSessions returns sessions, most recently used first
func (db *Database) ListSessions(limit int) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY updated_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// PruneSessions deletes sessions not updated since before
func (db *Database) PruneSessions(before time.Time) (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM sessions WHERE updated_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetStats returns database statistics
func (db *Database) GetStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int64
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&total); err != nil {
		return nil, err
	}
	stats["total_sessions"] = total

	var hovering int64
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM sessions WHERE hover_driver IS NOT NULL").Scan(&hovering); err != nil {
		return nil, err
	}
	stats["sessions_with_hover"] = hovering

	return stats, nil
}
