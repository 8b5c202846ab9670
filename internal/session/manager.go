// Package session binds UI controls to derived views.
//
// Each session owns its control state. The Manager creates sessions with the
// default state, applies control changes, recomputes the bound views and
// persists the new state through a Store.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/db"
	"bus-telemetry-dashboard/internal/models"
	"bus-telemetry-dashboard/internal/views"
)

// Store persists session control state
type Store interface {
	CreateSession(s *models.Session) error
	GetSession(id string) (*models.Session, error)
	SaveSession(s *models.Session) error
	DeleteSession(id string) error
}

// Manager runs the reactive update cycle for every session
type Manager struct {
	ds    *dataset.Store
	store Store
	opts  views.Options

	defaultDriver string
	now           func() time.Time
	locks         sync.Map // session id -> *sync.Mutex
}

// NewManager creates a manager. defaultDriver seeds the dropdown of new
// sessions; when empty the dataset's default driver is used.
func NewManager(ds *dataset.Store, store Store, opts views.Options, defaultDriver string) *Manager {
	if defaultDriver == "" {
		defaultDriver = views.DefaultDriver(ds)
	}
	return &Manager{
		ds:            ds,
		store:         store,
		opts:          opts,
		defaultDriver: defaultDriver,
		now:           time.Now,
	}
}

// Options returns the view options in use
func (m *Manager) Options() views.Options {
	return m.opts
}

// DefaultState is the control state a new session starts with
func (m *Manager) DefaultState() models.ControlState {
	return models.ControlState{
		Day:    models.FirstDay,
		Driver: m.defaultDriver,
		Hours:  []string{models.PeakHour, models.NonPeakHour},
	}
}

func (m *Manager) lock(id string) func() {
	v, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// forget drops the lock of a session the store no longer has, so ids that
// never existed or were pruned do not accumulate.
func (m *Manager) forget(id string, err error) {
	if errors.Is(err, db.ErrSessionNotFound) {
		m.locks.Delete(id)
	}
}

// Start creates a session and renders every widget for its initial state
func (m *Manager) Start() (*models.Session, []Update, error) {
	now := m.now().UTC()
	s := &models.Session{
		ID:        uuid.New().String(),
		State:     m.DefaultState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.CreateSession(s); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, RenderAll(m.ds, s.State, m.opts), nil
}

// Get returns a session
func (m *Manager) Get(id string) (*models.Session, error) {
	return m.store.GetSession(id)
}

// End deletes a session
func (m *Manager) End(id string) error {
	unlock := m.lock(id)
	defer unlock()
	if err := m.store.DeleteSession(id); err != nil {
		m.forget(id, err)
		return err
	}
	m.locks.Delete(id)
	return nil
}

// Change applies a new control value and recomputes the views bound to it.
// The returned error covers only the session and the value itself; view
// failures are reported per Update.
func (m *Manager) Change(id string, control Control, value json.RawMessage) (*models.Session, []Update, error) {
	if _, ok := Bindings[control]; !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownControl, control)
	}

	unlock := m.lock(id)
	defer unlock()

	s, err := m.store.GetSession(id)
	if err != nil {
		m.forget(id, err)
		return nil, nil, err
	}
	state := s.State
	if err := Apply(&state, control, value); err != nil {
		return nil, nil, err
	}
	s.State = state
	s.UpdatedAt = m.now().UTC()
	if err := m.store.SaveSession(s); err != nil {
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}

	updates := Dispatch(m.ds, s.State, control, m.opts)
	for _, u := range updates {
		if u.Failed() {
			log.Printf("session %s: %s (%s) failed: %s", s.ID, u.Widget, u.View, u.Error.Message)
		}
	}
	return s, updates, nil
}

// Render computes one view for a session's current state
func (m *Manager) Render(id string, name views.Name) (interface{}, error) {
	s, err := m.store.GetSession(id)
	if err != nil {
		return nil, err
	}
	return views.Compute(m.ds, name, s.State, m.opts)
}
