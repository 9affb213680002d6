// Package lifecycle owns the single open graph-engine handle and mediates
// instance create/start/shutdown/delete.
package lifecycle

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/jmcleod/graphgate/engine"
)

// ErrConflict indicates an instance is already open. At most one instance
// may be open process-wide, regardless of name.
var ErrConflict = errors.New("a database instance is already running")

// Manager enforces the single-active-instance invariant. Only the Manager
// mutates the open handle; everything else re-fetches it through Current
// per operation instead of caching it.
type Manager struct {
	engine engine.Engine
	logger *slog.Logger

	mu        sync.Mutex
	current   engine.Handle
	listeners []func()
}

// NewManager creates a lifecycle manager over the given engine.
func NewManager(eng engine.Engine, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{engine: eng, logger: logger}
}

// Subscribe registers fn to run after every transition that changes which
// instance is open. Callbacks run synchronously under the manager's lock and
// must not call back into the manager.
func (m *Manager) Subscribe(fn func()) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Current returns the open handle, if any. Callers must not cache the
// result across operations: it can be swapped or cleared at any time.
func (m *Manager) Current() (engine.Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.current != nil
}

// IsOpen reports whether the named instance is the currently open one.
func (m *Manager) IsOpen(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil && m.current.Name() == name
}

// Create wipes any pre-existing on-disk data for name and opens a fresh
// instance. Destructive: never retry blindly. Fails with ErrConflict if any
// instance is already open.
func (m *Manager) Create(name string) error {
	return m.open(name, true)
}

// Start opens the named instance's existing on-disk data. Fails with
// ErrConflict if any instance is already open.
func (m *Manager) Start(name string) error {
	return m.open(name, false)
}

// open performs the conflict check and the transition under one lock so two
// concurrent calls cannot both succeed.
func (m *Manager) open(name string, wipe bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return fmt.Errorf("cannot open %s: %w", name, ErrConflict)
	}
	if wipe {
		if err := os.RemoveAll(m.engine.Path(name)); err != nil {
			return fmt.Errorf("wiping instance %s: %w", name, err)
		}
	}
	h, err := m.engine.Open(name)
	if err != nil {
		return fmt.Errorf("opening instance %s: %w", name, err)
	}
	m.current = h
	m.logger.Info("database instance opened", "name", name, "path", h.Path(), "wiped", wipe)
	m.notifyLocked()
	return nil
}

// Shutdown closes the currently open instance. No-op when nothing is open.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdownLocked()
}

func (m *Manager) shutdownLocked() error {
	if m.current == nil {
		return nil
	}
	name := m.current.Name()
	err := m.engine.Close(m.current)
	m.current = nil
	m.notifyLocked()
	if err != nil {
		return fmt.Errorf("closing instance %s: %w", name, err)
	}
	m.logger.Info("database instance closed", "name", name)
	return nil
}

// Delete removes the named instance's on-disk data. If the instance is the
// currently open one it is shut down first. Returns false when removal (or
// the forced shutdown) fails.
func (m *Manager) Delete(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.Name() == name {
		if err := m.shutdownLocked(); err != nil {
			m.logger.Error("shutdown before delete failed", "name", name, "error", err)
			return false
		}
	}
	if err := os.RemoveAll(m.engine.Path(name)); err != nil {
		m.logger.Error("deleting instance data failed", "name", name, "error", err)
		return false
	}
	m.logger.Info("database instance deleted", "name", name)
	return true
}

func (m *Manager) notifyLocked() {
	for _, fn := range m.listeners {
		fn()
	}
}
