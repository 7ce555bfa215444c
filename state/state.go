package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"contentbot/config"
	"contentbot/types"
)

// Manager holds the persisted run state with thread-safe access.
// The in-memory copy is authoritative: write failures are logged and the
// process keeps going with what it has.
type Manager struct {
	mu sync.RWMutex

	state     types.RunState
	recovered bool

	stateFile string
	tempDir   string
	now       func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithClock overrides the time source used to stamp run starts
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a state manager persisting to dataDir/state.json and
// using tempDir as the reusable run workspace
func NewManager(dataDir, tempDir string, opts ...Option) *Manager {
	m := &Manager{
		stateFile: filepath.Join(dataDir, config.StateFile),
		tempDir:   tempDir,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Printf("⚠️  Failed to create data directory: %v", err)
	}
	m.state = m.load()

	// A run cannot survive a restart, so a persisted running flag is stale
	if m.state.IsRunning {
		m.state.IsRunning = false
		m.recovered = true
		m.save()
	}
	return m
}

func (m *Manager) load() types.RunState {
	data, err := os.ReadFile(m.stateFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("⚠️  Failed to load state: %v", err)
		}
		return types.RunState{}
	}

	var s types.RunState
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("⚠️  Failed to parse state, using defaults: %v", err)
		return types.RunState{}
	}
	if s.CompletedRunCount < 0 {
		s.CompletedRunCount = 0
	}
	return s
}

// save overwrites the state file with the current record (must hold lock or
// be called before the manager is shared)
func (m *Manager) save() {
	if err := m.write(); err != nil {
		log.Printf("⚠️  Failed to save state: %v", err)
	}
}

func (m *Manager) write() error {
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return err
	}
	tmp := m.stateFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, m.stateFile); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// RecoveredStaleRun reports whether a running flag left by a crashed process
// was reset at startup
func (m *Manager) RecoveredStaleRun() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recovered
}

// GetState returns a snapshot of the current state (thread-safe)
func (m *Manager) GetState() types.RunState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

// SetRunning sets the running flag, stamping the start time when a run begins
func (m *Manager) SetRunning(running bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if running && !m.state.IsRunning {
		m.stampStart()
	}
	m.state.IsRunning = running
	m.save()
}

// TryStartRun sets the running flag only if no run is active.
// It returns false, changing nothing, when a run is already in progress.
func (m *Manager) TryStartRun() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.IsRunning {
		return false
	}
	m.stampStart()
	m.state.IsRunning = true
	m.save()
	return true
}

// stampStart records the run start time (must hold lock)
func (m *Manager) stampStart() {
	t := m.now().UTC()
	m.state.LastRunStartedAt = &t
}

// SetNextScheduledRun records the advisory next activation time
func (m *Manager) SetNextScheduledRun(next time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := next.UTC()
	m.state.NextScheduledRunAt = &t
	m.save()
}

// IncrementCompletedRunCount counts one more successful run
func (m *Manager) IncrementCompletedRunCount() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.CompletedRunCount++
	m.save()
}

// TempWorkspace returns the run workspace, creating it if absent
func (m *Manager) TempWorkspace() (string, error) {
	if err := os.MkdirAll(m.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp workspace: %w", err)
	}
	return m.tempDir, nil
}

// ClearTempWorkspace deletes the regular files directly inside the
// workspace, leaving subdirectories alone. It keeps going past individual
// failures and returns them joined.
func (m *Manager) ClearTempWorkspace() (int, error) {
	entries, err := os.ReadDir(m.tempDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		log.Printf("⚠️  Failed to clear temp files: %v", err)
		return 0, fmt.Errorf("read temp workspace: %w", err)
	}

	removed := 0
	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(m.tempDir, entry.Name())
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	if err := errors.Join(errs...); err != nil {
		log.Printf("⚠️  Failed to clear %d temp file(s): %v", len(errs), err)
		return removed, err
	}
	return removed, nil
}
