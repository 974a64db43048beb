package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"recharge-mcp-go/internal/events"
	"recharge-mcp-go/internal/monitoring"
)

// ChangeEvent describes one configuration reload delivered to OnChange
// listeners and the event hub.
type ChangeEvent struct {
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Manager owns the configuration lifecycle: initial load, environment
// merge, file watching and change notification. All reads go through
// Current, which returns an immutable snapshot.
type Manager struct {
	mu         sync.RWMutex
	configPath string
	file       *FileConfig
	current    *Config
	lastMod    time.Time

	publisher events.Publisher
	onChange  []func(*Config)

	watchCancel context.CancelFunc
}

// NewManager loads configuration from path (if it exists), merges
// environment overrides on top and validates the result. A missing
// file is not an error; defaults plus environment apply.
func NewManager(path string, publisher events.Publisher) (*Manager, error) {
	m := &Manager{configPath: path, publisher: publisher}

	if err := m.load(); err != nil {
		fc := defaultFileConfig()
		m.file = &fc
		if path != "" {
			log.WithError(err).WithField("path", path).
				Debug("config file not loaded, using defaults")
		}
	}

	applyEnv(m.file)
	m.current = FromFile(m.file)

	if err := Validate(m.current); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return m, nil
}

// Current returns the active configuration snapshot.
func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Path returns the config file path, empty when running file-less.
func (m *Manager) Path() string {
	return m.configPath
}

// OnChange registers a callback invoked after every successful reload.
// Callbacks run on the reload goroutine and must not block.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Reload re-reads the config file, re-applies environment overrides
// and swaps in the new snapshot when it validates.
func (m *Manager) Reload(source string) error {
	m.mu.Lock()

	if err := m.load(); err != nil {
		m.mu.Unlock()
		monitoring.ConfigReloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("reload config: %w", err)
	}
	applyEnv(m.file)
	next := FromFile(m.file)
	if err := Validate(next); err != nil {
		m.mu.Unlock()
		monitoring.ConfigReloadsTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("reloaded configuration rejected: %w", err)
	}
	m.current = next
	listeners := append(([]func(*Config))(nil), m.onChange...)
	m.mu.Unlock()

	monitoring.ConfigReloadsTotal.WithLabelValues("ok").Inc()
	log.WithField("source", source).Info("configuration reloaded")

	for _, fn := range listeners {
		fn(next)
	}
	m.emitChange(source)
	return nil
}

// Update mutates the in-memory file config through fn, validates the
// result, persists it and notifies listeners. Used by the management
// API.
func (m *Manager) Update(fn func(*FileConfig) error) error {
	m.mu.Lock()

	draft := *m.file
	if err := fn(&draft); err != nil {
		m.mu.Unlock()
		return err
	}
	next := FromFile(&draft)
	if err := Validate(next); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("rejected configuration update: %w", err)
	}

	m.file = &draft
	m.current = next
	var saveErr error
	if m.configPath != "" {
		saveErr = m.save()
	}
	listeners := append(([]func(*Config))(nil), m.onChange...)
	m.mu.Unlock()

	if saveErr != nil {
		log.WithError(saveErr).Warn("configuration updated in memory but not persisted")
	}
	for _, fn := range listeners {
		fn(next)
	}
	m.emitChange("management")
	return nil
}

func (m *Manager) emitChange(source string) {
	if m.publisher == nil {
		return
	}
	m.publisher.Publish(context.Background(), events.TopicConfigUpdated,
		ChangeEvent{Source: source, Timestamp: time.Now()}, nil)
}
