package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/micro-nova/ws281x-go/internal/models"
)

const (
	configFileName = "strip.json"
	debounceDelay  = 500 * time.Millisecond
)

// JSONStore is an atomic JSON file store with debounced writes.
type JSONStore struct {
	mu      sync.Mutex
	path    string
	timer   *time.Timer
	pending *models.StripConfig
	written []byte // content of the last write, for skipping our own reloads
}

// NewJSONStore creates a new JSON store in the given config directory.
func NewJSONStore(configDir string) *JSONStore {
	return &JSONStore{
		path: filepath.Join(configDir, configFileName),
	}
}

// Path returns the file path used by this store.
func (s *JSONStore) Path() string { return s.path }

// Load reads the config from disk. Returns DefaultStripConfig on ENOENT or parse errors.
func (s *JSONStore) Load() (*models.StripConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			def := models.DefaultStripConfig()
			return &def, nil
		}
		return nil, err
	}

	var cfg models.StripConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		slog.Warn("config: corrupt JSON config, using defaults", "path", s.path, "err", err)
		def := models.DefaultStripConfig()
		return &def, nil
	}

	migrateConfig(&cfg)
	return &cfg, nil
}

// Save schedules a debounced write of the config to disk.
// The actual write happens after 500ms of no further Save calls.
func (s *JSONStore) Save(cfg *models.StripConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cfg.DeepCopy()
	s.pending = &cp

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(debounceDelay, func() {
		s.mu.Lock()
		pending := s.pending
		s.pending = nil
		s.mu.Unlock()
		if pending != nil {
			if err := s.writeAtomic(pending); err != nil {
				slog.Error("config: failed to write config", "path", s.path, "err", err)
			}
		}
	})
	return nil
}

// Flush forces an immediate write of any pending config.
func (s *JSONStore) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	if pending == nil {
		return nil
	}
	return s.writeAtomic(pending)
}

func (s *JSONStore) writeAtomic(cfg *models.StripConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	// Write to temp file, then rename (atomic on Linux)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	s.mu.Lock()
	s.written = data
	s.mu.Unlock()
	return os.Rename(tmpPath, s.path)
}

// wrote reports whether data is what this store last wrote to its file.
func (s *JSONStore) wrote(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written != nil && bytes.Equal(s.written, data)
}

var _ Store = (*JSONStore)(nil)
