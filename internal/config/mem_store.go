package config

import (
	"sync"

	"github.com/micro-nova/ws281x-go/internal/models"
)

// MemStore is an in-memory Store for tests that never writes to disk.
type MemStore struct {
	mu    sync.Mutex
	cfg   *models.StripConfig
	saves int
}

// NewMemStore returns a new in-memory store with nil config (defaults to DefaultStripConfig on Load).
func NewMemStore() *MemStore {
	return &MemStore{}
}

// NewMemStoreWith returns an in-memory store holding a copy of cfg.
func NewMemStoreWith(cfg models.StripConfig) *MemStore {
	cp := cfg.DeepCopy()
	return &MemStore{cfg: &cp}
}

// Load returns a copy of the stored config, or DefaultStripConfig if none has been saved yet.
func (m *MemStore) Load() (*models.StripConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		def := models.DefaultStripConfig()
		return &def, nil
	}
	cp := m.cfg.DeepCopy()
	return &cp, nil
}

// Save stores a deep copy of the given config in memory.
func (m *MemStore) Save(cfg *models.StripConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := cfg.DeepCopy()
	m.cfg = &cp
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *MemStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Path returns ":memory:" to indicate this is an in-memory store.
func (m *MemStore) Path() string { return ":memory:" }

// Flush is a no-op for in-memory stores.
func (m *MemStore) Flush() error { return nil }

// Ensure MemStore implements config.Store
var _ Store = (*MemStore)(nil)
