// Package config handles loading, saving and watching the strip
// configuration.
package config

import "github.com/micro-nova/ws281x-go/internal/models"

// Store is the interface for persisting the strip configuration.
type Store interface {
	// Load loads the configuration. Returns DefaultStripConfig if no file exists.
	Load() (*models.StripConfig, error)

	// Save persists the configuration. Implementations may debounce rapid saves.
	Save(cfg *models.StripConfig) error

	// Path returns the file path used by this store.
	Path() string

	// Flush forces an immediate write of any pending configuration.
	Flush() error
}
