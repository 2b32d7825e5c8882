package driver

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Factory creates a driver. The logger may be nil.
type Factory func(logger *slog.Logger) Driver

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a driver factory to the registry.
// Called by driver implementations in their init() functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a driver factory by name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// New creates the driver named by cfg.Type.
func New(cfg Config, logger *slog.Logger) (Driver, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("driver type not specified")
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownDriverError{
			Type:      cfg.Type,
			Available: List(),
		}
	}
	return factory(logger), nil
}

// Open creates the driver named by cfg.Type and opens a connection.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, Driver, error) {
	d, err := New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	db, err := d.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, d, nil
}

// List returns all registered driver names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a driver type is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownDriverError is returned when an unknown driver type is requested.
type UnknownDriverError struct {
	Type      string
	Available []string
}

func (e *UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown driver type %q\nAvailable drivers: %v\nHint: Check connection.type in foundation.yaml", e.Type, e.Available)
}
