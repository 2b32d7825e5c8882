package config

import (
	"fmt"
	"strings"

	"github.com/toolsverse/foundation/pkg/dataset"
	"github.com/toolsverse/foundation/pkg/script"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.OutputFormat != "" && c.OutputFormat != DefaultOutput {
		if _, err := dataset.ParseFormat(c.OutputFormat); err != nil {
			return err
		}
	}

	if c.ScriptEngine != "" {
		if _, err := script.NewEngine(c.ScriptEngine); err != nil {
			return fmt.Errorf("invalid script_engine: %w", err)
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level %q (expected debug, info, warn or error)", c.LogLevel)
	}

	if c.HistorySize < 0 {
		return fmt.Errorf("history_size must not be negative")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative")
	}
	return nil
}

// RequireConnection reports an error when no connection type is set.
func (c *Config) RequireConnection() error {
	if c.Connection.Type == "" {
		return fmt.Errorf("connection type is required\nHint: set connection.type in foundation.yaml or pass --type")
	}
	return nil
}
