// Package config provides configuration management for the foundation CLI.
package config

import "github.com/toolsverse/foundation/pkg/driver"

// ConnectionConfig is the database connection used by metadata commands.
type ConnectionConfig = driver.Config

// Config holds all CLI configuration options.
type Config struct {
	Connection   ConnectionConfig `koanf:"connection"`
	OutputFormat string           `koanf:"output"`
	OutFile      string           `koanf:"out_file"`
	ScriptEngine string           `koanf:"script_engine"`
	LogLevel     string           `koanf:"log_level"`
	Verbose      bool             `koanf:"verbose"`
	HistorySize  int              `koanf:"history_size"`
	CacheSize    int              `koanf:"cache_size"`
}

// Default configuration values.
const (
	DefaultOutput       = "auto" // Auto-detect: TTY=table, non-TTY=markdown
	DefaultScriptEngine = "expr"
	DefaultLogLevel     = "warn"
	DefaultHistorySize  = 100
	DefaultCacheSize    = 64
)

// ConfigFileNames are the file names searched in the working directory.
var ConfigFileNames = []string{"foundation.yaml", "foundation.yml"}
