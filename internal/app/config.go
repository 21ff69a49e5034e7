package app

import (
	"botctl/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// LogFormat is "text" or "json"
	LogFormat string

	// ConfigPath, when set, replaces layered configuration loading
	ConfigPath string

	// Version is reported by the MCP server
	Version string

	// Botctl configuration, filled in by NewApplication
	BotctlConfig *config.BotctlConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, logFormat, configPath string) *Config {
	return &Config{
		Debug:      debug,
		LogFormat:  logFormat,
		ConfigPath: configPath,
	}
}
