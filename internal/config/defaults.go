package config

import (
	"os"
	"path/filepath"
)

// GetDefaultConfig returns the configuration used when no file overrides it.
func GetDefaultConfig() BotctlConfig {
	return BotctlConfig{
		Server: ServerConfig{
			Host: "localhost",
			Port: 3001,
		},
		MCP: MCPConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    3002,
		},
		Logs: LogsConfig{
			Dir: "logs",
		},
		LockDir: filepath.Join(os.TempDir(), "botctl-locks"),
		Shell:   "/bin/sh",
		Stop: StopConfig{
			Signal: "SIGTERM",
		},
		Output: OutputConfig{
			MaxBytes: 64 * 1024,
		},
	}
}
