package config

import (
	"time"
)

// BotctlConfig is the top-level configuration structure for botctl.
type BotctlConfig struct {
	Server  ServerConfig      `yaml:"server"`
	MCP     MCPConfig         `yaml:"mcp"`
	Logs    LogsConfig        `yaml:"logs"`
	LockDir string            `yaml:"lockDir,omitempty"` // Directory for per-tool lock files
	Shell   string            `yaml:"shell,omitempty"`   // Shell used as `shell -c command`
	WorkDir string            `yaml:"workDir,omitempty"` // Working directory for tools; empty inherits
	Env     map[string]string `yaml:"env,omitempty"`     // Extra environment for tools
	Stop    StopConfig        `yaml:"stop"`
	Output  OutputConfig      `yaml:"output"`
	Tools   []ToolDefinition  `yaml:"tools,omitempty"`
}

// ServerConfig defines the HTTP control endpoint.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"` // Host to bind to (default: localhost)
	Port int    `yaml:"port,omitempty"` // Port to listen on (default: 3001)
}

// MCPConfig defines the MCP endpoint exposing the same operations as tools.
type MCPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// LogsConfig defines where tool stderr goes.
type LogsConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// StopConfig controls how tools are terminated.
type StopConfig struct {
	Signal    string        `yaml:"signal,omitempty"`    // e.g. "SIGTERM", "SIGINT"
	KillAfter time.Duration `yaml:"killAfter,omitempty"` // Grace period before SIGKILL; 0 disables
}

// OutputConfig bounds captured stdout.
type OutputConfig struct {
	MaxBytes int `yaml:"maxBytes,omitempty"`
}

// ToolDefinition overrides settings of one tool kind.
type ToolDefinition struct {
	Kind    string `yaml:"kind"`              // "llm-bot", "hater-bot" or "replay"
	LogFile string `yaml:"logFile,omitempty"` // stderr log file name inside logs.dir
}
