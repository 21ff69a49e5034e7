package config

import (
	"fmt"
	"strings"

	"botctl/internal/tool"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

// Add records a problem with field.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// HasErrors reports whether any problem was recorded.
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Validate checks a merged configuration.
func Validate(cfg BotctlConfig) error {
	var errs ValidationErrors

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs.Add("server.port", fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Server.Port))
	}
	if cfg.MCP.Enabled {
		if cfg.MCP.Port < 1 || cfg.MCP.Port > 65535 {
			errs.Add("mcp.port", fmt.Sprintf("must be between 1 and 65535, got %d", cfg.MCP.Port))
		} else if cfg.MCP.Port == cfg.Server.Port && cfg.MCP.Host == cfg.Server.Host {
			errs.Add("mcp.port", "must differ from server.port")
		}
	}
	if strings.TrimSpace(cfg.Shell) == "" {
		errs.Add("shell", "is required")
	}
	if cfg.Stop.KillAfter < 0 {
		errs.Add("stop.killAfter", "cannot be negative")
	}
	if cfg.Output.MaxBytes < 0 {
		errs.Add("output.maxBytes", "cannot be negative")
	}

	seen := make(map[tool.Kind]bool)
	for i, def := range cfg.Tools {
		field := fmt.Sprintf("tools[%d]", i)
		kind, err := tool.ParseKind(def.Kind)
		if err != nil {
			errs.Add(field+".kind", err.Error())
			continue
		}
		if seen[kind] {
			errs.Add(field+".kind", fmt.Sprintf("duplicate kind %s", kind))
		}
		seen[kind] = true
		if strings.ContainsAny(def.LogFile, `/\`) {
			errs.Add(field+".logFile", "must be a file name, not a path")
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// LogFiles returns the per-kind log file overrides.
func (c BotctlConfig) LogFiles() map[tool.Kind]string {
	result := make(map[tool.Kind]string)
	for _, def := range c.Tools {
		kind, err := tool.ParseKind(def.Kind)
		if err != nil || def.LogFile == "" {
			continue
		}
		result[kind] = def.LogFile
	}
	return result
}
