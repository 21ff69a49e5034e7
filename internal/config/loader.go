package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/botctl"
	projectConfigDir = ".botctl"
	configFileName   = "config.yaml"
)

// LoadConfig loads the botctl configuration by layering default, user, and project settings.
func LoadConfig() (BotctlConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if err := applyConfigFile(userConfigPath, &config, true); err != nil {
		return BotctlConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else if err := applyConfigFile(projectConfigPath, &config, true); err != nil {
		return BotctlConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}

	if err := Validate(config); err != nil {
		return BotctlConfig{}, err
	}
	return config, nil
}

// LoadConfigFromPath loads defaults overlaid with exactly one file, which must exist.
// A directory is accepted and resolved to its config.yaml.
func LoadConfigFromPath(path string) (BotctlConfig, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, configFileName)
	}

	config := GetDefaultConfig()
	if err := applyConfigFile(path, &config, false); err != nil {
		return BotctlConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	if err := Validate(config); err != nil {
		return BotctlConfig{}, err
	}
	return config, nil
}

var getUserConfigPath = UserConfigPath

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// applyConfigFile decodes the YAML file at path on top of config. Keys absent
// from the file keep their current value; tools are merged by kind.
func applyConfigFile(path string, config *BotctlConfig, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	baseTools := config.Tools
	config.Tools = nil
	if err := yaml.Unmarshal(data, config); err != nil {
		config.Tools = baseTools
		return err
	}
	config.Tools = mergeTools(baseTools, config.Tools)
	return nil
}

// mergeTools merges 'overlay' tool definitions into 'base' by kind.
func mergeTools(base, overlay []ToolDefinition) []ToolDefinition {
	merged := make([]ToolDefinition, 0, len(base)+len(overlay))
	index := make(map[string]int)
	for _, def := range base {
		index[def.Kind] = len(merged)
		merged = append(merged, def)
	}
	for _, def := range overlay {
		if i, ok := index[def.Kind]; ok {
			merged[i] = def
			continue
		}
		index[def.Kind] = len(merged)
		merged = append(merged, def)
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// SaveConfig writes config to path as YAML, creating the parent directory.
func SaveConfig(config BotctlConfig, path string) error {
	data, err := yaml.Marshal(&config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// UserConfigPath returns the per-user configuration file,
// ~/.config/botctl/config.yaml.
func UserConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

// WriteDefaultConfig writes the default configuration to path, or to the
// user configuration file when path is empty. A directory path receives a
// config.yaml. An existing file is only replaced when force is set.
func WriteDefaultConfig(path string, force bool) (string, error) {
	if path == "" {
		p, err := UserConfigPath()
		if err != nil {
			return "", fmt.Errorf("could not determine user config path: %w", err)
		}
		path = p
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, configFileName)
	}

	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking %s: %w", path, err)
	}

	if err := SaveConfig(GetDefaultConfig(), path); err != nil {
		return "", err
	}
	return path, nil
}
