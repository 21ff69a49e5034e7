package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"botctl/internal/config"
	"botctl/pkg/logging"
)

// Application is the main application structure that bootstraps and runs botctl
type Application struct {
	config   *Config
	services *Services
}

// logOutput is where serve-mode logs go; tests swap it.
var logOutput io.Writer = os.Stdout

// NewApplication creates and initializes a new application instance
func NewApplication(cfg *Config) (*Application, error) {
	// Configure logging based on debug flag
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	if cfg.LogFormat == logging.FormatJSON {
		logging.InitForJSON(appLogLevel, logOutput)
	} else {
		logging.InitForCLI(appLogLevel, logOutput)
	}

	if cfg.BotctlConfig == nil {
		botctlCfg, err := loadConfig(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.BotctlConfig = &botctlCfg
	}

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

func loadConfig(path string) (config.BotctlConfig, error) {
	if path != "" {
		// Use single file configuration loading
		botctlCfg, err := config.LoadConfigFromPath(path)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load botctl configuration from path: %s", path)
			return config.BotctlConfig{}, fmt.Errorf("failed to load botctl configuration from path %s: %w", path, err)
		}
		logging.Info("Bootstrap", "Loaded configuration from custom path: %s", path)
		return botctlCfg, nil
	}

	// Use layered configuration loading (default behavior)
	botctlCfg, err := config.LoadConfig()
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load botctl configuration")
		return config.BotctlConfig{}, fmt.Errorf("failed to load botctl configuration: %w", err)
	}
	logging.Info("Bootstrap", "Loaded configuration using layered approach")
	return botctlCfg, nil
}

// Services returns the wired components.
func (a *Application) Services() *Services {
	return a.services
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// stops every running tool.
func (a *Application) Run(ctx context.Context) error {
	return runServeMode(ctx, a.config, a.services)
}
