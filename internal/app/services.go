package app

import (
	"fmt"

	"botctl/internal/api"
	"botctl/internal/lifecycle"
	"botctl/internal/mcpserver"
	"botctl/internal/orchestrator"
	"botctl/internal/registry"
	"botctl/pkg/logging"
)

// Services holds all the initialized components
type Services struct {
	Registry     *registry.Registry
	Controller   *lifecycle.Controller
	Orchestrator *orchestrator.Service
	APIServer    *api.Server
	MCPServer    *mcpserver.Server // nil when disabled
}

// InitializeServices wires registry, controller, service and servers from cfg.
func InitializeServices(cfg *Config) (*Services, error) {
	bc := cfg.BotctlConfig
	if bc == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	stopSignal, err := lifecycle.ParseSignal(bc.Stop.Signal)
	if err != nil {
		return nil, fmt.Errorf("stop.signal: %w", err)
	}

	reg := registry.New()
	ctrl := lifecycle.NewController(reg, lifecycle.Options{
		LogDir:      bc.Logs.Dir,
		LogFiles:    bc.LogFiles(),
		LockDir:     bc.LockDir,
		Shell:       bc.Shell,
		WorkDir:     bc.WorkDir,
		Env:         bc.Env,
		StopSignal:  stopSignal,
		KillAfter:   bc.Stop.KillAfter,
		OutputLimit: bc.Output.MaxBytes,
		OnEvent:     logEvent,
	})
	svc := orchestrator.NewService(reg, ctrl)

	services := &Services{
		Registry:     reg,
		Controller:   ctrl,
		Orchestrator: svc,
		APIServer:    api.NewServer(svc, bc.Server.Host, bc.Server.Port),
	}
	if bc.MCP.Enabled {
		services.MCPServer = mcpserver.NewServer(mcpserver.Config{
			Host:    bc.MCP.Host,
			Port:    bc.MCP.Port,
			Version: cfg.Version,
		}, svc)
	}
	return services, nil
}

func logEvent(ev lifecycle.Event) {
	switch ev.Type {
	case lifecycle.EventStarted:
		logging.Info("Lifecycle", "%s started (pid %d, run %s)", ev.Kind, ev.PID, ev.RunID)
	case lifecycle.EventStopRequested:
		logging.Info("Lifecycle", "%s stop requested (pid %d)", ev.Kind, ev.PID)
	case lifecycle.EventExited:
		if ev.Err != nil {
			logging.Warn("Lifecycle", "%s exited %s with code %d: %v", ev.Kind, ev.State, ev.ExitCode, ev.Err)
			return
		}
		logging.Info("Lifecycle", "%s exited %s with code %d", ev.Kind, ev.State, ev.ExitCode)
	}
}
