package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"botctl/pkg/logging"
)

// shutdownTimeout bounds the graceful stop of servers and tools.
var shutdownTimeout = 10 * time.Second

// runServeMode starts the HTTP and MCP endpoints and blocks until shutdown
func runServeMode(ctx context.Context, config *Config, services *Services) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := services.APIServer.Start(); err != nil {
		logging.Error("Bootstrap", err, "Failed to start HTTP API")
		return err
	}
	if services.MCPServer != nil {
		if err := services.MCPServer.Start(ctx); err != nil {
			logging.Error("Bootstrap", err, "Failed to start MCP server")
			shutdownAPI(services)
			return err
		}
		logging.Info("Bootstrap", "MCP endpoint: %s", services.MCPServer.Endpoint())
	}

	logging.Info("Bootstrap", "botctl is serving. Press Ctrl+C to stop all tools and exit.")
	<-ctx.Done()

	// Graceful shutdown sequence
	logging.Info("Bootstrap", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var firstErr error
	if err := services.APIServer.Shutdown(shutdownCtx); err != nil {
		firstErr = fmt.Errorf("shutting down HTTP API: %w", err)
	}
	if services.MCPServer != nil {
		if err := services.MCPServer.Stop(shutdownCtx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := services.Controller.Shutdown(shutdownCtx); err != nil {
		logging.Error("Bootstrap", err, "Not every tool stopped cleanly")
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func shutdownAPI(services *Services) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := services.APIServer.Shutdown(ctx); err != nil {
		logging.Warn("Bootstrap", "HTTP API shutdown: %v", err)
	}
}
