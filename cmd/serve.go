package cmd

import (
	"context"
	"fmt"

	"botctl/internal/app"
	"botctl/pkg/logging"

	"github.com/spf13/cobra"
)

// debug enables verbose logging, including every stdout line of the bots.
var serveDebug bool

// serveLogFormat selects "text" or "json" log lines.
var serveLogFormat string

// serveConfigPath replaces layered configuration with a single file.
var serveConfigPath string

// serveCmd defines the serve command structure.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot orchestrator and its control endpoints.",
	Long: `Starts the orchestrator and serves:

  POST /api/runScript          start or stop a bot: {"action": "start", "command": "python3 main.py ..."}
  GET  /api/runScript/status   state of every bot
  GET  /api/runScript/output   captured stdout of a bot (?kind=llm-bot)
  GET  /healthz

and, unless disabled, the same operations as MCP tools over SSE.

On Ctrl+C or SIGTERM every running bot is stopped before exiting.

Configuration:
  botctl layers ~/.config/botctl/config.yaml and ./.botctl/config.yaml over
  its defaults. Use --config to load one file instead.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	if serveLogFormat != logging.FormatText && serveLogFormat != logging.FormatJSON {
		return fmt.Errorf("unsupported log format %q (use text or json)", serveLogFormat)
	}

	cfg := app.NewConfig(serveDebug, serveLogFormat, serveConfigPath)
	cfg.Version = rootCmd.Version

	// Create and initialize the application
	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Run the application
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", logging.FormatText, "Log format (text, json)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Load configuration from this file or directory only")
}
