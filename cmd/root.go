package cmd

import (
	"io"
	"os"

	"botctl/internal/cli"

	"github.com/spf13/cobra"
)

// Persistent client flags, shared by run, status and their subcommands.
var (
	clientEndpoint     string
	clientOutputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "botctl",
	Short: "Start and stop the research chat bots",
	Long: `botctl supervises the bot scripts of the research chat platform
(the LLM bot, the hater bot and the conversation replay), allowing at most
one running instance of each and stopping a bot together with everything
it spawned.

Run 'botctl serve' on the host of the bots, then control them with
'botctl run' and 'botctl status' or through the HTTP and MCP endpoints.`,
	// Errors are reported by the commands themselves; usage would only bury them.
	SilenceUsage: true,
	// Reject a bad -o before any request reaches the server.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := cli.NewPrinter(io.Discard, cli.OutputFormat(clientOutputFormat))
		return err
	},
}

// SetVersion sets the version reported by --version, version and self-update.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the command line. It is called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`{{printf "botctl version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&clientEndpoint, "endpoint", "", "Server URL (default: from configuration)")
	rootCmd.PersistentFlags().StringVarP(&clientOutputFormat, "output", "o", string(cli.OutputFormatTable), "Output format (table, json, yaml)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
