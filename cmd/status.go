package cmd

import (
	"botctl/internal/cli"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which bots are running",
	Long: `List every bot kind with its state, process id, command line and
the outcome of its last run.

Note: the server must be running (use 'botctl serve') before using this command.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	printer, err := cli.NewPrinter(cmd.OutOrStdout(), cli.OutputFormat(clientOutputFormat))
	if err != nil {
		return err
	}
	statuses, err := newClient().Status(cmd.Context())
	if err != nil {
		return err
	}
	return printer.PrintStatus(statuses)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
