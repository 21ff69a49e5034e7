package cmd

import (
	"strings"

	"botctl/internal/cli"
	"botctl/internal/orchestrator"
	"botctl/internal/tool"

	"github.com/spf13/cobra"
)

// newClient returns a client for --endpoint or the configured server.
var newClient = func() *cli.Client {
	if clientEndpoint != "" {
		return cli.NewClientWithEndpoint(strings.TrimRight(clientEndpoint, "/"))
	}
	return cli.NewClient()
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start or stop a bot on a running server",
	Long: `Send control requests to a running 'botctl serve'.

The command line decides which bot is meant: it must mention main.py,
hate_speech_generator.py or replay.py. Only one instance of each may run.`,
}

var runStartCmd = &cobra.Command{
	Use:   "start <command>",
	Short: "Start a bot",
	Long: `Start a bot by its command line, for example:

  botctl run start "python3 main.py verenetti --start 2>> error_log.txt"
  botctl run start -- python3 src/replay.py conversation.json --speedup 4

Separate arguments are joined with single spaces.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, orchestrator.ActionStart, strings.Join(args, " "))
	},
}

var runStopCmd = &cobra.Command{
	Use:   "stop <command|script>",
	Short: "Stop a bot",
	Long: `Stop the running bot referenced by the command line or script name,
for example:

  botctl run stop main.py`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, orchestrator.ActionStop, strings.Join(args, " "))
	},
}

var runOutputCmd = &cobra.Command{
	Use:   "output <kind>",
	Short: "Print the captured stdout of a bot",
	Long: `Print the stdout tail of the current or last run of a bot.
Kinds: llm-bot, hater-bot, replay.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := tool.ParseKind(args[0])
		if err != nil {
			return err
		}
		printer, err := cli.NewPrinter(cmd.OutOrStdout(), cli.OutputFormat(clientOutputFormat))
		if err != nil {
			return err
		}
		res, _, err := newClient().Output(cmd.Context(), kind)
		if err != nil {
			return err
		}
		return printer.PrintResult(res)
	},
}

func runControl(cmd *cobra.Command, action orchestrator.Action, command string) error {
	printer, err := cli.NewPrinter(cmd.OutOrStdout(), cli.OutputFormat(clientOutputFormat))
	if err != nil {
		return err
	}
	res, _, err := newClient().RunScript(cmd.Context(), string(action), command)
	if err != nil {
		return err
	}
	return printer.PrintResult(res)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.AddCommand(runStartCmd)
	runCmd.AddCommand(runStopCmd)
	runCmd.AddCommand(runOutputCmd)
}
