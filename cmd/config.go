package cmd

import (
	"fmt"

	"botctl/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configInitForce bool
	configShowPath  string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect botctl configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Long: `Write botctl's defaults as YAML, ready to be edited.

Without a path the file goes to ~/.config/botctl/config.yaml. A directory
path receives a config.yaml; for a project file use:

  botctl config init .botctl`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		written, err := config.WriteDefaultConfig(path, configInitForce)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", written)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration 'botctl serve' would use: defaults overlaid
with the user and project files, or only --config when given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg config.BotctlConfig
			err error
		)
		if configShowPath != "" {
			cfg, err = config.LoadConfigFromPath(configShowPath)
		} else {
			cfg, err = config.LoadConfig()
		}
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(&cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
	configShowCmd.Flags().StringVar(&configShowPath, "config", "", "Show only this file or directory over the defaults")
}
