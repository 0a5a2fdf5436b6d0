package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/MeKo-Tech/moore/internal/config"
	"github.com/spf13/cobra"
)

// configCmd groups configuration helpers.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and generate configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write a configuration file with default values",
	Long: `Write the default configuration as YAML. The file name defaults to
moore.yaml in the current directory; an existing file is only replaced
with --force.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := config.ConfigFileName + ".yaml"
		if len(args) == 1 {
			filename = args[0]
		}

		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(filename); err == nil && !force {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", filename)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		if err := config.GenerateDefaultConfigFile(filename); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", filename)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:          "show",
	Short:        "Print the resolved configuration as YAML",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if info, _ := cmd.Flags().GetBool("info"); info {
			GetConfigLoader().PrintConfigInfo(cmd.OutOrStdout())
		}
		return config.WriteYAML(cmd.OutOrStdout(), *GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configShowCmd.Flags().Bool("info", false, "also print the config file used and the search paths")
}
