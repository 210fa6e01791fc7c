package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subview/internal/config"
	"github.com/mgpai22/subview/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Long: `Write the default configuration to the path given with --config, or to
the default location.

Examples:
  subview config init
  subview config init --config ./subview.yaml --force`,
	Args: cobra.NoArgs,
	// the file may not exist yet, so skip loading it
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file in use",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cfg.Path() != "" {
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Path())
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), "(defaults, no file)")
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().
		BoolP("force", "f", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Default().Save(path); err != nil {
		return err
	}

	logger.Infow("Wrote configuration", "path", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written: %s\n", path)
	return nil
}
