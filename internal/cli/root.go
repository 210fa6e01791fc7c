package cli

import (
	"github.com/mgpai22/subview/internal/config"
	"github.com/mgpai22/subview/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subview",
	Short: "Play subtitle files in sync with a running clock",
	Long: `Subview is a terminal subtitle viewer.

It loads an SRT file, plays the subtitles back against a running clock and
shows the transcript, following the active line. The clock can be trimmed
forwards or backwards and playback can be restarted from any line.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if cfg.Path() != "" {
			logger.Debugw("Loaded configuration", "path", cfg.Path())
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/subview/config.yaml)")
}
