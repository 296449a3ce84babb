package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cameracore "github.com/menta2k/camera-core"
	"github.com/menta2k/camera-core/internal/config"
	"github.com/menta2k/camera-core/internal/logger"
)

var (
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config

	rootCmd = &cobra.Command{
		Use:   "camera-core",
		Short: "camera-core - zoom and resolution tooling for mobile camera pipelines",
		Long: `camera-core exposes the zoom and output size logic of the camera core
library on the command line, for checking device capability tables and
replaying recorded pinch gestures.

Features:
  • Pick the preview stream size for a viewport and aspect ratio
  • Pick the largest still capture size
  • Replay YAML gesture traces through the zoom controller
  • Magnify preview frames the way the preview surface does
  • Inspect and initialize the configuration`,
		Version:      cameracore.GetVersion(),
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentPreRunE = loadConfig

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/camera-core/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error, off)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "human readable log output")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	v = config.NewViper()

	// Bind flags to viper
	v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("logging.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	logger.InitWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Pretty)
	logger.Logger.Debug().
		Str("config", v.ConfigFileUsed()).
		Str("level", cfg.Logging.Level).
		Msg("configuration loaded")
	return nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetConfigPath()
}
