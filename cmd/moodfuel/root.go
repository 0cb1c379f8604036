package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moodfuel/config"
	"moodfuel/logging"
)

// app carries what every subcommand needs once the root command has loaded
// the configuration.
type app struct {
	configPath string
	config     *config.Config
	logger     *zap.Logger
	level      zap.AtomicLevel
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "moodfuel",
		Short: "Coffee strength recommendations from sleep, stress, time and workload",
		Long: `moodfuel generates a synthetic coffee strength dataset, trains a
regression model on it and serves recommendations over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newTrainCmd(a),
		newServeCmd(a),
		newRunsCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, level, err := logging.New(logOptions(cfg))
	if err != nil {
		return err
	}
	a.config = cfg
	a.logger = logger
	a.level = level
	return nil
}

func logOptions(cfg *config.Config) logging.Options {
	return logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}
}
