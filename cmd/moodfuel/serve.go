package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moodfuel/config"
	qhttp "moodfuel/http"
	"moodfuel/inference"
	"moodfuel/logging"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port      int
		modelPath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve coffee strength predictions over HTTP",
		Long: `Load the trained model artifact once and serve predictions on
POST /predict. The process exits if the artifact cannot be loaded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config
			if modelPath == "" {
				modelPath = cfg.ML.ModelPath
			}
			if port == 0 {
				port = cfg.Http.Port
			}

			service, err := inference.Load(modelPath, cfg.ML.CacheSize)
			if err != nil {
				return err
			}
			artifact := service.Artifact()
			a.logger.Info("model loaded",
				zap.String("path", modelPath),
				zap.String("family", artifact.Family),
				zap.String("run_id", artifact.RunID),
				zap.Float64("test_rmse", artifact.TestRMSE))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go a.watchConfig(ctx)

			server := qhttp.NewServer(qhttp.ServerConfig{
				Port:           port,
				Timeout:        cfg.Http.Timeout,
				MaxBodyBytes:   cfg.Http.MaxBodyBytes,
				AllowedOrigins: cfg.Http.AllowedOrigins,
			}, service, a.logger)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			if err := server.Stop(context.Background()); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return <-errCh
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (default: http.port)")
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Model artifact path (default: ml.model_path)")
	return cmd
}

// watchConfig applies log level changes from the config file while serving.
// Other settings take effect on restart.
func (a *app) watchConfig(ctx context.Context) {
	err := config.Watch(ctx, a.configPath,
		func(cfg *config.Config) {
			if err := logging.SetLevel(a.level, cfg.Log.Level); err != nil {
				a.logger.Warn("ignoring log level change", zap.Error(err))
				return
			}
			a.logger.Info("log level updated", zap.String("level", cfg.Log.Level))
		},
		func(err error) {
			a.logger.Warn("config reload failed", zap.Error(err))
		},
	)
	if err != nil {
		a.logger.Warn("config watcher stopped", zap.Error(err))
	}
}
