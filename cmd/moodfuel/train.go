package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"moodfuel/db"
	"moodfuel/ml"
)

func newTrainCmd(a *app) *cobra.Command {
	var (
		datasetPath string
		modelPath   string
		noRecord    bool
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train and save the coffee strength model",
		Long: `Cross-validate every candidate model family on the training split, refit
the one with the lowest mean RMSE, report its held-out test error and save it
as a JSON artifact. The run is recorded in the SQLite training log.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config
			if datasetPath == "" {
				datasetPath = cfg.Dataset.Path
			}
			if modelPath == "" {
				modelPath = cfg.ML.ModelPath
			}

			var recorder ml.RunRecorder
			if !noRecord {
				store, err := db.Open(cfg.Database.Path)
				if err != nil {
					a.logger.Warn("training log unavailable", zap.String("path", cfg.Database.Path), zap.Error(err))
				} else {
					defer store.Close()
					recorder = store
				}
			}

			trainer := ml.NewTrainer(ml.TrainingConfig{
				DatasetPath: datasetPath,
				ModelPath:   modelPath,
				TestRatio:   cfg.ML.TestRatio,
				SplitSeed:   *cfg.ML.SplitSeed,
				CVFolds:     cfg.ML.CVFolds,
				Candidates:  cfg.ML.Candidates,
				Params: ml.Params{
					MaxDepth: cfg.ML.MaxDepth,
					Trees:    cfg.ML.Trees,
					Seed:     *cfg.ML.ModelSeed,
				},
			}, a.logger, recorder)

			report, err := trainer.Run(cmd.Context())
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&datasetPath, "dataset", "d", "", "Dataset CSV path (default: dataset.path)")
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Artifact output path (default: ml.model_path)")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "Do not write the run to the training log")
	return cmd
}

func printReport(w io.Writer, report *ml.Report) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "Run %s\n", report.RunID)
	p.Fprintf(w, "Rows: %d (rejected %d), train %d, test %d\n", report.Rows, report.Rejected, report.TrainRows, report.TestRows)
	for _, result := range report.CV {
		marker := " "
		if result.Family == report.Selected {
			marker = "*"
		}
		p.Fprintf(w, "%s %-18s CV RMSE: %.4f (+/- %.4f)\n", marker, result.Family, result.MeanRMSE, result.StdRMSE)
	}
	p.Fprintf(w, "Selected: %s\n", report.Selected)
	p.Fprintf(w, "Test RMSE: %.4f\n", report.TestRMSE)
	p.Fprintf(w, "Test MSE: %.4f\n", report.TestMSE)
	fmt.Fprintf(w, "Model saved to %s in %s\n", report.ModelPath, report.Duration.Round(time.Millisecond))
}
