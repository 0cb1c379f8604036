package ml

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"moodfuel/dataset"
)

type TrainingConfig struct {
	DatasetPath string
	ModelPath   string
	TestRatio   float64
	SplitSeed   int64
	CVFolds     int
	Candidates  []string
	Params      Params
}

// Report describes one training run.
type Report struct {
	RunID       string        `json:"run_id"`
	DatasetPath string        `json:"dataset_path"`
	ModelPath   string        `json:"model_path"`
	Rows        int           `json:"rows"`
	Rejected    int           `json:"rejected"`
	TrainRows   int           `json:"train_rows"`
	TestRows    int           `json:"test_rows"`
	CV          []CVResult    `json:"cv"`
	Selected    string        `json:"selected"`
	TestRMSE    float64       `json:"test_rmse"`
	TestMSE     float64       `json:"test_mse"`
	TrainedAt   time.Time     `json:"trained_at"`
	Duration    time.Duration `json:"duration"`
}

// RunRecorder persists training reports.
type RunRecorder interface {
	RecordRun(ctx context.Context, report *Report) error
}

type Trainer struct {
	config   TrainingConfig
	logger   *zap.Logger
	recorder RunRecorder
	cleaner  *dataset.Cleaner
}

// NewTrainer returns a trainer. recorder may be nil.
func NewTrainer(config TrainingConfig, logger *zap.Logger, recorder RunRecorder) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(config.Candidates) == 0 {
		config.Candidates = Families()
	}
	if config.CVFolds == 0 {
		config.CVFolds = 5
	}
	return &Trainer{
		config:   config,
		logger:   logger,
		recorder: recorder,
		cleaner:  dataset.NewCleaner(),
	}
}

// Run reads the dataset, picks the family with the lowest mean CV RMSE,
// refits it on the training split, scores it on the test split and saves it.
func (t *Trainer) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:       uuid.NewString(),
		DatasetPath: t.config.DatasetPath,
		ModelPath:   t.config.ModelPath,
	}
	logger := t.logger.With(zap.String("run_id", report.RunID))

	observations, err := dataset.ReadCSV(t.config.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	cleaned, issues := t.cleaner.Clean(observations)
	for _, issue := range issues {
		logger.Debug("row rejected", zap.Int("row", issue.Row), zap.String("rule", issue.Rule), zap.String("reason", issue.Message))
	}
	report.Rows = len(cleaned)
	report.Rejected = len(observations) - len(cleaned)
	logger.Info("dataset loaded",
		zap.String("path", t.config.DatasetPath),
		zap.Int("rows", report.Rows),
		zap.Int("rejected", report.Rejected))

	features, targets, err := dataset.Matrix(cleaned)
	if err != nil {
		return nil, err
	}
	split, err := TrainTestSplit(features, targets, t.config.TestRatio, t.config.SplitSeed)
	if err != nil {
		return nil, fmt.Errorf("split dataset: %w", err)
	}
	report.TrainRows = len(split.TrainX)
	report.TestRows = len(split.TestX)

	results, err := t.evaluateCandidates(ctx, split)
	if err != nil {
		return nil, err
	}
	report.CV = results
	for _, result := range results {
		logger.Info("cross-validated",
			zap.String("family", result.Family),
			zap.Float64("cv_rmse", result.MeanRMSE),
			zap.Float64("cv_std", result.StdRMSE))
	}

	best, err := SelectBest(results)
	if err != nil {
		return nil, err
	}
	report.Selected = best.Family
	logger.Info("selected model", zap.String("family", best.Family))

	factory, err := NewFactory(best.Family, t.config.Params)
	if err != nil {
		return nil, err
	}
	model := factory()
	if err := model.Fit(split.TrainX, split.TrainY); err != nil {
		return nil, fmt.Errorf("fit %s: %w", best.Family, err)
	}

	predictions, err := PredictAll(model, split.TestX)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", best.Family, err)
	}
	if report.TestMSE, err = MSE(split.TestY, predictions); err != nil {
		return nil, err
	}
	if report.TestRMSE, err = RMSE(split.TestY, predictions); err != nil {
		return nil, err
	}
	logger.Info("test evaluation",
		zap.Float64("test_rmse", report.TestRMSE),
		zap.Float64("test_mse", report.TestMSE))

	report.TrainedAt = time.Now().UTC()
	err = SaveArtifact(t.config.ModelPath, model, Artifact{
		FeatureNames: dataset.FeatureNames(),
		RunID:        report.RunID,
		TrainedAt:    report.TrainedAt,
		CVRMSE:       best.MeanRMSE,
		TestRMSE:     report.TestRMSE,
	})
	if err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	report.Duration = time.Since(start)
	logger.Info("model saved", zap.String("path", t.config.ModelPath), zap.Duration("took", report.Duration))

	if t.recorder != nil {
		if err := t.recorder.RecordRun(ctx, report); err != nil {
			// The artifact is already in place; a missing log entry is not fatal.
			logger.Warn("failed to record training run", zap.Error(err))
		}
	}
	return report, nil
}

// evaluateCandidates cross-validates every configured family concurrently and
// returns the results in candidate order.
func (t *Trainer) evaluateCandidates(ctx context.Context, split Split) ([]CVResult, error) {
	factories := make([]Factory, len(t.config.Candidates))
	for i, family := range t.config.Candidates {
		factory, err := NewFactory(family, t.config.Params)
		if err != nil {
			return nil, err
		}
		factories[i] = factory
	}

	results := make([]CVResult, len(factories))
	g, gctx := errgroup.WithContext(ctx)
	for i, factory := range factories {
		i, factory := i, factory
		g.Go(func() error {
			result, err := CrossValidate(gctx, factory, split.TrainX, split.TrainY, t.config.CVFolds)
			if err != nil {
				return fmt.Errorf("cross-validate %s: %w", t.config.Candidates[i], err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SelectBest returns the result with the lowest mean RMSE. Ties keep the
// earlier result.
func SelectBest(results []CVResult) (CVResult, error) {
	if len(results) == 0 {
		return CVResult{}, errors.New("no candidates evaluated")
	}
	best := results[0]
	for _, result := range results[1:] {
		if result.MeanRMSE < best.MeanRMSE {
			best = result
		}
	}
	return best, nil
}
