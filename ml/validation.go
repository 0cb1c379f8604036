package ml

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// Split holds the train/test partition of a dataset.
type Split struct {
	TrainX [][]float64
	TrainY []float64
	TestX  [][]float64
	TestY  []float64
}

// TrainTestSplit shuffles rows with seed and holds out testRatio of them.
// The same seed and input always produce the same partition.
func TrainTestSplit(features [][]float64, targets []float64, testRatio float64, seed int64) (Split, error) {
	if err := checkTrainingInput(features, targets); err != nil {
		return Split{}, err
	}
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}

	n := len(features)
	testSize := int(math.Ceil(float64(n) * testRatio))
	if testSize >= n {
		return Split{}, fmt.Errorf("cannot hold out %d of %d rows", testSize, n)
	}

	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(n)

	var split Split
	for i, idx := range indices {
		if i < testSize {
			split.TestX = append(split.TestX, features[idx])
			split.TestY = append(split.TestY, targets[idx])
		} else {
			split.TrainX = append(split.TrainX, features[idx])
			split.TrainY = append(split.TrainY, targets[idx])
		}
	}
	return split, nil
}

// Fold is one contiguous validation window of a k-fold partition.
type Fold struct {
	Start, End int
}

// KFold partitions n rows into k contiguous folds without shuffling. The
// first n%k folds get one extra row.
func KFold(n, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("cannot split %d rows into %d folds", n, k)
	}
	folds := make([]Fold, k)
	start := 0
	for i := 0; i < k; i++ {
		size := n / k
		if i < n%k {
			size++
		}
		folds[i] = Fold{Start: start, End: start + size}
		start += size
	}
	return folds, nil
}

// CVResult summarises a cross-validation run for one family.
type CVResult struct {
	Family   string    `json:"family"`
	FoldRMSE []float64 `json:"fold_rmse"`
	MeanRMSE float64   `json:"mean_rmse"`
	StdRMSE  float64   `json:"std_rmse"`
}

// CrossValidate fits a fresh model from factory on k-1 folds and scores RMSE
// on the held-out fold, for each of the k folds.
func CrossValidate(ctx context.Context, factory Factory, features [][]float64, targets []float64, k int) (CVResult, error) {
	if err := checkTrainingInput(features, targets); err != nil {
		return CVResult{}, err
	}
	folds, err := KFold(len(features), k)
	if err != nil {
		return CVResult{}, err
	}

	result := CVResult{FoldRMSE: make([]float64, 0, k)}
	for i, fold := range folds {
		if err := ctx.Err(); err != nil {
			return CVResult{}, err
		}

		trainX := make([][]float64, 0, len(features)-(fold.End-fold.Start))
		trainY := make([]float64, 0, cap(trainX))
		trainX = append(append(trainX, features[:fold.Start]...), features[fold.End:]...)
		trainY = append(append(trainY, targets[:fold.Start]...), targets[fold.End:]...)

		model := factory()
		result.Family = model.Family()
		if err := model.Fit(trainX, trainY); err != nil {
			return CVResult{}, fmt.Errorf("fold %d: %w", i, err)
		}
		predictions, err := PredictAll(model, features[fold.Start:fold.End])
		if err != nil {
			return CVResult{}, fmt.Errorf("fold %d: %w", i, err)
		}
		rmse, err := RMSE(targets[fold.Start:fold.End], predictions)
		if err != nil {
			return CVResult{}, fmt.Errorf("fold %d: %w", i, err)
		}
		result.FoldRMSE = append(result.FoldRMSE, rmse)
	}

	result.MeanRMSE, result.StdRMSE = stat.MeanStdDev(result.FoldRMSE, nil)
	return result, nil
}
