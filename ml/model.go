package ml

import (
	"errors"
	"fmt"
)

const (
	FamilyLinear       = "linear_regression"
	FamilyDecisionTree = "decision_tree"
	FamilyRandomForest = "random_forest"
)

var (
	ErrNotFitted       = errors.New("model not fitted")
	ErrFeatureMismatch = errors.New("feature count mismatch")
	ErrEmptyInput      = errors.New("features or targets empty")
	ErrUnknownFamily   = errors.New("unknown model family")
)

// Regressor is a model that maps a feature vector to a real value.
// Implementations are safe for concurrent Predict calls once fitted.
type Regressor interface {
	Fit(features [][]float64, targets []float64) error
	Predict(features []float64) (float64, error)
	Family() string
}

// Families lists every supported family in tie-break order.
func Families() []string {
	return []string{FamilyLinear, FamilyDecisionTree, FamilyRandomForest}
}

// Params are the hyperparameters shared by the model families.
type Params struct {
	// MaxDepth limits tree depth; 0 grows trees until leaves are pure.
	MaxDepth int
	Trees    int
	Seed     int64
}

// Factory builds a fresh, unfitted regressor.
type Factory func() Regressor

// NewFactory returns a factory for family configured with params.
func NewFactory(family string, params Params) (Factory, error) {
	switch family {
	case FamilyLinear:
		return func() Regressor { return &LinearRegression{} }, nil
	case FamilyDecisionTree:
		return func() Regressor { return NewDecisionTree(params.MaxDepth, params.Seed) }, nil
	case FamilyRandomForest:
		return func() Regressor { return NewRandomForest(params.Trees, params.MaxDepth, params.Seed) }, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFamily, family)
	}
}

func checkTrainingInput(features [][]float64, targets []float64) error {
	if len(features) == 0 || len(targets) == 0 {
		return ErrEmptyInput
	}
	if len(features) != len(targets) {
		return errors.New("features and targets size mismatch")
	}
	width := len(features[0])
	if width == 0 {
		return ErrEmptyInput
	}
	for _, row := range features {
		if len(row) != width {
			return fmt.Errorf("%w: rows of width %d and %d", ErrFeatureMismatch, width, len(row))
		}
	}
	return nil
}
