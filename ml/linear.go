package ml

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// rankTolerance is the singular value cutoff, relative to the largest one.
const rankTolerance = 1e-10

// LinearRegression is ordinary least squares with an intercept.
type LinearRegression struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func (lr *LinearRegression) Family() string { return FamilyLinear }

// Fit solves the least-squares problem on centred columns with a
// minimum-norm SVD solve. Columns without variance, and exact linear
// combinations of other columns, get no weight beyond the minimum-norm share,
// so a constant feature ends up with a zero coefficient.
func (lr *LinearRegression) Fit(features [][]float64, targets []float64) error {
	if err := checkTrainingInput(features, targets); err != nil {
		return err
	}
	rows, cols := len(features), len(features[0])

	means := make([]float64, cols)
	for _, row := range features {
		floats.Add(means, row)
	}
	floats.Scale(1/float64(rows), means)
	yMean := stat.Mean(targets, nil)

	centred := mat.NewDense(rows, cols, nil)
	for i, row := range features {
		for j, v := range row {
			centred.Set(i, j, v-means[j])
		}
	}
	y := mat.NewVecDense(rows, nil)
	for i, v := range targets {
		y.SetVec(i, v-yMean)
	}

	lr.Coefficients = make([]float64, cols)
	var svd mat.SVD
	if !svd.Factorize(centred, mat.SVDThin) {
		return errors.New("solve least squares: SVD factorization failed")
	}
	if rank := svd.Rank(rankTolerance); rank > 0 {
		var beta mat.VecDense
		svd.SolveVecTo(&beta, y, rank)
		for j := range lr.Coefficients {
			lr.Coefficients[j] = beta.AtVec(j)
		}
	}
	lr.Intercept = yMean - floats.Dot(lr.Coefficients, means)
	return nil
}

func (lr *LinearRegression) Predict(features []float64) (float64, error) {
	if lr.Coefficients == nil {
		return 0, ErrNotFitted
	}
	if len(features) != len(lr.Coefficients) {
		return 0, fmt.Errorf("%w: want %d, got %d", ErrFeatureMismatch, len(lr.Coefficients), len(features))
	}
	return lr.Intercept + floats.Dot(lr.Coefficients, features), nil
}
