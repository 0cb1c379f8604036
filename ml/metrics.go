package ml

import (
	"errors"
	"math"
)

// MSE is the mean squared error between predictions and targets.
func MSE(targets, predictions []float64) (float64, error) {
	if len(targets) == 0 {
		return 0, ErrEmptyInput
	}
	if len(targets) != len(predictions) {
		return 0, errors.New("targets and predictions size mismatch")
	}
	var sum float64
	for i := range targets {
		diff := targets[i] - predictions[i]
		sum += diff * diff
	}
	return sum / float64(len(targets)), nil
}

func RMSE(targets, predictions []float64) (float64, error) {
	mse, err := MSE(targets, predictions)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// PredictAll runs model over every row.
func PredictAll(model Regressor, features [][]float64) ([]float64, error) {
	predictions := make([]float64, len(features))
	for i, row := range features {
		p, err := model.Predict(row)
		if err != nil {
			return nil, err
		}
		predictions[i] = p
	}
	return predictions, nil
}
