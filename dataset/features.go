// Package dataset holds the observation schema, the synthetic generator and
// the CSV reader/writer consumed by the trainer.
package dataset

import "errors"

const (
	ColSleepHours     = "sleep_hours"
	ColStressLevel    = "stress_level"
	ColTimeOfDay      = "time_of_day"
	ColWorkloadLevel  = "workload_level"
	ColCoffeeStrength = "coffee_strength"
)

var ErrEmptyDataset = errors.New("dataset is empty")

// Features are the four model inputs.
type Features struct {
	SleepHours    float64 `json:"sleep_hours"`
	StressLevel   int     `json:"stress_level"`
	TimeOfDay     int     `json:"time_of_day"`
	WorkloadLevel int     `json:"workload_level"`
}

// Observation is one labelled row of the dataset.
type Observation struct {
	Features
	CoffeeStrength float64 `json:"coffee_strength"`
}

// FeatureNames returns the column order the model is trained and queried with.
func FeatureNames() []string {
	return []string{ColSleepHours, ColStressLevel, ColTimeOfDay, ColWorkloadLevel}
}

// Columns returns the dataset header: the features followed by the target.
func Columns() []string {
	return append(FeatureNames(), ColCoffeeStrength)
}

// Vector lays the features out in FeatureNames order.
func (f Features) Vector() []float64 {
	return []float64{
		f.SleepHours,
		float64(f.StressLevel),
		float64(f.TimeOfDay),
		float64(f.WorkloadLevel),
	}
}

// Matrix splits observations into a feature matrix and a target vector.
func Matrix(observations []Observation) ([][]float64, []float64, error) {
	if len(observations) == 0 {
		return nil, nil, ErrEmptyDataset
	}
	x := make([][]float64, len(observations))
	y := make([]float64, len(observations))
	for i, obs := range observations {
		x[i] = obs.Vector()
		y[i] = obs.CoffeeStrength
	}
	return x, y, nil
}
