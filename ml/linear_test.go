package ml

import (
	"errors"
	"math"
	"testing"
)

func TestLinearRegressionRecoversCoefficients(t *testing.T) {
	// y = 2 + 3*x0 - 0.5*x1
	features := [][]float64{
		{1, 4}, {2, 1}, {3, 7}, {4, 2}, {5, 9}, {6, 3}, {7, 8}, {8, 5},
	}
	targets := make([]float64, len(features))
	for i, row := range features {
		targets[i] = 2 + 3*row[0] - 0.5*row[1]
	}

	model := &LinearRegression{}
	if err := model.Fit(features, targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(model.Intercept-2) > 1e-9 {
		t.Fatalf("expected intercept 2, got %v", model.Intercept)
	}
	want := []float64{3, -0.5}
	for i, w := range want {
		if math.Abs(model.Coefficients[i]-w) > 1e-9 {
			t.Fatalf("coefficient %d: expected %v, got %v", i, w, model.Coefficients[i])
		}
	}

	got, err := model.Predict([]float64{10, 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-27) > 1e-9 {
		t.Fatalf("expected 27, got %v", got)
	}
}

func TestLinearRegressionErrors(t *testing.T) {
	model := &LinearRegression{}
	if _, err := model.Predict([]float64{1}); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
	if err := model.Fit([][]float64{{1}, {2, 3}}, []float64{1, 2}); !errors.Is(err, ErrFeatureMismatch) {
		t.Fatalf("expected ErrFeatureMismatch, got %v", err)
	}
	if err := model.Fit([][]float64{{1}, {2}, {3}}, []float64{1, 2, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := model.Predict([]float64{1, 2}); !errors.Is(err, ErrFeatureMismatch) {
		t.Fatalf("expected ErrFeatureMismatch, got %v", err)
	}
}

func TestLinearRegressionConstantColumn(t *testing.T) {
	// time_of_day fixed at 9 in every row.
	var features [][]float64
	var targets []float64
	for i := 0; i < 20; i++ {
		sleep := 4 + float64(i%10)*0.5
		stress := float64(1 + (i*3)%10)
		workload := float64(1 + (i*7)%10)
		features = append(features, []float64{sleep, stress, 9, workload})
		targets = append(targets, 5-0.8*sleep+0.3*stress+0.25*workload)
	}

	model := &LinearRegression{}
	if err := model.Fit(features, targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(model.Coefficients[2]) > 1e-9 {
		t.Fatalf("expected zero weight on constant column, got %v", model.Coefficients[2])
	}
	want := []float64{-0.8, 0.3, 0, 0.25}
	for i, w := range want {
		if math.Abs(model.Coefficients[i]-w) > 1e-9 {
			t.Fatalf("coefficient %d: expected %v, got %v", i, w, model.Coefficients[i])
		}
	}

	atNine, err := model.Predict([]float64{6.5, 7, 9, 8})
	if err != nil {
		t.Fatal(err)
	}
	atTen, err := model.Predict([]float64{6.5, 7, 10, 8})
	if err != nil {
		t.Fatal(err)
	}
	expected := 5 - 0.8*6.5 + 0.3*7 + 0.25*8
	if math.Abs(atNine-expected) > 1e-9 || math.Abs(atTen-expected) > 1e-9 {
		t.Fatalf("expected %v off and on the constant, got %v and %v", expected, atTen, atNine)
	}
}

func TestLinearRegressionAllConstantFeatures(t *testing.T) {
	features := [][]float64{{3, 1}, {3, 1}, {3, 1}}
	targets := []float64{2, 4, 6}
	model := &LinearRegression{}
	if err := model.Fit(features, targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := model.Predict([]float64{100, -100})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-4) > 1e-9 {
		t.Fatalf("expected the target mean 4, got %v", got)
	}
}
