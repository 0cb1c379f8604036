package dataset

import (
	"math"
	"testing"
)

func TestGenerateStaysInRange(t *testing.T) {
	observations := NewGenerator(7).Generate(2000)
	if len(observations) != 2000 {
		t.Fatalf("expected 2000 rows, got %d", len(observations))
	}
	for i, obs := range observations {
		if obs.CoffeeStrength < 1 || obs.CoffeeStrength > 10 {
			t.Fatalf("row %d: strength %v outside [1, 10]", i, obs.CoffeeStrength)
		}
		if obs.SleepHours < 4 || obs.SleepHours > 9 {
			t.Fatalf("row %d: sleep %v outside [4, 9]", i, obs.SleepHours)
		}
		if obs.StressLevel < 1 || obs.StressLevel > 10 || obs.WorkloadLevel < 1 || obs.WorkloadLevel > 10 {
			t.Fatalf("row %d: level out of range: %+v", i, obs.Features)
		}
		if obs.TimeOfDay < 6 || obs.TimeOfDay > 22 {
			t.Fatalf("row %d: time %d outside [6, 22]", i, obs.TimeOfDay)
		}
		if math.Abs(obs.CoffeeStrength*10-math.Round(obs.CoffeeStrength*10)) > 1e-9 {
			t.Fatalf("row %d: strength %v not rounded to one decimal", i, obs.CoffeeStrength)
		}
	}
}

func TestGenerateIsReproducibleWithSeed(t *testing.T) {
	a := NewGenerator(99).Generate(50)
	b := NewGenerator(99).Generate(50)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestStrength(t *testing.T) {
	tests := []struct {
		name     string
		features Features
		noise    float64
		want     float64
	}{
		{"neutral afternoon", Features{SleepHours: 7, StressLevel: 5, TimeOfDay: 12, WorkloadLevel: 5}, 0, 5.0},
		{"short sleep morning", Features{SleepHours: 4.5, StressLevel: 5, TimeOfDay: 8, WorkloadLevel: 5}, 0, 8.5},
		{"under six hours", Features{SleepHours: 5.5, StressLevel: 5, TimeOfDay: 12, WorkloadLevel: 5}, 0, 6.5},
		{"rested evening", Features{SleepHours: 8, StressLevel: 5, TimeOfDay: 20, WorkloadLevel: 5}, 0, 2.5},
		{"stress and workload", Features{SleepHours: 7, StressLevel: 9, TimeOfDay: 12, WorkloadLevel: 9}, 0, 7.2},
		{"clamped high", Features{SleepHours: 4, StressLevel: 10, TimeOfDay: 6, WorkloadLevel: 10}, 0.5, 10},
		{"clamped low", Features{SleepHours: 9, StressLevel: 1, TimeOfDay: 22, WorkloadLevel: 1}, -0.5, 1},
		{"noise rounds", Features{SleepHours: 7, StressLevel: 5, TimeOfDay: 12, WorkloadLevel: 5}, 0.26, 5.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strength(tt.features, tt.noise); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Strength() = %v, want %v", got, tt.want)
			}
		})
	}
}
