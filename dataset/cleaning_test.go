package dataset

import (
	"math"
	"testing"
)

func TestCleanerRejectsInvalidRows(t *testing.T) {
	valid := Observation{
		Features:       Features{SleepHours: 6.5, StressLevel: 7, TimeOfDay: 9, WorkloadLevel: 8},
		CoffeeStrength: 6.2,
	}
	tooStressed := valid
	tooStressed.StressLevel = 11
	strongCoffee := valid
	strongCoffee.CoffeeStrength = 12
	nanSleep := valid
	nanSleep.SleepHours = math.NaN()

	cleaner := NewCleaner()
	cleaned, issues := cleaner.Clean([]Observation{valid, tooStressed, strongCoffee, nanSleep})

	if len(cleaned) != 1 || cleaned[0] != valid {
		t.Fatalf("expected only the valid row, got %+v", cleaned)
	}
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d: %+v", len(issues), issues)
	}
	if issues[0].Rule != "stress_level_range" || issues[0].Row != 1 {
		t.Fatalf("unexpected first issue: %+v", issues[0])
	}

	stats := cleaner.Stats()
	if stats.TotalProcessed != 4 || stats.Passed != 1 || stats.Rejected != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Issues["coffee_strength_range"] != 1 || stats.Issues["finite_values"] != 1 {
		t.Fatalf("unexpected issue counts: %+v", stats.Issues)
	}
}

func TestCleanerKeepsGeneratedData(t *testing.T) {
	observations := NewGenerator(11).Generate(500)
	cleaned, issues := NewCleaner().Clean(observations)
	if len(issues) != 0 {
		t.Fatalf("generated data should be clean, got %+v", issues[0])
	}
	if len(cleaned) != len(observations) {
		t.Fatalf("expected %d rows, got %d", len(observations), len(cleaned))
	}
}
