package dataset

import (
	"math"
	"math/rand"
	"time"
)

const (
	baseStrength = 5.0
	minStrength  = 1.0
	maxStrength  = 10.0
	noiseSpread  = 0.5
)

// Generator draws synthetic observations from the strength heuristic.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a generator seeded with seed. A zero seed uses the
// current time, so every run yields a different dataset.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate draws n observations.
func (g *Generator) Generate(n int) []Observation {
	observations := make([]Observation, 0, n)
	for i := 0; i < n; i++ {
		features := Features{
			SleepHours:    round(4+g.rnd.Float64()*5, 1),
			StressLevel:   1 + g.rnd.Intn(10),
			WorkloadLevel: 1 + g.rnd.Intn(10),
			TimeOfDay:     6 + g.rnd.Intn(17),
		}
		noise := (g.rnd.Float64()*2 - 1) * noiseSpread
		observations = append(observations, Observation{
			Features:       features,
			CoffeeStrength: Strength(features, noise),
		})
	}
	return observations
}

// Strength applies the heuristic to features, adds noise, clamps the result
// to [1, 10] and rounds it to one decimal.
func Strength(f Features, noise float64) float64 {
	strength := baseStrength

	switch {
	case f.SleepHours < 5:
		strength += 2.5
	case f.SleepHours < 6:
		strength += 1.5
	case f.SleepHours > 7.5:
		strength -= 1.0
	}

	strength += float64(f.StressLevel-5) * 0.3
	strength += float64(f.WorkloadLevel-5) * 0.25

	switch {
	case f.TimeOfDay < 10:
		strength += 1.0
	case f.TimeOfDay > 17:
		strength -= 1.5
	}

	strength += noise
	strength = math.Max(minStrength, math.Min(maxStrength, strength))
	return round(strength, 1)
}

func round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
