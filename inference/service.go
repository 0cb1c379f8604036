// Package inference serves predictions from a model artifact loaded once at
// startup.
package inference

import (
	"context"
	"fmt"
	"math"
	"math/big"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"

	"moodfuel/dataset"
	"moodfuel/ml"
)

// Model is the read-only view of a fitted regressor the service needs.
type Model interface {
	Predict(features []float64) (float64, error)
}

// Service wraps a loaded model. It holds no mutable state besides the
// internally synchronised cache, so one Service is shared by all requests.
type Service struct {
	model    Model
	artifact *ml.Artifact
	cache    *lru.Cache[dataset.Features, float64]
}

// Load reads the artifact at path. Callers treat an error as fatal.
func Load(path string, cacheSize int) (*Service, error) {
	model, artifact, err := ml.LoadModel(path, dataset.FeatureNames())
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return New(model, artifact, cacheSize)
}

// New wraps an already loaded model. cacheSize 0 disables the cache.
func New(model Model, artifact *ml.Artifact, cacheSize int) (*Service, error) {
	s := &Service{model: model, artifact: artifact}
	if cacheSize > 0 {
		cache, err := lru.New[dataset.Features, float64](cacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

// Predict returns the recommended strength for features rounded to two
// decimals.
func (s *Service) Predict(ctx context.Context, features dataset.Features) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.cache != nil {
		if v, ok := s.cache.Get(features); ok {
			return v, nil
		}
	}

	raw, err := s.model.Predict(features.Vector())
	if err != nil {
		return 0, err
	}
	value := roundHalfEven(raw, 2)

	if s.cache != nil {
		s.cache.Add(features, value)
	}
	return value, nil
}

// Artifact returns the metadata of the loaded model, or nil if the service
// was built around a bare model.
func (s *Service) Artifact() *ml.Artifact {
	return s.artifact
}

// roundHalfEven rounds the exact binary value of v to places decimals, ties to
// even. 2.675 is stored as 2.67499999... and therefore rounds to 2.67.
func roundHalfEven(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exact, err := decimal.NewFromString(new(big.Float).SetFloat64(v).Text('f', 1100))
	if err != nil {
		return v
	}
	rounded, _ := exact.RoundBank(places).Float64()
	return rounded
}
