package ml

import (
	"fmt"

	"github.com/goccy/go-json"
)

// LoadModel reads the artifact at path and decodes the fitted model it holds.
// featureNames must equal the names recorded at training time, in order.
func LoadModel(path string, featureNames []string) (Regressor, *Artifact, error) {
	artifact, err := readArtifact(path)
	if err != nil {
		return nil, nil, err
	}
	if !sameNames(artifact.FeatureNames, featureNames) {
		return nil, nil, fmt.Errorf("%w: artifact has %v, expected %v", ErrFeatureNames, artifact.FeatureNames, featureNames)
	}

	var model Regressor
	switch artifact.Family {
	case FamilyLinear:
		model = &LinearRegression{}
	case FamilyDecisionTree:
		model = &DecisionTree{}
	case FamilyRandomForest:
		model = &RandomForest{}
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFamily, artifact.Family)
	}
	if err := json.Unmarshal(artifact.Model, model); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", artifact.Family, err)
	}

	if v, ok := model.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, nil, fmt.Errorf("validate %s: %w", artifact.Family, err)
		}
	}

	// A decoded model must be usable; catch truncated or hand-edited files here
	// rather than on the first request.
	if _, err := model.Predict(make([]float64, len(featureNames))); err != nil {
		return nil, nil, fmt.Errorf("validate %s: %w", artifact.Family, err)
	}
	return model, artifact, nil
}
