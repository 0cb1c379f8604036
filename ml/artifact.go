package ml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

var ErrFeatureNames = errors.New("artifact feature names do not match")

// Artifact is the on-disk envelope around a fitted model.
type Artifact struct {
	Family       string          `json:"family"`
	FeatureNames []string        `json:"feature_names"`
	RunID        string          `json:"run_id,omitempty"`
	TrainedAt    time.Time       `json:"trained_at"`
	CVRMSE       float64         `json:"cv_rmse"`
	TestRMSE     float64         `json:"test_rmse"`
	Model        json.RawMessage `json:"model"`
}

// SaveArtifact writes model and its metadata to path. The file is written to a
// temporary sibling first and renamed, so readers never observe a partial file.
func SaveArtifact(path string, model Regressor, meta Artifact) error {
	payload, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("encode %s: %w", model.Family(), err)
	}
	meta.Family = model.Family()
	meta.Model = payload
	if meta.TrainedAt.IsZero() {
		meta.TrainedAt = time.Now().UTC()
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &artifact, nil
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
