package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"moodfuel/dataset"
	"moodfuel/db"
	"moodfuel/inference"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	content := fmt.Sprintf(`log:
  level: error
dataset:
  path: %s
  samples: 150
  seed: 7
database:
  path: %s
ml:
  model_path: %s
  trees: 8
  max_depth: 6
  cv_folds: 3
`, filepath.Join(dir, "data.csv"), filepath.Join(dir, "runs.db"), filepath.Join(dir, "model.json"))
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateTrainRuns(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir)

	out, err := run(t, "--config", configPath, "generate")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "150 samples") {
		t.Fatalf("unexpected generate output: %s", out)
	}
	observations, err := dataset.ReadCSV(filepath.Join(dir, "data.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(observations) != 150 {
		t.Fatalf("expected 150 rows, got %d", len(observations))
	}

	out, err = run(t, "--config", configPath, "train")
	if err != nil {
		t.Fatalf("train: %v\n%s", err, out)
	}
	for _, want := range []string{"Selected:", "Test RMSE:", "Test MSE:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("train output missing %q: %s", want, out)
		}
	}

	service, err := inference.Load(filepath.Join(dir, "model.json"), 0)
	if err != nil {
		t.Fatalf("load trained model: %v", err)
	}
	if service.Artifact().RunID == "" {
		t.Fatal("expected run id in artifact")
	}

	out, err = run(t, "--config", configPath, "runs", "--json")
	if err != nil {
		t.Fatalf("runs: %v\n%s", err, out)
	}
	var runs []db.TrainingRun
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("invalid runs json: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].RunID != service.Artifact().RunID {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestGenerateFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir)
	output := filepath.Join(dir, "other", "small.csv")

	if out, err := run(t, "--config", configPath, "generate", "-n", "12", "-o", output); err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	observations, err := dataset.ReadCSV(output)
	if err != nil {
		t.Fatal(err)
	}
	if len(observations) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(observations))
	}
}

func TestTrainMissingDataset(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir)
	if _, err := run(t, "--config", configPath, "train", "--no-record"); err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestServeFailsWithoutModel(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir)
	if _, err := run(t, "--config", configPath, "serve"); err == nil {
		t.Fatal("expected error when the model artifact is missing")
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: loud\nml:\n  cv_folds: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, "--config", path, "runs")
	if err == nil {
		t.Fatal("expected config validation error")
	}
	for _, field := range []string{"log.level", "ml.cv_folds"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("expected %s in error, got %v", field, err)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "moodfuel version ") {
		t.Fatalf("unexpected version output: %s", out)
	}
}
