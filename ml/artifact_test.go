package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var testFeatureNames = []string{"a", "b"}

func TestArtifactRoundTrip(t *testing.T) {
	features, targets := stepData(80, 3)
	rows := [][]float64{{0.5, 0.5}, {4.5, 0.1}, {5.5, 0.9}, {9.5, 0.3}}

	for _, family := range Families() {
		t.Run(family, func(t *testing.T) {
			factory, err := NewFactory(family, Params{Trees: 5, Seed: 1})
			if err != nil {
				t.Fatal(err)
			}
			model := factory()
			if err := model.Fit(features, targets); err != nil {
				t.Fatalf("fit: %v", err)
			}

			path := filepath.Join(t.TempDir(), "model", "model.json")
			if err := SaveArtifact(path, model, Artifact{FeatureNames: testFeatureNames, RunID: "run-1"}); err != nil {
				t.Fatalf("save: %v", err)
			}
			loaded, artifact, err := LoadModel(path, testFeatureNames)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if artifact.Family != family || artifact.RunID != "run-1" || artifact.TrainedAt.IsZero() {
				t.Fatalf("unexpected artifact metadata: %+v", artifact)
			}
			for _, row := range rows {
				want, _ := model.Predict(row)
				got, err := loaded.Predict(row)
				if err != nil {
					t.Fatalf("predict: %v", err)
				}
				if got != want {
					t.Fatalf("prediction for %v changed after reload: %v vs %v", row, got, want)
				}
			}
		})
	}
}

func TestLoadModelRejectsFeatureNameMismatch(t *testing.T) {
	model := &LinearRegression{}
	if err := model.Fit([][]float64{{1, 2}, {2, 1}, {3, 5}}, []float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := SaveArtifact(path, model, Artifact{FeatureNames: []string{"b", "a"}}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadModel(path, testFeatureNames); !errors.Is(err, ErrFeatureNames) {
		t.Fatalf("expected ErrFeatureNames, got %v", err)
	}
}

func TestLoadModelFailures(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := LoadModel(filepath.Join(dir, "missing.json"), testFeatureNames); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}

	garbage := filepath.Join(dir, "garbage.json")
	if err := os.WriteFile(garbage, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadModel(garbage, testFeatureNames); err == nil {
		t.Fatal("expected decode error")
	}

	unknown := filepath.Join(dir, "unknown.json")
	content := `{"family":"svm","feature_names":["a","b"],"model":{}}`
	if err := os.WriteFile(unknown, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadModel(unknown, testFeatureNames); !errors.Is(err, ErrUnknownFamily) {
		t.Fatalf("expected ErrUnknownFamily, got %v", err)
	}

	empty := filepath.Join(dir, "empty.json")
	content = `{"family":"decision_tree","feature_names":["a","b"],"model":{"nodes":[]}}`
	if err := os.WriteFile(empty, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadModel(empty, testFeatureNames); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
}

func TestLoadModelRejectsCorruptTrees(t *testing.T) {
	split := func(feature, left, right int) TreeNode {
		return TreeNode{FeatureIdx: feature, Threshold: 0.5, LeftChild: left, RightChild: right}
	}
	leaf := TreeNode{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: 3, IsLeaf: true}

	tests := []struct {
		name  string
		model Regressor
	}{
		{"cycle", &DecisionTree{NFeatures: 2, Nodes: []TreeNode{split(0, 1, 2), split(1, 0, 2), leaf}}},
		{"child out of range", &DecisionTree{NFeatures: 2, Nodes: []TreeNode{split(0, 1, 7), leaf}}},
		{"feature out of range", &DecisionTree{NFeatures: 2, Nodes: []TreeNode{split(5, 1, 2), leaf, leaf}}},
		{"negative feature", &DecisionTree{NFeatures: 2, Nodes: []TreeNode{split(-1, 1, 2), leaf, leaf}}},
		{"forest with bad tree", &RandomForest{NFeatures: 2, Trees: []*DecisionTree{
			{NFeatures: 2, Nodes: []TreeNode{leaf}},
			{NFeatures: 2, Nodes: []TreeNode{split(0, 0, 0)}},
		}}},
		{"forest width mismatch", &RandomForest{NFeatures: 2, Trees: []*DecisionTree{
			{NFeatures: 3, Nodes: []TreeNode{leaf}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.json")
			if err := SaveArtifact(path, tt.model, Artifact{FeatureNames: testFeatureNames}); err != nil {
				t.Fatalf("save: %v", err)
			}
			if _, _, err := LoadModel(path, testFeatureNames); err == nil {
				t.Fatal("expected corrupt model to be rejected")
			}
		})
	}
}

func TestDecisionTreeValidateAcceptsFittedTree(t *testing.T) {
	features, targets := stepData(60, 5)
	tree := NewDecisionTree(0, 1)
	if err := tree.Fit(features, targets); err != nil {
		t.Fatal(err)
	}
	if err := tree.Validate(); err != nil {
		t.Fatalf("fitted tree failed validation: %v", err)
	}
}
