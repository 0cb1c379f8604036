package ml

import (
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RandomForest averages the predictions of bagged regression trees.
type RandomForest struct {
	Trees     []*DecisionTree `json:"trees"`
	NTrees    int             `json:"n_trees"`
	MaxDepth  int             `json:"max_depth"`
	Seed      int64           `json:"seed"`
	NFeatures int             `json:"n_features"`
}

// NewRandomForest returns an unfitted forest of nTrees trees, 200 when nTrees
// is not positive. maxDepth and seed are passed on to every tree.
func NewRandomForest(nTrees, maxDepth int, seed int64) *RandomForest {
	if nTrees <= 0 {
		nTrees = 200
	}
	return &RandomForest{NTrees: nTrees, MaxDepth: maxDepth, Seed: seed}
}

func (rf *RandomForest) Family() string { return FamilyRandomForest }

// Fit trains the trees in parallel. Bootstrap samples and per-tree seeds are
// drawn up front from Seed, so the result does not depend on scheduling.
func (rf *RandomForest) Fit(features [][]float64, targets []float64) error {
	if err := checkTrainingInput(features, targets); err != nil {
		return err
	}
	if rf.NTrees <= 0 {
		rf.NTrees = 200
	}

	rnd := rand.New(rand.NewSource(rf.Seed))
	n := len(features)
	samples := make([][]int, rf.NTrees)
	seeds := make([]int64, rf.NTrees)
	for t := range samples {
		seeds[t] = rnd.Int63()
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rnd.Intn(n)
		}
		samples[t] = sample
	}

	trees := make([]*DecisionTree, rf.NTrees)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := range trees {
		t := t
		g.Go(func() error {
			x := make([][]float64, n)
			y := make([]float64, n)
			for i, idx := range samples[t] {
				x[i] = features[idx]
				y[i] = targets[idx]
			}
			tree := NewDecisionTree(rf.MaxDepth, seeds[t])
			if err := tree.Fit(x, y); err != nil {
				return fmt.Errorf("tree %d: %w", t, err)
			}
			trees[t] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rf.Trees = trees
	rf.NFeatures = len(features[0])
	return nil
}

// Validate checks every tree of a decoded forest.
func (rf *RandomForest) Validate() error {
	if len(rf.Trees) == 0 {
		return ErrNotFitted
	}
	for i, tree := range rf.Trees {
		if tree == nil {
			return fmt.Errorf("invalid forest: tree %d missing", i)
		}
		if tree.NFeatures != rf.NFeatures {
			return fmt.Errorf("invalid forest: tree %d has %d features, forest %d", i, tree.NFeatures, rf.NFeatures)
		}
		if err := tree.Validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (rf *RandomForest) Predict(features []float64) (float64, error) {
	if len(rf.Trees) == 0 {
		return 0, ErrNotFitted
	}
	if len(features) != rf.NFeatures {
		return 0, fmt.Errorf("%w: want %d, got %d", ErrFeatureMismatch, rf.NFeatures, len(features))
	}
	var sum float64
	for _, tree := range rf.Trees {
		v, err := tree.Predict(features)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum / float64(len(rf.Trees)), nil
}
