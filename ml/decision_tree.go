package ml

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DecisionTree is a CART regression tree using squared error as the split
// criterion. Nodes are stored flat; children are absolute indexes into Nodes.
type DecisionTree struct {
	Nodes      []TreeNode `json:"nodes"`
	NFeatures  int        `json:"n_features"`
	MaxDepth   int        `json:"max_depth"`
	MinSamples int        `json:"min_samples_split"`
	Seed       int64      `json:"seed"`

	rnd *rand.Rand
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	Samples    int     `json:"samples"`
	IsLeaf     bool    `json:"is_leaf"`
}

// NewDecisionTree returns an unfitted tree. maxDepth 0 means unlimited.
func NewDecisionTree(maxDepth int, seed int64) *DecisionTree {
	return &DecisionTree{MaxDepth: maxDepth, MinSamples: 2, Seed: seed}
}

func (dt *DecisionTree) Family() string { return FamilyDecisionTree }

func (dt *DecisionTree) Fit(features [][]float64, targets []float64) error {
	if err := checkTrainingInput(features, targets); err != nil {
		return err
	}
	if dt.MinSamples < 2 {
		dt.MinSamples = 2
	}
	dt.rnd = rand.New(rand.NewSource(dt.Seed))
	dt.NFeatures = len(features[0])
	dt.Nodes = dt.Nodes[:0]

	indices := make([]int, len(features))
	for i := range indices {
		indices[i] = i
	}
	dt.buildNode(features, targets, indices, 0)
	return nil
}

func (dt *DecisionTree) Predict(features []float64) (float64, error) {
	if len(dt.Nodes) == 0 {
		return 0, ErrNotFitted
	}
	if len(features) != dt.NFeatures {
		return 0, fmt.Errorf("%w: want %d, got %d", ErrFeatureMismatch, dt.NFeatures, len(features))
	}
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx <= 0 || idx >= len(dt.Nodes) {
			return 0, fmt.Errorf("invalid tree state at node %d", idx)
		}
	}
}

// Validate checks the node table of a decoded tree: every split sends rows to
// later nodes inside the table and tests an existing feature. Predict relies
// on this to terminate.
func (dt *DecisionTree) Validate() error {
	if len(dt.Nodes) == 0 {
		return ErrNotFitted
	}
	if dt.NFeatures <= 0 {
		return fmt.Errorf("invalid tree: n_features %d", dt.NFeatures)
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= dt.NFeatures {
			return fmt.Errorf("invalid tree: node %d tests feature %d of %d", i, node.FeatureIdx, dt.NFeatures)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(dt.Nodes) {
				return fmt.Errorf("invalid tree: node %d has child %d", i, child)
			}
		}
	}
	return nil
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (dt *DecisionTree) Depth() int {
	if len(dt.Nodes) == 0 {
		return 0
	}
	var walk func(idx int) int
	walk = func(idx int) int {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return 0
		}
		left, right := walk(node.LeftChild), walk(node.RightChild)
		if left > right {
			return left + 1
		}
		return right + 1
	}
	return walk(0)
}

// buildNode appends the subtree for indices and returns the index of its root.
func (dt *DecisionTree) buildNode(features [][]float64, targets []float64, indices []int, depth int) int {
	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = targets[idx]
	}

	nodeIdx := len(dt.Nodes)
	dt.Nodes = append(dt.Nodes, TreeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		Value:      stat.Mean(values, nil),
		Samples:    len(indices),
		IsLeaf:     true,
	})

	if dt.MaxDepth > 0 && depth >= dt.MaxDepth {
		return nodeIdx
	}
	if len(indices) < dt.MinSamples || isConstant(values) {
		return nodeIdx
	}

	feature, threshold, ok := dt.findBestSplit(features, targets, indices)
	if !ok {
		return nodeIdx
	}

	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, idx := range indices {
		if features[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return nodeIdx
	}

	leftIdx := dt.buildNode(features, targets, left, depth+1)
	rightIdx := dt.buildNode(features, targets, right, depth+1)

	node := &dt.Nodes[nodeIdx]
	node.FeatureIdx = feature
	node.Threshold = threshold
	node.LeftChild = leftIdx
	node.RightChild = rightIdx
	node.IsLeaf = false
	return nodeIdx
}

// findBestSplit scans every feature, in a seeded random order, for the
// threshold that minimises the summed squared error of both children.
// Thresholds sit halfway between consecutive distinct values.
func (dt *DecisionTree) findBestSplit(features [][]float64, targets []float64, indices []int) (int, float64, bool) {
	n := len(indices)
	bestFeature := -1
	bestThreshold := 0.0
	bestScore := 0.0

	var totalSum, totalSq float64
	for _, idx := range indices {
		totalSum += targets[idx]
		totalSq += targets[idx] * targets[idx]
	}
	parentSSE := totalSq - totalSum*totalSum/float64(n)

	sorted := make([]int, n)
	for _, feature := range dt.rnd.Perm(dt.NFeatures) {
		copy(sorted, indices)
		sort.SliceStable(sorted, func(a, b int) bool {
			return features[sorted[a]][feature] < features[sorted[b]][feature]
		})

		var leftSum, leftSq float64
		for i := 0; i < n-1; i++ {
			y := targets[sorted[i]]
			leftSum += y
			leftSq += y * y

			current := features[sorted[i]][feature]
			next := features[sorted[i+1]][feature]
			if current == next {
				continue
			}

			leftN := float64(i + 1)
			rightN := float64(n - i - 1)
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/leftN) + (rightSq - rightSum*rightSum/rightN)

			if bestFeature == -1 || sse < bestScore {
				bestFeature = feature
				bestThreshold = (current + next) / 2
				bestScore = sse
			}
		}
	}

	if bestFeature == -1 || bestScore > parentSSE {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
