package ensemble

import (
	"math/rand/v2"
	"sort"
)

// treeNode is one node of a fitted decision tree, stored in a flat slice.
// Leaves carry the fraction of positive training samples that reached them.
type treeNode struct {
	feature     int
	threshold   float64
	left        int
	right       int
	isLeaf      bool
	probability float64
}

type decisionTree struct {
	nodes []treeNode
}

// treeParams are the growth limits shared by every tree in a forest.
type treeParams struct {
	maxDepth    int // 0 means unlimited
	minLeaf     int
	maxFeatures int
}

// growTree fits a single tree on the rows selected by indices, choosing among
// maxFeatures randomly drawn candidate features at every split.
func growTree(X [][]float64, y []float64, indices []int, params treeParams, rng *rand.Rand, importance []float64) decisionTree {
	t := decisionTree{}
	t.build(X, y, indices, 0, params, rng, importance)
	return t
}

// build appends the subtree for the given samples and returns its root index.
func (t *decisionTree) build(X [][]float64, y []float64, indices []int, depth int, params treeParams, rng *rand.Rand, importance []float64) int {
	pos := 0
	for _, i := range indices {
		if y[i] == 1 {
			pos++
		}
	}
	prob := float64(pos) / float64(len(indices))

	nodeIdx := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{isLeaf: true, probability: prob})

	if pos == 0 || pos == len(indices) {
		return nodeIdx
	}
	if params.maxDepth > 0 && depth >= params.maxDepth {
		return nodeIdx
	}
	if len(indices) < 2*params.minLeaf {
		return nodeIdx
	}

	feature, threshold, gain := bestSplit(X, y, indices, params, rng)
	if feature < 0 {
		return nodeIdx
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < params.minLeaf || len(right) < params.minLeaf {
		return nodeIdx
	}

	if importance != nil {
		importance[feature] += gain * float64(len(indices))
	}

	leftIdx := t.build(X, y, left, depth+1, params, rng, importance)
	rightIdx := t.build(X, y, right, depth+1, params, rng, importance)

	t.nodes[nodeIdx] = treeNode{
		feature:   feature,
		threshold: threshold,
		left:      leftIdx,
		right:     rightIdx,
	}
	return nodeIdx
}

// bestSplit scans maxFeatures random candidate features and returns the split
// with the largest Gini impurity decrease. feature is -1 when no candidate
// improves on the parent impurity.
func bestSplit(X [][]float64, y []float64, indices []int, params treeParams, rng *rand.Rand) (feature int, threshold, gain float64) {
	nFeatures := len(X[indices[0]])
	candidates := rng.Perm(nFeatures)
	if params.maxFeatures > 0 && params.maxFeatures < nFeatures {
		candidates = candidates[:params.maxFeatures]
	}

	n := len(indices)
	totalPos := 0
	for _, i := range indices {
		if y[i] == 1 {
			totalPos++
		}
	}
	parentGini := giniImpurity(totalPos, n)

	type sample struct {
		value float64
		pos   bool
	}
	samples := make([]sample, n)

	feature = -1
	for _, f := range candidates {
		for k, i := range indices {
			samples[k] = sample{value: X[i][f], pos: y[i] == 1}
		}
		sort.Slice(samples, func(a, b int) bool { return samples[a].value < samples[b].value })

		leftPos := 0
		for k := 0; k < n-1; k++ {
			if samples[k].pos {
				leftPos++
			}
			// Split only between distinct values.
			if samples[k].value == samples[k+1].value {
				continue
			}
			leftN := k + 1
			rightN := n - leftN
			rightPos := totalPos - leftPos

			weighted := (float64(leftN)*giniImpurity(leftPos, leftN) +
				float64(rightN)*giniImpurity(rightPos, rightN)) / float64(n)
			if g := parentGini - weighted; g > gain {
				gain = g
				feature = f
				threshold = (samples[k].value + samples[k+1].value) / 2
			}
		}
	}
	return feature, threshold, gain
}

func giniImpurity(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}

// predictProba walks a sample down the tree and returns the leaf's positive
// fraction.
func (t *decisionTree) predictProba(x []float64) float64 {
	idx := 0
	for {
		node := t.nodes[idx]
		if node.isLeaf {
			return node.probability
		}
		if x[node.feature] <= node.threshold {
			idx = node.left
		} else {
			idx = node.right
		}
	}
}
