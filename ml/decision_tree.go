package ml

import (
	"errors"
	"fmt"
)

// TreeParams is a regression tree stored as a flat node array rooted at 0.
type TreeParams struct {
	Nodes []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

func (p *TreeParams) check() error {
	if len(p.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range p.Nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= featureCount {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if !validChild(node.LeftChild, i, len(p.Nodes)) || !validChild(node.RightChild, i, len(p.Nodes)) {
			return fmt.Errorf("node %d: invalid child index", i)
		}
	}
	return nil
}

func (p *TreeParams) predict(features []float64) (float64, error) {
	idx := 0
	for steps := 0; steps <= len(p.Nodes); steps++ {
		node := p.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(p.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
	return 0, errors.New("tree walk did not reach a leaf")
}

// Children always come after their parent, so every walk terminates.
func validChild(child, parent, size int) bool {
	return child > parent && child < size
}
