package ml

import "testing"

func sampleTree() *TreeParams {
	return &TreeParams{Nodes: []TreeNode{
		{FeatureIdx: 0, Threshold: 1900, LeftChild: 1, RightChild: 2},
		{FeatureIdx: 2, Threshold: 1850, LeftChild: 3, RightChild: 4},
		{IsLeaf: true, Value: 1960},
		{IsLeaf: true, Value: 1840},
		{IsLeaf: true, Value: 1890},
	}}
}

func TestRegressionTreePredict(t *testing.T) {
	tree := sampleTree()
	if err := tree.check(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		x    []float64
		want float64
	}{
		{x: []float64{1950, 1990, 1940}, want: 1960},
		{x: []float64{1900, 1910, 1840}, want: 1840},
		{x: []float64{1890, 1910, 1860}, want: 1890},
	}
	for _, tt := range tests {
		got, err := tree.predict(tt.x)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Fatalf("predict(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestRegressionTreeRejectsBadShape(t *testing.T) {
	tests := []struct {
		name  string
		nodes []TreeNode
	}{
		{name: "empty", nodes: nil},
		{name: "feature out of range", nodes: []TreeNode{{FeatureIdx: 3, LeftChild: 1, RightChild: 2}, {IsLeaf: true}, {IsLeaf: true}}},
		{name: "child points backwards", nodes: []TreeNode{{FeatureIdx: 0, LeftChild: 0, RightChild: 1}, {IsLeaf: true}}},
		{name: "child out of range", nodes: []TreeNode{{FeatureIdx: 0, LeftChild: 1, RightChild: 5}, {IsLeaf: true}}},
	}
	for _, tt := range tests {
		tree := &TreeParams{Nodes: tt.nodes}
		if err := tree.check(); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}
