package classifier

import (
	"fmt"
)

// Tree is one fitted decision tree in flat-array form. Node i is a leaf when
// Left[i] is -1; otherwise samples with x[Feature[i]] <= Threshold[i] go Left.
// Value[i] holds the class weights seen at the node.
type Tree struct {
	Left      []int       `json:"children_left"`
	Right     []int       `json:"children_right"`
	Feature   []int       `json:"feature"`
	Threshold []float64   `json:"threshold"`
	Value     [][]float64 `json:"value"`
}

// Forest is a random forest classifier; its probabilities are the mean of
// the per-tree leaf distributions
type Forest struct {
	ClassIDs  []int  `json:"classes"`
	NFeatures int    `json:"n_features"`
	Trees     []Tree `json:"trees"`
}

// Classes returns the encoded class ids
func (f *Forest) Classes() []int {
	return f.ClassIDs
}

// PredictProba averages leaf distributions over all trees
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if f.NFeatures > 0 && len(x) != f.NFeatures {
		return nil, fmt.Errorf("forest expects %d features, got %d", f.NFeatures, len(x))
	}

	out := make([]float64, len(f.ClassIDs))
	for ti := range f.Trees {
		leaf, err := f.Trees[ti].leaf(x)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", ti, err)
		}
		dist := f.Trees[ti].Value[leaf]
		var total float64
		for _, w := range dist {
			total += w
		}
		if total == 0 {
			continue
		}
		for c, w := range dist {
			out[c] += w / total
		}
	}
	for c := range out {
		out[c] /= float64(len(f.Trees))
	}
	return out, nil
}

func (t *Tree) leaf(x []float64) (int, error) {
	node := 0
	// a well-formed tree reaches a leaf in fewer steps than it has nodes
	for steps := 0; steps <= len(t.Left); steps++ {
		if t.Left[node] == -1 {
			return node, nil
		}
		feat := t.Feature[node]
		if feat < 0 || feat >= len(x) {
			return 0, fmt.Errorf("node %d splits on feature %d of %d", node, feat, len(x))
		}
		if x[feat] <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
		if node < 0 || node >= len(t.Left) {
			return 0, fmt.Errorf("child index %d out of range", node)
		}
	}
	return 0, fmt.Errorf("cycle in tree")
}

func (f *Forest) validate() error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i, t := range f.Trees {
		n := len(t.Left)
		if n == 0 || len(t.Right) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
			return fmt.Errorf("tree %d: inconsistent node arrays", i)
		}
		for j, v := range t.Value {
			if len(v) != len(f.ClassIDs) {
				return fmt.Errorf("tree %d node %d: %d class weights for %d classes", i, j, len(v), len(f.ClassIDs))
			}
		}
	}
	return nil
}
