// Package mlmodel evaluates the gradient-boosted decision-tree classifier
// that scores virus-host pairs from their computed features.
//
// Models are stored as JSON: an ensemble of regression trees in flat-array
// form, the declared feature order, and the initial raw score. Leaf
// contributions are stored pre-scaled, so the raw score of a sample is the
// initial score plus the sum of one leaf value per tree.
package mlmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrInvalidModel flags a model file that fails structural validation.
var ErrInvalidModel = errors.New("invalid model file")

// Tree is a single regression tree in flat-array form. Node i is a leaf
// when ChildrenLeft[i] is -1; otherwise samples with
// x[Feature[i]] <= Threshold[i] descend left.
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// Model is a binary gradient-boosted classifier.
type Model struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Features     []string `json:"features"`
	Classes      []int    `json:"classes"`
	InitRawScore float64  `json:"init_raw_score"`
	Trees        []Tree   `json:"trees"`
}

// LoadModel reads and validates a model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModel, path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// Validate checks the structural invariants the scorer relies on: aligned
// arrays, in-range feature indices, finite thresholds, and child indices
// that always point forward so traversal terminates.
func (m *Model) Validate() error {
	if len(m.Features) == 0 {
		return fmt.Errorf("%w: no features declared", ErrInvalidModel)
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("%w: no trees", ErrInvalidModel)
	}
	if len(m.Classes) != 2 {
		return fmt.Errorf("%w: want exactly 2 classes, got %d", ErrInvalidModel, len(m.Classes))
	}

	for ti, tree := range m.Trees {
		n := len(tree.ChildrenLeft)
		if n == 0 {
			return fmt.Errorf("%w: tree %d is empty", ErrInvalidModel, ti)
		}
		if len(tree.ChildrenRight) != n || len(tree.Feature) != n ||
			len(tree.Threshold) != n || len(tree.Value) != n {
			return fmt.Errorf("%w: tree %d has misaligned arrays", ErrInvalidModel, ti)
		}
		for node := 0; node < n; node++ {
			left, right := tree.ChildrenLeft[node], tree.ChildrenRight[node]
			if left == -1 {
				if right != -1 {
					return fmt.Errorf("%w: tree %d node %d is half a leaf", ErrInvalidModel, ti, node)
				}
				continue
			}
			if left <= node || left >= n || right <= node || right >= n {
				return fmt.Errorf("%w: tree %d node %d has out-of-order children", ErrInvalidModel, ti, node)
			}
			if f := tree.Feature[node]; f < 0 || f >= len(m.Features) {
				return fmt.Errorf("%w: tree %d node %d references feature %d of %d", ErrInvalidModel, ti, node, f, len(m.Features))
			}
			if t := tree.Threshold[node]; math.IsNaN(t) || math.IsInf(t, 0) {
				return fmt.Errorf("%w: tree %d node %d has non-finite threshold", ErrInvalidModel, ti, node)
			}
		}
	}
	return nil
}

// score walks one tree to its leaf for the sample.
func (t *Tree) score(x []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// decisionFunction returns the raw additive score of a sample.
func (m *Model) decisionFunction(x []float64) float64 {
	raw := m.InitRawScore
	for i := range m.Trees {
		raw += m.Trees[i].score(x)
	}
	return raw
}

// PredictProba returns the probability of the positive class for a sample
// ordered like m.Features.
func (m *Model) PredictProba(x []float64) (float64, error) {
	if len(x) != len(m.Features) {
		return 0, fmt.Errorf("sample has %d features, model wants %d", len(x), len(m.Features))
	}
	return sigmoid(m.decisionFunction(x)), nil
}

// Predict returns the predicted class, 1 when the positive-class
// probability reaches one half.
func (m *Model) Predict(x []float64) (int, error) {
	p, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

func sigmoid(raw float64) float64 {
	return 1 / (1 + math.Exp(-raw))
}
