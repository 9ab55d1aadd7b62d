// Package classifier wraps the pre-trained irrigation random forest. The
// artifact is a versioned JSON export of the trained forest; it is loaded
// once at startup and prediction is a pure function over the loaded trees.
package classifier

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

// Artifact is the on-disk export of the trained forest.
type Artifact struct {
	Version      string   `json:"version"`
	Algorithm    string   `json:"algorithm"`
	FeatureNames []string `json:"feature_names"`
	Classes      []int    `json:"classes"`
	Trees        []Tree   `json:"trees"`
}

// Tree is a single decision tree, nodes stored as a flat array. Internal
// nodes split on Feature <= Threshold; leaves have Feature == -1 and carry
// the predicted class.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is one tree node.
type Node struct {
	Feature   int     `json:"feature"` // -1 for leaves
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Class     int     `json:"class"` // leaf prediction
}

// Forest is a loaded, validated classifier ready for inference.
type Forest struct {
	version      string
	featureNames []string
	trees        []Tree
}

// Load reads and validates the artifact at path. Any defect — missing file,
// malformed JSON, empty forest, node references out of range — is fatal to
// the caller: the process must not start cycling on a broken model.
func Load(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse classifier artifact: %w", err)
	}

	return New(artifact)
}

// New validates an in-memory artifact. Exposed so tests can build fixed
// deterministic forests without touching the filesystem.
func New(artifact Artifact) (*Forest, error) {
	if len(artifact.FeatureNames) == 0 {
		return nil, fmt.Errorf("classifier artifact declares no feature names")
	}
	if len(artifact.Trees) == 0 {
		return nil, fmt.Errorf("classifier artifact contains no trees")
	}

	width := len(artifact.FeatureNames)
	for i, tree := range artifact.Trees {
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d has no nodes", i)
		}
		for j, node := range tree.Nodes {
			if node.Feature == -1 {
				if !irrigation.DecisionClass(node.Class).Valid() {
					return nil, fmt.Errorf("tree %d node %d: leaf class %d out of range", i, j, node.Class)
				}
				continue
			}
			if node.Feature < 0 || node.Feature >= width {
				return nil, fmt.Errorf("tree %d node %d: feature index %d out of range", i, j, node.Feature)
			}
			if node.Left < 0 || node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
				return nil, fmt.Errorf("tree %d node %d: child index out of range", i, j)
			}
		}
	}

	return &Forest{
		version:      artifact.Version,
		featureNames: artifact.FeatureNames,
		trees:        artifact.Trees,
	}, nil
}

// Version returns the artifact's declared version string.
func (f *Forest) Version() string {
	return f.version
}

// Verify checks the artifact's declared input contract against the feature
// builder's schema, name-by-name. Matching shapes by length alone would let
// a reordered or substituted column slip through silently.
func (f *Forest) Verify(schema []string) error {
	if len(schema) != len(f.featureNames) {
		return fmt.Errorf("schema mismatch: builder produces %d features, artifact expects %d",
			len(schema), len(f.featureNames))
	}
	for i, name := range f.featureNames {
		if schema[i] != name {
			return fmt.Errorf("schema mismatch at column %d: builder %q, artifact %q",
				i, schema[i], name)
		}
	}
	return nil
}

// Predict runs the feature vector through every tree and returns the
// majority class. Ties resolve to the lowest class value so repeated calls
// are deterministic. Pure function; no state is touched.
func (f *Forest) Predict(features irrigation.FeatureVector) (irrigation.DecisionClass, error) {
	if len(features) != len(f.featureNames) {
		return 0, fmt.Errorf("feature vector has %d values, artifact expects %d",
			len(features), len(f.featureNames))
	}

	var votes [4]int
	for i := range f.trees {
		votes[f.trees[i].predict(features)]++
	}

	best := 0
	for class := 1; class < len(votes); class++ {
		if votes[class] > votes[best] {
			best = class
		}
	}
	return irrigation.DecisionClass(best), nil
}

func (t *Tree) predict(features irrigation.FeatureVector) int {
	node := t.Nodes[0]
	for node.Feature != -1 {
		if features[node.Feature] <= node.Threshold {
			node = t.Nodes[node.Left]
		} else {
			node = t.Nodes[node.Right]
		}
	}
	return node.Class
}
