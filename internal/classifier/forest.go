package classifier

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/nao1215/urlguard/internal/features"
	"golang.org/x/crypto/blake2b"
)

// FormatDecisionForest is the only artifact format understood by Load.
const FormatDecisionForest = "decision_forest"

// leafMarker marks a node without children.
const leafMarker = -1

// Classifier is a trained model that labels feature vectors.
type Classifier interface {
	// Classes returns the labels the model can produce, in probability order.
	Classes() []string

	// FeatureNames returns the column order expected by Predict and PredictProba.
	FeatureNames() []string

	// Predict returns the most probable label for x.
	Predict(x []float64) (string, error)

	// PredictProba returns one probability per class, in Classes order.
	PredictProba(x []float64) ([]float64, error)
}

// Artifact is the persisted form of a decision forest.
type Artifact struct {
	// Format identifies the artifact layout.
	Format string `json:"format" validate:"required,eq=decision_forest"`

	// SchemaVersion is the features.SchemaVersion the model was trained with.
	SchemaVersion int `json:"schema_version" validate:"required,gte=1"`

	// FeatureNames lists the model's input columns.
	FeatureNames []string `json:"feature_names" validate:"required,min=1,dive,required"`

	// Classes lists the labels in the order of the value columns.
	Classes []string `json:"classes" validate:"required,min=1,unique,dive,required"`

	// Trees are the members of the forest.
	Trees []Tree `json:"trees" validate:"required,min=1,dive"`

	// Metadata carries free-form training information such as the trainer
	// name or the dataset used. It is not interpreted.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Tree is a binary decision tree stored as parallel node arrays.
// Node 0 is the root.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left" validate:"required,min=1"`
	ChildrenRight []int       `json:"children_right" validate:"required,min=1"`
	Feature       []int       `json:"feature" validate:"required,min=1"`
	Threshold     []float64   `json:"threshold" validate:"required,min=1"`
	Value         [][]float64 `json:"value" validate:"required,min=1"`
}

// Forest is a loaded decision forest. It implements Classifier.
type Forest struct {
	artifact Artifact
	checksum string

	// leafProba holds the normalized class distribution of every leaf,
	// indexed by tree then node. Inner nodes are nil.
	leafProba [][][]float64
}

var _ Classifier = (*Forest)(nil)

// artifactValidator checks struct tags. validator.Validate caches type
// information and is safe for concurrent use.
var artifactValidator = validator.New(validator.WithRequiredStructEnabled())

// LoadFile reads a model artifact from path.
func LoadFile(path string) (*Forest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // model path is provided by the user
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	return Parse(data)
}

// Load reads a model artifact from r.
func Load(r io.Reader) (*Forest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	return Parse(data)
}

// Parse decodes and validates an artifact held in memory.
func Parse(data []byte) (*Forest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty artifact", ErrModelLoad)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %w", ErrModelLoad, err)
	}

	if err := artifactValidator.Struct(&artifact); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}

	if err := checkSchema(&artifact); err != nil {
		return nil, err
	}

	leafProba := make([][][]float64, len(artifact.Trees))
	for i := range artifact.Trees {
		proba, err := checkTree(&artifact.Trees[i], len(artifact.FeatureNames), len(artifact.Classes))
		if err != nil {
			return nil, fmt.Errorf("%w: tree %d: %w", ErrModelLoad, i, err)
		}
		leafProba[i] = proba
	}

	sum := blake2b.Sum256(data)
	return &Forest{
		artifact:  artifact,
		checksum:  hex.EncodeToString(sum[:]),
		leafProba: leafProba,
	}, nil
}

// checkSchema verifies the artifact against the canonical feature schema.
func checkSchema(a *Artifact) error {
	if a.SchemaVersion != features.SchemaVersion {
		return fmt.Errorf("%w: artifact schema version %d, extractor schema version %d",
			ErrSchemaMismatch, a.SchemaVersion, features.SchemaVersion)
	}

	seen := make(map[string]bool, len(a.FeatureNames))
	for _, name := range a.FeatureNames {
		if !features.IsCanonical(name) {
			return fmt.Errorf("%w: unknown feature %q", ErrSchemaMismatch, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate feature %q", ErrSchemaMismatch, name)
		}
		seen[name] = true
	}
	return nil
}

// checkTree verifies the node arrays of t and returns the normalized leaf
// distributions. Children must come after their parent, which rules out cycles.
func checkTree(t *Tree, numFeatures, numClasses int) ([][]float64, error) {
	n := len(t.ChildrenLeft)
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return nil, errors.New("node arrays have different lengths")
	}

	proba := make([][]float64, n)
	for i := range n {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]

		if len(t.Value[i]) != numClasses {
			return nil, fmt.Errorf("node %d: value has %d entries, want %d", i, len(t.Value[i]), numClasses)
		}

		if left == leafMarker || right == leafMarker {
			if left != right {
				return nil, fmt.Errorf("node %d: leaf must have no children", i)
			}
			dist, err := normalize(t.Value[i])
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			proba[i] = dist
			continue
		}

		if left <= i || left >= n || right <= i || right >= n {
			return nil, fmt.Errorf("node %d: child index out of range", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= numFeatures {
			return nil, fmt.Errorf("node %d: feature index %d out of range", i, t.Feature[i])
		}
	}
	return proba, nil
}

// normalize turns class counts into a probability distribution.
func normalize(counts []float64) ([]float64, error) {
	total := 0.0
	for _, c := range counts {
		if c < 0 {
			return nil, errors.New("negative class weight")
		}
		total += c
	}
	if total == 0 {
		return nil, errors.New("leaf has no class weight")
	}

	dist := make([]float64, len(counts))
	for i, c := range counts {
		dist[i] = c / total
	}
	return dist, nil
}

// Classes returns the labels in probability order.
func (f *Forest) Classes() []string {
	return slices.Clone(f.artifact.Classes)
}

// FeatureNames returns the input column order.
func (f *Forest) FeatureNames() []string {
	return slices.Clone(f.artifact.FeatureNames)
}

// SchemaVersion returns the feature schema version the model was trained with.
func (f *Forest) SchemaVersion() int {
	return f.artifact.SchemaVersion
}

// NumTrees returns the number of trees in the forest.
func (f *Forest) NumTrees() int {
	return len(f.artifact.Trees)
}

// Metadata returns a copy of the artifact's free-form metadata.
func (f *Forest) Metadata() map[string]string {
	out := make(map[string]string, len(f.artifact.Metadata))
	for k, v := range f.artifact.Metadata {
		out[k] = v
	}
	return out
}

// Checksum returns the hex BLAKE2b-256 digest of the artifact bytes.
func (f *Forest) Checksum() string {
	return f.checksum
}

// PredictProba returns the mean of the leaf distributions reached in every tree.
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if len(x) != len(f.artifact.FeatureNames) {
		return nil, fmt.Errorf("%w: got %d values, model expects %d",
			ErrSchemaMismatch, len(x), len(f.artifact.FeatureNames))
	}

	sum := make([]float64, len(f.artifact.Classes))
	for i := range f.artifact.Trees {
		leaf := f.leaf(i, x)
		for c, p := range f.leafProba[i][leaf] {
			sum[c] += p
		}
	}

	n := float64(len(f.artifact.Trees))
	for c := range sum {
		sum[c] /= n
	}
	return sum, nil
}

// Predict returns the class with the highest mean probability.
// Ties go to the class listed first.
func (f *Forest) Predict(x []float64) (string, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return "", err
	}
	return f.artifact.Classes[argmax(proba)], nil
}

// leaf walks tree i and returns the index of the leaf reached by x.
func (f *Forest) leaf(i int, x []float64) int {
	t := &f.artifact.Trees[i]
	node := 0
	for t.ChildrenLeft[node] != leafMarker {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}

// argmax returns the index of the largest value, the first one on ties.
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
