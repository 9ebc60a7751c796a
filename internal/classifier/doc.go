// Package classifier loads persisted URL classification models and runs
// inference on feature vectors.
//
// Models are produced by an offline training pipeline and exported as a JSON
// decision-forest artifact. Each tree is stored as parallel node arrays
// (children_left, children_right, feature, threshold, value), which is the
// layout most tree-based trainers expose. A Forest is immutable after Load
// and safe for concurrent use.
//
// The artifact names its input columns. Those names must be canonical
// feature names from package features, in any order; Predict and
// PredictProba expect vectors already projected into that order.
package classifier
