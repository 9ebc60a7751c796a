package model

import (
	"time"

	"github.com/nao1215/urlguard/internal/features"
)

// Prediction is the classification result for a single URL.
type Prediction struct {
	// ID identifies the prediction in the history store.
	// It is empty until the prediction is saved.
	ID string `json:"id,omitempty"`

	// URL is the input string exactly as given.
	URL string `json:"url"`

	// Label is the predicted class.
	Label string `json:"label,omitempty"`

	// Probabilities holds one entry per model class, in model order.
	Probabilities []ClassProbability `json:"probabilities,omitempty"`

	// Features is the vector the model was fed with.
	Features features.Vector `json:"features"`

	// RegisteredDomain is the eTLD+1 of the URL host. It is informative
	// only and never used as a model input.
	RegisteredDomain string `json:"registered_domain,omitempty"`

	// ModelChecksum is the BLAKE2b-256 digest of the model artifact.
	ModelChecksum string `json:"model_checksum,omitempty"`

	// SchemaVersion is the feature schema version of the vector.
	SchemaVersion int `json:"schema_version"`

	// Timestamp is when the prediction was made.
	Timestamp time.Time `json:"timestamp"`

	// Error contains the error message if the prediction failed.
	// Only batch results carry failed predictions.
	Error string `json:"error,omitempty"`
}

// ClassProbability is the probability the model assigned to one class.
type ClassProbability struct {
	Class       string  `json:"class"`
	Probability float64 `json:"probability"`
}

// Failed reports whether the prediction could not be made.
func (p *Prediction) Failed() bool {
	return p.Error != ""
}

// Probability returns the probability of class, or 0 if the model does not know it.
func (p *Prediction) Probability(class string) float64 {
	for _, cp := range p.Probabilities {
		if cp.Class == class {
			return cp.Probability
		}
	}
	return 0
}

// Confidence returns the probability of the predicted label.
func (p *Prediction) Confidence() float64 {
	return p.Probability(p.Label)
}

// Severity returns the risk level of the predicted label.
func (p *Prediction) Severity() Severity {
	if p.Failed() {
		return SeverityInfo
	}
	return GetSeverity(p.Label)
}

// IsMalicious reports whether the predicted label is anything but benign.
func (p *Prediction) IsMalicious() bool {
	return !p.Failed() && !IsBenign(p.Label)
}

// CollapseBinary rewrites the prediction for a binary view of the model:
// the label becomes benign or malignant and the probabilities of all
// non-benign classes are summed into malignant.
func (p *Prediction) CollapseBinary() {
	if p.Failed() {
		return
	}

	var benign, malignant float64
	for _, cp := range p.Probabilities {
		if IsBenign(cp.Class) {
			benign += cp.Probability
		} else {
			malignant += cp.Probability
		}
	}

	p.Label = BinaryLabel(p.Label)
	if len(p.Probabilities) > 0 {
		p.Probabilities = []ClassProbability{
			{Class: LabelBenign, Probability: benign},
			{Class: LabelMalignant, Probability: malignant},
		}
	}
}
