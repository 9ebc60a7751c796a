package model

import "strings"

// Severity represents the risk level attached to a predicted label.
type Severity int

const (
	// SeverityInfo is used for benign URLs.
	SeverityInfo Severity = iota

	// SeverityLow is reserved for labels with a weak risk signal.
	SeverityLow

	// SeverityMedium indicates URLs of defaced or unknown-category sites.
	SeverityMedium

	// SeverityHigh indicates URLs that try to steal credentials or money.
	SeverityHigh

	// SeverityCritical indicates URLs that distribute malware.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Well-known labels produced by models trained on the usual malicious URL datasets.
const (
	LabelBenign     = "benign"
	LabelPhishing   = "phishing"
	LabelDefacement = "defacement"
	LabelMalware    = "malware"

	// LabelMalignant is the single malicious class of binary models.
	LabelMalignant = "malignant"
)

// LabelInfo describes what a label means for the user.
type LabelInfo struct {
	Severity       Severity
	Description    string
	Recommendation string
}

// labelInfoMapping maps labels to their metadata.
// Keys are lower-case; lookups are case-insensitive.
var labelInfoMapping = map[string]LabelInfo{
	LabelBenign: {
		Severity:       SeverityInfo,
		Description:    "The URL looks like a regular, legitimate address.",
		Recommendation: "No action needed. Lexical features cannot rule out every threat.",
	},
	LabelDefacement: {
		Severity:       SeverityMedium,
		Description:    "The URL resembles pages of compromised sites whose content was replaced.",
		Recommendation: "Avoid trusting the content. Notify the site owner if you know them.",
	},
	LabelPhishing: {
		Severity:       SeverityHigh,
		Description:    "The URL resembles addresses used to imitate a trusted brand and steal credentials.",
		Recommendation: "Do not enter credentials or payment data. Open the service by typing its known address.",
	},
	LabelMalignant: {
		Severity:       SeverityHigh,
		Description:    "The URL resembles known malicious addresses.",
		Recommendation: "Do not open the URL. Report it to your security team.",
	},
	LabelMalware: {
		Severity:       SeverityCritical,
		Description:    "The URL resembles addresses that distribute malicious software.",
		Recommendation: "Do not open the URL or download files from it. Block the domain if possible.",
	},
}

// GetSeverity returns the severity level for a label.
// Returns SeverityMedium if the label is not known.
func GetSeverity(label string) Severity {
	return GetLabelInfo(label).Severity
}

// GetLabelInfo returns the full label information.
// Unknown labels are treated as suspicious.
func GetLabelInfo(label string) LabelInfo {
	if info, ok := labelInfoMapping[strings.ToLower(label)]; ok {
		return info
	}
	return LabelInfo{
		Severity:       SeverityMedium,
		Description:    "The model produced a label without a known description.",
		Recommendation: "Review the URL manually.",
	}
}

// IsBenign reports whether label is the benign class.
func IsBenign(label string) bool {
	return strings.EqualFold(label, LabelBenign)
}

// BinaryLabel maps label onto the two classes of a binary model:
// benign stays benign, everything else becomes malignant.
func BinaryLabel(label string) string {
	if IsBenign(label) {
		return LabelBenign
	}
	return LabelMalignant
}
