package features

import (
	"fmt"
	"slices"
)

// SchemaVersion identifies the feature definitions and the field order of Vector.
// A model trained with a different SchemaVersion must not be used.
const SchemaVersion = 1

// Vector is the feature record of a single URL.
// Field order is the canonical feature order.
type Vector struct {
	IPUse                int     `json:"ip_use"`
	URLEntropy           float64 `json:"url_entropy"`
	NumDigits            int     `json:"num_digits"`
	NumQueryParameters   int     `json:"num_query_parameters"`
	NumFragments         int     `json:"num_fragments"`
	NumPercent20         int     `json:"num_percent20"`
	NumAtSigns           int     `json:"num_at_signs"`
	HasHTTP              int     `json:"has_http"`
	HasHTTPS             int     `json:"has_https"`
	DotNumber            int     `json:"dot_number"`
	NumWWW               int     `json:"num_www"`
	DirectoryNum         int     `json:"directory_num"`
	EmbedDomainNumber    int     `json:"embed_domain_number"`
	SuspiciousURL        int     `json:"suspiciousurl"`
	CountPercent         int     `json:"count_percent"`
	CountDash            int     `json:"count_dash"`
	IsShortened          int     `json:"is_shortened"`
	HostnameLength       int     `json:"hostname_length"`
	FirstDirectoryLength int     `json:"first_directory_length"`
	TopLevelDomainLength int     `json:"top_level_domain_length"`
	NumLetters           int     `json:"num_letters"`
	NumSubdomains        int     `json:"num_subdomains"`
}

// Feature names in canonical order.
const (
	NameIPUse                = "ip_use"
	NameURLEntropy           = "url_entropy"
	NameNumDigits            = "num_digits"
	NameNumQueryParameters   = "num_query_parameters"
	NameNumFragments         = "num_fragments"
	NameNumPercent20         = "num_percent20"
	NameNumAtSigns           = "num_at_signs"
	NameHasHTTP              = "has_http"
	NameHasHTTPS             = "has_https"
	NameDotNumber            = "dot_number"
	NameNumWWW               = "num_www"
	NameDirectoryNum         = "directory_num"
	NameEmbedDomainNumber    = "embed_domain_number"
	NameSuspiciousURL        = "suspiciousurl"
	NameCountPercent         = "count_percent"
	NameCountDash            = "count_dash"
	NameIsShortened          = "is_shortened"
	NameHostnameLength       = "hostname_length"
	NameFirstDirectoryLength = "first_directory_length"
	NameTopLevelDomainLength = "top_level_domain_length"
	NameNumLetters           = "num_letters"
	NameNumSubdomains        = "num_subdomains"
)

// canonicalNames must follow the field order of Vector.
var canonicalNames = []string{
	NameIPUse,
	NameURLEntropy,
	NameNumDigits,
	NameNumQueryParameters,
	NameNumFragments,
	NameNumPercent20,
	NameNumAtSigns,
	NameHasHTTP,
	NameHasHTTPS,
	NameDotNumber,
	NameNumWWW,
	NameDirectoryNum,
	NameEmbedDomainNumber,
	NameSuspiciousURL,
	NameCountPercent,
	NameCountDash,
	NameIsShortened,
	NameHostnameLength,
	NameFirstDirectoryLength,
	NameTopLevelDomainLength,
	NameNumLetters,
	NameNumSubdomains,
}

// binaryNames are the features whose value is always 0 or 1.
var binaryNames = map[string]bool{
	NameIPUse:         true,
	NameHasHTTP:       true,
	NameHasHTTPS:      true,
	NameSuspiciousURL: true,
	NameIsShortened:   true,
}

// nameIndex maps a canonical name to its position.
var nameIndex = func() map[string]int {
	m := make(map[string]int, len(canonicalNames))
	for i, name := range canonicalNames {
		m[name] = i
	}
	return m
}()

// Names returns the canonical feature names in order.
func Names() []string {
	return slices.Clone(canonicalNames)
}

// NumFeatures returns the number of canonical features.
func NumFeatures() int {
	return len(canonicalNames)
}

// IsCanonical reports whether name is a canonical feature name.
func IsCanonical(name string) bool {
	_, ok := nameIndex[name]
	return ok
}

// IsBinary reports whether the named feature only takes the values 0 and 1.
func IsBinary(name string) bool {
	return binaryNames[name]
}

// Values returns the feature values in canonical order.
func (v Vector) Values() []float64 {
	return []float64{
		float64(v.IPUse),
		v.URLEntropy,
		float64(v.NumDigits),
		float64(v.NumQueryParameters),
		float64(v.NumFragments),
		float64(v.NumPercent20),
		float64(v.NumAtSigns),
		float64(v.HasHTTP),
		float64(v.HasHTTPS),
		float64(v.DotNumber),
		float64(v.NumWWW),
		float64(v.DirectoryNum),
		float64(v.EmbedDomainNumber),
		float64(v.SuspiciousURL),
		float64(v.CountPercent),
		float64(v.CountDash),
		float64(v.IsShortened),
		float64(v.HostnameLength),
		float64(v.FirstDirectoryLength),
		float64(v.TopLevelDomainLength),
		float64(v.NumLetters),
		float64(v.NumSubdomains),
	}
}

// Map returns the feature values keyed by canonical name.
func (v Vector) Map() map[string]float64 {
	values := v.Values()
	m := make(map[string]float64, len(values))
	for i, name := range canonicalNames {
		m[name] = values[i]
	}
	return m
}

// Get returns the value of the named feature.
func (v Vector) Get(name string) (float64, error) {
	i, ok := nameIndex[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	return v.Values()[i], nil
}

// Project returns the values of the named features in the given order.
// It is used to feed a model whose columns are a permutation or subset
// of the canonical names.
func (v Vector) Project(names []string) ([]float64, error) {
	values := v.Values()
	out := make([]float64, len(names))
	for i, name := range names {
		j, ok := nameIndex[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
		}
		out[i] = values[j]
	}
	return out, nil
}

// VectorFromValues builds a Vector from values in canonical order.
func VectorFromValues(values []float64) (Vector, error) {
	if len(values) != len(canonicalNames) {
		return Vector{}, fmt.Errorf("%w: got %d values, want %d", ErrLengthMismatch, len(values), len(canonicalNames))
	}
	m := make(map[string]float64, len(values))
	for i, name := range canonicalNames {
		m[name] = values[i]
	}
	return VectorFromMap(m)
}

// VectorFromMap builds a Vector from a name-keyed map.
// The map must hold exactly the canonical names.
func VectorFromMap(m map[string]float64) (Vector, error) {
	for name := range m {
		if !IsCanonical(name) {
			return Vector{}, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
		}
	}
	for _, name := range canonicalNames {
		if _, ok := m[name]; !ok {
			return Vector{}, fmt.Errorf("%w: %q", ErrMissingFeature, name)
		}
	}

	i := func(name string) int { return int(m[name]) }
	return Vector{
		IPUse:                i(NameIPUse),
		URLEntropy:           m[NameURLEntropy],
		NumDigits:            i(NameNumDigits),
		NumQueryParameters:   i(NameNumQueryParameters),
		NumFragments:         i(NameNumFragments),
		NumPercent20:         i(NameNumPercent20),
		NumAtSigns:           i(NameNumAtSigns),
		HasHTTP:              i(NameHasHTTP),
		HasHTTPS:             i(NameHasHTTPS),
		DotNumber:            i(NameDotNumber),
		NumWWW:               i(NameNumWWW),
		DirectoryNum:         i(NameDirectoryNum),
		EmbedDomainNumber:    i(NameEmbedDomainNumber),
		SuspiciousURL:        i(NameSuspiciousURL),
		CountPercent:         i(NameCountPercent),
		CountDash:            i(NameCountDash),
		IsShortened:          i(NameIsShortened),
		HostnameLength:       i(NameHostnameLength),
		FirstDirectoryLength: i(NameFirstDirectoryLength),
		TopLevelDomainLength: i(NameTopLevelDomainLength),
		NumLetters:           i(NameNumLetters),
		NumSubdomains:        i(NameNumSubdomains),
	}, nil
}
