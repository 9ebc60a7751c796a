package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultMaxURLLength caps the number of code points of a single URL.
	// Real URLs are far shorter; the cap bounds the work done per input.
	DefaultMaxURLLength = 8192

	// DefaultBatchSize is the number of URLs classified concurrently.
	DefaultBatchSize = 8

	// AppName is the application name used for XDG directory paths.
	AppName = "urlguard"

	// DefaultModelFile is the artifact name looked up in the XDG data directory.
	DefaultModelFile = "model.json"
)

// Config holds all configuration options for urlguard.
// This struct is populated from the config file and CLI flags and passed
// through the application rather than kept in global state.
type Config struct {
	// ModelPath is the path to the model artifact.
	// Defaults to model.json in the XDG data directory.
	ModelPath string

	// MaxURLLength is the maximum number of code points of an input URL.
	// Longer URLs are rejected before feature extraction.
	MaxURLLength int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent predictions when processing
	// multiple URLs.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .urlguard in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// JSONReport enables JSON output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output instead of human-readable format.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ShowProbabilities prints the class probabilities next to the label.
	ShowProbabilities bool

	// BinaryLabels reports every non-benign label as malignant.
	BinaryLabels bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Targets is the list of URLs to classify.
	Targets []string

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB stores every prediction in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ModelPath:    DefaultModelPath(),
		MaxURLLength: DefaultMaxURLLength,
		BatchSize:    DefaultBatchSize,
		DBDir:        XDGDataDir(),
	}
}

// DefaultModelPath returns the model artifact location used when none is given.
func DefaultModelPath() string {
	return filepath.Join(XDGDataDir(), DefaultModelFile)
}

// XDGDataDir returns the XDG data directory for urlguard.
// On Linux: ~/.local/share/urlguard
// On macOS: ~/Library/Application Support/urlguard
// On Windows: %LOCALAPPDATA%\urlguard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for urlguard.
// On Linux: ~/.config/urlguard
// On macOS: ~/Library/Application Support/urlguard
// On Windows: %APPDATA%\urlguard
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.ModelPath == "" {
		return ErrNoModel
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MaxURLLength <= 0 {
		return ErrInvalidMaxURLLength
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
