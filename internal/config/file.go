package config

import "path/filepath"

// File represents the structure of the .urlguard configuration file.
// Zero values mean "not set" and leave the corresponding Config field alone.
type File struct {
	// Model is the path to the model artifact.
	// Relative paths are resolved against the directory of the config file.
	Model string `yaml:"model,omitempty"`

	// MaxURLLength overrides DefaultMaxURLLength.
	MaxURLLength int `yaml:"maxUrlLength,omitempty"`

	// BatchSize overrides DefaultBatchSize.
	BatchSize int `yaml:"batchSize,omitempty"`

	// History enables the prediction history database.
	History bool `yaml:"history,omitempty"`

	// DBDir overrides the directory of the history database.
	// Relative paths are resolved against the directory of the config file.
	DBDir string `yaml:"dbDir,omitempty"`

	// Labels controls how predicted labels are reported.
	Labels LabelsConfig `yaml:"labels,omitempty"`

	// dir is the directory the file was loaded from.
	dir string
}

// LabelsConfig holds label reporting options.
type LabelsConfig struct {
	// Binary reports every non-benign label as malignant.
	Binary bool `yaml:"binary,omitempty"`
}

// Apply copies the values set in the file into c.
// CLI flags are applied afterwards so they take precedence.
func (cf *File) Apply(c *Config) {
	if cf.Model != "" {
		c.ModelPath = cf.resolve(cf.Model)
	}
	if cf.MaxURLLength != 0 {
		c.MaxURLLength = cf.MaxURLLength
	}
	if cf.BatchSize != 0 {
		c.BatchSize = cf.BatchSize
	}
	if cf.History {
		c.SaveToDB = true
	}
	if cf.DBDir != "" {
		c.DBDir = cf.resolve(cf.DBDir)
	}
	if cf.Labels.Binary {
		c.BinaryLabels = true
	}
}

func (cf *File) resolve(path string) string {
	if filepath.IsAbs(path) || cf.dir == "" {
		return path
	}
	return filepath.Join(cf.dir, path)
}
