package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxURLLength is 8192", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxURLLength != 8192 {
			t.Errorf("expected MaxURLLength to be 8192, got %d", cfg.MaxURLLength)
		}
	})

	t.Run("default BatchSize is 8", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 8 {
			t.Errorf("expected BatchSize to be 8, got %d", cfg.BatchSize)
		}
	})

	t.Run("default model lives in the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.ModelPath != filepath.Join(XDGDataDir(), "model.json") {
			t.Errorf("unexpected ModelPath %q", cfg.ModelPath)
		}
	})

	t.Run("history is off by default", func(t *testing.T) {
		t.Parallel()
		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("unexpected DBDir %q", cfg.DBDir)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"https://example.com/"}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config returns nil",
			modify:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "no targets",
			modify:  func(c *Config) { c.Targets = nil },
			wantErr: ErrNoTarget,
		},
		{
			name:    "empty model path",
			modify:  func(c *Config) { c.ModelPath = "" },
			wantErr: ErrNoModel,
		},
		{
			name:    "zero batch size",
			modify:  func(c *Config) { c.BatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "negative batch size",
			modify:  func(c *Config) { c.BatchSize = -1 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "zero max URL length",
			modify:  func(c *Config) { c.MaxURLLength = 0 },
			wantErr: ErrInvalidMaxURLLength,
		},
		{
			name: "json and markdown together",
			modify: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "json alone is fine",
			modify:  func(c *Config) { c.JSONReport = true },
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestFileApply tests merging of config file values into Config.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("empty file keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		want := *cfg
		(&File{}).Apply(cfg)

		if cfg.ModelPath != want.ModelPath || cfg.BatchSize != want.BatchSize ||
			cfg.MaxURLLength != want.MaxURLLength || cfg.SaveToDB || cfg.BinaryLabels {
			t.Errorf("got %+v, want %+v", cfg, want)
		}
	})

	t.Run("set values override defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		f := &File{
			Model:        "/models/forest.json",
			MaxURLLength: 2048,
			BatchSize:    4,
			History:      true,
			DBDir:        "/var/lib/urlguard",
			Labels:       LabelsConfig{Binary: true},
		}
		f.Apply(cfg)

		if cfg.ModelPath != "/models/forest.json" {
			t.Errorf("ModelPath = %q", cfg.ModelPath)
		}
		if cfg.MaxURLLength != 2048 || cfg.BatchSize != 4 {
			t.Errorf("MaxURLLength = %d, BatchSize = %d", cfg.MaxURLLength, cfg.BatchSize)
		}
		if !cfg.SaveToDB || !cfg.BinaryLabels {
			t.Error("expected history and binary labels to be enabled")
		}
		if cfg.DBDir != "/var/lib/urlguard" {
			t.Errorf("DBDir = %q", cfg.DBDir)
		}
	})

	t.Run("relative paths resolve against the file directory", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		f := &File{Model: "models/forest.json", DBDir: "db", dir: "/etc/urlguard"}
		f.Apply(cfg)

		if cfg.ModelPath != filepath.Join("/etc/urlguard", "models", "forest.json") {
			t.Errorf("ModelPath = %q", cfg.ModelPath)
		}
		if cfg.DBDir != filepath.Join("/etc/urlguard", "db") {
			t.Errorf("DBDir = %q", cfg.DBDir)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.urlguard")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".urlguard")

		content := `model: forest.json
maxUrlLength: 4096
batchSize: 16
history: true
labels:
  binary: true
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		f, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.MaxURLLength != 4096 || f.BatchSize != 16 || !f.History || !f.Labels.Binary {
			t.Errorf("unexpected file %+v", f)
		}

		cfg := NewConfig()
		f.Apply(cfg)
		if cfg.ModelPath != filepath.Join(tmpDir, "forest.json") {
			t.Errorf("ModelPath = %q", cfg.ModelPath)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".urlguard")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfigFile(configPath)
		if err == nil {
			t.Fatal("expected error for invalid YAML")
		}
		if !strings.Contains(err.Error(), configPath) {
			t.Errorf("expected error to name the file, got %v", err)
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("batchSize: 2\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dir  string
	}{
		{name: "data dir", dir: XDGDataDir()},
		{name: "config dir", dir: XDGConfigDir()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if filepath.Base(tt.dir) != AppName {
				t.Errorf("expected %q to end with %q", tt.dir, AppName)
			}
		})
	}
}
