package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nao1215/urlguard/internal/features"
)

func TestRunFeaturesCmd(t *testing.T) {
	t.Parallel()

	t.Run("table lists every feature", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := runRoot(t, "", "features", "http://bit.ly/abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, name := range features.Names() {
			if !strings.Contains(stdout, name) {
				t.Errorf("expected feature %q in output", name)
			}
		}
	})

	t.Run("JSON holds one vector per URL", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := runRoot(t, "", "features", "--json", "http://bit.ly/abc", "https://www.example.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got []urlFeatures
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 vectors, got %d", len(got))
		}
		if got[0].Features.IsShortened != 1 {
			t.Error("expected shortened URL to be flagged")
		}
		if got[1].Features.HasHTTPS != 1 {
			t.Error("expected https URL to be flagged")
		}
		if got[0].SchemaVersion != features.SchemaVersion {
			t.Errorf("expected schema version %d, got %d", features.SchemaVersion, got[0].SchemaVersion)
		}
	})

	t.Run("asks for a URL when none is given", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := runRoot(t, "http://192.168.0.1/login\n", "features", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		jsonStart := strings.Index(stdout, "[")
		if jsonStart < 0 {
			t.Fatalf("expected JSON after prompt, got %q", stdout)
		}

		var got []urlFeatures
		if err := json.Unmarshal([]byte(stdout[jsonStart:]), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got) != 1 || got[0].Features.IPUse != 1 {
			t.Errorf("expected IP host to be flagged, got %+v", got)
		}
	})
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string is kept", input: "abc", maxLen: 10, want: "abc"},
		{name: "long string gets an ellipsis", input: "abcdefghij", maxLen: 6, want: "abc..."},
		{name: "runes are counted, not bytes", input: "ああああああ", maxLen: 5, want: "ああ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
