package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/urlguard/internal/classifier"
	"github.com/nao1215/urlguard/internal/model"
)

// writeTestModel writes a one-tree model to dir and returns its path.
// URLs with a shortener domain are phishing; the rest are benign.
// The columns are a reordered subset of the canonical names.
func writeTestModel(t *testing.T, dir string) string {
	t.Helper()

	artifact := classifier.Artifact{
		Format:        classifier.FormatDecisionForest,
		SchemaVersion: 1,
		FeatureNames:  []string{"dot_number", "is_shortened"},
		Classes:       []string{"benign", "phishing"},
		Trees: []classifier.Tree{
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{1, -2, -2},
				Threshold:     []float64{0.5, -2, -2},
				Value:         [][]float64{{5, 5}, {9, 1}, {1, 4}},
			},
		},
	}

	data, err := json.Marshal(artifact)
	if err != nil {
		t.Fatalf("failed to marshal artifact: %v", err)
	}

	path := filepath.Join(dir, "model.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write model: %v", err)
	}
	return path
}

func TestPredictURL(t *testing.T) {
	t.Parallel()

	modelPath := writeTestModel(t, t.TempDir())

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "shortened URL is phishing", url: "http://bit.ly/xyz", want: "phishing"},
		{name: "regular URL is benign", url: "https://www.example.com/a/b?x=1#frag", want: "benign"},
		{name: "empty string is classified", url: "", want: "benign"},
		{name: "malformed input is classified", url: "::::////????", want: "benign"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := PredictURL(tt.url, modelPath)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PredictURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestPredictURLErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing model", func(t *testing.T) {
		t.Parallel()

		_, err := PredictURL("http://example.com", filepath.Join(t.TempDir(), "absent.json"))
		if !errors.Is(err, classifier.ErrModelLoad) {
			t.Errorf("expected ErrModelLoad, got %v", err)
		}
	})

	t.Run("corrupt model", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "model.json")
		if err := os.WriteFile(path, []byte("not a model"), 0o600); err != nil {
			t.Fatal(err)
		}

		_, err := PredictURL("http://example.com", path)
		if !errors.Is(err, classifier.ErrModelLoad) {
			t.Errorf("expected ErrModelLoad, got %v", err)
		}
	})

	t.Run("model with unknown feature", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "model.json")
		raw := `{"format":"decision_forest","schema_version":1,"feature_names":["page_rank"],` +
			`"classes":["benign"],"trees":[{"children_left":[-1],"children_right":[-1],` +
			`"feature":[-2],"threshold":[-2],"value":[[1]]}]}`
		if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
			t.Fatal(err)
		}

		_, err := PredictURL("http://example.com", path)
		if !errors.Is(err, classifier.ErrSchemaMismatch) {
			t.Errorf("expected ErrSchemaMismatch, got %v", err)
		}
	})
}

func TestPredictorPredict(t *testing.T) {
	t.Parallel()

	modelPath := writeTestModel(t, t.TempDir())
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	p, err := New(modelPath, WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	t.Run("fills every field", func(t *testing.T) {
		t.Parallel()

		prediction, err := p.Predict("http://bit.ly/xyz")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if prediction.Label != "phishing" {
			t.Errorf("Label = %q, want phishing", prediction.Label)
		}
		if got := prediction.Probability("phishing"); got != 0.8 {
			t.Errorf("Probability(phishing) = %v, want 0.8", got)
		}
		if prediction.Features.IsShortened != 1 {
			t.Error("expected feature vector to be recorded")
		}
		if prediction.RegisteredDomain != "bit.ly" {
			t.Errorf("RegisteredDomain = %q, want bit.ly", prediction.RegisteredDomain)
		}
		if len(prediction.ModelChecksum) != 64 {
			t.Errorf("expected a hex BLAKE2b-256 checksum, got %q", prediction.ModelChecksum)
		}
		if !prediction.Timestamp.Equal(fixed) {
			t.Errorf("Timestamp = %v, want %v", prediction.Timestamp, fixed)
		}
	})

	t.Run("concurrent callers get identical results", func(t *testing.T) {
		t.Parallel()

		var wg sync.WaitGroup
		labels := make([]string, 32)
		for i := range labels {
			wg.Add(1)
			go func() {
				defer wg.Done()
				prediction, err := p.Predict("http://bit.ly/xyz")
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				labels[i] = prediction.Label
			}()
		}
		wg.Wait()

		for i, label := range labels {
			if label != "phishing" {
				t.Errorf("labels[%d] = %q, want phishing", i, label)
			}
		}
	})
}

func TestPredictorURLTooLong(t *testing.T) {
	t.Parallel()

	p, err := New(writeTestModel(t, t.TempDir()), WithMaxURLLength(16))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	prediction, err := p.Predict("http://example.com/" + strings.Repeat("a", 32))
	if !errors.Is(err, ErrURLTooLong) {
		t.Fatalf("expected ErrURLTooLong, got %v", err)
	}
	if prediction == nil || !prediction.Failed() {
		t.Error("expected a failed prediction to be returned")
	}
	if prediction.Label != "" {
		t.Errorf("expected no label, got %q", prediction.Label)
	}
}

// recorderFunc adapts a function to pipeline.Recorder.
type recorderFunc func(ctx context.Context, prediction *model.Prediction) error

func (f recorderFunc) SavePrediction(ctx context.Context, prediction *model.Prediction) error {
	return f(ctx, prediction)
}

func TestPredictorWithRecorder(t *testing.T) {
	t.Parallel()

	var saved []*model.Prediction
	recorder := recorderFunc(func(_ context.Context, prediction *model.Prediction) error {
		saved = append(saved, prediction)
		return nil
	})

	p, err := New(writeTestModel(t, t.TempDir()), WithRecorder(recorder))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := p.Predict("https://example.org"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved) != 1 || saved[0].Label != "benign" {
		t.Errorf("expected one saved benign prediction, got %v", saved)
	}
}

func TestCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	modelPath := writeTestModel(t, dir)
	cache := NewCache()

	first, err := cache.Get(modelPath)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Same file through a different relative spelling.
	second, err := cache.Get(filepath.Join(dir, ".", "model.json"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if first != second {
		t.Error("expected the cached predictor to be reused")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}

	if _, err := cache.Get(filepath.Join(dir, "absent.json")); err == nil {
		t.Error("expected error for missing model")
	}
	if cache.Len() != 1 {
		t.Errorf("failed loads must not be cached, Len() = %d", cache.Len())
	}
}

func TestCacheLoadsOncePerPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	modelPath := writeTestModel(t, dir)
	cache := NewCache()

	var (
		mu    sync.Mutex
		loads int
	)
	release := make(chan struct{})
	cache.load = func(path string, opts ...Option) (*Predictor, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		<-release
		return New(path, opts...)
	}

	const callers = 16
	results := make([]*Predictor, callers)
	errs := make([]error, callers)
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for i := range callers {
		go func() {
			defer done.Done()
			started.Done()
			results[i], errs[i] = cache.Get(modelPath)
		}()
	}
	started.Wait()
	// Give every caller time to reach the shared load before it finishes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	for i := range callers {
		if errs[i] != nil {
			t.Fatalf("Get: %v", errs[i])
		}
		if results[i] != results[0] {
			t.Fatal("expected every caller to receive the same predictor")
		}
	}
	if loads != 1 {
		t.Errorf("model loaded %d times, want 1", loads)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}
