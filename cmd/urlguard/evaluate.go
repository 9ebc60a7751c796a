package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/urlguard/internal/config"
	"github.com/nao1215/urlguard/internal/dataset"
	"github.com/nao1215/urlguard/internal/evaluate"
	"github.com/nao1215/urlguard/internal/model"
	"github.com/nao1215/urlguard/internal/pipeline"
	"github.com/nao1215/urlguard/internal/predictor"
	"github.com/spf13/cobra"
)

// NewEvaluateCmd creates the evaluate command.
func NewEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure model quality on a labeled dataset",
		Long: `Evaluate classifies every URL of a labeled CSV file and compares the
predictions with the labels. It reports accuracy, support-weighted F1,
one-vs-rest ROC AUC and the confusion matrix.

The CSV file needs a header row with a URL column and a label column
("url" and "type" by default).

Examples:
  # Evaluate the default model
  urlguard evaluate --dataset test.csv

  # Evaluate a binary model against a multi-class dataset
  urlguard evaluate -d test.csv -m binary.json --binary

  # Write a Markdown report
  urlguard evaluate -d test.csv --markdown -o eval.md`,
		Args: cobra.NoArgs,
		RunE: runEvaluateCmd,
	}

	cmd.Flags().StringP("dataset", "d", "", "Labeled CSV file (required)")
	cmd.Flags().String("url-column", dataset.DefaultURLColumn, "Name of the URL column")
	cmd.Flags().String("label-column", dataset.DefaultLabelColumn, "Name of the label column")
	cmd.Flags().StringP("model", "m", config.DefaultModelPath(), "Path to the model artifact")
	cmd.Flags().Int("max-length", config.DefaultMaxURLLength, "Maximum URL length in characters")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of concurrent predictions")
	cmd.Flags().Bool("binary", false, "Collapse true and predicted labels to benign/malignant")
	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().Bool("markdown", false, "Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path")

	_ = cmd.MarkFlagRequired("dataset") //nolint:errcheck // flag is defined above

	return cmd
}

// runEvaluateCmd executes the evaluate command.
func runEvaluateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return err
	}

	datasetPath, err := cmd.Flags().GetString("dataset")
	if err != nil {
		return err
	}
	urlColumn, err := cmd.Flags().GetString("url-column")
	if err != nil {
		return err
	}
	labelColumn, err := cmd.Flags().GetString("label-column")
	if err != nil {
		return err
	}

	samples, err := readSamples(datasetPath, urlColumn, labelColumn)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("%s: %w", datasetPath, dataset.ErrEmptyDataset)
	}

	cfg.Targets = make([]string, len(samples))
	for i, s := range samples {
		cfg.Targets[i] = s.URL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	result, err := runEvaluate(cmd.Context(), cfg, samples, logger)
	if err != nil {
		return err
	}

	output, closeOutput, err := openOutput(cmd, cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // Best effort close; writes already reported errors

	_, err = newReportWriter(cfg, output).WriteEvaluation(result)
	return err
}

// readSamples reads a labeled CSV file.
func readSamples(path, urlColumn, labelColumn string) ([]dataset.Sample, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided dataset path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	samples, err := dataset.ReadCSV(f,
		dataset.WithURLColumn(urlColumn),
		dataset.WithLabelColumn(labelColumn),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return samples, nil
}

// runEvaluate predicts every sample and computes the metrics.
// Samples that cannot be classified are skipped with a warning.
func runEvaluate(ctx context.Context, cfg *config.Config, samples []dataset.Sample, logger *slog.Logger) (*evaluate.Result, error) {
	p, err := predictor.New(cfg.ModelPath,
		predictor.WithLogger(logger),
		predictor.WithMaxURLLength(cfg.MaxURLLength),
	)
	if err != nil {
		return nil, err
	}

	bp := pipeline.NewBatchPredictor(p,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)
	predictions, err := bp.PredictAll(ctx, cfg.Targets)
	if err != nil {
		return nil, err
	}

	classes := p.Classifier().Classes()
	if cfg.BinaryLabels {
		classes = []string{model.LabelBenign, model.LabelMalignant}
	}

	yTrue := make([]string, 0, len(samples))
	yPred := make([]string, 0, len(samples))
	proba := make([][]float64, 0, len(samples))
	skipped := 0

	for i, prediction := range predictions {
		if prediction.Failed() {
			skipped++
			logger.Warn("skipping sample", "url", prediction.URL, "error", prediction.Error)
			continue
		}

		label := samples[i].Label
		if cfg.BinaryLabels {
			prediction.CollapseBinary()
			label = model.BinaryLabel(label)
		}

		row := make([]float64, len(classes))
		for j, class := range classes {
			row[j] = prediction.Probability(class)
		}

		yTrue = append(yTrue, label)
		yPred = append(yPred, prediction.Label)
		proba = append(proba, row)
	}

	if skipped > 0 {
		logger.Warn("some samples could not be classified", "skipped", skipped, "total", len(samples))
	}

	result, err := evaluate.Evaluate(yTrue, yPred, proba, classes)
	if errors.Is(err, evaluate.ErrEmpty) {
		return nil, fmt.Errorf("no sample of the dataset could be classified: %w", err)
	}
	return result, err
}
