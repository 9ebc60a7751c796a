package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/urlguard/internal/classifier"
	"github.com/nao1215/urlguard/internal/config"
	"github.com/nao1215/urlguard/internal/database"
	"github.com/nao1215/urlguard/internal/pipeline"
	"github.com/nao1215/urlguard/internal/predictor"
	"github.com/spf13/cobra"
)

// NewPredictCmd creates the predict command.
func NewPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict [url...]",
		Short: "Classify URLs as benign or malicious",
		Long: `Predict extracts lexical features from each URL and classifies it with the
trained model. The URL is never fetched.

If no URL is given, predict asks for one on standard input.

Examples:
  # Classify a single URL
  urlguard predict "http://paypal.com.secure-login.example.ru/verify"

  # Ask for the URL interactively
  urlguard predict

  # Classify every URL of a file (one per line) with 16 workers
  urlguard predict --list urls.txt --batch 16

  # Show class probabilities and the feature vector
  urlguard predict --proba https://example.com/

  # Use a specific model and write a Markdown report
  urlguard predict -m forest.json --markdown -o report.md https://bit.ly/x

  # Keep a history of predictions
  urlguard predict --save https://example.com/

Configuration file (.urlguard) example:
  model: /opt/urlguard/model.json
  batchSize: 8
  history: true
  labels:
    binary: false`,
		Args: cobra.ArbitraryArgs,
		RunE: runPredictCmd,
	}

	// Model flags
	cmd.Flags().StringP("model", "m", config.DefaultModelPath(),
		"Path to the model artifact")
	cmd.Flags().Int("max-length", config.DefaultMaxURLLength,
		"Maximum URL length in characters")
	cmd.Flags().Bool("binary", false,
		"Report every non-benign label as malignant")

	// Input flags
	cmd.Flags().StringP("list", "l", "",
		"File with one URL per line")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent predictions")

	// History flags
	cmd.Flags().BoolP("save", "s", false,
		"Save predictions to the history database")

	// Report flags
	cmd.Flags().BoolP("proba", "p", false,
		"Show class probabilities and features (text output)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().Bool("markdown", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runPredictCmd executes the predict command.
func runPredictCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildPredictConfig(cmd, args)
	if err != nil {
		return err
	}

	if len(cfg.Targets) == 0 {
		url, err := promptURL(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		cfg.Targets = []string{url}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runPredict(ctx, cmd, cfg, logger)
}

// buildPredictConfig creates a Config from the config file and command flags.
func buildPredictConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}

	listPath, err := cmd.Flags().GetString("list")
	if err != nil {
		return nil, err
	}

	cfg.Targets = append(cfg.Targets, args...)
	if listPath != "" {
		urls, err := readURLList(listPath)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, urls...)
	}

	return cfg, nil
}

// runPredict loads the model and classifies every target.
func runPredict(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting prediction",
		"targets", len(cfg.Targets),
		"model", cfg.ModelPath,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	opts := []predictor.Option{
		predictor.WithLogger(logger),
		predictor.WithMaxURLLength(cfg.MaxURLLength),
	}

	// Open database connection if saving is enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
		opts = append(opts, predictor.WithRecorder(db))
	}

	p, err := predictor.New(cfg.ModelPath, opts...)
	if err != nil {
		return err
	}

	if db != nil {
		if err := recordModel(ctx, db, cfg.ModelPath, p.Classifier()); err != nil {
			logger.Warn("failed to record model", "error", err)
		}
	}

	warnMissingNetloc(cmd.ErrOrStderr(), cfg.Targets)

	output, closeOutput, err := openOutput(cmd, cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // Best effort close; writes already reported errors

	writer := newReportWriter(cfg, output)

	if len(cfg.Targets) == 1 && !cfg.JSONReport && !cfg.MarkdownReport {
		prediction, err := p.PredictContext(ctx, cfg.Targets[0])
		if err != nil {
			return err
		}
		if cfg.BinaryLabels {
			prediction.CollapseBinary()
		}
		_, err = writer.Write(prediction)
		return err
	}

	bp := pipeline.NewBatchPredictor(p,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	predictions, err := bp.PredictAll(ctx, cfg.Targets)
	if err != nil {
		return err
	}
	logger.Info("batch prediction completed",
		"targets", len(cfg.Targets),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	if cfg.BinaryLabels {
		for _, prediction := range predictions {
			prediction.CollapseBinary()
		}
	}

	if cfg.JSONReport || cfg.MarkdownReport {
		_, err = writer.WriteBatch(predictions)
		return err
	}

	failed := 0
	for _, prediction := range predictions {
		if prediction.Failed() {
			failed++
		}
		if _, err := writer.Write(prediction); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d URLs could not be classified", failed, len(predictions))
	}
	return nil
}

// recordModel stores the loaded model in the history database.
// Classifiers other than decision forests are not recorded.
func recordModel(ctx context.Context, db *database.HistoryDB, path string, c classifier.Classifier) error {
	forest, ok := c.(*classifier.Forest)
	if !ok {
		return nil
	}
	return db.RecordModel(ctx, &database.ModelRecord{
		Checksum:      forest.Checksum(),
		Path:          path,
		Format:        classifier.FormatDecisionForest,
		SchemaVersion: forest.SchemaVersion(),
		Classes:       forest.Classes(),
		NumTrees:      forest.NumTrees(),
		FirstSeen:     time.Now(),
	})
}

