package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/urlguard/internal/config"
	"github.com/nao1215/urlguard/internal/database"
	"github.com/nao1215/urlguard/internal/model"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of predictions listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command reads predictions stored by 'urlguard predict --save'.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show stored predictions",
		Long: `History lists predictions stored in the history database.

Predictions are stored when predict runs with --save, or when the
configuration file sets "history: true". The database lives in the XDG
data directory unless dbDir is set in the configuration file.

Examples:
  # Most recent predictions
  urlguard history

  # All stored predictions of one URL
  urlguard history "http://example.com/login"

  # Recent phishing predictions
  urlguard history --label phishing -n 50

  # Number of predictions per label
  urlguard history --stats

  # Registered domains seen so far
  urlguard history --domains`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of predictions to list")
	cmd.Flags().String("label", "", "Only list predictions with this label")
	cmd.Flags().Bool("domains", false, "List the registered domains in the database")
	cmd.Flags().Bool("stats", false, "Show the number of predictions per label")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().Bool("markdown", false, "Output Markdown (mutually exclusive with --json)")

	return cmd
}

// historyOptions holds the flags of the history command.
type historyOptions struct {
	url     string
	limit   int
	label   string
	domains bool
	stats   bool
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}

	opts, err := buildHistoryOptions(cmd, args)
	if err != nil {
		return err
	}

	// Validate flags before opening the database so that a usage error
	// never leaves a lock behind.
	if opts.domains && opts.stats {
		return errors.New("--domains and --stats cannot be used together")
	}
	if opts.url != "" && opts.label != "" {
		return errors.New("a URL and --label cannot be used together")
	}

	db, err := database.Open(cfg.DBDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case opts.stats:
		counts, err := db.LabelCounts(ctx)
		if err != nil {
			return err
		}
		if cfg.JSONReport {
			return encodeJSON(out, counts)
		}
		return writeLabelCounts(out, counts)
	case opts.domains:
		domains, err := db.ListDomains(ctx)
		if err != nil {
			return err
		}
		if cfg.JSONReport {
			return encodeJSON(out, domains)
		}
		for _, d := range domains {
			fmt.Fprintln(out, d)
		}
		return nil
	}

	predictions, err := queryHistory(ctx, db, opts)
	if err != nil {
		return err
	}
	if len(predictions) == 0 && !cfg.JSONReport && !cfg.MarkdownReport {
		fmt.Fprintln(out, "No predictions found")
		return nil
	}

	_, err = newReportWriter(cfg, out).WriteBatch(predictions)
	return err
}

func buildHistoryOptions(cmd *cobra.Command, args []string) (*historyOptions, error) {
	flags := cmd.Flags()
	opts := &historyOptions{}
	var err error

	if len(args) == 1 {
		opts.url = args[0]
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return nil, err
	}
	if opts.limit <= 0 {
		return nil, fmt.Errorf("invalid limit %d: must be positive", opts.limit)
	}
	if opts.label, err = flags.GetString("label"); err != nil {
		return nil, err
	}
	if opts.domains, err = flags.GetBool("domains"); err != nil {
		return nil, err
	}
	if opts.stats, err = flags.GetBool("stats"); err != nil {
		return nil, err
	}
	return opts, nil
}

// queryHistory selects predictions by URL, by label or by recency.
func queryHistory(ctx context.Context, db *database.HistoryDB, opts *historyOptions) ([]*model.Prediction, error) {
	switch {
	case opts.url != "":
		return db.GetHistory(ctx, opts.url, opts.limit)
	case opts.label != "":
		return db.ListByLabel(ctx, opts.label, opts.limit)
	default:
		return db.ListRecent(ctx, opts.limit)
	}
}

// writeLabelCounts prints the per-label counts as a table.
func writeLabelCounts(w io.Writer, counts []database.LabelCount) error {
	if len(counts) == 0 {
		fmt.Fprintln(w, "No predictions found")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Label", "Severity", "Count")
	for _, c := range counts {
		row := []string{c.Label, model.GetSeverity(c.Label).String(), fmt.Sprintf("%d", c.Count)}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
