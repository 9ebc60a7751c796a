package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/urlguard/internal/dataset"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewDatasetCmd creates the dataset command group.
func NewDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Prepare labeled URL datasets for training",
		Long: `Dataset turns a raw labeled CSV file (url,type) into a feature table
that a training tool can read directly. The features are extracted with
the same code that predict uses.`,
	}

	cmd.AddCommand(newDatasetPrepareCmd())
	cmd.AddCommand(newDatasetSummaryCmd())

	return cmd
}

func newDatasetPrepareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Extract features, clip outliers and balance classes",
		Long: `Prepare reads a raw labeled CSV file, extracts the features of every URL,
optionally clips outliers with the IQR rule and balances the classes,
then writes url, one column per feature, and type.

Examples:
  # Extract features only
  urlguard dataset prepare -i malicious_phish.csv -o features.csv --clip-iqr 0

  # Clip outliers and undersample to the smallest class
  urlguard dataset prepare -i malicious_phish.csv -o train.csv --balance under

  # Binary dataset, oversampled, with a fixed seed
  urlguard dataset prepare -i raw.csv -o train.csv --binary --balance over --seed 7`,
		Args: cobra.NoArgs,
		RunE: runDatasetPrepareCmd,
	}

	cmd.Flags().StringP("input", "i", "", "Raw labeled CSV file (required)")
	cmd.Flags().StringP("output", "o", "", "Output CSV file (default: stdout)")
	cmd.Flags().String("url-column", dataset.DefaultURLColumn, "Name of the URL column")
	cmd.Flags().String("label-column", dataset.DefaultLabelColumn, "Name of the label column")
	cmd.Flags().String("balance", string(dataset.StrategyNone), "Class balancing: under, over or none")
	cmd.Flags().Float64("clip-iqr", dataset.DefaultIQRFactor, "IQR fence multiplier for outlier clipping (0 disables)")
	cmd.Flags().Bool("binary", false, "Collapse labels to benign/malignant")
	cmd.Flags().Uint64("seed", 42, "Random seed for balancing")

	_ = cmd.MarkFlagRequired("input") //nolint:errcheck // flag is defined above

	return cmd
}

// prepareOptions holds the flags of dataset prepare.
type prepareOptions struct {
	input       string
	output      string
	urlColumn   string
	labelColumn string
	strategy    dataset.Strategy
	clipIQR     float64
	binary      bool
	seed        uint64
}

func runDatasetPrepareCmd(cmd *cobra.Command, _ []string) error {
	opts, err := buildPrepareOptions(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))

	samples, err := readSamples(opts.input, opts.urlColumn, opts.labelColumn)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("%s: %w", opts.input, dataset.ErrEmptyDataset)
	}
	logger.Debug("dataset loaded", "rows", len(samples))

	table, err := prepareTable(samples, opts)
	if err != nil {
		return err
	}
	logger.Debug("dataset prepared", "rows", table.Rows(), "balance", opts.strategy)

	output, closeOutput, err := openOutput(cmd, opts.output)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // Best effort close; writes already reported errors

	if err := dataset.WriteCSV(output, table); err != nil {
		return err
	}

	if opts.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", table.Rows(), opts.output)
	}
	return nil
}

func buildPrepareOptions(cmd *cobra.Command) (*prepareOptions, error) {
	flags := cmd.Flags()
	opts := &prepareOptions{}
	var err error

	if opts.input, err = flags.GetString("input"); err != nil {
		return nil, err
	}
	if opts.output, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if opts.urlColumn, err = flags.GetString("url-column"); err != nil {
		return nil, err
	}
	if opts.labelColumn, err = flags.GetString("label-column"); err != nil {
		return nil, err
	}
	if opts.clipIQR, err = flags.GetFloat64("clip-iqr"); err != nil {
		return nil, err
	}
	if opts.binary, err = flags.GetBool("binary"); err != nil {
		return nil, err
	}
	if opts.seed, err = flags.GetUint64("seed"); err != nil {
		return nil, err
	}

	balance, err := flags.GetString("balance")
	if err != nil {
		return nil, err
	}
	if opts.strategy, err = dataset.ParseStrategy(balance); err != nil {
		return nil, err
	}
	return opts, nil
}

// prepareTable runs the preparation steps in order: feature extraction,
// label collapse, outlier clipping, balancing.
func prepareTable(samples []dataset.Sample, opts *prepareOptions) (*dataset.Table, error) {
	table := dataset.BuildTable(samples)

	if opts.binary {
		table = dataset.CollapseBinary(table)
	}

	if opts.clipIQR != 0 {
		clipped, err := dataset.ClipOutliersIQR(table, opts.clipIQR)
		if err != nil {
			return nil, err
		}
		table = clipped
	}

	return dataset.Balance(table, opts.strategy, opts.seed)
}

func newDatasetSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Describe the features and classes of a labeled dataset",
		Long: `Summary extracts the features of a raw labeled CSV file and prints
per-feature statistics (min, max, mean, sample standard deviation) and
the class distribution.

Examples:
  urlguard dataset summary -i malicious_phish.csv
  urlguard dataset summary -i malicious_phish.csv --json`,
		Args: cobra.NoArgs,
		RunE: runDatasetSummaryCmd,
	}

	cmd.Flags().StringP("input", "i", "", "Raw labeled CSV file (required)")
	cmd.Flags().String("url-column", dataset.DefaultURLColumn, "Name of the URL column")
	cmd.Flags().String("label-column", dataset.DefaultLabelColumn, "Name of the label column")
	cmd.Flags().Bool("binary", false, "Collapse labels to benign/malignant")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	_ = cmd.MarkFlagRequired("input") //nolint:errcheck // flag is defined above

	return cmd
}

func runDatasetSummaryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	input, err := flags.GetString("input")
	if err != nil {
		return err
	}
	urlColumn, err := flags.GetString("url-column")
	if err != nil {
		return err
	}
	labelColumn, err := flags.GetString("label-column")
	if err != nil {
		return err
	}
	binary, err := flags.GetBool("binary")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}

	samples, err := readSamples(input, urlColumn, labelColumn)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("%s: %w", input, dataset.ErrEmptyDataset)
	}

	table := dataset.BuildTable(samples)
	if binary {
		table = dataset.CollapseBinary(table)
	}
	summary := dataset.Summarize(table)

	if jsonOutput {
		return encodeJSON(cmd.OutOrStdout(), summary)
	}
	return writeSummary(cmd.OutOrStdout(), summary)
}

// writeSummary prints a dataset summary as two tables.
func writeSummary(w io.Writer, s *dataset.Summary) error {
	fmt.Fprintf(w, "Rows: %d\n\n", s.Rows)

	classes := tablewriter.NewWriter(w)
	classes.Header("Class", "Count", "Percent")
	for _, c := range s.Classes {
		row := []string{c.Label, strconv.Itoa(c.Count), strconv.FormatFloat(c.Percent, 'f', 2, 64) + "%"}
		if err := classes.Append(row); err != nil {
			return err
		}
	}
	if err := classes.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	columns := tablewriter.NewWriter(w)
	columns.Header("Feature", "Min", "Max", "Mean", "Std")
	for _, c := range s.Columns {
		row := []string{
			c.Name,
			strconv.FormatFloat(c.Min, 'g', 6, 64),
			strconv.FormatFloat(c.Max, 'g', 6, 64),
			strconv.FormatFloat(c.Mean, 'f', 4, 64),
			strconv.FormatFloat(c.Std, 'f', 4, 64),
		}
		if err := columns.Append(row); err != nil {
			return err
		}
	}
	return columns.Render()
}
