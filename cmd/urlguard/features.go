package main

import (
	"strconv"

	"github.com/nao1215/urlguard/internal/features"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewFeaturesCmd creates the features command.
func NewFeaturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features [url...]",
		Short: "Print the lexical features of URLs",
		Long: `Features prints the feature vector that predict feeds to the model, in
canonical order. No model is needed.

If no URL is given, features asks for one on standard input.

Examples:
  # Show the features of a URL
  urlguard features "http://192.168.0.1/paypal/login.php?user=1"

  # Compare two URLs side by side
  urlguard features https://example.com/ https://bit.ly/abc

  # Machine-readable output
  urlguard features --json https://example.com/`,
		Args: cobra.ArbitraryArgs,
		RunE: runFeaturesCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

// urlFeatures is the JSON form of one extracted vector.
type urlFeatures struct {
	URL           string          `json:"url"`
	SchemaVersion int             `json:"schema_version"`
	Features      features.Vector `json:"features"`
}

// runFeaturesCmd executes the features command.
func runFeaturesCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	urls := args
	if len(urls) == 0 {
		url, err := promptURL(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		urls = []string{url}
	}

	warnMissingNetloc(cmd.ErrOrStderr(), urls)

	vectors := make([]urlFeatures, len(urls))
	for i, u := range urls {
		vectors[i] = urlFeatures{
			URL:           u,
			SchemaVersion: features.SchemaVersion,
			Features:      features.Extract(u),
		}
	}

	if jsonOutput {
		return encodeJSON(cmd.OutOrStdout(), vectors)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	header := []any{"Feature"}
	for _, v := range vectors {
		header = append(header, truncate(v.URL, 40))
	}
	table.Header(header...)

	values := make([][]float64, len(vectors))
	for i, v := range vectors {
		values[i] = v.Features.Values()
	}

	for j, name := range features.Names() {
		row := []string{name}
		for i := range vectors {
			row = append(row, strconv.FormatFloat(values[i][j], 'f', -1, 64))
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// truncate shortens s to maxLen runes with an ellipsis.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
