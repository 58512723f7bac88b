package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newAssessCmd(opts *RootOptions) *cobra.Command {
	var (
		input      string
		dataType   string
		threshold  float64
		percentile float64
		showStatus bool
		outFile    string
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run the assessment pipeline on a dataset",
		Long: "Run the full assessment question / ecological value pipeline on a\n" +
			"JSON dataset file and print the per-subzone result table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(opts)
			if err != nil {
				return err
			}
			req, err := readRequest(input)
			if err != nil {
				return err
			}
			if dataType != "" {
				req.DataType = dataType
			}
			if threshold > 0 {
				req.RarityThreshold = threshold
			}
			if percentile > 0 {
				req.ConcentrationPercentile = percentile
			}

			outcome, err := svc.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			resp := outcome.Response

			w := cmd.OutOrStdout()
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			return printResult(w, opts.OutputFormat, resp, func(w2 io.Writer) error {
				fmt.Fprintf(w2, "Data type: %s (detected: %s), %d features\n\n",
					resp.DataType, resp.DetectedDataType, resp.FeatureCount)
				if err := renderResultRows(w2, resp.Rows); err != nil {
					return err
				}
				if showStatus {
					fmt.Fprintln(w2)
					return renderAQStatus(w2, resp.AQStatus)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Dataset JSON file, or - for stdin [REQUIRED]")
	cmd.Flags().StringVar(&dataType, "data-type", "", "Override data type (qualitative/quantitative; default: auto-detect)")
	cmd.Flags().Float64Var(&threshold, "rarity-threshold", 0, "Locally-rare occurrence proportion (default from config)")
	cmd.Flags().Float64Var(&percentile, "percentile", 0, "Concentration percentile (default from config)")
	cmd.Flags().BoolVar(&showStatus, "status", false, "Also print the per-AQ activity report")
	cmd.Flags().StringVar(&outFile, "file", "", "Write output to a file instead of stdout")
	cmd.MarkFlagRequired("input")

	return cmd
}

func newMethodologyCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "methodology",
		Short: "Print the assessment question reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(opts)
			if err != nil {
				return err
			}
			entries := svc.Methodology()

			return printResult(cmd.OutOrStdout(), opts.OutputFormat, entries, func(w io.Writer) error {
				for _, e := range entries {
					fmt.Fprintf(w, "%s  [%s]  %s\n", e.ID, e.DataType, e.Name)
					fmt.Fprintf(w, "      %s\n", e.Description)
					fmt.Fprintf(w, "      Not applicable when: %s\n", e.NotApplicableWhen)
				}
				return nil
			})
		},
	}
}
