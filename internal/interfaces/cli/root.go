// Package cli implements the eva command line interface.  Commands run the
// assessment engine in-process on JSON dataset files, so the CLI works
// without a running API server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	appassessment "github.com/razinkele/marbefes-eva-app/internal/application/assessment"
	"github.com/razinkele/marbefes-eva-app/internal/config"
	"github.com/razinkele/marbefes-eva-app/internal/domain/assessment"
	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/monitoring/logging"
	"github.com/razinkele/marbefes-eva-app/pkg/types/eva"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
}

// NewRootCommand creates the root cobra command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "eva",
		Short: "Ecological value assessment engine",
		Long: "eva runs the MARBEFES ecological value assessment pipeline on survey\n" +
			"datasets: assessment question scoring, ecological value reduction, and\n" +
			"cross-component Total EV aggregation.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file (default: EVA_* environment)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "Log level (debug/info/warn/error)")
	cmd.PersistentFlags().StringVarP(&opts.OutputFormat, "output", "o", "table", "Output format (table/json)")

	cmd.AddCommand(newAssessCmd(opts))
	cmd.AddCommand(newAggregateCmd(opts))
	cmd.AddCommand(newMethodologyCmd(opts))

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig resolves configuration from the --config flag or environment.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}
	return config.LoadFromEnv()
}

// buildService wires the assessment service for CLI use: console logging to
// stderr, no cache, no metrics.
func buildService(opts *RootOptions) (appassessment.Service, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	log, err := logging.NewLogger(logging.LogConfig{
		Level:       opts.LogLevel,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, err
	}
	return appassessment.NewService(appassessment.Config{
		RarityThreshold:         cfg.Engine.RarityThreshold,
		ConcentrationPercentile: cfg.Engine.ConcentrationPercentile,
		MaxFeatures:             cfg.Engine.MaxFeatures,
		CacheTTL:                cfg.Engine.CacheTTL,
	}, log, nil, nil), nil
}

// readRequest loads an eva.AssessmentRequest from a JSON file, or stdin when
// path is "-".
func readRequest(path string) (*eva.AssessmentRequest, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %q: %w", path, err)
	}
	req := &eva.AssessmentRequest{}
	if err := json.Unmarshal(raw, req); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %q: %w", path, err)
	}
	return req, nil
}

// printResult renders any value as indented JSON, or defers to the provided
// table renderer.
func printResult(w io.Writer, format string, value interface{}, table func(io.Writer) error) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case "table":
		return table(w)
	default:
		return fmt.Errorf("invalid output format: %s (must be table/json)", format)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// renderResultRows writes the per-subzone AQ/EV table.
func renderResultRows(w io.Writer, rows []eva.ResultRowDTO) error {
	tw := newTable(w)
	fmt.Fprint(tw, "SUBZONE")
	for _, aq := range assessment.AllAQs() {
		fmt.Fprintf(tw, "\t%s", aq)
	}
	fmt.Fprintln(tw, "\tEV")
	for _, row := range rows {
		fmt.Fprint(tw, row.SubzoneID)
		for _, aq := range assessment.AllAQs() {
			cell := row.Scores[string(aq)]
			if !cell.Applicable {
				fmt.Fprint(tw, "\tN/A")
				continue
			}
			fmt.Fprintf(tw, "\t%.2f", cell.Value)
		}
		fmt.Fprintf(tw, "\t%.2f\n", row.EV)
	}
	return tw.Flush()
}

// renderAQStatus writes the per-AQ activity report.
func renderAQStatus(w io.Writer, status map[string]eva.AQStatusDTO) error {
	ids := make([]string, 0, len(status))
	for id := range status {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		// AQ2 sorts before AQ10 numerically.
		return len(ids[i]) < len(ids[j]) || (len(ids[i]) == len(ids[j]) && ids[i] < ids[j])
	})

	tw := newTable(w)
	fmt.Fprintln(tw, "AQ\tACTIVE\tREASON")
	for _, id := range ids {
		st := status[id]
		fmt.Fprintf(tw, "%s\t%t\t%s\n", id, st.Active, st.Reason)
	}
	return tw.Flush()
}
