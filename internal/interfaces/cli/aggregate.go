package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/razinkele/marbefes-eva-app/internal/application/component"
	"github.com/razinkele/marbefes-eva-app/pkg/types/eva"
)

func newAggregateCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate <dataset.json> [dataset.json...]",
		Short: "Aggregate Total EV across component datasets",
		Long: "Run the assessment pipeline on each dataset file, treat each result\n" +
			"as one ecosystem component, and print the cross-component Total EV\n" +
			"table.  A component is named after its file, or explicitly with\n" +
			"NAME=path.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(opts)
			if err != nil {
				return err
			}
			store := component.NewStore(nil, nil, nil)

			for _, arg := range args {
				name, path := splitComponentArg(arg)
				req, err := readRequest(path)
				if err != nil {
					return err
				}
				outcome, err := svc.Run(cmd.Context(), req)
				if err != nil {
					return fmt.Errorf("assessment of %q failed: %w", name, err)
				}
				if _, err := store.Save(cmd.Context(), name, outcome, false); err != nil {
					return err
				}
			}

			resp, err := store.Aggregate(cmd.Context())
			if err != nil {
				return err
			}

			return printResult(cmd.OutOrStdout(), opts.OutputFormat, resp, func(w io.Writer) error {
				return renderAggregate(w, resp)
			})
		},
	}
	return cmd
}

// splitComponentArg parses "NAME=path" arguments; a bare path names the
// component after the file.
func splitComponentArg(arg string) (name, path string) {
	if i := strings.IndexByte(arg, '='); i > 0 {
		return arg[:i], arg[i+1:]
	}
	base := filepath.Base(arg)
	return strings.TrimSuffix(base, filepath.Ext(base)), arg
}

func renderAggregate(w io.Writer, resp *eva.AggregateResponse) error {
	tw := newTable(w)
	fmt.Fprint(tw, "SUBZONE")
	for _, name := range resp.Components {
		fmt.Fprintf(tw, "\t%s", name)
	}
	fmt.Fprintln(tw, "\tTOTAL EV")
	for _, row := range resp.Rows {
		fmt.Fprint(tw, row.SubzoneID)
		for _, name := range resp.Components {
			fmt.Fprintf(tw, "\t%.2f", row.ComponentEVs[name])
		}
		fmt.Fprintf(tw, "\t%.2f\n", row.TotalEV)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nSum %.2f  Mean %.2f  Max %.2f  Min %.2f\n",
		resp.Summary.Sum, resp.Summary.Mean, resp.Summary.Max, resp.Summary.Min)
	return err
}
