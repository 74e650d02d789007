package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tabula/tabula/internal/dataset"
	"github.com/tabula/tabula/internal/models"
	"github.com/tabula/tabula/internal/server"
	"github.com/tabula/tabula/internal/service"
)

// NewAskCommand creates the ask command.
func NewAskCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a plain-language question about the sales table",
		Example: `  tabula ask "How many laptops in North?"
  tabula ask --format json "total sales in north and south"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(rootOpts, strings.Join(args, " "), cmd)
		},
	}
}

func runAsk(opts *RootOptions, question string, cmd *cobra.Command) error {
	svc, _, err := newQueryService(opts)
	if err != nil {
		return err
	}

	exec, err := svc.RunNaturalLanguageQuery(cmd.Context(), question)
	if errors.Is(err, service.ErrEmptyQuery) {
		return NewExitError(ExitCommandError, "Missing query. "+models.MissingQueryExample)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "run query", err)
	}

	resp := models.NewQueryResponse(question, exec)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Print(resp, func(w io.Writer) error {
		return writeExecution(w, resp)
	})
}

func writeExecution(w io.Writer, resp models.QueryResponse) error {
	fmt.Fprintf(w, "Query:  %s\n", resp.PseudoSQL)
	fmt.Fprintf(w, "Answer: %s\n", resp.Explanation)
	if resp.Behavior != "" {
		fmt.Fprintf(w, "Note:   %s\n", resp.Behavior)
	}

	switch r := resp.Result.(type) {
	case service.CountResult:
		_, err := fmt.Fprintf(w, "Count:  %d\n", r.Count)
		return err
	case service.SumResult:
		_, err := fmt.Fprintf(w, "Total:  %.2f\n", r.Total)
		return err
	case []dataset.Row:
		return writeRows(w, r)
	}
	return nil
}

func writeRows(w io.Writer, rows []dataset.Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No rows.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tREGION\tAMOUNT\tDATE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n", r.ID, r.Product, r.Region, r.Amount, r.Date.Format("2006-01-02"))
	}
	return tw.Flush()
}

// newQueryService builds the same service the HTTP server uses.
func newQueryService(opts *RootOptions) (*service.QueryService, *dataset.Catalog, error) {
	svc, catalog, err := server.NewQueryService(opts.Config)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "build query service", err)
	}
	return svc, catalog, nil
}
