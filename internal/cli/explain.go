package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tabula/tabula/internal/service"
)

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <sql>",
		Short: "Describe what a valid statement does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, args[0], cmd)
		},
	}
}

func runExplain(opts *RootOptions, sql string, cmd *cobra.Command) error {
	svc, _, err := newQueryService(opts)
	if err != nil {
		return err
	}

	res, err := svc.Explain(sql)
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		return NewExitError(ExitCommandError, "Query is required.")
	case errors.Is(err, service.ErrInvalidQuery):
		return NewExitError(ExitFailure, "Invalid SQL query. Cannot explain.")
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Print(res, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, res.Explanation)
		return err
	})
}
