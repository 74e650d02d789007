package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tabula/tabula/internal/service"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <sql>",
		Short: "Check a statement against the supported SQL shape",
		Long: `Check whether a statement has the form
  <SELECT|UPDATE|DELETE|INSERT> <anything> FROM <table> [WHERE <anything>]

Exits with status 1 when the statement is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, sql string, cmd *cobra.Command) error {
	svc, _, err := newQueryService(opts)
	if err != nil {
		return err
	}

	res, err := svc.Validate(sql)
	if errors.Is(err, service.ErrEmptyQuery) {
		return NewExitError(ExitCommandError, "Query is required.")
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if err := formatter.Print(res, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, res.Message)
		return err
	}); err != nil {
		return err
	}

	if !res.Valid {
		return NewExitError(ExitFailure, "invalid statement")
	}
	return nil
}
