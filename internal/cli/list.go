package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/userdir/userdir/internal/form"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	c, err := opts.client()
	if err != nil {
		return fail(formatter, ErrCodeInput, err)
	}

	formatter.VerboseLog("GET %s/users", c.BaseURL())
	list, err := c.List(cmd.Context())
	if err != nil {
		return fail(formatter, ErrCodeRequest, WrapExitError(ExitFailure, "fetch users failed", err))
	}

	return formatter.Success(list, func(w io.Writer) error {
		return form.RenderUsers(w, list)
	})
}

// fail reports err through the formatter and returns it as an *ExitError so
// that main picks the exit code without printing it again.
func fail(f *OutputFormatter, code string, err error) error {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(ExitFailure, "command failed", err)
	}
	_ = f.Error(code, exitErr.Error(), nil)
	return exitErr
}
