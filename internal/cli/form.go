package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/userdir/userdir/internal/form"
	"github.com/userdir/userdir/internal/submission"
)

// NewFormCommand creates the interactive form command.
func NewFormCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Enter users interactively and submit them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForm(rootOpts, cmd)
		},
	}
}

func runForm(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	c, err := opts.client()
	if err != nil {
		return fail(formatter, ErrCodeInput, err)
	}

	flow := submission.New(c, submission.WithLogger(opts.logger))
	if err := flow.Refresh(cmd.Context()); err != nil {
		formatter.VerboseLog("Could not load current users: %v", err)
	}

	// Prompts go to stderr in JSON mode so stdout stays a single document.
	prompts := cmd.OutOrStdout()
	if formatter.Format == "json" {
		prompts = cmd.ErrOrStderr()
	} else {
		if err := form.RenderUsers(prompts, flow.Users()); err != nil {
			return err
		}
		fmt.Fprintln(prompts)
	}

	if err := form.NewPrompter(cmd.InOrStdin(), prompts, flow).Run(cmd.Context()); err != nil {
		return fail(formatter, ErrCodeInput, WrapExitError(ExitCommandError, "read input", err))
	}

	return submit(cmd.Context(), formatter, flow)
}
