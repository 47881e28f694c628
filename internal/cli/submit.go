package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/userdir/userdir/internal/form"
	"github.com/userdir/userdir/internal/submission"
	"github.com/userdir/userdir/internal/users"
)

// SubmitResult is the JSON payload of a successful submit.
type SubmitResult struct {
	Created []users.User `json:"created"`
	Users   []users.User `json:"users"`
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit --file <entries.yaml>",
		Short: "Submit a batch of users from a YAML file",
		Long: `Submit every entry of a YAML list of {name, phone, email} records.

Entries are sent one at a time in file order. The batch stops at the first
entry with an empty field or the first request the API rejects; entries sent
before that point stay stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(rootOpts, file, cmd)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with the entries to submit (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSubmit(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	entries, err := LoadEntries(path)
	if err != nil {
		return fail(formatter, ErrCodeInput, WrapExitError(ExitCommandError, "load entries", err))
	}
	formatter.VerboseLog("Loaded %d entries from %s", len(entries), path)

	c, err := opts.client()
	if err != nil {
		return fail(formatter, ErrCodeInput, err)
	}

	flow := submission.New(c, submission.WithLogger(opts.logger))
	if err := flow.Refresh(cmd.Context()); err != nil {
		formatter.VerboseLog("Could not load current users: %v", err)
	}
	if err := fillFlow(flow, entries); err != nil {
		return fail(formatter, ErrCodeInput, WrapExitError(ExitCommandError, "load entries", err))
	}

	return submit(cmd.Context(), formatter, flow)
}

// LoadEntries reads a YAML list of entries. Unknown keys are rejected.
func LoadEntries(path string) ([]submission.Entry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	dec := yaml.NewDecoder(fh)
	dec.KnownFields(true)

	var entries []submission.Entry
	if err := dec.Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: no entries", path)
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: no entries", path)
	}
	return entries, nil
}

// fillFlow copies entries into the flow's pending entries, adding form groups
// as needed.
func fillFlow(flow *submission.Flow, entries []submission.Entry) error {
	for i, e := range entries {
		localID := 1
		if i > 0 {
			localID = flow.AddEntry().LocalID
		}
		for _, field := range submission.Fields {
			if err := flow.UpdateField(localID, field, e.Get(field)); err != nil {
				return err
			}
		}
	}
	return nil
}

// submit runs the batch and reports the outcome. A halted batch exits with
// ExitFailure.
func submit(ctx context.Context, formatter *OutputFormatter, flow *submission.Flow) error {
	res, err := flow.Submit(ctx)
	view := form.ViewOf(flow)

	if err != nil {
		code := ErrCodeRequest
		switch {
		case errors.Is(err, submission.ErrIncompleteEntry):
			code = ErrCodeIncomplete
		case errors.Is(err, submission.ErrSubmitInProgress):
			code = ErrCodeInProgress
		}
		if formatter.Format != "json" {
			_ = form.Render(formatter.Writer, view)
		}
		reason := strings.TrimPrefix(view.Status, submission.StatusErrorPrefix)
		_ = formatter.Error(code, reason, map[string]int{
			"failed_at": res.FailedAt,
			"created":   len(res.Created),
		})
		return WrapExitError(ExitFailure, "submission failed", err)
	}

	return formatter.Success(SubmitResult{Created: res.Created, Users: view.Users}, func(w io.Writer) error {
		return form.Render(w, view)
	})
}
