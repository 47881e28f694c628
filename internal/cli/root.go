// Package cli implements the userdir command line front end.
package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/userdir/userdir/internal/client"
	"github.com/userdir/userdir/internal/config"
	"github.com/userdir/userdir/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	APIURL  string
	Format  string // "json" | "text"
	Timeout time.Duration
	Verbose bool

	cfg    config.ClientConfig
	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. cfg supplies flag defaults.
func NewRootCommand(cfg config.ClientConfig) *cobra.Command {
	opts := &RootOptions{cfg: cfg, logger: logging.Discard()}

	cmd := &cobra.Command{
		Use:   "userdir",
		Short: "User directory front end",
		Long:  "Enter users into the directory and list the stored records.",

		// Commands report their own failures through OutputFormatter.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			opts.logger = logging.NewWriter(cmd.ErrOrStderr(), level, false)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", cfg.APIURL, "base address of the directory API")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 0, "per-request timeout; overrides USERDIR_READ_TIMEOUT and USERDIR_WRITE_TIMEOUT")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewFormCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) client() (*client.Client, error) {
	read, write := o.cfg.ReadTimeout, o.cfg.WriteTimeout
	if o.Timeout > 0 {
		read, write = o.Timeout, o.Timeout
	}
	c, err := client.New(o.APIURL, client.WithTimeouts(read, write), client.WithLogger(o.logger))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid api url", err)
	}
	return c, nil
}
