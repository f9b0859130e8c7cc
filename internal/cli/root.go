// Package cli wires the varform command line: fill a template interactively,
// render a snapshot, or serve a live form over HTTP.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-varform/components/address"
	"github.com/goliatone/go-varform/pkg/config"
	"github.com/goliatone/go-varform/pkg/renderers/tui"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Template   string
	Config     string
	Params     []string
	ParamsFile string
	LogLevel   string

	cfg              config.Config
	logger           *slog.Logger
	addressComponent *address.Component

	// driver replaces the survey prompt driver in tests.
	driver tui.PromptDriver
}

// NewRootCommand creates the root command for the varform CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "varform",
		Short: "varform - typed variable forms",
		Long:  "Fill, render and serve forms generated from template variable definitions.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.prepare(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.Template, "template", "t", "", "template definition (YAML or JSON); the embedded lease sample when empty")
	flags.StringVarP(&opts.Config, "config", "c", "", "host configuration file (YAML or JSON)")
	flags.StringArrayVarP(&opts.Params, "param", "p", nil, "initial parameter as name=value (repeatable)")
	flags.StringVar(&opts.ParamsFile, "params-file", "", "initial parameters as a YAML or JSON object")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewFillCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

func (o *RootOptions) prepare(cmd *cobra.Command) error {
	if o.Config != "" {
		cfg, err := config.LoadFile(o.Config)
		if err != nil {
			return err
		}
		o.cfg = cfg
	}

	level := o.cfg.LogLevel
	if cmd.Flags().Changed("log-level") || level == "" {
		level = o.LogLevel
	}
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	o.logger = newLogger(cmd.ErrOrStderr(), parsed)
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
