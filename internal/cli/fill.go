package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-varform/pkg/orchestrator"
	"github.com/goliatone/go-varform/pkg/renderers/tui"
)

// FillOptions holds flags for the fill command.
type FillOptions struct {
	OutputFormat string
	Output       string
}

// NewFillCommand creates the fill command.
func NewFillCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FillOptions{}

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill the form interactively in the terminal",
		Long: `Prompt for every visible variable of the template. The form is
re-executed after each answer, so conditional variables appear as soon as
their condition holds. The collected parameters are printed on completion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFill(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OutputFormat, "output-format", string(tui.OutputFormatJSON), "parameter encoding (json|form|pretty)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func runFill(rootOpts *RootOptions, opts *FillOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	eng, err := rootOpts.engine()
	if err != nil {
		return err
	}
	params, err := rootOpts.params()
	if err != nil {
		return err
	}
	orch, err := rootOpts.orchestrator(eng)
	if err != nil {
		return err
	}

	filler, err := tui.New(
		tui.WithPromptDriver(rootOpts.driver),
		tui.WithOutputFormat(tui.OutputFormat(opts.OutputFormat)),
		tui.WithLogger(rootOpts.logger),
		tui.WithTheme(tui.Theme{SectionPrefix: "== ", ErrorPrefix: "! "}),
	)
	if err != nil {
		return err
	}

	session, err := orch.NewSession(ctx, eng, params, orchestrator.SessionConfig{})
	if err != nil {
		return err
	}
	defer session.Close()

	out, err := filler.Fill(ctx, session)
	if err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	return writeOutput(cmd, opts.Output, append(out, '\n'))
}
