package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-varform/pkg/render"
	"github.com/goliatone/go-varform/pkg/renderers/html"
	"github.com/goliatone/go-varform/pkg/renderers/tui"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	Format string
	Output string
	Title  string
	Action string
}

// ValidRenderFormats lists the accepted --format values.
var ValidRenderFormats = []string{"html", "tui", "json", "yaml"}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a snapshot of the form",
		Long: `Execute the template against the given parameters and render the
resulting form as HTML, a terminal summary, or its JSON/YAML view model.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "html", "output format (html|tui|json|yaml)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "form title")
	cmd.Flags().StringVar(&opts.Action, "action", "", "HTML form action")

	return cmd
}

func runRender(rootOpts *RootOptions, opts *RenderOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f, err := rootOpts.build(ctx)
	if err != nil {
		return err
	}
	defer f.Close()

	view := render.Snapshot(opts.Title, f)

	var out []byte
	switch opts.Format {
	case "json":
		out, err = json.MarshalIndent(view, "", "  ")
	case "yaml":
		out, err = yaml.Marshal(view)
	case "html", "tui":
		registry, regErr := renderers(rootOpts)
		if regErr != nil {
			return regErr
		}
		renderer, resolveErr := registry.Resolve(opts.Format)
		if resolveErr != nil {
			return resolveErr
		}
		out, err = renderer.Render(ctx, view, render.RenderOptions{
			Action: opts.Action,
			Errors: render.CollectErrors(f.Fields()).Fields,
		})
	default:
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidRenderFormats)
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return writeOutput(cmd, opts.Output, out)
}

// renderers registers the snapshot renderers; html is the default.
func renderers(rootOpts *RootOptions) (*render.Registry, error) {
	registry := render.NewRegistry()

	htmlRenderer, err := html.New()
	if err != nil {
		return nil, err
	}
	if err := registry.Register(htmlRenderer); err != nil {
		return nil, err
	}

	tuiRenderer, err := tui.New(tui.WithPromptDriver(rootOpts.driver), tui.WithLogger(rootOpts.logger))
	if err != nil {
		return nil, err
	}
	if err := registry.Register(tuiRenderer); err != nil {
		return nil, err
	}
	return registry, nil
}
