// Package varform renders typed template variables as forms. The root package
// bundles the in-memory template engine, the form orchestrator and the HTML
// renderer for callers that only need a rendered page.
package varform

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-varform/components/address"
	"github.com/goliatone/go-varform/internal/memengine"
	"github.com/goliatone/go-varform/pkg/orchestrator"
	"github.com/goliatone/go-varform/pkg/render"
	"github.com/goliatone/go-varform/pkg/renderers/html"
)

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// FieldSubset aliases render.FieldSubset for callers rendering part of a form.
type FieldSubset = render.FieldSubset

// NewOrchestrator exposes the orchestrator constructor from the module root.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML parses a YAML or JSON template definition, executes it against
// params and renders the resulting form as HTML. Address lookups default to
// the embedded address book; options are applied after the defaults.
func GenerateHTML(ctx context.Context, definition []byte, params map[string]string, renderOpts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	def, err := memengine.Parse(definition, "definition")
	if err != nil {
		return nil, err
	}
	eng, err := memengine.New(def)
	if err != nil {
		return nil, err
	}
	addresses, err := address.New()
	if err != nil {
		return nil, err
	}

	defaults := []orchestrator.Option{
		orchestrator.WithEngine(eng),
		orchestrator.WithIdentityAPI(eng.Directory()),
		orchestrator.WithAddressAPI(addresses.API()),
	}
	orch := orchestrator.New(append(defaults, options...)...)

	exec, executed, err := eng.Execute(ctx, params)
	if err != nil {
		return nil, err
	}
	f, err := orch.Build(ctx, orchestrator.Request{Exec: exec, ExecutedVariables: executed, Parameters: params})
	if err != nil {
		return nil, err
	}
	defer f.Close()

	renderer, err := html.New()
	if err != nil {
		return nil, err
	}
	if renderOpts.Errors == nil {
		renderOpts.Errors = render.CollectErrors(f.Fields()).Fields
	}
	return renderer.Render(ctx, render.Snapshot(def.Name, f), renderOpts)
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// or extend them.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
