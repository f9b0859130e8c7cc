package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-varform/pkg/orchestrator"
	"github.com/goliatone/go-varform/pkg/render"
)

// Renderer drives a form session from the terminal and prints read-only
// summaries of rendered views.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	logger            *slog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Fill.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Fill prompts for every visible field of the session's form and returns the
// collected parameters. The form is re-read after each answer, so variables
// that become visible mid-fill are prompted too.
func (r *Renderer) Fill(ctx context.Context, session *orchestrator.Session) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if session == nil || session.Form() == nil {
		return nil, ErrNoSession
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	f := &filler{renderer: r, session: session}
	if err := f.run(ctx); err != nil {
		return nil, err
	}

	params := session.Parameters()
	if r.submitTransformer != nil {
		var err error
		params, err = r.submitTransformer(params)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(params)
}

// Render writes a plain-text summary of view.
func (r *Renderer) Render(ctx context.Context, view render.View, options render.RenderOptions) ([]byte, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	render.ApplySubset(&view, options.Subset)

	var buf bytes.Buffer
	if view.Title != "" {
		fmt.Fprintln(&buf, view.Title)
	}
	for _, message := range render.MergeFormErrors(options.FormErrors) {
		fmt.Fprintf(&buf, "%s%s\n", r.theme.ErrorPrefix, message)
	}
	for _, section := range view.Sections {
		if section.Name != "" {
			fmt.Fprintf(&buf, "%s%s\n", r.theme.SectionPrefix, section.Name)
		}
		for _, field := range section.Fields {
			r.writeField(&buf, field, options.Errors, 0)
		}
	}
	return buf.Bytes(), nil
}

func (r *Renderer) writeField(buf *bytes.Buffer, field render.FieldView, extra map[string][]string, depth int) {
	indent := strings.Repeat("  ", depth)
	label := field.Name
	if field.Key != "" {
		label = fmt.Sprintf("%s [%s]", field.Name, field.Key)
	}
	if field.Display != "" {
		fmt.Fprintf(buf, "%s%s: %s\n", indent, label, field.Display)
	} else {
		fmt.Fprintf(buf, "%s%s:\n", indent, label)
	}

	var messages []string
	if field.ShowError {
		messages = append(messages, field.Error)
	}
	for _, message := range render.MergeFormErrors(messages, extra[field.CleanName]...) {
		fmt.Fprintf(buf, "%s  %s%s\n", indent, r.theme.ErrorPrefix, message)
	}
	for _, child := range field.Children {
		r.writeField(buf, child, extra, depth+1)
	}
}

func (r *Renderer) serialize(values map[string]string) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		form := url.Values{}
		for key, value := range values {
			form.Set(key, value)
		}
		return []byte(form.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.MarshalIndent(values, "", "  ")
	}
}

func prettyPrint(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s: %s\n", key, values[key])
	}
	return b.String()
}
