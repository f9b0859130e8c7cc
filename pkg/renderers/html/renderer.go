package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-varform/pkg/render"
	rendertemplate "github.com/goliatone/go-varform/pkg/render/template"
	"github.com/goliatone/go-varform/pkg/render/template/pongo"
	"github.com/goliatone/go-varform/pkg/widgets"
)

// StylesheetAsset is the go-theme asset key resolved for the form stylesheet.
const StylesheetAsset = "html.stylesheet"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// Renderer turns a render.View into a plain HTML form.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, view render.View, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("html renderer: template renderer is nil")
	}

	render.ApplySubset(&view, options.Subset)

	method := strings.ToLower(strings.TrimSpace(options.Method))
	if method == "" {
		method = "post"
	}

	sections := make([]sectionData, 0, len(view.Sections))
	for _, section := range view.Sections {
		flat := &flattener{errors: options.Errors}
		for _, field := range section.Fields {
			flat.add(field, "vf")
		}
		sections = append(sections, sectionData{Name: section.Name, Items: flat.items})
	}

	hidden := make([]map[string]string, 0, len(options.Hidden))
	for _, field := range render.SortedHiddenFields(options.Hidden) {
		hidden = append(hidden, map[string]string{"name": field.Name, "value": field.Value})
	}

	result, err := r.templates.RenderTemplate("templates/form.tmpl", map[string]any{
		"title":      view.Title,
		"action":     strings.TrimSpace(options.Action),
		"method":     method,
		"hidden":     hidden,
		"formErrors": render.MergeFormErrors(options.FormErrors),
		"sections":   sections,
		"theme":      themeData(options.Theme),
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

type sectionData struct {
	Name  string `json:"name,omitempty"`
	Items []item `json:"items"`
}

// item is one step of the flattened node tree. Groups and collection rows
// open and close around their children so the template never recurses.
type item struct {
	Kind  string    `json:"kind"`
	Field fieldData `json:"field"`
}

const (
	itemOpen    = "open"
	itemClose   = "close"
	itemRow     = "row"
	itemEndRow  = "endrow"
	itemControl = "control"
)

type fieldData struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Control     string      `json:"control"`
	InputType   string      `json:"inputType,omitempty"`
	Value       string      `json:"value"`
	Placeholder string      `json:"placeholder,omitempty"`
	Class       string      `json:"class,omitempty"`
	Disabled    bool        `json:"disabled,omitempty"`
	Errors      []string    `json:"errors,omitempty"`
	ShowError   bool        `json:"showError,omitempty"`
	Options     []option    `json:"options,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
	Service     string      `json:"service,omitempty"`
	Preview     string      `json:"preview,omitempty"`
	Editable    bool        `json:"editable,omitempty"`
	Width       string      `json:"width,omitempty"`
	Height      string      `json:"height,omitempty"`
	Key         string      `json:"key,omitempty"`
	Keys        string      `json:"keys,omitempty"`
	Attributes  []attribute `json:"attributes,omitempty"`
}

type option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

type attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type flattener struct {
	errors map[string][]string
	items  []item
}

func (f *flattener) add(field render.FieldView, parent string) {
	data := f.field(field, parent)

	switch field.Kind {
	case widgets.KindStructure:
		f.items = append(f.items, item{Kind: itemOpen, Field: data})
		for _, child := range field.Children {
			f.add(child, data.ID)
		}
		f.items = append(f.items, item{Kind: itemClose, Field: data})
	case widgets.KindCollection:
		keys := make([]string, 0, len(field.Children))
		for _, child := range field.Children {
			keys = append(keys, child.Key)
		}
		data.Keys = strings.Join(keys, " ")
		f.items = append(f.items, item{Kind: itemOpen, Field: data})
		for _, child := range field.Children {
			row := fieldData{ID: data.ID + "-" + child.Key, Name: child.Name, Key: child.Key}
			f.items = append(f.items, item{Kind: itemRow, Field: row})
			f.add(child, row.ID)
			f.items = append(f.items, item{Kind: itemEndRow, Field: row})
		}
		f.items = append(f.items, item{Kind: itemClose, Field: data})
	default:
		f.items = append(f.items, item{Kind: itemControl, Field: data})
	}
}

func (f *flattener) field(field render.FieldView, parent string) fieldData {
	var messages []string
	if field.ShowError {
		messages = append(messages, field.Error)
	}
	messages = render.MergeFormErrors(messages, f.errors[field.CleanName]...)

	label := sanitizeLabel(field.Label)
	if label == "" {
		label = field.Name
	}

	data := fieldData{
		ID:          parent + "-" + field.CleanName,
		Name:        field.Name,
		Label:       label,
		Control:     string(field.Kind),
		Value:       field.Value,
		Placeholder: field.Placeholder,
		Class:       field.ClassName,
		Disabled:    field.Disabled,
		Errors:      messages,
		ShowError:   len(messages) > 0,
		Suggestions: field.Suggestions,
		Service:     field.Service,
		Preview:     field.Preview,
		Editable:    field.Editable,
		Width:       dimension(field.Width),
		Height:      dimension(field.Height),
		Attributes:  sortedAttributes(field.Attributes),
	}

	switch field.Kind {
	case widgets.KindText, widgets.KindLargeText:
		data.InputType = "text"
		if field.Multiline || field.Kind == widgets.KindLargeText {
			data.Control = string(widgets.KindLargeText)
		}
	case widgets.KindNumber:
		data.InputType = "text"
		data.Attributes = append(data.Attributes, attribute{Name: "inputmode", Value: "decimal"})
	case widgets.KindDate:
		data.InputType = "date"
		data.Value = field.Display
	case widgets.KindDateTime:
		data.InputType = "datetime-local"
		data.Value = strings.Replace(field.Display, " ", "T", 1)
	case widgets.KindIdentity, widgets.KindExternalSignature:
		data.InputType = "email"
	case widgets.KindAddress:
		data.InputType = "text"
		data.Attributes = append(data.Attributes, attribute{Name: "autocomplete", Value: "off"})
	case widgets.KindYesNo:
		for _, value := range field.Options {
			yes, _ := strconv.ParseBool(value)
			label := "No"
			if yes {
				label = "Yes"
			}
			data.Options = append(data.Options, option{Value: value, Label: label, Selected: field.Value == value})
		}
	case widgets.KindChoice:
		for _, value := range field.Options {
			data.Options = append(data.Options, option{Value: value, Label: value, Selected: field.Value == value})
		}
	}
	return data
}

// dimension keeps sizes as text so the template prints them unformatted.
func dimension(size int) string {
	if size <= 0 {
		return ""
	}
	return strconv.Itoa(size)
}

func sortedAttributes(in map[string]string) []attribute {
	if len(in) == 0 {
		return nil
	}
	names := make([]string, 0, len(in))
	for name := range in {
		if safeAttribute(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]attribute, 0, len(names))
	for _, name := range names {
		out = append(out, attribute{Name: name, Value: in[name]})
	}
	return out
}

func themeData(cfg *theme.RendererConfig) map[string]string {
	out := map[string]string{}
	if cfg == nil {
		return out
	}
	out["name"] = cfg.Theme
	out["variant"] = cfg.Variant
	if cfg.AssetURL != nil {
		out["stylesheet"] = cfg.AssetURL(StylesheetAsset)
	}
	if len(cfg.CSSVars) > 0 {
		names := make([]string, 0, len(cfg.CSSVars))
		for name := range cfg.CSSVars {
			names = append(names, name)
		}
		sort.Strings(names)
		declarations := make([]string, 0, len(names))
		for _, name := range names {
			declarations = append(declarations, name+": "+cfg.CSSVars[name])
		}
		out["style"] = strings.Join(declarations, "; ")
	}
	return out
}
