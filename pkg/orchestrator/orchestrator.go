package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-varform/pkg/editors"
	"github.com/goliatone/go-varform/pkg/engine"
	"github.com/goliatone/go-varform/pkg/eventloop"
	"github.com/goliatone/go-varform/pkg/form"
	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/widgets"
)

var (
	errEngineRequired = errors.New("orchestrator: engine is required")
	errFormClosed     = errors.New("orchestrator: form is closed")
)

// Option mutates the orchestrator configuration.
type Option func(*Orchestrator)

// WithEngine sets the execution collaborator. When it also implements
// engine.Sectioner it supplies the section grouping unless WithSectioner
// overrides it.
func WithEngine(eng engine.Engine) Option {
	return func(o *Orchestrator) {
		o.engine = eng
	}
}

// WithSectioner overrides the section grouping.
func WithSectioner(sectioner engine.Sectioner) Option {
	return func(o *Orchestrator) {
		o.sectioner = sectioner
	}
}

// WithRegistry sets the kind registry consulted for leaf variables.
func WithRegistry(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithScheduler sets the scheduler async editors run their lookups on.
func WithScheduler(scheduler eventloop.Scheduler) Option {
	return func(o *Orchestrator) {
		o.scheduler = scheduler
	}
}

// WithAddressAPI wires the address search capability.
func WithAddressAPI(api engine.AddressAPI) Option {
	return func(o *Orchestrator) {
		o.address = api
	}
}

// WithIdentityAPI wires the identity lookup capability.
func WithIdentityAPI(api engine.IdentityAPI) Option {
	return func(o *Orchestrator) {
		o.identity = api
	}
}

// WithImageResizer wires the image resize capability.
func WithImageResizer(resizer engine.ImageResizer) Option {
	return func(o *Orchestrator) {
		o.images = resizer
	}
}

// WithLogger sets the logger handed to every node.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithFocusHook registers the callback fired when a new collection row takes
// focus.
func WithFocusHook(fn form.FocusFunc) Option {
	return func(o *Orchestrator) {
		o.focus = fn
	}
}

// WithKeyGenerator replaces the collection identity key generator.
func WithKeyGenerator(next func() string) Option {
	return func(o *Orchestrator) {
		o.newKey = next
	}
}

// WithInputProps sets the default per-type input props. Request props are
// merged over them key by key.
func WithInputProps(cfg model.InputConfig) Option {
	return func(o *Orchestrator) {
		o.inputs = cfg
	}
}

// Orchestrator builds forms from executions.
type Orchestrator struct {
	engine    engine.Engine
	sectioner engine.Sectioner
	registry  *widgets.Registry
	scheduler eventloop.Scheduler
	address   engine.AddressAPI
	identity  engine.IdentityAPI
	images    engine.ImageResizer
	logger    *slog.Logger
	focus     form.FocusFunc
	newKey    func() string
	inputs    model.InputConfig
}

// New constructs an Orchestrator using the supplied options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request carries one render pass worth of inputs.
type Request struct {
	Exec              model.ExecutionResult
	ExecutedVariables []string
	// Parameters holds the saved serialized values keyed by variable name.
	Parameters map[string]string
	OnChange   model.ChangeFunc
	OnValidate model.ValidateFunc
	InputProps model.InputConfig
}

// Section is a named group of top-level nodes. The trailing section of
// variables no engine section claims has an empty name.
type Section struct {
	Name   string
	Fields []form.Node
}

// Build renders req into a new form.
func (o *Orchestrator) Build(ctx context.Context, req Request) (*Form, error) {
	if o.engine == nil {
		return nil, errEngineRequired
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	options := []form.Option{
		form.WithLogger(o.logger),
		form.WithFocusHook(o.focus),
	}
	if o.registry != nil {
		options = append(options, form.WithRegistry(o.registry))
	}
	if o.newKey != nil {
		options = append(options, form.WithKeyGenerator(o.newKey))
	}
	f := &Form{
		orch: o,
		builder: form.NewBuilder(editors.Env{
			Engine:    o.engine,
			Scheduler: o.scheduler,
			Address:   o.address,
			Identity:  o.identity,
			Images:    o.images,
			Logger:    o.logger,
		}, options...),
		byName: map[string]form.Node{},
	}
	if err := f.render(req); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// mergeInputs layers the request config over the defaults per type key.
func (o *Orchestrator) mergeInputs(overrides model.InputConfig) model.InputConfig {
	out := make(model.InputConfig, len(o.inputs)+len(overrides))
	for key, props := range o.inputs {
		out[key] = props.Clone()
	}
	for key, props := range overrides {
		merged := out[key]
		if merged == nil {
			merged = model.InputProps{}
		}
		for prop, value := range props {
			merged[prop] = value
		}
		out[key] = merged
	}
	return out
}

// visible returns the catalog variables that executed and are shown in the
// form, ordered as executed.
func (o *Orchestrator) visible(req Request) []model.Variable {
	byName := make(map[string]model.Variable)
	for _, v := range o.engine.Variables(req.Exec) {
		if !o.engine.ShowInForm(v, req.Exec) {
			continue
		}
		byName[o.engine.Name(v)] = v
	}

	out := make([]model.Variable, 0, len(req.ExecutedVariables))
	seen := make(map[string]struct{}, len(req.ExecutedVariables))
	for _, name := range req.ExecutedVariables {
		if _, dup := seen[name]; dup {
			continue
		}
		v, ok := byName[name]
		if !ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (o *Orchestrator) applyDefaults() {
	if o.sectioner == nil {
		if sectioner, ok := o.engine.(engine.Sectioner); ok {
			o.sectioner = sectioner
		}
	}
	if o.scheduler == nil {
		o.scheduler = eventloop.Inline{}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Form is one rendered form. It is driven from a single goroutine, like the
// nodes it owns.
type Form struct {
	orch     *Orchestrator
	builder  *form.Builder
	fields   []form.Node
	byName   map[string]form.Node
	sections []Section
	params   map[string]string
	closed   bool
}

// Fields returns the top-level nodes in render order.
func (f *Form) Fields() []form.Node {
	return append([]form.Node(nil), f.fields...)
}

// Field returns the top-level node for a variable name.
func (f *Form) Field(name string) (form.Node, bool) {
	node, ok := f.byName[name]
	return node, ok
}

// Sections returns the section grouping of the last render.
func (f *Form) Sections() []Section {
	out := make([]Section, len(f.sections))
	for i, section := range f.sections {
		out[i] = Section{Name: section.Name, Fields: append([]form.Node(nil), section.Fields...)}
	}
	return out
}

// Parameters returns a copy of the parameters of the last render.
func (f *Form) Parameters() map[string]string {
	out := make(map[string]string, len(f.params))
	for key, value := range f.params {
		out[key] = value
	}
	return out
}

// Update re-renders the form for a new request. Nodes are kept by variable
// name so local edit buffers and collection keys survive; nodes whose variable
// is gone are unmounted.
func (f *Form) Update(req Request) error {
	if f.closed {
		return errFormClosed
	}
	return f.render(req)
}

// Close unmounts every node. Pending async continuations are dropped.
func (f *Form) Close() {
	if f.closed {
		return
	}
	f.closed = true
	for _, node := range f.fields {
		node.Unmount()
	}
	f.fields = nil
	f.byName = map[string]form.Node{}
	f.sections = nil
}

func (f *Form) render(req Request) error {
	o := f.orch
	inputs := o.mergeInputs(req.InputProps)
	f.builder.SetInputConfig(inputs)

	params := make(map[string]string, len(req.Parameters))
	for key, value := range req.Parameters {
		params[key] = value
	}

	variables := o.visible(req)
	fields := make([]form.Node, 0, len(variables))
	byName := make(map[string]form.Node, len(variables))
	for _, v := range variables {
		name := o.engine.Name(v)
		props := form.Props{
			Variable:   v,
			Exec:       req.Exec,
			Saved:      model.Saved(params[name]),
			OnChange:   req.OnChange,
			OnValidate: req.OnValidate,
			Input:      inputs.For(o.engine.Type(v)),
		}

		node, ok := f.byName[name]
		if ok && node.Type() == o.engine.Type(v) {
			node.Sync(props)
		} else {
			if ok {
				node.Unmount()
			}
			built, err := f.builder.Build(props)
			if err != nil {
				return fmt.Errorf("orchestrator: build %q: %w", name, err)
			}
			node = built
		}
		fields = append(fields, node)
		byName[name] = node
	}
	for name, node := range f.byName {
		if current, ok := byName[name]; !ok || current != node {
			node.Unmount()
		}
	}

	f.fields = fields
	f.byName = byName
	f.params = params
	f.sections = f.group(req.Exec)

	for _, node := range f.fields {
		node.AfterRender()
	}
	return nil
}

// group places each field in the first engine section naming it; the rest go
// into a trailing unnamed section. Empty sections are dropped.
func (f *Form) group(exec model.ExecutionResult) []Section {
	var defs []engine.Section
	if f.orch.sectioner != nil {
		defs = f.orch.sectioner.Sections(exec)
	}

	placed := make(map[string]struct{}, len(f.fields))
	sections := make([]Section, 0, len(defs)+1)
	for _, def := range defs {
		section := Section{Name: def.Name}
		for _, name := range def.Variables {
			node, ok := f.byName[name]
			if !ok {
				continue
			}
			if _, dup := placed[name]; dup {
				continue
			}
			placed[name] = struct{}{}
			section.Fields = append(section.Fields, node)
		}
		if len(section.Fields) > 0 {
			sections = append(sections, section)
		}
	}

	var rest Section
	for _, node := range f.fields {
		if _, ok := placed[node.Name()]; ok {
			continue
		}
		rest.Fields = append(rest.Fields, node)
	}
	if len(rest.Fields) > 0 {
		sections = append(sections, rest)
	}
	return sections
}
