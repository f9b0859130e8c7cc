package form

import (
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/goliatone/go-varform/pkg/editors"
	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/widgets"
)

// FocusFunc is notified when a node receives programmatic focus.
type FocusFunc func(node Node)

// Option configures a Builder.
type Option func(*Builder)

// WithRegistry sets the kind registry. Defaults to an empty registry, which
// resolves exactly like widgets.Dispatch.
func WithRegistry(registry *widgets.Registry) Option {
	return func(b *Builder) {
		if registry != nil {
			b.registry = registry
		}
	}
}

// WithKeyGenerator replaces the collection identity key generator.
func WithKeyGenerator(next func() string) Option {
	return func(b *Builder) {
		if next != nil {
			b.newKey = next
		}
	}
}

// WithFocusHook registers a callback fired when a new collection row is
// focused.
func WithFocusHook(fn FocusFunc) Option {
	return func(b *Builder) {
		b.focus = fn
	}
}

// WithInputConfig sets the per-type input props applied to every node whose
// props carry none.
func WithInputConfig(cfg model.InputConfig) Option {
	return func(b *Builder) {
		b.inputs = cfg
	}
}

// WithLogger sets the logger for mutator failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder turns variables into nodes.
type Builder struct {
	env      editors.Env
	registry *widgets.Registry
	newKey   func() string
	focus    FocusFunc
	inputs   model.InputConfig
	logger   *slog.Logger
}

// NewBuilder constructs a Builder over env.
func NewBuilder(env editors.Env, options ...Option) *Builder {
	b := &Builder{
		env:      env,
		registry: widgets.NewRegistry(),
		newKey:   uuid.NewString,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	if b.env.Logger == nil {
		b.env.Logger = b.logger
	}
	return b
}

// SetInputConfig replaces the per-type input props used for nested nodes and
// for props that carry none.
func (b *Builder) SetInputConfig(cfg model.InputConfig) {
	b.inputs = cfg
}

// Build creates the node for props.Variable.
func (b *Builder) Build(props Props) (Node, error) {
	if b.env.Engine == nil {
		return nil, errors.New("form: engine is required")
	}
	if props.Input == nil {
		props.Input = b.inputs.For(b.env.Engine.Type(props.Variable))
	}
	kind := b.registry.Resolve(widgets.Subject{
		Engine:   b.env.Engine,
		Variable: props.Variable,
		Exec:     props.Exec,
		Props:    props.Input,
	})

	switch kind {
	case widgets.KindStructure:
		return newStructure(b, props)
	case widgets.KindCollection:
		return newCollection(b, props)
	default:
		ed, err := editors.New(kind, b.env, props)
		if err != nil {
			return nil, err
		}
		return &Leaf{Editor: ed}, nil
	}
}

// childProps inherits the validation hook and execution of parent for a
// nested variable.
func (b *Builder) childProps(parent Props, v model.Variable, saved model.Value, onChange model.ChangeFunc) Props {
	return Props{
		Variable:   v,
		Exec:       parent.Exec,
		Saved:      saved,
		OnChange:   onChange,
		OnValidate: parent.OnValidate,
		Input:      b.inputs.For(b.env.Engine.Type(v)),
	}
}
