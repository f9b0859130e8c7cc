// Package memengine is an in-memory execution collaborator. It reads template
// definitions from YAML or JSON, executes them against a parameter map and
// answers every engine.Engine query, which makes it the reference backend for
// the CLI, the examples and the tests.
package memengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-varform/pkg/engine"
	"github.com/goliatone/go-varform/pkg/model"
)

// ErrUnknownVariable is returned when a handle does not belong to the engine.
var ErrUnknownVariable = errors.New("memengine: unknown variable")

const maxStructureDepth = 8

// Variable is the handle memengine hands out as model.Variable.
type Variable struct {
	name        string
	clean       string
	typ         model.VariableType
	description string
	choices     []string
	fields      []*Variable
	element     *Variable
	when        condition
	hidden      bool
	serviceName string
}

// Name returns the raw variable name.
func (v *Variable) Name() string { return v.name }

// Execution is the model.ExecutionResult produced by Execute.
type Execution struct {
	params   map[string]string
	byClean  map[string]string
	executed []string
}

// Param returns the serialized parameter for a variable name.
func (e *Execution) Param(name string) string {
	if e == nil {
		return ""
	}
	return e.params[name]
}

// Parameters returns a copy of the execution's parameters.
func (e *Execution) Parameters() map[string]string {
	out := make(map[string]string, len(e.params))
	for k, v := range e.params {
		out[k] = v
	}
	return out
}

// Executed returns the executed variable names in definition order.
func (e *Execution) Executed() []string {
	return append([]string(nil), e.executed...)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for condition failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine implements engine.Engine, engine.Sectioner and the orchestrator
// executor over a parsed Definition.
type Engine struct {
	def       Definition
	variables []*Variable
	byName    map[string]*Variable
	logger    *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)
var _ engine.Sectioner = (*Engine)(nil)

// New resolves a definition into an engine.
func New(def Definition, options ...Option) (*Engine, error) {
	e := &Engine{
		def:    def,
		byName: make(map[string]*Variable, len(def.Variables)),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}

	for _, raw := range def.Variables {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			return nil, errors.New("memengine: variable with empty name")
		}
		if _, exists := e.byName[name]; exists {
			return nil, fmt.Errorf("memengine: duplicate variable %q", name)
		}
		v, err := e.resolve(name, raw.Type, raw.Structure, raw.Choices, 0)
		if err != nil {
			return nil, err
		}
		v.description = raw.Description
		v.hidden = raw.Hidden
		v.serviceName = raw.ServiceName
		if v.typ == model.TypeCollection {
			elementType := raw.ElementType
			if elementType == "" {
				elementType = string(model.TypeText)
			}
			element, err := e.resolve(name, elementType, "", nil, 0)
			if err != nil {
				return nil, fmt.Errorf("memengine: collection %q: %w", name, err)
			}
			if element.typ == model.TypeCollection {
				return nil, fmt.Errorf("memengine: collection %q: nested collections are not supported", name)
			}
			element.serviceName = raw.ServiceName
			v.element = element
		}
		if v.when, err = compileCondition(raw.When); err != nil {
			return nil, fmt.Errorf("memengine: variable %q: %w", name, err)
		}
		e.variables = append(e.variables, v)
		e.byName[name] = v
	}
	return e, nil
}

// resolve builds a variable of the named type. typeName may be a built-in
// type tag or the name of a structure definition.
func (e *Engine) resolve(name, typeName, structure string, choices []string, depth int) (*Variable, error) {
	if depth > maxStructureDepth {
		return nil, fmt.Errorf("memengine: structure nesting too deep at %q", name)
	}
	v := &Variable{
		name:    name,
		clean:   model.CleanName(name),
		choices: append([]string(nil), choices...),
	}

	if structure == "" {
		if typ, ok := model.ParseVariableType(typeName); ok {
			v.typ = typ
			if typ == model.TypeChoice && len(v.choices) == 0 {
				return nil, fmt.Errorf("memengine: choice variable %q has no choices", name)
			}
			if typ != model.TypeStructure {
				return v, nil
			}
			return nil, fmt.Errorf("memengine: structure variable %q names no structure", name)
		}
		if typeName == "" {
			v.typ = model.TypeText
			return v, nil
		}
		structure = typeName
	}

	defs, ok := e.def.Structures[structure]
	if !ok {
		return nil, fmt.Errorf("memengine: variable %q: unknown type %q", name, structure)
	}
	v.typ = model.TypeStructure
	for _, field := range defs {
		child, err := e.resolve(strings.TrimSpace(field.Name), field.Type, field.Structure, field.Choices, depth+1)
		if err != nil {
			return nil, err
		}
		if child.typ == model.TypeCollection {
			return nil, fmt.Errorf("memengine: structure %q: collection fields are not supported", structure)
		}
		child.description = field.Description
		v.fields = append(v.fields, child)
	}
	return v, nil
}

// Execute runs the template against params (keyed by variable name) and
// reports the executed variable names.
func (e *Engine) Execute(ctx context.Context, params map[string]string) (model.ExecutionResult, []string, error) {
	exec, err := e.Run(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return exec, exec.Executed(), nil
}

// Run is Execute returning the concrete execution.
func (e *Engine) Run(ctx context.Context, params map[string]string) (*Execution, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	exec := &Execution{
		params:  make(map[string]string, len(params)),
		byClean: make(map[string]string, len(params)),
	}
	for name, value := range params {
		exec.params[name] = value
		exec.byClean[model.CleanName(name)] = value
	}
	for _, v := range e.variables {
		if v.when != nil {
			ok, err := v.when.eval(exec.byClean)
			if err != nil {
				e.logger.Warn("memengine: condition failed", "variable", v.name, "error", err)
				ok = false
			}
			if !ok {
				continue
			}
		}
		exec.executed = append(exec.executed, v.name)
	}
	return exec, nil
}

// Lookup returns the variable handle for name.
func (e *Engine) Lookup(name string) (model.Variable, bool) {
	v, ok := e.byName[name]
	return v, ok
}

func variable(v model.Variable) *Variable {
	typed, ok := v.(*Variable)
	if !ok || typed == nil {
		panic(fmt.Errorf("%w: %T", ErrUnknownVariable, v))
	}
	return typed
}

// Name implements engine.Describer.
func (e *Engine) Name(v model.Variable) string { return variable(v).name }

// CleanName implements engine.Describer.
func (e *Engine) CleanName(v model.Variable) string { return variable(v).clean }

// Description implements engine.Describer, defaulting to the name.
func (e *Engine) Description(v model.Variable) string {
	typed := variable(v)
	if typed.description != "" {
		return typed.description
	}
	return typed.name
}

// Type implements engine.Describer.
func (e *Engine) Type(v model.Variable) model.VariableType { return variable(v).typ }

// IsChoiceType implements engine.Choices.
func (e *Engine) IsChoiceType(v model.Variable, _ model.ExecutionResult) bool {
	return len(variable(v).choices) > 0
}

// ChoiceValues implements engine.Choices.
func (e *Engine) ChoiceValues(v model.Variable, _ model.ExecutionResult) []string {
	return append([]string(nil), variable(v).choices...)
}

// Variables implements engine.Catalog and returns every top-level variable.
func (e *Engine) Variables(_ model.ExecutionResult) []model.Variable {
	out := make([]model.Variable, len(e.variables))
	for i, v := range e.variables {
		out[i] = v
	}
	return out
}

// ShowInForm implements engine.Catalog.
func (e *Engine) ShowInForm(v model.Variable, _ model.ExecutionResult) bool {
	return !variable(v).hidden
}

// Sections implements engine.Sectioner.
func (e *Engine) Sections(_ model.ExecutionResult) []engine.Section {
	out := make([]engine.Section, 0, len(e.def.Sections))
	for _, section := range e.def.Sections {
		out = append(out, engine.Section{
			Name:      section.Name,
			Variables: append([]string(nil), section.Variables...),
		})
	}
	return out
}
