package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-varform/pkg/model"
)

// Executor runs the template for a parameter set and reports which variables
// executed.
type Executor interface {
	Execute(ctx context.Context, params map[string]string) (model.ExecutionResult, []string, error)
}

// ExecutorFunc adapts a function into an Executor.
type ExecutorFunc func(ctx context.Context, params map[string]string) (model.ExecutionResult, []string, error)

// Execute delegates to the underlying function.
func (fn ExecutorFunc) Execute(ctx context.Context, params map[string]string) (model.ExecutionResult, []string, error) {
	return fn(ctx, params)
}

// SessionConfig configures a Session.
type SessionConfig struct {
	OnValidate model.ValidateFunc
	InputProps model.InputConfig
	// OnChange observes every emission after the session stored it.
	OnChange model.ChangeFunc
}

// Session owns the parameter store of a form and re-executes the template
// after every change, so conditional variables appear and disappear as the
// user edits.
type Session struct {
	// ctx scopes every re-execution; change callbacks carry no context.
	ctx      context.Context
	orch     *Orchestrator
	executor Executor
	config   SessionConfig
	params   map[string]string
	errors   map[string]model.FieldError
	form     *Form
}

// NewSession executes the template once and builds the initial form.
func (o *Orchestrator) NewSession(ctx context.Context, executor Executor, params map[string]string, config SessionConfig) (*Session, error) {
	if executor == nil {
		return nil, errors.New("orchestrator: executor is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s := &Session{
		ctx:      ctx,
		orch:     o,
		executor: executor,
		config:   config,
		params:   make(map[string]string, len(params)),
		errors:   map[string]model.FieldError{},
	}
	for key, value := range params {
		s.params[key] = value
	}

	req, err := s.request()
	if err != nil {
		return nil, err
	}
	f, err := o.Build(ctx, req)
	if err != nil {
		return nil, err
	}
	s.form = f
	return s, nil
}

// Form returns the current form.
func (s *Session) Form() *Form { return s.form }

// Parameters returns a copy of the stored parameters.
func (s *Session) Parameters() map[string]string {
	out := make(map[string]string, len(s.params))
	for key, value := range s.params {
		out[key] = value
	}
	return out
}

// Errors returns the last reported error per top-level field that is still
// flagged.
func (s *Session) Errors() map[string]model.FieldError {
	out := make(map[string]model.FieldError, len(s.errors))
	for key, errData := range s.errors {
		out[key] = errData
	}
	return out
}

// Change stores an emission and re-renders. It is the ChangeFunc every
// top-level node emits to.
func (s *Session) Change(name string, value model.Value, errData *model.FieldError) {
	if value.Set {
		s.params[name] = value.Text
	} else {
		delete(s.params, name)
	}
	if errData != nil && errData.IsError {
		s.errors[name] = *errData
	} else {
		delete(s.errors, name)
	}

	if s.config.OnChange != nil {
		s.config.OnChange(name, value, errData)
	}
	if err := s.Refresh(); err != nil {
		s.orch.logger.Warn("orchestrator: refresh failed, keeping previous form", "field", name, "error", err)
	}
}

// Refresh re-executes the template against the stored parameters and updates
// the form. On failure the previous form stays in place.
func (s *Session) Refresh() error {
	req, err := s.request()
	if err != nil {
		return err
	}
	return s.form.Update(req)
}

// Close unmounts the form.
func (s *Session) Close() {
	if s.form != nil {
		s.form.Close()
	}
}

func (s *Session) request() (Request, error) {
	exec, executed, err := s.executor.Execute(s.ctx, s.Parameters())
	if err != nil {
		return Request{}, fmt.Errorf("orchestrator: execute: %w", err)
	}
	return Request{
		Exec:              exec,
		ExecutedVariables: executed,
		Parameters:        s.Parameters(),
		OnChange:          s.Change,
		OnValidate:        s.config.OnValidate,
		InputProps:        s.config.InputProps,
	}, nil
}
