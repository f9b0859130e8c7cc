// Package editors implements the leaf editors: one small state machine per
// scalar variable type. Editors own an edit buffer and their validation state;
// committed values only ever leave through the ChangeFunc in Props.
package editors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-varform/pkg/engine"
	"github.com/goliatone/go-varform/pkg/eventloop"
	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/widgets"
)

// ErrUnsupportedKind is returned by New for kinds that are not leaf editors.
var ErrUnsupportedKind = errors.New("editors: unsupported kind")

// Status is the editor's position in its state machine.
type Status int

const (
	// StatusPristine means the buffer mirrors the saved value.
	StatusPristine Status = iota
	// StatusEditing means the buffer diverges from the saved value.
	StatusEditing
	// StatusError means the last validation flagged the value.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPristine:
		return "pristine"
	case StatusEditing:
		return "editing"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Props are the per-render inputs of an editor.
type Props struct {
	Variable   model.Variable
	Exec       model.ExecutionResult
	Saved      model.Value
	OnChange   model.ChangeFunc
	OnValidate model.ValidateFunc
	Input      model.InputProps
}

// Env carries the collaborators shared by every editor of a form.
type Env struct {
	Engine    engine.Engine
	Scheduler eventloop.Scheduler
	Address   engine.AddressAPI
	Identity  engine.IdentityAPI
	Images    engine.ImageResizer
	Logger    *slog.Logger
}

func (e Env) normalize() Env {
	if e.Scheduler == nil {
		e.Scheduler = eventloop.Inline{}
	}
	if e.Logger == nil {
		e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

// Editor is the behaviour shared by every leaf editor.
type Editor interface {
	Name() string
	CleanName() string
	Description() string
	Type() model.VariableType
	Kind() widgets.Kind
	Input() model.InputProps

	// Value is the edit buffer as shown to the user.
	Value() string
	Status() Status
	ErrorMessage() string
	ShowError() bool
	Valid() bool

	Change(ctx context.Context, raw string)
	Blur()
	KeyUp(key string)
	Sync(props Props)
	Focus()
	Focused() bool
	Unmount()
}

// New builds the leaf editor for kind.
func New(kind widgets.Kind, env Env, props Props) (Editor, error) {
	if env.Engine == nil {
		return nil, errors.New("editors: engine is required")
	}
	env = env.normalize()
	switch kind {
	case widgets.KindText, widgets.KindLargeText, widgets.KindNumber:
		return newText(kind, env, props), nil
	case widgets.KindDate, widgets.KindDateTime:
		return newDate(kind, env, props), nil
	case widgets.KindYesNo:
		return newYesNo(env, props), nil
	case widgets.KindChoice:
		return newChoice(env, props), nil
	case widgets.KindIdentity:
		return newIdentity(env, props), nil
	case widgets.KindExternalSignature:
		return newSignature(env, props), nil
	case widgets.KindAddress:
		return newAddress(env, props), nil
	case widgets.KindImage:
		return newImage(env, props), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
}
