package editors

import (
	"context"

	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/validation"
	"github.com/goliatone/go-varform/pkg/widgets"
)

// base holds the state shared by every editor. Editors embed it and override
// Change, Blur and display as needed.
type base struct {
	env   Env
	props Props
	kind  widgets.Kind

	name        string
	clean       string
	description string
	typ         model.VariableType

	buffer    string
	committed bool
	state     validation.State
	focused   bool
	unmounted bool

	// seq tags async requests; continuations carrying an older value are
	// dropped.
	seq uint64

	// display converts a saved value into the buffer text.
	display func(saved model.Value) string
}

func (b *base) init(kind widgets.Kind, env Env, props Props) {
	b.env = env
	b.kind = kind
	if b.display == nil {
		b.display = func(saved model.Value) string { return saved.Or("") }
	}
	b.describe(props)
	b.buffer = b.display(props.Saved)
	b.committed = !props.Saved.Empty()
}

func (b *base) describe(props Props) {
	b.props = props
	eng := b.env.Engine
	b.name = eng.Name(props.Variable)
	b.clean = eng.CleanName(props.Variable)
	b.description = eng.Description(props.Variable)
	b.typ = eng.Type(props.Variable)
}

func (b *base) Name() string             { return b.name }
func (b *base) CleanName() string        { return b.clean }
func (b *base) Description() string      { return b.description }
func (b *base) Type() model.VariableType { return b.typ }
func (b *base) Kind() widgets.Kind       { return b.kind }
func (b *base) Input() model.InputProps  { return b.props.Input }
func (b *base) Value() string            { return b.buffer }
func (b *base) ErrorMessage() string     { return b.state.ErrorMessage }
func (b *base) Valid() bool              { return !b.state.IsError }
func (b *base) Focused() bool            { return b.focused }
func (b *base) Focus()                   { b.focused = true }

func (b *base) ShowError() bool {
	return b.state.ShouldShowError && b.state.ErrorMessage != ""
}

// Unmount detaches the editor; pending continuations become no-ops.
func (b *base) Unmount() {
	b.unmounted = true
	b.focused = false
}

func (b *base) inactive() bool {
	return b.unmounted || b.props.Input.Disabled()
}

// Status derives the state machine position from the buffer and validation
// state.
func (b *base) Status() Status {
	switch {
	case b.state.Pending():
		return StatusError
	case b.buffer != b.display(b.props.Saved):
		return StatusEditing
	default:
		return StatusPristine
	}
}

// Sync applies new props. The buffer follows the saved value only while no
// validation error is pending, so invalid input is never clobbered.
func (b *base) Sync(props Props) {
	if b.unmounted {
		return
	}
	b.describe(props)
	if b.state.Pending() {
		return
	}
	b.buffer = b.display(props.Saved)
	b.committed = !props.Saved.Empty()
}

func (b *base) KeyUp(key string) {
	if b.unmounted {
		return
	}
	if hook := b.props.Input.Hook(model.PropOnKeyUp); hook != nil {
		hook(b.name, key)
	}
}

func (b *base) validationProps() validation.Props {
	return validation.Props{
		CleanName: b.clean,
		Name:      b.name,
		Type:      b.typ,
		Validity: func(_ string, value string) model.Validity {
			return b.env.Engine.CheckValidity(b.props.Variable, value, b.props.Exec)
		},
		OnValidate: b.props.OnValidate,
	}
}

func (b *base) onChange(candidate validation.Candidate) validation.Result {
	res := validation.OnChange(candidate, b.validationProps(), b.state)
	b.state = res.State()
	return res
}

func (b *base) onBlur(candidate validation.Candidate) validation.Result {
	res := validation.OnBlur(candidate, b.validationProps(), b.state)
	b.state = res.State()
	return res
}

func (b *base) onFailure(event model.EventType, candidate validation.Candidate, err error) validation.Result {
	b.env.Logger.Warn("editors: external call failed", "field", b.name, "type", b.typ, "error", err)
	res := validation.OnFailure(event, candidate, b.validationProps(), "")
	b.state = res.State()
	return res
}

func (b *base) hook(key, value string) {
	if hook := b.props.Input.Hook(key); hook != nil {
		hook(b.name, value)
	}
}

// emit records the committed state and then notifies the parent. Parents may
// re-render synchronously, so every local mutation must precede it.
func (b *base) emit(value model.Value, errData *model.FieldError) {
	b.committed = !value.Empty()
	if b.props.OnChange == nil {
		return
	}
	b.props.OnChange(b.name, value, errData)
}

// commit applies the shared emission rule for a validated candidate: a valid
// non-empty value is emitted, empty input clears the committed value, and
// invalid input clears it only when something was committed before.
func (b *base) commit(serialized string, res validation.Result) {
	errData := res.ErrorData
	switch {
	case serialized == "":
		b.emit(model.Unset, &errData)
	case !errData.IsError:
		b.emit(model.ValueOf(serialized), &errData)
	case b.committed:
		b.emit(model.Unset, &errData)
	}
}

// next starts a new async request and returns its tag.
func (b *base) next() uint64 {
	b.seq++
	return b.seq
}

// current reports whether a continuation tagged with seq may still apply.
func (b *base) current(seq uint64) bool {
	if b.unmounted {
		return false
	}
	if seq != b.seq {
		b.env.Logger.Debug("editors: dropping stale response", "field", b.name, "seq", seq, "latest", b.seq)
		return false
	}
	return true
}

func (b *base) schedule(ctx context.Context, call func(ctx context.Context) func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	b.env.Scheduler.Go(ctx, call)
}
