package editors

import (
	"context"

	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/validation"
	"github.com/goliatone/go-varform/pkg/widgets"
)

// Text edits free-form text. It backs the Text, LargeText and Number kinds;
// numbers are never parsed here, the engine's validity check decides.
type Text struct {
	base
}

func newText(kind widgets.Kind, env Env, props Props) *Text {
	t := &Text{}
	t.init(kind, env, props)
	return t
}

// Multiline reports whether the editor should render as a text area.
func (t *Text) Multiline() bool {
	return t.kind == widgets.KindLargeText
}

// Change updates the buffer and emits the value when it passes validity.
func (t *Text) Change(_ context.Context, raw string) {
	if t.inactive() {
		return
	}
	t.hook(model.PropOnChange, raw)
	res := t.onChange(validation.Candidate{Text: raw})
	t.buffer = raw
	t.commit(raw, res)
}

// Blur re-validates the buffer with blur visibility rules.
func (t *Text) Blur() {
	if t.unmounted {
		return
	}
	t.focused = false
	t.onBlur(validation.Candidate{Text: t.buffer})
	t.hook(model.PropOnBlur, t.buffer)
}
