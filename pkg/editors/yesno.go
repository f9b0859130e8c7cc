package editors

import (
	"context"
	"strconv"

	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/validation"
	"github.com/goliatone/go-varform/pkg/widgets"
)

// YesNo is a two-valued radio. Every selection is emitted.
type YesNo struct {
	base
}

func newYesNo(env Env, props Props) *YesNo {
	y := &YesNo{}
	y.init(widgets.KindYesNo, env, props)
	return y
}

// Selection reports the current choice; ok is false when neither option is
// checked.
func (y *YesNo) Selection() (yes bool, ok bool) {
	parsed, err := strconv.ParseBool(y.buffer)
	if err != nil {
		return false, false
	}
	return parsed, true
}

// Select commits a direct user choice.
func (y *YesNo) Select(ctx context.Context, yes bool) {
	y.Change(ctx, strconv.FormatBool(yes))
}

// Force commits a programmatic choice. It skips validation and emits a nil
// FieldError so parents can tell it apart from a user selection.
func (y *YesNo) Force(yes bool) {
	if y.unmounted {
		return
	}
	raw := strconv.FormatBool(yes)
	y.buffer = raw
	y.state = validation.State{}
	y.emit(model.ValueOf(raw), nil)
}

// Change emits raw ("true", "false" or "" to clear) with its validation
// outcome. Overrides returned by OnValidate surface immediately.
func (y *YesNo) Change(_ context.Context, raw string) {
	if y.inactive() {
		return
	}
	y.hook(model.PropOnChange, raw)
	res := y.onChange(validation.Candidate{Text: raw})
	y.buffer = raw
	errData := res.ErrorData
	if raw == "" {
		y.emit(model.Unset, &errData)
		return
	}
	y.emit(model.ValueOf(raw), &errData)
}

// Blur re-validates the selection.
func (y *YesNo) Blur() {
	if y.unmounted {
		return
	}
	y.focused = false
	y.onBlur(validation.Candidate{Text: y.buffer})
	y.hook(model.PropOnBlur, y.buffer)
}
