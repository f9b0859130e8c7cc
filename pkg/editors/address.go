package editors

import (
	"context"
	"errors"

	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/validation"
	"github.com/goliatone/go-varform/pkg/widgets"
)

var errNoAddressAPI = errors.New("editors: no address API configured")

// Address is an autosuggest editor. Typing searches, selecting a suggestion
// resolves its details and commits the engine's structured address value.
type Address struct {
	base
	suggestions []model.AddressSuggestion
	value       string
	failed      bool
}

func newAddress(env Env, props Props) *Address {
	a := &Address{}
	a.display = a.formatted
	a.init(widgets.KindAddress, env, props)
	a.value = props.Saved.Or("")
	return a
}

func (a *Address) formatted(saved model.Value) string {
	if saved.Empty() {
		return ""
	}
	address, err := a.env.Engine.Address(saved.Text)
	if err != nil {
		a.env.Logger.Debug("editors: malformed address value", "field", a.name, "error", err)
		return ""
	}
	return a.env.Engine.FormattedAddress(address)
}

// Suggestions returns the results of the latest search.
func (a *Address) Suggestions() []model.AddressSuggestion {
	return append([]model.AddressSuggestion(nil), a.suggestions...)
}

// Sync also tracks the committed value.
func (a *Address) Sync(props Props) {
	a.base.Sync(props)
	if !a.state.Pending() {
		a.value = props.Saved.Or("")
	}
}

// Change searches for raw. Clearing the input clears the committed address.
func (a *Address) Change(ctx context.Context, raw string) {
	if a.inactive() {
		return
	}
	a.hook(model.PropOnChange, raw)
	seq := a.next()
	a.buffer = raw
	a.suggestions = nil
	a.failed = false

	if raw == "" {
		res := a.onChange(validation.Candidate{})
		a.value = ""
		errData := res.ErrorData
		a.emit(model.Unset, &errData)
		return
	}
	if a.env.Address == nil {
		a.fail(validation.Candidate{Text: raw}, errNoAddressAPI)
		return
	}

	a.schedule(ctx, func(ctx context.Context) func() {
		found, err := a.env.Address.SearchAddress(ctx, raw)
		return func() {
			if !a.current(seq) {
				return
			}
			if err != nil {
				a.fail(validation.Candidate{Text: raw}, err)
				return
			}
			a.failed = false
			a.state = validation.State{}
			a.suggestions = found
		}
	})
}

// Select resolves the suggestion at index and commits it.
func (a *Address) Select(ctx context.Context, index int) {
	if a.inactive() || index < 0 || index >= len(a.suggestions) {
		return
	}
	picked := a.suggestions[index]
	seq := a.next()
	if a.env.Address == nil {
		a.fail(validation.Candidate{Text: picked.Description}, errNoAddressAPI)
		return
	}

	a.schedule(ctx, func(ctx context.Context) func() {
		details, err := a.env.Address.AddressDetails(ctx, picked.PlaceID)
		return func() {
			if !a.current(seq) {
				return
			}
			a.resolved(picked, details, err)
		}
	})
}

func (a *Address) resolved(picked model.AddressSuggestion, details model.Address, err error) {
	if err != nil {
		a.fail(validation.Candidate{Text: picked.Description}, err)
		return
	}
	encoded, err := a.env.Engine.CreateAddress(details)
	if err != nil {
		a.fail(validation.Candidate{Text: picked.Description}, err)
		return
	}
	res := a.onChange(validation.Candidate{Text: encoded})
	a.failed = false
	a.suggestions = nil
	a.buffer = a.env.Engine.FormattedAddress(details)
	if !res.ErrorData.IsError {
		a.value = encoded
	}
	a.commit(encoded, res)
}

// Blur validates the committed address.
func (a *Address) Blur() {
	if a.unmounted {
		return
	}
	a.focused = false
	if a.failed {
		return
	}
	a.onBlur(validation.Candidate{Text: a.value})
	a.hook(model.PropOnBlur, a.buffer)
}

func (a *Address) fail(candidate validation.Candidate, err error) {
	a.failed = true
	a.onFailure(model.EventChange, candidate, err)
}
