package editors

import (
	"context"
	"errors"

	"github.com/goliatone/go-varform/pkg/engine"
	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/validation"
	"github.com/goliatone/go-varform/pkg/widgets"
)

// Identity edits an email and commits the engine's structured identity value.
// Typing commits a provisional value at once; when the identity API finds a
// canonical user the canonical value supersedes it.
type Identity struct {
	base
	compose func(id, email string) (string, error)
}

func newIdentity(env Env, props Props) *Identity {
	i := &Identity{}
	i.compose = func(id, email string) (string, error) {
		return i.env.Engine.CreateIdentityInternalValue(id, email)
	}
	i.display = i.email
	i.init(widgets.KindIdentity, env, props)
	return i
}

// email reads the address out of a saved value; malformed values read as
// empty.
func (i *Identity) email(saved model.Value) string {
	if saved.Empty() {
		return ""
	}
	email, err := i.env.Engine.IdentityEmail(saved.Text)
	if err != nil {
		i.env.Logger.Debug("editors: malformed identity value", "field", i.name, "error", err)
		return ""
	}
	return email
}

// candidate composes the provisional value for an email. ok is false when the
// value cannot be constructed.
func (i *Identity) candidate(email string) (string, bool) {
	if email == "" {
		return "", true
	}
	value, err := i.compose("", email)
	if err != nil {
		i.env.Logger.Debug("editors: cannot compose value", "field", i.name, "error", err)
		return "", false
	}
	return value, true
}

// Change commits the provisional value and starts a canonical lookup. A
// newer Change supersedes any lookup still in flight.
func (i *Identity) Change(ctx context.Context, raw string) {
	if i.inactive() {
		return
	}
	i.hook(model.PropOnChange, raw)
	seq := i.next()
	i.buffer = raw

	provisional, ok := i.candidate(raw)
	if !ok {
		res := i.onChange(validation.Candidate{Text: raw})
		errData := res.ErrorData
		i.emit(model.Unset, &errData)
		return
	}
	res := i.onChange(validation.Candidate{Text: provisional})
	i.commit(provisional, res)
	if provisional == "" || res.ErrorData.IsError || i.env.Identity == nil {
		return
	}

	i.schedule(ctx, func(ctx context.Context) func() {
		user, err := i.env.Identity.UserDetails(ctx, raw)
		return func() {
			if !i.current(seq) {
				return
			}
			i.resolved(provisional, user, err)
		}
	})
}

func (i *Identity) resolved(provisional string, user model.UserDetails, err error) {
	switch {
	case errors.Is(err, engine.ErrNoMatch):
		return
	case err != nil:
		i.onFailure(model.EventChange, validation.Candidate{Text: provisional}, err)
		return
	case user.ID == "":
		return
	}

	canonical, err := i.compose(user.ID, user.Email)
	if err != nil {
		i.env.Logger.Debug("editors: cannot compose canonical value", "field", i.name, "error", err)
		return
	}
	res := i.onChange(validation.Candidate{Text: canonical})
	i.buffer = user.Email
	i.commit(canonical, res)
}

// Blur re-validates the value composed from the buffer.
func (i *Identity) Blur() {
	if i.unmounted {
		return
	}
	i.focused = false
	value, ok := i.candidate(i.buffer)
	if !ok {
		value = i.buffer
	}
	i.onBlur(validation.Candidate{Text: value})
	i.hook(model.PropOnBlur, i.buffer)
}
