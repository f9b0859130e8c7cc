package memengine

import (
	"context"
	"strings"

	"github.com/goliatone/go-varform/pkg/engine"
	"github.com/goliatone/go-varform/pkg/model"
)

// Directory is an in-memory engine.IdentityAPI over a fixed user list.
type Directory struct {
	users map[string]model.UserDetails
}

var _ engine.IdentityAPI = (*Directory)(nil)

// NewDirectory indexes users by lower-cased email.
func NewDirectory(users []model.UserDetails) *Directory {
	d := &Directory{users: make(map[string]model.UserDetails, len(users))}
	for _, user := range users {
		key := strings.ToLower(strings.TrimSpace(user.Email))
		if key == "" {
			continue
		}
		d.users[key] = user
	}
	return d
}

// Directory returns the identity directory declared by the definition.
func (e *Engine) Directory() *Directory {
	return NewDirectory(e.def.Users)
}

// UserDetails implements engine.IdentityAPI. Lookups are case-insensitive and
// return the canonical record.
func (d *Directory) UserDetails(ctx context.Context, email string) (model.UserDetails, error) {
	if err := ctx.Err(); err != nil {
		return model.UserDetails{}, err
	}
	user, ok := d.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.UserDetails{}, engine.ErrNoMatch
	}
	return user, nil
}
