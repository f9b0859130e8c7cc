package address

import (
	"context"
	"fmt"

	"github.com/goliatone/go-varform/pkg/engine"
	"github.com/goliatone/go-varform/pkg/model"
)

// Local serves engine.AddressAPI straight from a Book, for hosts that run
// the engine in the same process as the address data.
type Local struct {
	book *Book
	opts Options
}

var _ engine.AddressAPI = (*Local)(nil)

// NewLocal wraps book. Search limits and empty-query behaviour follow opts.
func NewLocal(book *Book, fns ...OptionFn) *Local {
	return &Local{book: book, opts: NewOptions(fns...)}
}

// SearchAddress implements engine.AddressAPI.
func (l *Local) SearchAddress(ctx context.Context, term string) ([]model.AddressSuggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Suggestions(l.book, term, 0, l.opts), nil
}

// AddressDetails implements engine.AddressAPI.
func (l *Local) AddressDetails(ctx context.Context, placeID string) (model.Address, error) {
	if err := ctx.Err(); err != nil {
		return model.Address{}, err
	}
	found, ok := l.book.Lookup(placeID)
	if !ok {
		return model.Address{}, fmt.Errorf("address: details %q: %w", placeID, engine.ErrNoMatch)
	}
	return found, nil
}
