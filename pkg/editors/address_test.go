package editors

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/validation"
)

type fakeAddresses struct {
	suggestions []model.AddressSuggestion
	details     map[string]model.Address
	searchErr   error
	terms       []string
}

func (f *fakeAddresses) SearchAddress(_ context.Context, term string) ([]model.AddressSuggestion, error) {
	f.terms = append(f.terms, term)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.suggestions, nil
}

func (f *fakeAddresses) AddressDetails(_ context.Context, placeID string) (model.Address, error) {
	details, ok := f.details[placeID]
	if !ok {
		return model.Address{}, errors.New("not found")
	}
	return details, nil
}

func addressBook() *fakeAddresses {
	return &fakeAddresses{
		suggestions: []model.AddressSuggestion{
			{PlaceID: "p-1", Description: "1 Main St, Springfield"},
			{PlaceID: "p-missing", Description: "2 Elm St, Springfield"},
		},
		details: map[string]model.Address{
			"p-1": {PlaceID: "p-1", StreetNumber: "1", StreetName: "Main St", City: "Springfield"},
		},
	}
}

func TestAddress_SearchAndSelect(t *testing.T) {
	eng := leaseEngine(t)
	rec := &recorder{}
	book := addressBook()
	ed := mustEditor(t, Env{Engine: eng, Address: book}, leaseProps(t, eng, "Property", model.Unset, rec))
	address := ed.(*Address)

	address.Change(context.Background(), "1 Main")
	if len(address.Suggestions()) != 2 {
		t.Fatalf("expected suggestions, got %+v", address.Suggestions())
	}
	if len(rec.changes) != 0 {
		t.Fatalf("expected typing not to commit")
	}

	address.Select(context.Background(), 0)
	want, _ := eng.CreateAddress(book.details["p-1"])
	if got := rec.last(t).value; got != model.ValueOf(want) {
		t.Fatalf("unexpected committed address %+v", got)
	}
	if address.Value() != "1 Main St, Springfield" {
		t.Fatalf("unexpected display %q", address.Value())
	}
	if len(address.Suggestions()) != 0 {
		t.Fatalf("expected suggestions cleared after select")
	}

	address.Blur()
	if address.ShowError() {
		t.Fatalf("expected committed address to be valid")
	}
}

func TestAddress_FailureLayeredUnderOverride(t *testing.T) {
	eng := leaseEngine(t)
	book := addressBook()
	book.searchErr = errors.New("geocoder offline")

	ed := mustEditor(t, Env{Engine: eng, Address: book}, leaseProps(t, eng, "Property", model.Unset, nil))
	ed.Change(context.Background(), "1 Main")
	if !ed.ShowError() || ed.ErrorMessage() != validation.FailureMessage(model.TypeAddress) {
		t.Fatalf("expected generic failure, got %q (show=%v)", ed.ErrorMessage(), ed.ShowError())
	}
	ed.Blur()
	if !ed.ShowError() {
		t.Fatalf("expected failure to survive blur")
	}

	props := leaseProps(t, eng, "Property", model.Unset, nil)
	props.OnValidate = func(model.FieldError) *model.ValidationOverride {
		return model.Override("Address lookup is unavailable")
	}
	overridden := mustEditor(t, Env{Engine: eng, Address: book}, props)
	overridden.Change(context.Background(), "1 Main")
	if overridden.ErrorMessage() != "Address lookup is unavailable" {
		t.Fatalf("expected override message, got %q", overridden.ErrorMessage())
	}
}

func TestAddress_DetailsFailure(t *testing.T) {
	eng := leaseEngine(t)
	rec := &recorder{}
	address := mustEditor(t, Env{Engine: eng, Address: addressBook()}, leaseProps(t, eng, "Property", model.Unset, rec)).(*Address)

	address.Change(context.Background(), "Elm")
	address.Select(context.Background(), 1)
	if len(rec.changes) != 0 {
		t.Fatalf("expected no commit on failure")
	}
	if !address.ShowError() {
		t.Fatalf("expected failure message")
	}
}

func TestAddress_StaleSearchDropped(t *testing.T) {
	eng := leaseEngine(t)
	sched := &deferred{}
	book := addressBook()
	address := mustEditor(t, Env{Engine: eng, Address: book, Scheduler: sched}, leaseProps(t, eng, "Property", model.Unset, nil)).(*Address)

	full := book.suggestions
	book.suggestions = nil
	address.Change(context.Background(), "1")
	book.suggestions = full
	address.Change(context.Background(), "1 Main")
	sched.release(1)
	sched.release(0)
	if len(address.Suggestions()) != 2 {
		t.Fatalf("expected latest search results, got %+v", address.Suggestions())
	}
}

func TestAddress_ClearEmitsUnset(t *testing.T) {
	eng := leaseEngine(t)
	saved, _ := eng.CreateAddress(model.Address{PlaceID: "p-1", City: "Springfield"})
	rec := &recorder{}
	ed := mustEditor(t, Env{Engine: eng, Address: addressBook()}, leaseProps(t, eng, "Property", model.ValueOf(saved), rec))
	if ed.Value() != "Springfield" {
		t.Fatalf("unexpected display %q", ed.Value())
	}
	ed.Change(context.Background(), "")
	if got := rec.last(t).value; got != model.Unset {
		t.Fatalf("expected unset, got %+v", got)
	}
}
