package address

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-varform/pkg/engine"
	"github.com/goliatone/go-varform/pkg/model"
)

func testEntries() []model.Address {
	return []model.Address{
		{PlaceID: "p-1", StreetNumber: "1", StreetName: "Main Street", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US"},
		{PlaceID: "p-2", StreetNumber: "742", StreetName: "Evergreen Terrace", City: "Springfield", State: "OR", Country: "US"},
		{PlaceID: "p-3", StreetNumber: "10", StreetName: "Downing Street", City: "London", Country: "GB"},
		{PlaceID: "p-1", StreetName: "Duplicate"},
		{StreetName: "No id"},
	}
}

func TestNewBook_IndexesAndFormats(t *testing.T) {
	book := NewBook(testEntries())
	if book.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", book.Len())
	}
	got, ok := book.Lookup(" p-1 ")
	if !ok {
		t.Fatal("expected p-1 to resolve")
	}
	if got.FormattedAddress != "1 Main Street, Springfield, IL 62701, US" {
		t.Fatalf("unexpected formatted address %q", got.FormattedAddress)
	}
	if _, ok := book.Lookup("missing"); ok {
		t.Fatal("expected missing place id to fail")
	}
}

func TestDefaultBook_LoadsEmbeddedEntries(t *testing.T) {
	book, err := DefaultBook()
	if err != nil {
		t.Fatalf("default book: %v", err)
	}
	if book.Len() == 0 {
		t.Fatal("expected embedded entries")
	}
	entries := book.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].FormattedAddress > entries[i].FormattedAddress {
			t.Fatalf("entries not sorted: %q before %q", entries[i-1].FormattedAddress, entries[i].FormattedAddress)
		}
	}
}

func TestLoadEntries_Errors(t *testing.T) {
	if _, err := LoadEntries(nil); err == nil {
		t.Fatal("expected error for nil reader")
	}
	if _, err := LoadEntries(strings.NewReader("placeId: [")); err == nil {
		t.Fatal("expected decode error")
	}
	entries, err := LoadEntries(strings.NewReader(""))
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty book, got %v, %v", entries, err)
	}
}

func TestSearch(t *testing.T) {
	book := NewBook(testEntries())

	tests := []struct {
		name  string
		query string
		limit int
		opts  Options
		want  []string
	}{
		{name: "empty query", query: "", opts: NewOptions(), want: nil},
		{name: "empty query top", query: "", limit: 2, opts: NewOptions(WithEmptySearchMode(EmptySearchTop)), want: []string{"p-1", "p-2"}},
		{name: "all terms must match", query: "springfield or", opts: NewOptions(), want: []string{"p-2"}},
		{name: "prefix ranks first", query: "1", opts: NewOptions(), want: []string{"p-1", "p-3"}},
		{name: "limit clamps", query: "street", limit: 10, opts: NewOptions(WithMaxLimit(1)), want: []string{"p-1"}},
		{name: "negative limit", query: "street", limit: -1, opts: NewOptions(), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, entry := range Search(book, tt.query, tt.limit, tt.opts) {
				got = append(got, entry.PlaceID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("search mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSuggestions(t *testing.T) {
	got := Suggestions(NewBook(testEntries()), "downing", 0, NewOptions())
	want := []model.AddressSuggestion{{PlaceID: "p-3", Description: "10 Downing Street, London, GB"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestLocal_ImplementsAddressAPI(t *testing.T) {
	local := NewLocal(NewBook(testEntries()), WithDefaultLimit(1))
	ctx := context.Background()

	suggestions, err := local.SearchAddress(ctx, "springfield")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].PlaceID != "p-1" {
		t.Fatalf("unexpected suggestions: %#v", suggestions)
	}

	details, err := local.AddressDetails(ctx, "p-3")
	if err != nil || details.City != "London" {
		t.Fatalf("unexpected details %#v, %v", details, err)
	}
	if _, err := local.AddressDetails(ctx, "nope"); !errors.Is(err, engine.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := local.SearchAddress(cancelled, "london"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
