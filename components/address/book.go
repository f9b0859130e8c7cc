package address

import (
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-varform/pkg/model"
)

//go:embed data/addresses.yaml
var dataFS embed.FS

const defaultBookPath = "data/addresses.yaml"

var (
	defaultOnce    sync.Once
	defaultEntries []model.Address
	defaultErr     error
)

// Book is an immutable, place-id indexed set of addresses.
type Book struct {
	entries []model.Address
	byID    map[string]int
}

// NewBook indexes entries. Entries without a place id are dropped; the first
// entry wins on duplicate ids. Formatted addresses are filled in when empty.
func NewBook(entries []model.Address) *Book {
	b := &Book{byID: make(map[string]int, len(entries))}
	for _, entry := range entries {
		entry.PlaceID = strings.TrimSpace(entry.PlaceID)
		if entry.PlaceID == "" {
			continue
		}
		if _, ok := b.byID[entry.PlaceID]; ok {
			continue
		}
		if entry.FormattedAddress == "" {
			entry.FormattedAddress = Format(entry)
		}
		b.byID[entry.PlaceID] = len(b.entries)
		b.entries = append(b.entries, entry)
	}
	return b
}

// DefaultBook returns the embedded sample book.
func DefaultBook() (*Book, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultBookPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		entries, err := LoadEntries(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultEntries = entries
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return NewBook(defaultEntries), nil
}

// LoadEntries decodes a YAML (or JSON) list of addresses sorted by formatted
// address.
func LoadEntries(r io.Reader) ([]model.Address, error) {
	if r == nil {
		return nil, fmt.Errorf("address: missing reader")
	}
	var entries []model.Address
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil && err != io.EOF {
		return nil, fmt.Errorf("address: decode book: %w", err)
	}
	for i := range entries {
		if entries[i].FormattedAddress == "" {
			entries[i].FormattedAddress = Format(entries[i])
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FormattedAddress < entries[j].FormattedAddress
	})
	return entries, nil
}

// Entries returns a copy of the book's addresses.
func (b *Book) Entries() []model.Address {
	if b == nil {
		return nil
	}
	return append([]model.Address{}, b.entries...)
}

// Len reports the number of addresses.
func (b *Book) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Lookup resolves a place id.
func (b *Book) Lookup(placeID string) (model.Address, bool) {
	if b == nil {
		return model.Address{}, false
	}
	idx, ok := b.byID[strings.TrimSpace(placeID)]
	if !ok {
		return model.Address{}, false
	}
	return b.entries[idx], true
}

// Format renders "<number> <street>, <city>, <state> <zip>, <country>",
// skipping empty parts.
func Format(a model.Address) string {
	street := strings.TrimSpace(a.StreetNumber + " " + a.StreetName)
	region := strings.TrimSpace(a.State + " " + a.ZipCode)
	parts := make([]string, 0, 4)
	for _, part := range []string{street, a.City, region, a.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}
