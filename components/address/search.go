package address

import (
	"sort"
	"strings"

	"github.com/goliatone/go-varform/pkg/model"
)

// Search returns addresses whose formatted text contains every term of query.
// Matches where the query is a prefix rank first; ties sort alphabetically.
func Search(book *Book, query string, limit int, opts Options) []model.Address {
	limit = clampLimit(limit, opts)
	if limit == 0 || book == nil {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode == EmptySearchTop {
			entries := book.Entries()
			if len(entries) > limit {
				entries = entries[:limit]
			}
			return entries
		}
		return nil
	}

	q := strings.ToLower(query)
	terms := strings.Fields(q)
	matches := make([]matchedAddress, 0, 16)
	for _, entry := range book.entries {
		text := strings.ToLower(entry.FormattedAddress)
		if !containsAll(text, terms) {
			continue
		}
		matches = append(matches, matchedAddress{
			address:  entry,
			isPrefix: strings.HasPrefix(text, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].address.FormattedAddress < matches[j].address.FormattedAddress
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]model.Address, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.address)
	}
	return out
}

// Suggestions converts search results into autosuggest entries.
func Suggestions(book *Book, query string, limit int, opts Options) []model.AddressSuggestion {
	results := Search(book, query, limit, opts)
	if len(results) == 0 {
		return nil
	}

	out := make([]model.AddressSuggestion, 0, len(results))
	for _, entry := range results {
		out = append(out, model.AddressSuggestion{PlaceID: entry.PlaceID, Description: entry.FormattedAddress})
	}
	return out
}

type matchedAddress struct {
	address  model.Address
	isPrefix bool
}

func containsAll(text string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(text, strings.Trim(term, ",")) {
			return false
		}
	}
	return true
}
