package render

import (
	"strings"
)

// FieldSubset restricts a View to the named sections and/or fields. Tokens
// match case-insensitively; fields match by name or clean name.
type FieldSubset struct {
	Sections []string
	Fields   []string
}

// ApplySubset removes fields that do not match the subset and prunes sections
// left empty. An empty subset leaves the view unchanged.
func ApplySubset(view *View, subset FieldSubset) {
	if view == nil {
		return
	}

	matcher := newSubsetMatcher(subset)
	if matcher.empty() {
		return
	}

	filtered := make([]SectionView, 0, len(view.Sections))
	for _, section := range view.Sections {
		wholeSection := matcher.matchesSection(section.Name)
		var fields []FieldView
		for _, field := range section.Fields {
			if wholeSection || matcher.matchesField(field) {
				fields = append(fields, field)
			}
		}
		if len(fields) == 0 {
			continue
		}
		filtered = append(filtered, SectionView{Name: section.Name, Fields: fields})
	}
	view.Sections = filtered
}

type subsetMatcher struct {
	sections map[string]struct{}
	fields   map[string]struct{}
}

func newSubsetMatcher(subset FieldSubset) subsetMatcher {
	return subsetMatcher{
		sections: normaliseTokens(subset.Sections),
		fields:   normaliseTokens(subset.Fields),
	}
}

func (m subsetMatcher) empty() bool {
	return len(m.sections) == 0 && len(m.fields) == 0
}

func (m subsetMatcher) matchesSection(name string) bool {
	token := normaliseToken(name)
	if token == "" {
		return false
	}
	_, ok := m.sections[token]
	return ok
}

func (m subsetMatcher) matchesField(field FieldView) bool {
	for _, candidate := range []string{field.Name, field.CleanName} {
		if token := normaliseToken(candidate); token != "" {
			if _, ok := m.fields[token]; ok {
				return true
			}
		}
	}
	return false
}

func normaliseTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]struct{}, len(values))
	for _, value := range values {
		token := normaliseToken(value)
		if token == "" {
			continue
		}
		result[token] = struct{}{}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func normaliseToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
