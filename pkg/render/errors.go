package render

import (
	"sort"
	"strings"

	"github.com/goliatone/go-varform/pkg/form"
	"github.com/goliatone/go-varform/pkg/model"
)

// ErrorMapping splits messages into field-level entries keyed by clean name
// and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// Empty reports whether the mapping carries any message.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// Summary flattens the mapping into "<clean name>: <message>" lines sorted by
// clean name, followed by the form-level messages.
func (m ErrorMapping) Summary() []string {
	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		for _, message := range m.Fields[name] {
			out = append(out, name+": "+message)
		}
	}
	return append(out, m.Form...)
}

// CollectErrors walks nodes and gathers every visible error message, nested
// structure fields and collection rows included.
func CollectErrors(nodes []form.Node) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	for _, root := range nodes {
		form.Walk(root, func(node form.Node) bool {
			if !node.ShowError() {
				return true
			}
			if messages := normalizeMessages([]string{node.ErrorMessage()}); len(messages) > 0 {
				key := node.CleanName()
				mapping.Fields[key] = normalizeMessages(append(mapping.Fields[key], messages...))
			}
			return true
		})
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	return mapping
}

// MapFieldErrors converts the last FieldError per field (as kept by a
// Session) into a mapping. Errors whose message was blanked by an override
// are skipped.
func MapFieldErrors(errs map[string]model.FieldError) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	for name, errData := range errs {
		if !errData.IsError {
			continue
		}
		key := strings.TrimSpace(errData.ElementName)
		if key == "" {
			key = model.CleanName(name)
		}
		messages := normalizeMessages([]string{errData.ErrorMessage})
		if len(messages) == 0 {
			continue
		}
		mapping.Fields[key] = append(mapping.Fields[key], messages...)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	return mapping
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
