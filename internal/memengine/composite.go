package memengine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-varform/pkg/model"
)

// Structures serialize as a JSON object of field name to serialized value.
// Collections serialize as a JSON array of serialized element values.

func decodeStructure(composite string) (map[string]string, error) {
	out := map[string]string{}
	if strings.TrimSpace(composite) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(composite), &out); err != nil {
		return nil, fmt.Errorf("memengine: decode structure: %w", err)
	}
	return out, nil
}

func decodeCollection(composite string) ([]string, error) {
	var out []string
	if strings.TrimSpace(composite) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(composite), &out); err != nil {
		return nil, fmt.Errorf("memengine: decode collection: %w", err)
	}
	return out, nil
}

func encode(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("memengine: encode: %w", err)
	}
	return string(data), nil
}

// IsStructuredType implements engine.Structures.
func (e *Engine) IsStructuredType(v model.Variable, _ model.ExecutionResult) bool {
	return variable(v).typ == model.TypeStructure
}

// StructureFieldDefinitions implements engine.Structures.
func (e *Engine) StructureFieldDefinitions(v model.Variable, _ model.ExecutionResult) []model.Variable {
	fields := variable(v).fields
	out := make([]model.Variable, len(fields))
	for i, field := range fields {
		out[i] = field
	}
	return out
}

// StructureFieldValue implements engine.Structures. Malformed composites read
// as empty.
func (e *Engine) StructureFieldValue(_, field model.Variable, composite string, _ model.ExecutionResult) string {
	values, err := decodeStructure(composite)
	if err != nil {
		return ""
	}
	return values[variable(field).name]
}

// SetStructureFieldValue implements engine.Structures. An empty value removes
// the key.
func (e *Engine) SetStructureFieldValue(parent model.Variable, key, value, composite string, _ model.ExecutionResult) (string, error) {
	p := variable(parent)
	if !p.hasField(key) {
		return "", fmt.Errorf("memengine: structure %q has no field %q", p.name, key)
	}
	values, err := decodeStructure(composite)
	if err != nil {
		return "", err
	}
	if value == "" {
		delete(values, key)
	} else {
		values[key] = value
	}
	return encode(values)
}

func (v *Variable) hasField(name string) bool {
	for _, field := range v.fields {
		if field.name == name {
			return true
		}
	}
	return false
}

// CollectionValue implements engine.Collections. An unset or malformed saved
// value becomes a collection holding one empty element.
func (e *Engine) CollectionValue(_ model.Variable, _ model.ExecutionResult, saved string) string {
	values, err := decodeCollection(saved)
	if err != nil || len(values) == 0 {
		return `[""]`
	}
	out, err := encode(values)
	if err != nil {
		return `[""]`
	}
	return out
}

// CollectionSize implements engine.Collections.
func (e *Engine) CollectionSize(_ model.Variable, composite string, _ model.ExecutionResult) int {
	values, err := decodeCollection(composite)
	if err != nil {
		return 0
	}
	return len(values)
}

// CreateVariableFromCollection implements engine.Collections. The element is
// named "<collection>_<index>".
func (e *Engine) CreateVariableFromCollection(v model.Variable, index int, _ model.ExecutionResult) model.Variable {
	c := variable(v)
	proto := c.element
	if proto == nil {
		proto = &Variable{typ: model.TypeText}
	}
	name := fmt.Sprintf("%s_%d", c.name, index)
	return &Variable{
		name:        name,
		clean:       model.CleanName(name),
		typ:         proto.typ,
		description: c.description,
		choices:     proto.choices,
		fields:      proto.fields,
		serviceName: proto.serviceName,
	}
}

// CollectionElementValue implements engine.Collections.
func (e *Engine) CollectionElementValue(_ model.Variable, _ model.ExecutionResult, composite string, index int) string {
	values, err := decodeCollection(composite)
	if err != nil || index < 0 || index >= len(values) {
		return ""
	}
	return values[index]
}

// AddElementToCollection implements engine.Collections by appending an empty
// element.
func (e *Engine) AddElementToCollection(v model.Variable, _ model.ExecutionResult, composite string) (string, error) {
	values, err := decodeCollection(e.CollectionValue(v, nil, composite))
	if err != nil {
		return "", err
	}
	return encode(append(values, ""))
}

// RemoveElementFromCollection implements engine.Collections.
func (e *Engine) RemoveElementFromCollection(v model.Variable, _ model.ExecutionResult, composite string, index int) (string, error) {
	values, err := decodeCollection(composite)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(values) {
		return "", fmt.Errorf("memengine: collection %q: index %d out of range [0,%d)", variable(v).name, index, len(values))
	}
	values = append(values[:index], values[index+1:]...)
	return encode(values)
}

// SetElementToCollection implements engine.Collections.
func (e *Engine) SetElementToCollection(v model.Variable, _ model.ExecutionResult, composite string, index int, value string) (string, error) {
	values, err := decodeCollection(composite)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(values) {
		return "", fmt.Errorf("memengine: collection %q: index %d out of range [0,%d)", variable(v).name, index, len(values))
	}
	values[index] = value
	return encode(values)
}
