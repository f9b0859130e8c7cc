package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Wildcard is the InputConfig key whose props apply to every variable type.
const Wildcard = "*"

// Recognised InputProps keys.
const (
	PropDisabled    = "disabled"
	PropClassName   = "className"
	PropPlaceholder = "placeholder"
	PropOnChange    = "onChange"
	PropOnBlur      = "onBlur"
	PropOnKeyUp     = "onKeyUp"
)

// InputHook is a host callback attached through InputProps. It observes raw
// input without being able to alter the editor state.
type InputHook func(name, value string)

// InputProps carries per-editor configuration. Unrecognised keys pass through
// to renderers untouched.
type InputProps map[string]any

// InputConfig maps a type tag (or Wildcard) to its InputProps.
type InputConfig map[string]InputProps

// For returns the props for t: wildcard values shallow-merged under the
// type-specific entry.
func (c InputConfig) For(t VariableType) InputProps {
	out := InputProps{}
	for key, value := range c[Wildcard] {
		out[key] = value
	}
	for key, value := range c[string(t)] {
		out[key] = value
	}
	return out
}

// Clone returns a shallow copy.
func (p InputProps) Clone() InputProps {
	out := make(InputProps, len(p))
	for key, value := range p {
		out[key] = value
	}
	return out
}

// Disabled reports the "disabled" flag.
func (p InputProps) Disabled() bool {
	switch v := p[PropDisabled].(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	default:
		return false
	}
}

// ClassName returns the configured CSS class.
func (p InputProps) ClassName() string {
	return p.String(PropClassName)
}

// Placeholder returns the configured placeholder text.
func (p InputProps) Placeholder() string {
	return p.String(PropPlaceholder)
}

// String returns key as a string, formatting scalars.
func (p InputProps) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case bool, int, int64, float64:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// Int returns key as an int, or fallback when missing or malformed.
func (p InputProps) Int(key string, fallback int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

// Hook returns the InputHook stored under key, accepting plain funcs too.
func (p InputProps) Hook(key string) InputHook {
	switch fn := p[key].(type) {
	case InputHook:
		return fn
	case func(name, value string):
		return fn
	default:
		return nil
	}
}

// Passthrough returns every key that is not a recognised prop or hook.
func (p InputProps) Passthrough() map[string]any {
	out := make(map[string]any)
	for key, value := range p {
		switch key {
		case PropDisabled, PropClassName, PropPlaceholder, PropOnChange, PropOnBlur, PropOnKeyUp:
			continue
		}
		out[key] = value
	}
	return out
}
