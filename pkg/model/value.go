package model

// Value is a serialized variable value. The zero Value is the unset sentinel,
// which is distinct from a set empty string.
type Value struct {
	Text string
	Set  bool
}

// Unset is the "no value" sentinel.
var Unset = Value{}

// ValueOf wraps a serialized string as a set Value.
func ValueOf(text string) Value {
	return Value{Text: text, Set: true}
}

// Saved converts a raw parameter into a Value, treating "" as unset.
func Saved(raw string) Value {
	if raw == "" {
		return Unset
	}
	return ValueOf(raw)
}

// Empty reports whether the value is unset or blank.
func (v Value) Empty() bool {
	return !v.Set || v.Text == ""
}

// Or returns the text when set, fallback otherwise.
func (v Value) Or(fallback string) string {
	if !v.Set {
		return fallback
	}
	return v.Text
}
