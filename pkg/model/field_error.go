package model

// EventType names the UI event that produced a FieldError.
type EventType string

const (
	EventBlur   EventType = "blur"
	EventChange EventType = "change"
)

// FieldError is the payload describing one validation outcome. IsError
// implies a non-empty ErrorMessage unless a ValidateFunc override blanked it.
type FieldError struct {
	ElementName  string       `json:"elementName"`
	ElementType  VariableType `json:"elementType"`
	ErrorMessage string       `json:"errorMessage"`
	EventType    EventType    `json:"eventType"`
	IsError      bool         `json:"isError"`
	Value        string       `json:"value"`
	Image        *ImageValue  `json:"image,omitempty"`
}

// ValidationOverride is returned by a ValidateFunc to replace the built-in
// message and visibility. An empty ErrorMessage hides the error.
type ValidationOverride struct {
	ErrorMessage string `json:"errorMessage"`
}

// ChangeFunc receives every change bubbling out of a field. value is Unset
// when the field's committed value must be cleared. errData is nil for
// programmatic commits.
type ChangeFunc func(name string, value Value, errData *FieldError)

// ValidateFunc lets the host inspect a validation outcome. Returning nil
// defers to the built-in result.
type ValidateFunc func(errData FieldError) *ValidationOverride

// Override is a convenience for building ValidationOverride pointers.
func Override(message string) *ValidationOverride {
	return &ValidationOverride{ErrorMessage: message}
}
