// Package validation computes the error state of a field for change and blur
// events. Both operations are pure: they merge the engine's built-in validity
// with the host's ValidateFunc override and return the payload to emit plus
// the visibility decision. Callers own the resulting State.
package validation

import (
	"fmt"

	"github.com/goliatone/go-varform/pkg/model"
)

// ValidityFunc checks a candidate serialized value for the named variable.
type ValidityFunc func(name, value string) model.Validity

// Props is the slice of field configuration validation depends on.
type Props struct {
	CleanName  string
	Name       string
	Type       model.VariableType
	Validity   ValidityFunc
	OnValidate model.ValidateFunc
}

// State is the validation state an editor carries between events.
type State struct {
	ErrorMessage    string
	ShouldShowError bool
	IsError         bool
}

// Pending reports whether the last evaluation flagged the value.
func (s State) Pending() bool {
	return s.IsError || s.ErrorMessage != ""
}

// Candidate is the value under validation. Image carries the shaped value for
// Image fields; Text is used for everything else.
type Candidate struct {
	Text  string
	Image *model.ImageValue
}

// Result is the outcome of one evaluation.
type Result struct {
	ErrorData       model.FieldError
	ShouldShowError bool
}

// State converts the result into the state an editor keeps.
func (r Result) State() State {
	return State{
		ErrorMessage:    r.ErrorData.ErrorMessage,
		ShouldShowError: r.ShouldShowError,
		IsError:         r.ErrorData.IsError,
	}
}

// OnChange evaluates a change event. Errors stay hidden while typing unless
// they were already visible or the override supplies a message; an override
// of "" always hides.
func OnChange(value Candidate, props Props, state State) Result {
	errData := evaluate(model.EventChange, value, props)
	show := errData.IsError && state.ShouldShowError
	if override := callOverride(props, errData); override != nil {
		errData.ErrorMessage = override.ErrorMessage
		show = override.ErrorMessage != ""
	}
	return Result{ErrorData: errData, ShouldShowError: show}
}

// OnBlur evaluates a blur event. Visibility is decided fresh from this
// evaluation.
func OnBlur(value Candidate, props Props, _ State) Result {
	errData := evaluate(model.EventBlur, value, props)
	show := errData.IsError
	if override := callOverride(props, errData); override != nil {
		errData.ErrorMessage = override.ErrorMessage
		show = override.ErrorMessage != ""
	}
	return Result{ErrorData: errData, ShouldShowError: show}
}

// OnFailure reports an external-call failure (lookup or resize) as a visible
// error. The generic failure message sits under any host override.
func OnFailure(event model.EventType, value Candidate, props Props, message string) Result {
	if message == "" {
		message = FailureMessage(props.Type)
	}
	errData := fieldError(event, value, props)
	errData.IsError = true
	errData.ErrorMessage = message
	show := true
	if override := callOverride(props, errData); override != nil {
		errData.ErrorMessage = override.ErrorMessage
		show = override.ErrorMessage != ""
	}
	return Result{ErrorData: errData, ShouldShowError: show}
}

// ShouldCheck reports whether a candidate is validated at all. Empty input is
// valid by default, except for Identity and ExternalSignature whose
// structured payloads are always checked.
func ShouldCheck(value Candidate, t model.VariableType) bool {
	if t == model.TypeImage {
		return value.Image != nil && value.Image.Value != ""
	}
	if t == model.TypeIdentity || t == model.TypeExternalSignature {
		return true
	}
	return value.Text != ""
}

func evaluate(event model.EventType, value Candidate, props Props) model.FieldError {
	errData := fieldError(event, value, props)
	if props.Validity == nil || !ShouldCheck(value, props.Type) {
		return errData
	}

	checked := value.Text
	if props.Type == model.TypeImage && value.Image != nil {
		checked = value.Image.Value
	}
	if props.Validity(props.Name, checked).IsError {
		errData.IsError = true
		errData.ErrorMessage = GenericMessage(props.Type)
	}
	return errData
}

func fieldError(event model.EventType, value Candidate, props Props) model.FieldError {
	errData := model.FieldError{
		ElementName: props.CleanName,
		ElementType: props.Type,
		EventType:   event,
		Value:       value.Text,
	}
	if value.Image != nil {
		image := *value.Image
		errData.Image = &image
		errData.Value = image.Value
	}
	return errData
}

func callOverride(props Props, errData model.FieldError) *model.ValidationOverride {
	if props.OnValidate == nil {
		return nil
	}
	return props.OnValidate(errData)
}

var genericText = map[model.VariableType]string{
	model.TypeNumber:            "Please enter a valid number.",
	model.TypeDate:              "Please enter a valid date.",
	model.TypeDateTime:          "Please enter a valid date and time.",
	model.TypeEthAddress:        "Please enter a valid Ethereum address.",
	model.TypeIdentity:          "Please enter a valid email.",
	model.TypeExternalSignature: "Please enter a valid email.",
	model.TypePeriod:            "Please enter a valid period (e.g. 2 weeks).",
	model.TypeImage:             "Please select a valid image.",
	model.TypeAddress:           "Please select a valid address.",
	model.TypeChoice:            "Please select one of the options.",
	model.TypeYesNo:             "Please select Yes or No.",
	model.TypeCollection:        "Please check the items in this list.",
	model.TypeStructure:         "Please check the fields in this group.",
}

// GenericMessage returns the built-in "<ReadableType>: <text>" message.
func GenericMessage(t model.VariableType) string {
	text, ok := genericText[t]
	if !ok {
		text = "Something looks wrong."
	}
	return fmt.Sprintf("%s: %s", t.ReadableName(), text)
}

// FailureMessage returns the message shown when an external call fails.
func FailureMessage(t model.VariableType) string {
	return fmt.Sprintf("%s: Something went wrong, please try again.", t.ReadableName())
}
