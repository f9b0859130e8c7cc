package memengine

import (
	"net/mail"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/goliatone/go-varform/pkg/model"
)

var (
	ethAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	periodPattern     = regexp.MustCompile(`(?i)^\s*-?\d+\s*(second|minute|hour|day|week|month|year)s?\s*$`)
)

// CheckValidity implements engine.Validator. Empty values are valid for every
// type; required-ness is not modelled.
func (e *Engine) CheckValidity(v model.Variable, value string, _ model.ExecutionResult) model.Validity {
	if err := validate(variable(v), value); err != "" {
		return model.Validity{IsError: true, ErrorMessage: err}
	}
	return model.Validity{}
}

func validate(v *Variable, value string) string {
	if value == "" {
		return ""
	}
	if len(v.choices) > 0 && !slices.Contains(v.choices, value) {
		return "value is not one of the choices"
	}

	switch v.typ {
	case model.TypeNumber:
		d, _, err := apd.NewFromString(strings.TrimSpace(value))
		if err != nil || d.Form != apd.Finite {
			return "invalid number"
		}
	case model.TypeDate, model.TypeDateTime:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return "invalid epoch milliseconds"
		}
	case model.TypeYesNo:
		if value != "true" && value != "false" {
			return "expected true or false"
		}
	case model.TypeEthAddress:
		if !ethAddressPattern.MatchString(value) {
			return "invalid ethereum address"
		}
	case model.TypePeriod:
		if !periodPattern.MatchString(value) {
			return "invalid period"
		}
	case model.TypeIdentity:
		identity, err := decodeIdentity(value)
		if err != nil || !validEmail(identity.Email) {
			return "invalid identity"
		}
	case model.TypeExternalSignature:
		sig, err := decodeSignature(value)
		if err != nil || !validEmail(sig.Identity.Email) || sig.ServiceName == "" {
			return "invalid external signature"
		}
	case model.TypeAddress:
		address, err := decodeAddress(value)
		if err != nil || address.PlaceID == "" {
			return "invalid address"
		}
	case model.TypeImage:
		if !strings.HasPrefix(value, "data:image/") && !isRemote(value) {
			return "invalid image"
		}
	case model.TypeStructure:
		values, err := decodeStructure(value)
		if err != nil {
			return "invalid structure"
		}
		for _, field := range v.fields {
			if msg := validate(field, values[field.name]); msg != "" {
				return field.name + ": " + msg
			}
		}
	case model.TypeCollection:
		values, err := decodeCollection(value)
		if err != nil {
			return "invalid collection"
		}
		if v.element == nil {
			return ""
		}
		for i, element := range values {
			if msg := validate(v.element, element); msg != "" {
				return "element " + strconv.Itoa(i) + ": " + msg
			}
		}
	}
	return ""
}

func validEmail(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := mail.ParseAddress(raw)
	return err == nil && parsed.Address == raw
}

func isRemote(value string) bool {
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
