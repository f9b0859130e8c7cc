package model

import "strings"

// VariableType is the closed enumeration of variable type tags reported by the
// execution engine.
type VariableType string

const (
	TypeText              VariableType = "Text"
	TypeNumber            VariableType = "Number"
	TypeDate              VariableType = "Date"
	TypeDateTime          VariableType = "DateTime"
	TypeYesNo             VariableType = "YesNo"
	TypeChoice            VariableType = "Choice"
	TypeIdentity          VariableType = "Identity"
	TypeAddress           VariableType = "Address"
	TypeImage             VariableType = "Image"
	TypeLargeText         VariableType = "LargeText"
	TypeEthAddress        VariableType = "EthAddress"
	TypePeriod            VariableType = "Period"
	TypeExternalSignature VariableType = "ExternalSignature"
	TypeStructure         VariableType = "Structure"
	TypeCollection        VariableType = "Collection"
)

var variableTypes = []VariableType{
	TypeText,
	TypeNumber,
	TypeDate,
	TypeDateTime,
	TypeYesNo,
	TypeChoice,
	TypeIdentity,
	TypeAddress,
	TypeImage,
	TypeLargeText,
	TypeEthAddress,
	TypePeriod,
	TypeExternalSignature,
	TypeStructure,
	TypeCollection,
}

var readableNames = map[VariableType]string{
	TypeDateTime:          "Date Time",
	TypeYesNo:             "Yes/No",
	TypeLargeText:         "Large Text",
	TypeEthAddress:        "Ethereum Address",
	TypeExternalSignature: "External Signature",
}

// VariableTypes returns every known type tag in declaration order.
func VariableTypes() []VariableType {
	return append([]VariableType(nil), variableTypes...)
}

// ParseVariableType resolves a type tag case-insensitively.
func ParseVariableType(raw string) (VariableType, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, candidate := range variableTypes {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, true
		}
	}
	return "", false
}

// Known reports whether t belongs to the closed enumeration.
func (t VariableType) Known() bool {
	for _, candidate := range variableTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ReadableName returns the label used in generic validation messages.
func (t VariableType) ReadableName() string {
	if name, ok := readableNames[t]; ok {
		return name
	}
	if t == "" {
		return string(TypeText)
	}
	return string(t)
}

// Composite reports whether values of this type are serialized records or
// sequences rather than scalars.
func (t VariableType) Composite() bool {
	return t == TypeStructure || t == TypeCollection
}

// Variable is an opaque variable handle owned by the execution engine.
type Variable any

// ExecutionResult is the opaque context token required by every metadata and
// validity query. The form engine never introspects it.
type ExecutionResult any

// Validity is the outcome of an engine validity check.
type Validity struct {
	IsError      bool
	ErrorMessage string
}

// ImageValue is the shaped value carried by Image fields: the selected file
// name and the encoded image (usually a data URL).
type ImageValue struct {
	File  string `json:"file,omitempty"`
	Value string `json:"value"`
}

// Address is a resolved postal address as produced by an address API.
type Address struct {
	PlaceID          string `json:"placeId" yaml:"placeId"`
	StreetNumber     string `json:"streetNumber,omitempty" yaml:"streetNumber"`
	StreetName       string `json:"streetName,omitempty" yaml:"streetName"`
	City             string `json:"city,omitempty" yaml:"city"`
	State            string `json:"state,omitempty" yaml:"state"`
	ZipCode          string `json:"zipCode,omitempty" yaml:"zipCode"`
	Country          string `json:"country,omitempty" yaml:"country"`
	FormattedAddress string `json:"formattedAddress,omitempty" yaml:"formattedAddress"`
}

// AddressSuggestion is one autosuggest entry returned by an address search.
type AddressSuggestion struct {
	PlaceID     string `json:"placeId"`
	Description string `json:"description"`
}

// UserDetails is a canonical identity match returned by an identity lookup.
type UserDetails struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
