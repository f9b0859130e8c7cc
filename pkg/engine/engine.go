package engine

import (
	"context"
	"errors"

	"github.com/goliatone/go-varform/pkg/model"
)

// ErrNoMatch is returned by lookups that completed without a canonical match.
var ErrNoMatch = errors.New("engine: no match")

// Describer answers identity and labelling questions about a variable.
type Describer interface {
	Name(v model.Variable) string
	CleanName(v model.Variable) string
	Description(v model.Variable) string
	Type(v model.Variable) model.VariableType
}

// Choices reports enumerated value sets.
type Choices interface {
	IsChoiceType(v model.Variable, exec model.ExecutionResult) bool
	ChoiceValues(v model.Variable, exec model.ExecutionResult) []string
}

// Structures reads and writes keyed composite values.
type Structures interface {
	IsStructuredType(v model.Variable, exec model.ExecutionResult) bool
	StructureFieldDefinitions(v model.Variable, exec model.ExecutionResult) []model.Variable
	StructureFieldValue(parent, field model.Variable, composite string, exec model.ExecutionResult) string
	SetStructureFieldValue(parent model.Variable, key, value, composite string, exec model.ExecutionResult) (string, error)
}

// Collections reads and mutates ordered composite values.
type Collections interface {
	CollectionSize(v model.Variable, composite string, exec model.ExecutionResult) int
	CollectionValue(v model.Variable, exec model.ExecutionResult, saved string) string
	CreateVariableFromCollection(v model.Variable, index int, exec model.ExecutionResult) model.Variable
	CollectionElementValue(v model.Variable, exec model.ExecutionResult, composite string, index int) string
	AddElementToCollection(v model.Variable, exec model.ExecutionResult, composite string) (string, error)
	RemoveElementFromCollection(v model.Variable, exec model.ExecutionResult, composite string, index int) (string, error)
	SetElementToCollection(v model.Variable, exec model.ExecutionResult, composite string, index int, value string) (string, error)
}

// Validator checks a candidate serialized value.
type Validator interface {
	CheckValidity(v model.Variable, value string, exec model.ExecutionResult) model.Validity
}

// Codecs converts between structured values and their serialized form.
type Codecs interface {
	CreateAddress(details model.Address) (string, error)
	Address(value string) (model.Address, error)
	FormattedAddress(address model.Address) string
	CreateIdentityInternalValue(id, email string) (string, error)
	IdentityEmail(value string) (string, error)
	CreateExternalSignatureValue(id, email, serviceName string) (string, error)
	ExternalSignatureServiceName(v model.Variable, exec model.ExecutionResult) string
}

// Catalog enumerates the variables of an execution.
type Catalog interface {
	Variables(exec model.ExecutionResult) []model.Variable
	ShowInForm(v model.Variable, exec model.ExecutionResult) bool
}

// Section groups variable names under a heading.
type Section struct {
	Name      string
	Variables []string
}

// Sectioner supplies the section grouping of an execution. Grouping itself is
// owned by the collaborator.
type Sectioner interface {
	Sections(exec model.ExecutionResult) []Section
}

// Engine is the full execution collaborator surface.
type Engine interface {
	Describer
	Choices
	Structures
	Collections
	Validator
	Codecs
	Catalog
}

// AddressAPI searches and resolves postal addresses.
type AddressAPI interface {
	SearchAddress(ctx context.Context, term string) ([]model.AddressSuggestion, error)
	AddressDetails(ctx context.Context, placeID string) (model.Address, error)
}

// IdentityAPI resolves an email to a canonical user. Implementations return
// ErrNoMatch (or a zero ID) when nobody matches.
type IdentityAPI interface {
	UserDetails(ctx context.Context, email string) (model.UserDetails, error)
}

// ImageResizer scales an image to the target dimensions and returns the new
// encoded value.
type ImageResizer interface {
	Resize(ctx context.Context, image model.ImageValue, width, height int) (string, error)
}

// IdentityFunc adapts a function into an IdentityAPI.
type IdentityFunc func(ctx context.Context, email string) (model.UserDetails, error)

// UserDetails delegates to the underlying function.
func (fn IdentityFunc) UserDetails(ctx context.Context, email string) (model.UserDetails, error) {
	return fn(ctx, email)
}

// ResizerFunc adapts a function into an ImageResizer.
type ResizerFunc func(ctx context.Context, image model.ImageValue, width, height int) (string, error)

// Resize delegates to the underlying function.
func (fn ResizerFunc) Resize(ctx context.Context, image model.ImageValue, width, height int) (string, error) {
	return fn(ctx, image, width, height)
}
