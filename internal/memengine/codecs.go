package memengine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-varform/pkg/model"
)

type identityValue struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type signatureValue struct {
	Identity    identityValue `json:"identity"`
	ServiceName string        `json:"serviceName"`
}

func decodeIdentity(value string) (identityValue, error) {
	var out identityValue
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return identityValue{}, fmt.Errorf("memengine: decode identity: %w", err)
	}
	return out, nil
}

func decodeSignature(value string) (signatureValue, error) {
	var out signatureValue
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return signatureValue{}, fmt.Errorf("memengine: decode signature: %w", err)
	}
	return out, nil
}

func decodeAddress(value string) (model.Address, error) {
	var out model.Address
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return model.Address{}, fmt.Errorf("memengine: decode address: %w", err)
	}
	return out, nil
}

// CreateAddress implements engine.Codecs.
func (e *Engine) CreateAddress(details model.Address) (string, error) {
	if details.PlaceID == "" {
		return "", errors.New("memengine: address without place id")
	}
	if details.FormattedAddress == "" {
		details.FormattedAddress = e.FormattedAddress(details)
	}
	return encode(details)
}

// Address implements engine.Codecs.
func (e *Engine) Address(value string) (model.Address, error) {
	return decodeAddress(value)
}

// FormattedAddress implements engine.Codecs.
func (e *Engine) FormattedAddress(address model.Address) string {
	if address.FormattedAddress != "" {
		return address.FormattedAddress
	}
	street := strings.TrimSpace(address.StreetNumber + " " + address.StreetName)
	region := strings.TrimSpace(address.State + " " + address.ZipCode)
	var parts []string
	for _, part := range []string{street, address.City, region, address.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// CreateIdentityInternalValue implements engine.Codecs.
func (e *Engine) CreateIdentityInternalValue(id, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", errors.New("memengine: identity without email")
	}
	return encode(identityValue{ID: id, Email: email})
}

// IdentityEmail implements engine.Codecs. It also reads the identity nested
// in an external signature value.
func (e *Engine) IdentityEmail(value string) (string, error) {
	identity, err := decodeIdentity(value)
	if err != nil {
		return "", err
	}
	if identity.Email == "" {
		if sig, err := decodeSignature(value); err == nil {
			return sig.Identity.Email, nil
		}
	}
	return identity.Email, nil
}

// CreateExternalSignatureValue implements engine.Codecs.
func (e *Engine) CreateExternalSignatureValue(id, email, serviceName string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", errors.New("memengine: signature without email")
	}
	if strings.TrimSpace(serviceName) == "" {
		return "", errors.New("memengine: signature without service name")
	}
	return encode(signatureValue{
		Identity:    identityValue{ID: id, Email: email},
		ServiceName: serviceName,
	})
}

// ExternalSignatureServiceName implements engine.Codecs.
func (e *Engine) ExternalSignatureServiceName(v model.Variable, _ model.ExecutionResult) string {
	return variable(v).serviceName
}
