package memengine

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-varform/pkg/model"
)

// Definition describes a template: its variables, reusable structure types and
// section grouping.
type Definition struct {
	Name       string                `json:"name" yaml:"name"`
	Variables  []VariableDef         `json:"variables" yaml:"variables"`
	Structures map[string][]FieldDef `json:"structures" yaml:"structures"`
	Sections   []SectionDef          `json:"sections" yaml:"sections"`
	Users      []model.UserDetails   `json:"users" yaml:"users"`
}

// VariableDef is one top-level variable.
type VariableDef struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Description string   `json:"description" yaml:"description"`
	Choices     []string `json:"choices" yaml:"choices"`
	Structure   string   `json:"structure" yaml:"structure"`
	ElementType string   `json:"elementType" yaml:"elementType"`
	When        string   `json:"when" yaml:"when"`
	Hidden      bool     `json:"hidden" yaml:"hidden"`
	ServiceName string   `json:"serviceName" yaml:"serviceName"`
}

// FieldDef is one field of a structure type.
type FieldDef struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Description string   `json:"description" yaml:"description"`
	Choices     []string `json:"choices" yaml:"choices"`
	Structure   string   `json:"structure" yaml:"structure"`
}

// SectionDef groups variables under a heading.
type SectionDef struct {
	Name      string   `json:"name" yaml:"name"`
	Variables []string `json:"variables" yaml:"variables"`
}

// Parse decodes a definition from JSON or YAML.
func Parse(data []byte, source string) (Definition, error) {
	var def Definition
	if len(strings.TrimSpace(string(data))) == 0 {
		return Definition{}, fmt.Errorf("memengine: definition %s is empty", source)
	}
	if err := json.Unmarshal(data, &def); err == nil {
		return def, nil
	}
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("memengine: parse %s: %w", source, err)
	}
	return def, nil
}

// LoadFS reads and parses a definition from fsys.
func LoadFS(fsys fs.FS, path string) (Definition, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Definition{}, fmt.Errorf("memengine: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFile reads and parses a definition from disk.
func LoadFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("memengine: read %s: %w", path, err)
	}
	return Parse(data, path)
}
