// Package config loads host configuration for a form: per-type input props,
// image target dimensions, the address source and the log level.
// Files may be JSON or YAML.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-varform/pkg/model"
)

// Input props keys for the image target size.
const (
	PropImageWidth  = "width"
	PropImageHeight = "height"
)

// Config is the loaded host configuration.
type Config struct {
	InputProps model.InputConfig `json:"inputProps" yaml:"inputProps"`
	Image      Image             `json:"image" yaml:"image"`
	AddressURL string            `json:"addressURL" yaml:"addressURL"`

	// AddressBook is a YAML file of addresses served in-process when
	// AddressURL is empty.
	AddressBook string `json:"addressBook" yaml:"addressBook"`
	LogLevel    string `json:"logLevel" yaml:"logLevel"`
}

// Image holds the resize target. Zero values keep the editor defaults.
type Image struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Parse decodes data as JSON, then YAML, and normalises the result. source
// names the input in error messages.
func Parse(data []byte, source string) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, fmt.Errorf("config: file %s is empty", source)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		cfg = Config{}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: invalid JSON or YAML", source)
		}
	}
	return normalise(cfg, source)
}

// LoadFile reads and parses the file at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads and parses path from fsys.
func LoadFS(fsys fs.FS, path string) (Config, error) {
	if fsys == nil {
		return Config{}, errors.New("config: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Inputs returns the input config with the image size folded into the Image
// entry, ready for the orchestrator.
func (c Config) Inputs() model.InputConfig {
	out := make(model.InputConfig, len(c.InputProps)+1)
	for key, props := range c.InputProps {
		out[key] = props.Clone()
	}
	if c.Image.Width == 0 && c.Image.Height == 0 {
		return out
	}
	image := out[string(model.TypeImage)]
	if image == nil {
		image = model.InputProps{}
	}
	if c.Image.Width > 0 {
		image[PropImageWidth] = c.Image.Width
	}
	if c.Image.Height > 0 {
		image[PropImageHeight] = c.Image.Height
	}
	out[string(model.TypeImage)] = image
	return out
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func normalise(cfg Config, source string) (Config, error) {
	if cfg.Image.Width < 0 || cfg.Image.Height < 0 {
		return Config{}, fmt.Errorf("config: file %s defines a negative image size", source)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	cfg.AddressURL = strings.TrimSpace(cfg.AddressURL)
	cfg.AddressBook = strings.TrimSpace(cfg.AddressBook)

	if len(cfg.InputProps) == 0 {
		cfg.InputProps = nil
		return cfg, nil
	}
	inputs := make(model.InputConfig, len(cfg.InputProps))
	for key, props := range cfg.InputProps {
		trimmed := strings.TrimSpace(key)
		canonical := trimmed
		if trimmed != model.Wildcard {
			typ, ok := model.ParseVariableType(trimmed)
			if !ok {
				return Config{}, fmt.Errorf("config: file %s defines input props for unknown type %q", source, key)
			}
			canonical = string(typ)
		}
		if _, exists := inputs[canonical]; exists {
			return Config{}, fmt.Errorf("config: file %s defines duplicate input props for %q", source, canonical)
		}
		inputs[canonical] = props.Clone()
	}
	cfg.InputProps = inputs
	return cfg, nil
}
