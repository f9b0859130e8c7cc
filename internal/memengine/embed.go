package memengine

import "embed"

// Samples holds the bundled sample definitions.
//
//go:embed samples/*.yaml
var Samples embed.FS

// LoadSample parses a bundled definition, e.g. "lease.yaml".
func LoadSample(name string) (Definition, error) {
	return LoadFS(Samples, "samples/"+name)
}
