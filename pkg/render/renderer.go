// Package render turns a live form into a View snapshot and hands it to
// named renderers (HTML, terminal, JSON).
package render

import (
	"context"
)

// Renderer converts a View into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options RenderOptions) ([]byte, error)
}
