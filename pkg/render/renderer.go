// Package render defines the surface between built forms and their output
// formats, plus a registry for renderer discovery.
package render

import (
	"context"

	"github.com/goliatone/go-schemaform/pkg/form"
)

// Renderer converts a built form into a byte representation (HTML, terminal
// output, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, f form.Form, options RenderOptions) ([]byte, error)
}
