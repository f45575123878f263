// Package schemaform turns JSON Schema documents into renderable form trees
// and folds flat form submissions back into nested, schema-shaped payloads.
// The root package re-exports the orchestrator entry points so most callers
// need a single import.
package schemaform

import (
	"context"
	"encoding/json"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-schemaform/pkg/assessment"
	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/orchestrator"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// Request describes the inputs for Generate, ExtractSubmission, and Submit.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML loads the schema source, builds a form for the requested mode,
// and renders it using the named renderer. It is the simplest entry point for
// callers that just want HTML output.
func GenerateHTML(ctx context.Context, source schema.Source, mode form.Mode, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Source:   source,
		Mode:     mode,
		Renderer: rendererName,
	})
}

// GenerateHTMLFromSchema renders a form from an already parsed schema,
// bypassing the loader stage while still delegating to the orchestrator.
func GenerateHTMLFromSchema(ctx context.Context, root *schema.Schema, mode form.Mode, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Schema:   root,
		Mode:     mode,
		Renderer: rendererName,
	})
}

// ExtractSubmission folds flat submitted values into the nested payload shape
// declared by the schema.
func ExtractSubmission(ctx context.Context, root *schema.Schema, values map[string]any, options ...orchestrator.Option) (*form.Record, error) {
	gen := orchestrator.New(options...)
	return gen.ExtractSubmission(ctx, orchestrator.Request{Schema: root}, values)
}

// Submit extracts the submission and posts it at the assessment API path.
func Submit(ctx context.Context, root *schema.Schema, path string, values map[string]any, options ...orchestrator.Option) (json.RawMessage, error) {
	gen := orchestrator.New(options...)
	return gen.Submit(ctx, orchestrator.Request{Schema: root, SubmitPath: path}, values)
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithRequester wires the assessment API client used by Submit.
func WithRequester(requester assessment.Requester) orchestrator.Option {
	return orchestrator.WithRequester(requester)
}
