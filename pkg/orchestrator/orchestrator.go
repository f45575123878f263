// Package orchestrator coordinates the full pipeline from schema document to
// rendered form, and the reverse path from a flat submission back to a nested
// payload posted at the assessment API.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"

	internalloader "github.com/goliatone/go-schemaform/internal/schema/loader"
	"github.com/goliatone/go-schemaform/pkg/assessment"
	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/renderers/vanilla"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom schema document loader.
func WithLoader(loader schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithLoaderOptions configures the built-in loader. Ignored when WithLoader
// supplies a loader directly.
func WithLoaderOptions(options schema.LoaderOptions) Option {
	return func(o *Orchestrator) {
		o.loaderOptions = options
		o.loaderOptionsSet = true
	}
}

// WithBuilder injects a custom form builder.
func WithBuilder(builder *form.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithExtractor injects a custom submission extractor.
func WithExtractor(extractor *form.Extractor) Option {
	return func(o *Orchestrator) {
		o.extractor = extractor
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithThemeSelector passes a go-theme selector so theme/variant choices can
// be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithDefaultTheme sets the theme/variant used when a request does not name
// one. Only meaningful together with WithThemeSelector.
func WithDefaultTheme(name, variant string) Option {
	return func(o *Orchestrator) {
		o.defaultTheme = name
		o.defaultVariant = variant
	}
}

// WithRequester wires the assessment API client used by Submit.
func WithRequester(requester assessment.Requester) Option {
	return func(o *Orchestrator) {
		o.requester = requester
	}
}

// Orchestrator ties the loader, builder, extractor, and renderer registry
// together. Missing dependencies are initialised with the built-in
// implementations so callers can start with a single constructor call.
type Orchestrator struct {
	loader           schema.Loader
	loaderOptions    schema.LoaderOptions
	loaderOptionsSet bool
	builder          *form.Builder
	extractor        *form.Extractor
	registry         *render.Registry
	defaultRenderer  string
	themeSelector    theme.ThemeSelector
	defaultTheme     string
	defaultVariant   string
	requester        assessment.Requester
	initialiseErr    error
	defaultsApplied  bool
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs required to render a form or extract a
// submission. Exactly one of Schema, Document, or Source must identify the
// schema; they are consulted in that order.
type Request struct {
	// Source identifies where the schema document lives.
	Source schema.Source

	// Document bypasses the loader when the caller already holds the payload.
	Document *schema.Document

	// Schema bypasses both loading and parsing.
	Schema *schema.Schema

	// Title overrides the schema title on the rendered form.
	Title string

	// Mode selects which fields appear. Anything but ModeBasic renders the
	// full form.
	Mode form.Mode

	// Renderer names the renderer to use. If empty, the orchestrator falls
	// back to the configured default renderer.
	Renderer string

	// RenderOptions carries per-request instructions such as prefilled values
	// or server-side errors that renderers can surface.
	RenderOptions render.RenderOptions

	// ThemeName and ThemeVariant select a theme when a selector is configured.
	ThemeName    string
	ThemeVariant string

	// SubmitPath is the assessment API path used by Submit.
	SubmitPath string
}

// Generate executes the loader, parser, builder, and renderer sequence and
// returns the rendered bytes.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	root, err := o.resolveSchema(ctx, req)
	if err != nil {
		return nil, err
	}

	f := form.Form{
		Title:    req.Title,
		Mode:     req.Mode,
		Elements: o.builder.Build(root, req.Mode),
	}
	if f.Title == "" {
		f.Title = root.Title
	}

	options := req.RenderOptions
	if options.Theme == nil {
		selection, err := o.resolveTheme(req)
		if err != nil {
			return nil, err
		}
		options.Theme = selection
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, f, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// ExtractSubmission resolves the request's schema and folds the flat
// submission values into a nested, schema-ordered record.
func (o *Orchestrator) ExtractSubmission(ctx context.Context, req Request, values map[string]any) (*form.Record, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	root, err := o.resolveSchema(ctx, req)
	if err != nil {
		return nil, err
	}
	return o.extractor.Extract(root, values), nil
}

// Submit extracts the submission and posts it through the configured
// assessment requester, returning the raw API response.
func (o *Orchestrator) Submit(ctx context.Context, req Request, values map[string]any) (json.RawMessage, error) {
	if o.requester == nil {
		return nil, errors.New("orchestrator: requester is not configured")
	}
	if req.SubmitPath == "" {
		return nil, errors.New("orchestrator: submit path is required")
	}
	payload, err := o.ExtractSubmission(ctx, req, values)
	if err != nil {
		return nil, err
	}
	response, err := o.requester.Do(ctx, "POST", req.SubmitPath, payload)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: submit: %w", err)
	}
	return response, nil
}

func (o *Orchestrator) resolveSchema(ctx context.Context, req Request) (*schema.Schema, error) {
	if req.Schema != nil {
		return req.Schema, nil
	}
	if req.Document != nil {
		root, err := req.Document.Parse()
		if err != nil {
			return nil, fmt.Errorf("orchestrator: parse document: %w", err)
		}
		return root, nil
	}
	if req.Source == nil {
		return nil, errors.New("orchestrator: schema, document, or source is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load document: %w", err)
	}
	root, err := doc.Parse()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse document: %w", err)
	}
	return root, nil
}

func (o *Orchestrator) resolveTheme(req Request) (*theme.Selection, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	name := req.ThemeName
	if name == "" {
		name = o.defaultTheme
	}
	if name == "" {
		return nil, nil
	}
	variant := req.ThemeVariant
	if variant == "" {
		variant = o.defaultVariant
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme %q: %w", name, err)
	}
	return selection, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.loader == nil {
		opts := o.loaderOptions
		if !o.loaderOptionsSet {
			opts = schema.LoaderOptions{AllowHTTPFallback: true}
		}
		o.loader = internalloader.New(opts)
	}
	if o.builder == nil {
		o.builder = form.New(form.Options{})
	}
	if o.extractor == nil {
		o.extractor = form.NewExtractor()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}

	o.defaultsApplied = true
}
