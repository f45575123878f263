// Package vanilla renders built forms as dependency-free HTML. Element markup
// is assembled in Go; the outer form chrome comes from an embedded pongo2
// template so integrators can swap the envelope without forking the package.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/render"
	rendertemplate "github.com/goliatone/go-schemaform/pkg/render/template"
	gotemplate "github.com/goliatone/go-schemaform/pkg/render/template/gotemplate"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// Renderer emits HTML for built forms.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

// Ensure the implementation satisfies the public interface.
var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}
	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the full form document.
func (r *Renderer) Render(_ context.Context, f form.Form, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	content := newElementRenderer(options).renderAll(f.Elements)

	method := options.Method
	if method == "" {
		method = "POST"
	}

	result, err := r.templates.RenderTemplate("templates/form", map[string]any{
		"title":       f.Title,
		"mode":        string(f.Mode),
		"content":     content,
		"action":      options.Action,
		"method":      method,
		"theme_class": themeClass(options),
		"css_vars":    themeCSSVars(options),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func themeClass(options render.RenderOptions) string {
	if options.Theme == nil || options.Theme.Theme == "" {
		return ""
	}
	class := "sf-theme--" + options.Theme.Theme
	if options.Theme.Variant != "" {
		class += " sf-variant--" + options.Theme.Variant
	}
	return class
}

// themeCSSVars flattens manifest tokens into an inline custom-property list.
func themeCSSVars(options render.RenderOptions) string {
	if options.Theme == nil || options.Theme.Manifest == nil || len(options.Theme.Manifest.Tokens) == 0 {
		return ""
	}
	tokens := options.Theme.Manifest.Tokens
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString("--")
		b.WriteString(name)
		b.WriteString(":")
		b.WriteString(tokens[name])
		b.WriteString(";")
	}
	return b.String()
}
