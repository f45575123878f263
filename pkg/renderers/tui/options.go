package tui

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits the flat value map as JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML emits the flat value map as YAML.
	OutputFormatYAML OutputFormat = "yaml"
	// OutputFormatForm emits application/x-www-form-urlencoded pairs.
	OutputFormatForm OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithMaxItems caps how many entries a repeatable group collects in one
// session.
func WithMaxItems(limit int) Option {
	return func(r *Renderer) {
		if limit > 0 {
			r.maxItems = limit
		}
	}
}
