package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry per-request data renderers can use without mutating the
// build pipeline.
type RenderOptions struct {
	// Action is the submission target of the rendered form.
	Action string
	// Method is the submission HTTP method. Defaults to POST.
	Method string
	// Values pre-populates controls, keyed by field key. Accepts the same
	// flat-or-nested shapes the extractor resolves.
	Values map[string]any
	// Errors surfaces server-side validation feedback keyed by field key.
	Errors map[string][]string
	// Theme is a resolved go-theme selection. Renderers derive class names and
	// design tokens from it.
	Theme *theme.Selection
}
