package vanilla

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemaform/pkg/fieldkey"
	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/render"
)

// elementRenderer walks a form-element tree and assembles its markup. It is
// created per render call and carries the submitted/prefill values and field
// errors for that request only.
type elementRenderer struct {
	values map[string]any
	errors map[string][]string
	b      strings.Builder
}

func newElementRenderer(options render.RenderOptions) *elementRenderer {
	return &elementRenderer{
		values: options.Values,
		errors: options.Errors,
	}
}

func esc(value string) string {
	return html.EscapeString(value)
}

func (er *elementRenderer) renderAll(elements []form.Element) string {
	for _, element := range elements {
		er.renderElement(element)
	}
	return er.b.String()
}

func (er *elementRenderer) renderElement(el form.Element) {
	switch el.Kind {
	case form.KindEmpty:
		// The key stays reserved in the DOM without rendering a control.
		fmt.Fprintf(&er.b, `<div class="sf-field sf-field--empty" data-field="%s" hidden></div>`, esc(el.Key))
	case form.KindGroup:
		er.renderGroup(el)
	case form.KindConditional:
		er.renderConditional(el)
	case form.KindRepeatable:
		er.renderRepeatable(el)
	case form.KindAction:
		disabled := ""
		if el.Disabled {
			disabled = " disabled"
		}
		fmt.Fprintf(&er.b, `<button type="button" class="sf-action" data-field="%s"%s>%s</button>`,
			esc(el.Key), disabled, esc(el.Label))
	case form.KindNote:
		fmt.Fprintf(&er.b, `<p class="sf-note" data-field="%s">%s</p>`, esc(el.Key), esc(noteText(el)))
	default:
		er.renderLeaf(el)
	}
}

func (er *elementRenderer) renderGroup(el form.Element) {
	fmt.Fprintf(&er.b, `<fieldset class="sf-group%s" data-field="%s"%s>`,
		requiredClass(el.Required), esc(el.Key), visibilityAttrs(el.Visibility))
	if el.Label != "" {
		fmt.Fprintf(&er.b, `<legend>%s</legend>`, esc(el.Label))
	}
	er.renderDescription(el)
	for _, child := range el.Children {
		er.renderElement(child)
	}
	er.b.WriteString(`</fieldset>`)
}

// renderConditional emits the discriminant radio group followed by every
// pre-built branch. Branches carry data attributes the page script uses to
// show the one matching the checked radio; the first option is checked when
// no value was submitted.
func (er *elementRenderer) renderConditional(el form.Element) {
	fmt.Fprintf(&er.b, `<fieldset class="sf-conditional" data-field="%s"%s>`, esc(el.Key), visibilityAttrs(el.Visibility))
	if el.Label != "" {
		fmt.Fprintf(&er.b, `<legend>%s</legend>`, esc(el.Label))
	}
	er.renderDescription(el)

	selected := er.valueText(el.Key)
	if selected == "" && len(el.Options) > 0 {
		selected = el.Options[0].Value
	}
	for _, option := range el.Options {
		checked := ""
		if option.Value == selected {
			checked = " checked"
		}
		fmt.Fprintf(&er.b,
			`<label class="sf-choice"><input type="radio" name="%s" value="%s"%s> %s</label>`,
			esc(el.Key), esc(option.Value), checked, esc(option.Label))
	}
	for _, child := range el.Children {
		er.renderElement(child)
	}
	er.b.WriteString(`</fieldset>`)
}

func (er *elementRenderer) renderRepeatable(el form.Element) {
	fmt.Fprintf(&er.b, `<fieldset class="sf-repeatable" data-field="%s">`, esc(el.Key))
	if el.Label != "" {
		fmt.Fprintf(&er.b, `<legend>%s</legend>`, esc(el.Label))
	}
	er.renderDescription(el)
	for _, child := range el.Children {
		er.renderElement(child)
	}
	er.b.WriteString(`</fieldset>`)
}

func (er *elementRenderer) renderLeaf(el form.Element) {
	fmt.Fprintf(&er.b, `<div class="sf-field sf-field--%s%s" data-field="%s"%s>`,
		el.Kind, requiredClass(el.Required), esc(el.Key), visibilityAttrs(el.Visibility))

	if el.Kind != form.KindCheckbox && el.Label != "" {
		fmt.Fprintf(&er.b, `<label for="%s">%s%s</label>`, esc(el.Key), esc(el.Label), requiredMark(el.Required))
	}

	switch el.Kind {
	case form.KindText:
		fmt.Fprintf(&er.b, `<input type="text" id="%s" name="%s" value="%s"%s>`,
			esc(el.Key), esc(el.Key), esc(er.valueText(el.Key)), requiredAttr(el.Required))
	case form.KindTextarea:
		fmt.Fprintf(&er.b, `<textarea id="%s" name="%s"%s>%s</textarea>`,
			esc(el.Key), esc(el.Key), requiredAttr(el.Required), esc(er.valueText(el.Key)))
	case form.KindSelect:
		er.renderSelect(el)
	case form.KindNumber:
		er.renderNumber(el)
	case form.KindCheckbox:
		checked := ""
		if truthyValue(er.rawValue(el.Key)) {
			checked = " checked"
		}
		fmt.Fprintf(&er.b, `<label class="sf-choice"><input type="checkbox" id="%s" name="%s" value="1"%s> %s</label>`,
			esc(el.Key), esc(el.Key), checked, esc(el.Label))
	}

	er.renderDescription(el)
	er.renderErrors(el.Key)
	er.b.WriteString(`</div>`)
}

func (er *elementRenderer) renderSelect(el form.Element) {
	current := er.valueText(el.Key)
	fmt.Fprintf(&er.b, `<select id="%s" name="%s"%s>`, esc(el.Key), esc(el.Key), requiredAttr(el.Required))
	er.b.WriteString(`<option value=""></option>`)
	for _, option := range el.Options {
		selected := ""
		if option.Value != "" && option.Value == current {
			selected = " selected"
		}
		fmt.Fprintf(&er.b, `<option value="%s"%s>%s</option>`,
			esc(option.Value), selected, esc(option.Label))
	}
	er.b.WriteString(`</select>`)
}

func (er *elementRenderer) renderNumber(el form.Element) {
	var attrs strings.Builder
	if el.Min != nil {
		fmt.Fprintf(&attrs, ` min="%s"`, formatBound(*el.Min))
	}
	if el.Max != nil {
		fmt.Fprintf(&attrs, ` max="%s"`, formatBound(*el.Max))
	}
	if el.Step != "" {
		fmt.Fprintf(&attrs, ` step="%s"`, esc(el.Step))
	}
	fmt.Fprintf(&er.b, `<input type="number" id="%s" name="%s" value="%s"%s%s>`,
		esc(el.Key), esc(el.Key), esc(er.valueText(el.Key)), attrs.String(), requiredAttr(el.Required))
}

func (er *elementRenderer) renderDescription(el form.Element) {
	if el.Description == "" {
		return
	}
	// Descriptions come from remote schema documents, so they pass through
	// the sanitizer before being emitted unescaped.
	cleaned := sanitizeDescription(el.Description)
	if cleaned == "" {
		return
	}
	fmt.Fprintf(&er.b, `<p class="sf-description">%s</p>`, cleaned)
}

func (er *elementRenderer) renderErrors(key string) {
	for _, message := range er.errors[key] {
		fmt.Fprintf(&er.b, `<p class="sf-error" data-error-for="%s">%s</p>`, esc(key), esc(message))
	}
}

func (er *elementRenderer) rawValue(key string) (any, bool) {
	if len(er.values) == 0 {
		return nil, false
	}
	return fieldkey.Resolve(er.values, key)
}

func (er *elementRenderer) valueText(key string) string {
	raw, ok := er.rawValue(key)
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func truthyValue(raw any, ok bool) bool {
	if !ok || raw == nil {
		return false
	}
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch v {
		case "", "0", "false", "off", "no":
			return false
		default:
			return true
		}
	case float64:
		return v != 0
	default:
		return true
	}
}

func noteText(el form.Element) string {
	if el.Description != "" {
		return el.Description
	}
	return el.Label
}

func visibilityAttrs(visibility *form.Visibility) string {
	if visibility == nil {
		return ""
	}
	return fmt.Sprintf(` data-visible-when="%s" data-visible-option="%d"`, esc(visibility.Discriminant), visibility.Option)
}

func requiredAttr(required bool) string {
	if required {
		return " required"
	}
	return ""
}

func requiredClass(required bool) string {
	if required {
		return " sf-required"
	}
	return ""
}

func requiredMark(required bool) string {
	if required {
		return `<span class="sf-required-mark">*</span>`
	}
	return ""
}

func formatBound(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
