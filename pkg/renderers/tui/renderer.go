// Package tui walks a built form as a sequence of terminal prompts and
// serializes the collected flat values. The prompt surface sits behind
// PromptDriver so tests can script an entire session.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemaform/pkg/fieldkey"
	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/render"
)

const defaultMaxItems = 10

// Renderer drives an interactive form session.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	maxItems     int
}

// Ensure the implementation satisfies the public interface.
var _ render.Renderer = (*Renderer)(nil)

// New constructs a Renderer backed by survey prompts unless a driver is
// injected.
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		maxItems:     defaultMaxItems,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Renderer) Name() string {
	return "tui"
}

func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatYAML:
		return "application/yaml"
	case OutputFormatForm:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render runs the prompt session and serializes the collected values.
func (r *Renderer) Render(ctx context.Context, f form.Form, options render.RenderOptions) ([]byte, error) {
	values, err := r.Collect(ctx, f, options)
	if err != nil {
		return nil, err
	}
	return r.serialize(values)
}

// Collect walks the element tree prompting for every visible field and
// returns the flat value map, ready for extraction.
func (r *Renderer) Collect(ctx context.Context, f form.Form, options render.RenderOptions) (map[string]any, error) {
	st := newState(options.Values)
	if f.Title != "" {
		if err := r.driver.Info(ctx, f.Title); err != nil {
			return nil, err
		}
	}
	if err := r.walk(ctx, f.Elements, st); err != nil {
		return nil, err
	}
	return st.values, nil
}

func (r *Renderer) walk(ctx context.Context, elements []form.Element, st *state) error {
	for _, element := range elements {
		if err := r.walkElement(ctx, element, st); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) walkElement(ctx context.Context, el form.Element, st *state) error {
	switch el.Kind {
	case form.KindEmpty, form.KindAction:
		return nil
	case form.KindNote:
		return r.driver.Info(ctx, noteMessage(el))
	case form.KindGroup:
		if el.Label != "" {
			if err := r.driver.Info(ctx, "── "+el.Label); err != nil {
				return err
			}
		}
		return r.walk(ctx, el.Children, st)
	case form.KindConditional:
		return r.walkConditional(ctx, el, st)
	case form.KindRepeatable:
		return r.walkRepeatable(ctx, el, st)
	default:
		return r.promptLeaf(ctx, el, st)
	}
}

// walkConditional asks for the discriminant choice first, then prompts only
// the branch whose visibility predicate matches. Every branch was built
// eagerly; the session simply never enters the others.
func (r *Renderer) walkConditional(ctx context.Context, el form.Element, st *state) error {
	labels := make([]string, len(el.Options))
	for i, option := range el.Options {
		labels[i] = option.Label
	}

	choice, err := r.driver.Select(ctx, SelectConfig{
		Message:      promptMessage(el),
		Options:      labels,
		DefaultIndex: r.defaultChoice(el, st),
	})
	if err != nil {
		return err
	}
	if choice < 0 {
		choice = 0
	}
	st.set(el.Key, strconv.Itoa(choice))

	for _, branch := range el.Children {
		if branch.Visibility == nil || branch.Visibility.Option != choice {
			continue
		}
		if err := r.walkElement(ctx, branch, st); err != nil {
			return err
		}
	}
	return nil
}

// walkRepeatable prompts the pre-built first item, then offers to append
// more entries. Additional items reuse the first slot's element tree with
// their keys re-indexed, which is how the flat namespace encodes position.
func (r *Renderer) walkRepeatable(ctx context.Context, el form.Element, st *state) error {
	if len(el.Children) == 0 {
		return nil
	}
	slot := el.Children[0]
	if slot.Kind == form.KindAction {
		return nil
	}
	if el.Label != "" {
		if err := r.driver.Info(ctx, "── "+el.Label); err != nil {
			return err
		}
	}

	firstKey := fieldkey.Item(el.Key, 0)
	for index := 0; index < r.maxItems; index++ {
		itemKey := fieldkey.Item(el.Key, index)
		item := slot
		if index > 0 {
			item = reindexElement(slot, firstKey, itemKey)
		}

		itemState := newState(nil)
		if err := r.walkElement(ctx, item, itemState); err != nil {
			return err
		}
		st.addItem(el.Key, itemKey, itemState.values)

		more, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add another %s entry?", strings.ToLower(displayLabel(el))),
		})
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return nil
}

func (r *Renderer) promptLeaf(ctx context.Context, el form.Element, st *state) error {
	switch el.Kind {
	case form.KindText:
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: promptMessage(el),
			Default: st.defaultText(el.Key),
			Help:    el.Description,
		})
		if err != nil {
			return err
		}
		st.set(el.Key, answer)
	case form.KindTextarea:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: promptMessage(el),
			Default: st.defaultText(el.Key),
			Help:    el.Description,
		})
		if err != nil {
			return err
		}
		st.set(el.Key, answer)
	case form.KindSelect:
		return r.promptSelect(ctx, el, st)
	case form.KindNumber:
		return r.promptNumber(ctx, el, st)
	case form.KindCheckbox:
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: promptMessage(el),
			Help:    el.Description,
		})
		if err != nil {
			return err
		}
		st.set(el.Key, answer)
	}
	return nil
}

func (r *Renderer) promptSelect(ctx context.Context, el form.Element, st *state) error {
	labels := make([]string, 0, len(el.Options)+1)
	offset := 0
	if !el.Required {
		labels = append(labels, "(leave blank)")
		offset = 1
	}
	for _, option := range el.Options {
		labels = append(labels, option.Label)
	}

	defaultIndex := 0
	if current := st.defaultText(el.Key); current != "" {
		for i, option := range el.Options {
			if option.Value == current {
				defaultIndex = i + offset
				break
			}
		}
	}

	choice, err := r.driver.Select(ctx, SelectConfig{
		Message:      promptMessage(el),
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         el.Description,
	})
	if err != nil {
		return err
	}
	if choice < offset {
		st.set(el.Key, "")
		return nil
	}
	st.set(el.Key, el.Options[choice-offset].Value)
	return nil
}

func (r *Renderer) promptNumber(ctx context.Context, el form.Element, st *state) error {
	answer, err := r.driver.Input(ctx, InputConfig{
		Message:   promptMessage(el),
		Default:   st.defaultText(el.Key),
		Help:      el.Description,
		Validator: numberValidator(el),
	})
	if err != nil {
		return err
	}
	st.set(el.Key, answer)
	return nil
}

func numberValidator(el form.Element) func(string) error {
	return func(input string) error {
		if input == "" {
			if el.Required {
				return fmt.Errorf("%s is required", displayLabel(el))
			}
			return nil
		}
		value, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if el.Min != nil && value < *el.Min {
			return fmt.Errorf("must be at least %v", *el.Min)
		}
		if el.Max != nil && value > *el.Max {
			return fmt.Errorf("must be at most %v", *el.Max)
		}
		return nil
	}
}

func (r *Renderer) defaultChoice(el form.Element, st *state) int {
	if raw := st.defaultText(el.Key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 && parsed < len(el.Options) {
			return parsed
		}
	}
	return 0
}

// reindexElement clones a repeatable slot's subtree, replacing the first
// slot's key prefix with the target slot's.
func reindexElement(el form.Element, from, to string) form.Element {
	out := el
	out.Key = strings.Replace(el.Key, from, to, 1)
	if el.Visibility != nil {
		visibility := *el.Visibility
		visibility.Discriminant = strings.Replace(visibility.Discriminant, from, to, 1)
		out.Visibility = &visibility
	}
	if len(el.Children) > 0 {
		out.Children = make([]form.Element, len(el.Children))
		for i, child := range el.Children {
			out.Children[i] = reindexElement(child, from, to)
		}
	}
	return out
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatYAML:
		return yaml.Marshal(values)
	case OutputFormatForm:
		pairs := url.Values{}
		for key, value := range flattenScalars(values) {
			pairs.Set(key, value)
		}
		return []byte(pairs.Encode()), nil
	case OutputFormatPrettyText:
		flat := flattenScalars(values)
		keys := make([]string, 0, len(flat))
		for key := range flat {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, key := range keys {
			fmt.Fprintf(&b, "%s: %s\n", key, flat[key])
		}
		return []byte(b.String()), nil
	default:
		return json.MarshalIndent(values, "", "  ")
	}
}

// flattenScalars lifts nested containers back into flat key/value pairs for
// the line-oriented output formats.
func flattenScalars(values map[string]any) map[string]string {
	out := make(map[string]string)
	for key, value := range values {
		switch v := value.(type) {
		case map[string]any:
			for nestedKey, nestedValue := range flattenScalars(v) {
				out[nestedKey] = nestedValue
			}
		case string:
			out[key] = v
		case bool:
			out[key] = strconv.FormatBool(v)
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			out[key] = strconv.Itoa(v)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}

func promptMessage(el form.Element) string {
	label := displayLabel(el)
	if el.Required {
		return label + " *"
	}
	return label
}

func displayLabel(el form.Element) string {
	if el.Label != "" {
		return el.Label
	}
	return el.Key
}

func noteMessage(el form.Element) string {
	if el.Description != "" {
		return el.Description
	}
	return el.Label
}
