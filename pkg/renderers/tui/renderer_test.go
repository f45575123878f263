package tui_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/renderers/tui"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// scriptedDriver replays canned answers in order. Any prompt beyond the
// script fails the test.
type scriptedDriver struct {
	t       *testing.T
	answers []any
	index   int
	infos   []string
}

func (d *scriptedDriver) next(kind string) any {
	d.t.Helper()
	if d.index >= len(d.answers) {
		d.t.Fatalf("unexpected %s prompt at step %d", kind, d.index)
	}
	answer := d.answers[d.index]
	d.index++
	return answer
}

func (d *scriptedDriver) Input(ctx context.Context, cfg tui.InputConfig) (string, error) {
	answer := d.next("input")
	text, ok := answer.(string)
	if !ok {
		d.t.Fatalf("step %d: expected string answer for %q, got %T", d.index-1, cfg.Message, answer)
	}
	if cfg.Validator != nil && text != "" {
		if err := cfg.Validator(text); err != nil {
			d.t.Fatalf("answer %q rejected for %q: %v", text, cfg.Message, err)
		}
	}
	return text, nil
}

func (d *scriptedDriver) Confirm(ctx context.Context, cfg tui.ConfirmConfig) (bool, error) {
	answer := d.next("confirm")
	value, ok := answer.(bool)
	if !ok {
		d.t.Fatalf("step %d: expected bool answer for %q, got %T", d.index-1, cfg.Message, answer)
	}
	return value, nil
}

func (d *scriptedDriver) Select(ctx context.Context, cfg tui.SelectConfig) (int, error) {
	answer := d.next("select")
	choice, ok := answer.(int)
	if !ok {
		d.t.Fatalf("step %d: expected int answer for %q, got %T", d.index-1, cfg.Message, answer)
	}
	if choice < 0 || choice >= len(cfg.Options) {
		d.t.Fatalf("step %d: choice %d out of range for %v", d.index-1, choice, cfg.Options)
	}
	return choice, nil
}

func (d *scriptedDriver) TextArea(ctx context.Context, cfg tui.TextAreaConfig) (string, error) {
	answer := d.next("textarea")
	text, ok := answer.(string)
	if !ok {
		d.t.Fatalf("step %d: expected string answer for %q, got %T", d.index-1, cfg.Message, answer)
	}
	return text, nil
}

func (d *scriptedDriver) Info(ctx context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

// abortingDriver aborts at the first prompt.
type abortingDriver struct{}

func (abortingDriver) Input(ctx context.Context, cfg tui.InputConfig) (string, error) {
	return "", tui.ErrAborted
}
func (abortingDriver) Confirm(ctx context.Context, cfg tui.ConfirmConfig) (bool, error) {
	return false, tui.ErrAborted
}
func (abortingDriver) Select(ctx context.Context, cfg tui.SelectConfig) (int, error) {
	return 0, tui.ErrAborted
}
func (abortingDriver) TextArea(ctx context.Context, cfg tui.TextAreaConfig) (string, error) {
	return "", tui.ErrAborted
}
func (abortingDriver) Info(ctx context.Context, msg string) error { return nil }

func buildTestForm(t *testing.T, raw string) form.Form {
	t.Helper()
	root, err := schema.ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	builder := form.New(form.Options{})
	return form.Form{
		Title:    root.Title,
		Mode:     form.ModeFull,
		Elements: builder.Build(root, form.ModeFull),
	}
}

func TestCollectLeaves(t *testing.T) {
	f := buildTestForm(t, `{
		"title": "Field Entry",
		"type": "object",
		"required": ["cropType"],
		"properties": {
			"cropType": {"type": "string", "enum": ["Rice", "Wheat"]},
			"area": {"type": "number", "minimum": 0},
			"organic": {"type": "boolean"}
		}
	}`)

	driver := &scriptedDriver{t: t, answers: []any{
		1,      // cropType select: Rice, Wheat (required, no blank entry)
		"12.5", // area input
		true,   // organic confirm
	}}
	r := tui.New(tui.WithPromptDriver(driver))

	values, err := r.Collect(context.Background(), f, render.RenderOptions{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := map[string]any{
		"cropType": "Wheat",
		"area":     "12.5",
		"organic":  true,
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infos) == 0 || driver.infos[0] != "Field Entry" {
		t.Fatalf("expected title info message, got %v", driver.infos)
	}
}

func TestCollectOptionalSelectBlank(t *testing.T) {
	f := buildTestForm(t, `{
		"type": "object",
		"properties": {
			"cropType": {"type": "string", "enum": ["Rice", "Wheat"]}
		}
	}`)

	// Index 0 is the "(leave blank)" entry for optional selects.
	driver := &scriptedDriver{t: t, answers: []any{0}}
	r := tui.New(tui.WithPromptDriver(driver))

	values, err := r.Collect(context.Background(), f, render.RenderOptions{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got := values["cropType"]; got != "" {
		t.Fatalf("expected blank answer, got %v", got)
	}
}

func TestCollectConditionalOnlyChosenBranch(t *testing.T) {
	f := buildTestForm(t, `{
		"type": "object",
		"properties": {
			"residue": {
				"oneOf": [
					{
						"title": "Removed",
						"type": "object",
						"properties": {"amount": {"type": "number"}}
					},
					{
						"title": "Burned",
						"type": "object",
						"properties": {"fraction": {"type": "number"}}
					}
				]
			}
		}
	}`)

	driver := &scriptedDriver{t: t, answers: []any{
		1,     // choose Burned
		"0.4", // fraction; the Removed branch must not prompt
	}}
	r := tui.New(tui.WithPromptDriver(driver))

	values, err := r.Collect(context.Background(), f, render.RenderOptions{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got := values["residue"]; got != "1" {
		t.Fatalf("expected discriminant \"1\", got %v", got)
	}
	if got := values["residue_option_1__fraction"]; got != "0.4" {
		t.Fatalf("expected fraction answer, got %v", got)
	}
	if _, present := values["residue_option_0__amount"]; present {
		t.Fatal("unchosen branch should not collect values")
	}
	if driver.index != len(driver.answers) {
		t.Fatalf("expected all %d answers consumed, used %d", len(driver.answers), driver.index)
	}
}

func TestCollectRepeatableReindexesItems(t *testing.T) {
	f := buildTestForm(t, `{
		"type": "object",
		"properties": {
			"applications": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {"rate": {"type": "number"}}
				}
			}
		}
	}`)

	driver := &scriptedDriver{t: t, answers: []any{
		"30",  // item 0 rate
		true,  // add another
		"45",  // item 1 rate
		false, // stop
	}}
	r := tui.New(tui.WithPromptDriver(driver))

	values, err := r.Collect(context.Background(), f, render.RenderOptions{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	container, ok := values["applications"].(map[string]any)
	if !ok {
		t.Fatalf("expected array container, got %T", values["applications"])
	}
	wrapper, ok := container[form.ItemsWrapperKey].(map[string]any)
	if !ok {
		t.Fatalf("expected items wrapper, got %T", container[form.ItemsWrapperKey])
	}
	for i, wantRate := range []string{"30", "45"} {
		itemKey := fmt.Sprintf("applications_item_%d", i)
		item, ok := wrapper[itemKey].(map[string]any)
		if !ok {
			t.Fatalf("missing item %s: %v", itemKey, wrapper)
		}
		if got := item[itemKey+"__rate"]; got != wantRate {
			t.Fatalf("item %d rate: want %q, got %v", i, wantRate, got)
		}
	}
}

func TestCollectRepeatableHonorsMaxItems(t *testing.T) {
	f := buildTestForm(t, `{
		"type": "object",
		"properties": {
			"applications": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {"rate": {"type": "number"}}
				}
			}
		}
	}`)

	// Always answering "add another" with yes must stop at the cap without
	// a trailing confirm prompt.
	driver := &scriptedDriver{t: t, answers: []any{
		"1", true,
		"2", true,
	}}
	r := tui.New(tui.WithPromptDriver(driver), tui.WithMaxItems(2))

	values, err := r.Collect(context.Background(), f, render.RenderOptions{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	container := values["applications"].(map[string]any)
	wrapper := container[form.ItemsWrapperKey].(map[string]any)
	if len(wrapper) != 2 {
		t.Fatalf("expected 2 items, got %d", len(wrapper))
	}
}

func TestCollectAbort(t *testing.T) {
	f := buildTestForm(t, `{
		"type": "object",
		"properties": {"note": {"type": "string"}}
	}`)

	r := tui.New(tui.WithPromptDriver(abortingDriver{}))
	if _, err := r.Collect(context.Background(), f, render.RenderOptions{}); err != tui.ErrAborted {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestRenderSerializesJSON(t *testing.T) {
	f := buildTestForm(t, `{
		"type": "object",
		"properties": {
			"note": {"type": "string"},
			"organic": {"type": "boolean"}
		}
	}`)

	driver := &scriptedDriver{t: t, answers: []any{"keep moist", true}}
	r := tui.New(tui.WithPromptDriver(driver))

	out, err := r.Render(context.Background(), f, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := map[string]any{"note": "keep moist", "organic": true}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if got := r.ContentType(); got != "application/json" {
		t.Fatalf("content type: %q", got)
	}
}

func TestRenderFormEncoded(t *testing.T) {
	f := buildTestForm(t, `{
		"type": "object",
		"properties": {"note": {"type": "string"}}
	}`)

	driver := &scriptedDriver{t: t, answers: []any{"dry season"}}
	r := tui.New(tui.WithPromptDriver(driver), tui.WithOutputFormat(tui.OutputFormatForm))

	out, err := r.Render(context.Background(), f, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != "note=dry+season" {
		t.Fatalf("unexpected form encoding: %q", got)
	}
	if got := r.ContentType(); got != "application/x-www-form-urlencoded" {
		t.Fatalf("content type: %q", got)
	}
}

func TestCollectSeedsDefaults(t *testing.T) {
	f := buildTestForm(t, `{
		"type": "object",
		"properties": {"note": {"type": "string"}}
	}`)

	var seen tui.InputConfig
	driver := &capturingDriver{scripted: &scriptedDriver{t: t, answers: []any{"updated"}}, input: &seen}
	r := tui.New(tui.WithPromptDriver(driver))

	values, err := r.Collect(context.Background(), f, render.RenderOptions{
		Values: map[string]any{"note": "original"},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if seen.Default != "original" {
		t.Fatalf("expected seeded default, got %q", seen.Default)
	}
	if values["note"] != "updated" {
		t.Fatalf("expected updated answer, got %v", values["note"])
	}
}

type capturingDriver struct {
	scripted *scriptedDriver
	input    *tui.InputConfig
}

func (d *capturingDriver) Input(ctx context.Context, cfg tui.InputConfig) (string, error) {
	*d.input = cfg
	return d.scripted.Input(ctx, cfg)
}
func (d *capturingDriver) Confirm(ctx context.Context, cfg tui.ConfirmConfig) (bool, error) {
	return d.scripted.Confirm(ctx, cfg)
}
func (d *capturingDriver) Select(ctx context.Context, cfg tui.SelectConfig) (int, error) {
	return d.scripted.Select(ctx, cfg)
}
func (d *capturingDriver) TextArea(ctx context.Context, cfg tui.TextAreaConfig) (string, error) {
	return d.scripted.TextArea(ctx, cfg)
}
func (d *capturingDriver) Info(ctx context.Context, msg string) error {
	return d.scripted.Info(ctx, msg)
}
