package orchestrator

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

const cropSchema = `{
	"title": "Crop Assessment",
	"type": "object",
	"required": ["cropType"],
	"properties": {
		"cropType": {"type": "string", "enum": ["Rice", "Wheat"]},
		"area": {"type": "number", "minimum": 0}
	}
}`

type captureRenderer struct {
	name    string
	form    form.Form
	options render.RenderOptions
}

func (r *captureRenderer) Name() string {
	if r.name != "" {
		return r.name
	}
	return "capture"
}

func (r *captureRenderer) ContentType() string { return "text/plain" }

func (r *captureRenderer) Render(_ context.Context, f form.Form, options render.RenderOptions) ([]byte, error) {
	r.form = f
	r.options = options
	return []byte(f.Title), nil
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}

type stubRequester struct {
	method   string
	path     string
	body     any
	response json.RawMessage
	err      error
}

func (s *stubRequester) Do(_ context.Context, method, path string, body any) (json.RawMessage, error) {
	s.method = method
	s.path = path
	s.body = body
	return s.response, s.err
}

func testDocument(t *testing.T) schema.Document {
	t.Helper()
	return schema.MustNewDocument(schema.SourceFromFS("crop.json"), []byte(cropSchema))
}

func TestGenerateFromDocument(t *testing.T) {
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(WithRegistry(registry), WithDefaultRenderer(renderer.Name()))

	doc := testDocument(t)
	out, err := orch.Generate(context.Background(), Request{
		Document: &doc,
		Mode:     form.ModeFull,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != "Crop Assessment" {
		t.Fatalf("unexpected output: %q", out)
	}
	if renderer.form.Title != "Crop Assessment" {
		t.Fatalf("schema title not applied: %q", renderer.form.Title)
	}
	if got := len(renderer.form.Elements); got != 2 {
		t.Fatalf("expected 2 elements, got %d", got)
	}
}

func TestGenerateTitleOverride(t *testing.T) {
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(WithRegistry(registry), WithDefaultRenderer(renderer.Name()))

	doc := testDocument(t)
	if _, err := orch.Generate(context.Background(), Request{
		Document: &doc,
		Title:    "Field Survey",
	}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if renderer.form.Title != "Field Survey" {
		t.Fatalf("title override not applied: %q", renderer.form.Title)
	}
}

func TestGenerateRequiresSchemaInput(t *testing.T) {
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(WithRegistry(registry), WithDefaultRenderer(renderer.Name()))

	_, err := orch.Generate(context.Background(), Request{})
	if err == nil || !strings.Contains(err.Error(), "schema, document, or source") {
		t.Fatalf("expected missing input error, got %v", err)
	}
}

func TestGenerateUnknownRendererFails(t *testing.T) {
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(WithRegistry(registry))

	doc := testDocument(t)
	_, err := orch.Generate(context.Background(), Request{
		Document: &doc,
		Renderer: "missing",
	})
	if err == nil || !strings.Contains(err.Error(), `renderer "missing"`) {
		t.Fatalf("expected renderer error, got %v", err)
	}
}

func TestGenerateFallsBackToRegisteredRenderer(t *testing.T) {
	renderer := &captureRenderer{name: "only"}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	// Default renderer name is not registered; the single registered
	// renderer wins.
	orch := New(WithRegistry(registry))

	doc := testDocument(t)
	if _, err := orch.Generate(context.Background(), Request{Document: &doc}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if renderer.form.Title == "" {
		t.Fatal("fallback renderer was not invoked")
	}
}

func TestGeneratePassesThemeSelection(t *testing.T) {
	selection := &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:   "acme",
			Tokens: map[string]string{"brand": "#123456"},
		},
	}
	selector := &stubThemeSelector{selection: selection}

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(
		WithRegistry(registry),
		WithDefaultRenderer(renderer.Name()),
		WithThemeSelector(selector),
	)

	doc := testDocument(t)
	if _, err := orch.Generate(context.Background(), Request{
		Document:     &doc,
		ThemeName:    "acme",
		ThemeVariant: "dark",
	}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(selector.calls) != 1 {
		t.Fatalf("expected selector called once, got %d", len(selector.calls))
	}
	if selector.calls[0] != (selectorCall{name: "acme", variant: "dark"}) {
		t.Fatalf("unexpected selector args: %+v", selector.calls[0])
	}
	if renderer.options.Theme != selection {
		t.Fatalf("expected selection passed to renderer, got %+v", renderer.options.Theme)
	}
}

func TestGenerateDefaultThemeApplies(t *testing.T) {
	selector := &stubThemeSelector{selection: &theme.Selection{Theme: "acme"}}

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(
		WithRegistry(registry),
		WithDefaultRenderer(renderer.Name()),
		WithThemeSelector(selector),
		WithDefaultTheme("acme", "light"),
	)

	doc := testDocument(t)
	if _, err := orch.Generate(context.Background(), Request{Document: &doc}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(selector.calls) != 1 || selector.calls[0] != (selectorCall{name: "acme", variant: "light"}) {
		t.Fatalf("unexpected selector calls: %+v", selector.calls)
	}
}

func TestGenerateNoThemeSelectorSkipsResolution(t *testing.T) {
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(WithRegistry(registry), WithDefaultRenderer(renderer.Name()))

	doc := testDocument(t)
	if _, err := orch.Generate(context.Background(), Request{
		Document:  &doc,
		ThemeName: "acme",
	}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if renderer.options.Theme != nil {
		t.Fatalf("expected no theme, got %+v", renderer.options.Theme)
	}
}

func TestExtractSubmission(t *testing.T) {
	orch := New()

	doc := testDocument(t)
	record, err := orch.ExtractSubmission(context.Background(), Request{Document: &doc}, map[string]any{
		"cropType": "Rice",
		"area":     "12.5",
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	want := `{"cropType":"Rice","area":12.5}`
	if string(encoded) != want {
		t.Fatalf("payload mismatch:\nwant %s\ngot  %s", want, encoded)
	}
}

func TestSubmitPostsExtractedPayload(t *testing.T) {
	requester := &stubRequester{response: json.RawMessage(`{"score": 42}`)}
	orch := New(WithRequester(requester))

	doc := testDocument(t)
	response, err := orch.Submit(context.Background(), Request{
		Document:   &doc,
		SubmitPath: "/v1/assessments",
	}, map[string]any{"cropType": "Wheat"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if string(response) != `{"score": 42}` {
		t.Fatalf("unexpected response: %s", response)
	}
	if requester.method != "POST" || requester.path != "/v1/assessments" {
		t.Fatalf("unexpected request: %s %s", requester.method, requester.path)
	}

	body, err := json.Marshal(requester.body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	if string(body) != `{"cropType":"Wheat"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestSubmitRequiresRequester(t *testing.T) {
	orch := New()
	doc := testDocument(t)
	_, err := orch.Submit(context.Background(), Request{Document: &doc, SubmitPath: "/v1/assessments"}, nil)
	if err == nil || !strings.Contains(err.Error(), "requester") {
		t.Fatalf("expected requester error, got %v", err)
	}
}

func TestSubmitRequiresPath(t *testing.T) {
	orch := New(WithRequester(&stubRequester{}))
	doc := testDocument(t)
	_, err := orch.Submit(context.Background(), Request{Document: &doc}, nil)
	if err == nil || !strings.Contains(err.Error(), "submit path") {
		t.Fatalf("expected path error, got %v", err)
	}
}
