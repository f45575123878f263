package form_test

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-schemaform/pkg/form"
)

func recordJSON(t *testing.T, rec *form.Record) string {
	t.Helper()
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	return string(raw)
}

func TestExtractCoercesLeafTypes(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {
			"cropType": {"type": "string", "enum": ["Rice", "Wheat"]},
			"area": {
				"type": "object",
				"properties": {
					"value": {"type": "number"},
					"unit": {"type": "string"}
				}
			}
		},
		"required": ["cropType"]
	}`)

	values := map[string]any{
		"cropType":    "Rice",
		"area__value": "12.5",
		"area__unit":  "ha",
	}

	got := recordJSON(t, form.NewExtractor().Extract(root, values))
	want := `{"cropType":"Rice","area":{"value":12.5,"unit":"ha"}}`
	if got != want {
		t.Fatalf("extract = %s, want %s", got, want)
	}
}

func TestExtractIntegerTruncates(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {
			"count": {"type": "integer"},
			"ratio": {"type": "number"},
			"organic": {"type": "boolean"},
			"tilled": {"type": "boolean"}
		}
	}`)

	values := map[string]any{
		"count":   "7.9",
		"ratio":   "0.25",
		"organic": "on",
		"tilled":  "0",
	}

	got := recordJSON(t, form.NewExtractor().Extract(root, values))
	want := `{"count":7,"ratio":0.25,"organic":true,"tilled":false}`
	if got != want {
		t.Fatalf("extract = %s, want %s", got, want)
	}
}

func TestExtractBlankVersusAbsent(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"note": {"type": "string"}
		}
	}`)

	// Present-but-blank becomes an explicit null; an absent key is omitted.
	values := map[string]any{"note": ""}
	got := recordJSON(t, form.NewExtractor().Extract(root, values))
	want := `{"note":null}`
	if got != want {
		t.Fatalf("extract = %s, want %s", got, want)
	}
}

func TestExtractUnparsableNumberYieldsNull(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {"ratio": {"type": "number"}}
	}`)

	got := recordJSON(t, form.NewExtractor().Extract(root, map[string]any{"ratio": "lots"}))
	want := `{"ratio":null}`
	if got != want {
		t.Fatalf("extract = %s, want %s", got, want)
	}
}

func TestExtractOneOfNullOptOut(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {
			"residue": {
				"oneOf": [
					{"type": "null"},
					{"type": "object", "properties": {"amount": {"type": "number"}}}
				]
			}
		}
	}`)

	extractor := form.NewExtractor()

	// No branch data at all: the whole oneOf reads as unanswered.
	if got := recordJSON(t, extractor.Extract(root, map[string]any{})); got != `{}` {
		t.Fatalf("empty submission = %s, want {}", got)
	}

	// Blank branch data still reads as unanswered, not an empty map.
	blank := map[string]any{"residue_option_1__amount": ""}
	if got := recordJSON(t, extractor.Extract(root, blank)); got != `{}` {
		t.Fatalf("blank submission = %s, want {}", got)
	}

	populated := map[string]any{"residue_option_1__amount": "3"}
	want := `{"residue":{"amount":3}}`
	if got := recordJSON(t, extractor.Extract(root, populated)); got != want {
		t.Fatalf("populated submission = %s, want %s", got, want)
	}
}

func TestExtractOneOfMergesPopulatedBranches(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {
			"residue": {
				"oneOf": [
					{"type": "object", "properties": {"amount": {"type": "number"}}},
					{"type": "object", "properties": {"percent": {"type": "number"}}}
				]
			}
		}
	}`)

	values := map[string]any{
		"residue_option_0__amount":  "3",
		"residue_option_1__percent": "40",
	}

	got := recordJSON(t, form.NewExtractor().Extract(root, values))
	want := `{"residue":{"amount":3,"percent":40}}`
	if got != want {
		t.Fatalf("extract = %s, want %s", got, want)
	}
}

func TestExtractArrayDensity(t *testing.T) {
	root := mustSchema(t, `{
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

	values := map[string]any{
		"applications": map[string]any{
			"items_wrapper": map[string]any{
				"applications_item_0": map[string]any{
					"applications_item_0__rate": "2.5",
				},
				"applications_item_2": map[string]any{
					"applications_item_2__rate": "4",
				},
			},
		},
	}

	// Iteration stops at the first gap: item 2 is unreachable.
	got := recordJSON(t, form.NewExtractor().Extract(root, values))
	want := `{"applications":[{"rate":2.5}]}`
	if got != want {
		t.Fatalf("extract = %s, want %s", got, want)
	}
}

func TestExtractArrayDegradesToEmptySequence(t *testing.T) {
	root := mustSchema(t, `{
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

	extractor := form.NewExtractor()

	// Absent container.
	if got := recordJSON(t, extractor.Extract(root, map[string]any{})); got != `{"applications":[]}` {
		t.Fatalf("absent container = %s", got)
	}

	// Container present but missing its wrapper marker.
	malformed := map[string]any{"applications": map[string]any{"stray": "x"}}
	if got := recordJSON(t, extractor.Extract(root, malformed)); got != `{"applications":[]}` {
		t.Fatalf("malformed container = %s", got)
	}
}

func TestExtractArrayBareSuffixItemKeys(t *testing.T) {
	root := mustSchema(t, `{
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

	values := map[string]any{
		"applications": map[string]any{
			"items_wrapper": map[string]any{
				"applications_item_0": map[string]any{"rate": "2.5"},
			},
		},
	}

	got := recordJSON(t, form.NewExtractor().Extract(root, values))
	want := `{"applications":[{"rate":2.5}]}`
	if got != want {
		t.Fatalf("extract = %s, want %s", got, want)
	}
}

func TestExtractAllOfMergesMembers(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {
			"fertilizer": {
				"allOf": [
					{"type": "object", "properties": {"product": {"type": "string"}}},
					{"type": "object", "properties": {"rate": {"type": "number"}}},
					{"type": "object", "properties": {"product": {"type": "string"}}}
				]
			}
		}
	}`)

	values := map[string]any{
		"fertilizer__product": "urea",
		"fertilizer__rate":    "120",
	}

	got := recordJSON(t, form.NewExtractor().Extract(root, values))
	want := `{"fertilizer":{"product":"urea","rate":120}}`
	if got != want {
		t.Fatalf("extract = %s, want %s", got, want)
	}
}

func TestExtractNestedSubmission(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {
			"area": {
				"type": "object",
				"properties": {
					"value": {"type": "number"},
					"unit": {"type": "string"}
				}
			}
		}
	}`)

	// Values grouped under container keys resolve identically to flat ones.
	values := map[string]any{
		"area": map[string]any{
			"value": "12.5",
			"unit":  "ha",
		},
	}

	got := recordJSON(t, form.NewExtractor().Extract(root, values))
	want := `{"area":{"value":12.5,"unit":"ha"}}`
	if got != want {
		t.Fatalf("extract = %s, want %s", got, want)
	}
}

func TestExtractNestedBranchSubmission(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {
			"residue": {
				"oneOf": [
					{"type": "null"},
					{
						"type": "object",
						"properties": {"amount": {"type": "number"}}
					}
				]
			}
		}
	}`)

	// A tree-shaped submission groups the branch container under the
	// discriminant key; it must extract like its flat equivalent.
	values := map[string]any{
		"residue": map[string]any{
			"residue_option_1": map[string]any{
				"amount": "3",
			},
		},
	}

	got := recordJSON(t, form.NewExtractor().Extract(root, values))
	want := `{"residue":{"amount":3}}`
	if got != want {
		t.Fatalf("extract = %s, want %s", got, want)
	}
}

func TestExtractEmptyRoot(t *testing.T) {
	extractor := form.NewExtractor()

	if got := recordJSON(t, extractor.Extract(nil, map[string]any{"x": "1"})); got != `{}` {
		t.Fatalf("nil schema = %s, want {}", got)
	}

	root := mustSchema(t, `{"type": "object"}`)
	if got := recordJSON(t, extractor.Extract(root, map[string]any{"x": "1"})); got != `{}` {
		t.Fatalf("schema without properties = %s, want {}", got)
	}
}
