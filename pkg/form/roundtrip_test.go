package form_test

import (
	"testing"

	"github.com/goliatone/go-schemaform/pkg/form"
)

// The builder and extractor share one key convention; filling the built tree
// by its own keys and extracting must reproduce the nested data exactly.
func TestBuildExtractRoundTrip(t *testing.T) {
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
			},
			"residue": {
				"oneOf": [
					{"type": "null"},
					{"type": "object", "properties": {"amount": {"type": "number"}}}
				]
			},
			"applications": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"product": {"type": "string"},
						"rate": {"type": "number"}
					}
				}
			}
		},
		"required": ["cropType"]
	}`)

	elements := form.New(form.Options{}).Build(root, form.ModeFull)

	// Scalar values keyed exactly as the builder named the fields.
	values := map[string]any{
		"cropType":                 "Wheat",
		"area__value":              "12.5",
		"area__unit":               "ha",
		"residue_option_1__amount": "3",
		"applications": map[string]any{
			"items_wrapper": map[string]any{
				"applications_item_0": map[string]any{
					"applications_item_0__product": "urea",
					"applications_item_0__rate":    "120",
				},
			},
		},
	}

	// Every scalar key in the submission must exist in the built tree, or the
	// two traversals have drifted apart.
	scalarKeys := []string{
		"cropType",
		"area__value",
		"area__unit",
		"residue_option_1__amount",
		"applications",
		"applications_item_0",
		"applications_item_0__product",
		"applications_item_0__rate",
	}
	for _, key := range scalarKeys {
		if _, ok := form.Find(elements, key); !ok {
			t.Fatalf("builder produced no element for key %q", key)
		}
	}

	got := recordJSON(t, form.NewExtractor().Extract(root, values))
	want := `{"cropType":"Wheat","area":{"value":12.5,"unit":"ha"},"residue":{"amount":3},"applications":[{"product":"urea","rate":120}]}`
	if got != want {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", got, want)
	}
}
