package form_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaform/pkg/form"
)

func TestRecordPreservesInsertionOrder(t *testing.T) {
	rec := form.NewRecord()
	rec.Set("zulu", 1)
	rec.Set("alpha", 2)
	rec.Set("mike", 3)

	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"zulu":1,"alpha":2,"mike":3}`
	if string(raw) != want {
		t.Fatalf("marshal = %s, want %s", raw, want)
	}
}

func TestRecordOverwriteKeepsPosition(t *testing.T) {
	rec := form.NewRecord()
	rec.Set("first", 1)
	rec.Set("second", 2)
	rec.Set("first", 10)

	if diff := cmp.Diff([]string{"first", "second"}, rec.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if value, _ := rec.Get("first"); value != 10 {
		t.Fatalf("first = %v, want 10", value)
	}
}

func TestRecordMap(t *testing.T) {
	nested := form.NewRecord()
	nested.Set("value", 12.5)

	rec := form.NewRecord()
	rec.Set("area", nested)
	rec.Set("tags", []any{"a", "b"})

	want := map[string]any{
		"area": map[string]any{"value": 12.5},
		"tags": []any{"a", "b"},
	}
	if diff := cmp.Diff(want, rec.Map()); diff != "" {
		t.Fatalf("map mismatch (-want +got):\n%s", diff)
	}
}
