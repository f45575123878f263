package tui

import (
	"github.com/goliatone/go-schemaform/pkg/fieldkey"
	"github.com/goliatone/go-schemaform/pkg/form"
)

// state accumulates answers keyed by field key. Repeatable groups assemble
// the wrapper containers the extractor expects.
type state struct {
	values map[string]any
}

func newState(seed map[string]any) *state {
	values := make(map[string]any, len(seed))
	for key, value := range seed {
		values[key] = value
	}
	return &state{values: values}
}

func (s *state) set(key string, value any) {
	s.values[key] = value
}

// defaultText returns the seeded value for a key as prompt default text.
func (s *state) defaultText(key string) string {
	raw, ok := fieldkey.Resolve(s.values, key)
	if !ok || raw == nil {
		return ""
	}
	if text, isText := raw.(string); isText {
		return text
	}
	return ""
}

// addItem stores one repeatable entry under the array's wrapper container.
func (s *state) addItem(arrayKey, itemKey string, item map[string]any) {
	container, ok := s.values[arrayKey].(map[string]any)
	if !ok {
		container = map[string]any{form.ItemsWrapperKey: map[string]any{}}
		s.values[arrayKey] = container
	}
	wrapper, ok := container[form.ItemsWrapperKey].(map[string]any)
	if !ok {
		wrapper = map[string]any{}
		container[form.ItemsWrapperKey] = wrapper
	}
	wrapper[itemKey] = item
}
