// Package fieldkey defines the flattened naming convention that connects the
// form builder's element keys to the data extractor's value lookups. Both
// traversals must derive identical keys for every schema node; this package is
// the single place the convention lives.
package fieldkey

import (
	"strconv"
	"strings"
)

// Separator joins path segments. Two characters, chosen so it cannot collide
// with the single underscores that appear inside property names and inside
// the _option_N / _item_N suffixes.
const Separator = "__"

// Join builds a key from path segments, skipping empty ones.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		parts = append(parts, segment)
	}
	return strings.Join(parts, Separator)
}

// Split breaks a key into its path segments.
func Split(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, Separator)
}

// Option returns the key of a oneOf alternative's branch container. The index
// is the zero-based position of the alternative and is appended to the final
// segment rather than joined as a new one.
func Option(key string, index int) string {
	return key + "_option_" + strconv.Itoa(index)
}

// Item returns the key of the index-th element slot of a repeatable group.
func Item(key string, index int) string {
	return key + "_item_" + strconv.Itoa(index)
}

// OneOf returns the fragment used for a conditional nested inside an allOf
// group when the member declares no slug of its own.
func OneOf(key string) string {
	return key + "_oneof"
}

// FromTitle derives a stable key fragment from a display title: lowercased,
// with every run of non-alphanumeric characters collapsed to a single
// underscore. Falls back to "enum_field" when nothing usable remains.
func FromTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "enum_field"
	}
	return b.String()
}
