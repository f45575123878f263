package fieldkey

import (
	"regexp"
	"strings"
)

var branchSuffixPattern = regexp.MustCompile(`_(?:option|item)_\d+$`)

// Resolve looks a key up in a submitted value map that may be fully flat
// (every key at depth zero), fully nested (values grouped under container
// keys mirroring the form tree), or a mix of both.
//
// The search tries an exact match first. Failing that, it walks the split
// points of the key from the end backward: the prefix is treated as a
// candidate parent container and, when that container resolves to a nested
// map, both the full key and the bare suffix are searched inside it. Branch
// keys carry their _option_N or _item_N suffix without a separator, so a
// prefix with such a suffix is additionally tried with the suffix stripped;
// that finds branch containers grouped under their discriminant or array key.
// The first hit wins. Walking longest-prefix-first means a container keyed by
// the immediate parent shadows one keyed higher up, matching how the form
// tree nests its values.
func Resolve(values map[string]any, key string) (any, bool) {
	if len(values) == 0 || key == "" {
		return nil, false
	}
	if value, ok := values[key]; ok {
		return value, true
	}

	segments := Split(key)
	for i := len(segments) - 1; i >= 1; i-- {
		parent := strings.Join(segments[:i], Separator)
		suffix := strings.Join(segments[i:], Separator)
		if value, ok := resolveInContainer(values, parent, key, suffix); ok {
			return value, true
		}
		if base, stripped := branchBase(parent); stripped {
			if value, ok := resolveInContainer(values, base, key, suffix); ok {
				return value, true
			}
		}
	}
	return nil, false
}

// resolveInContainer descends into the map stored under containerKey and
// searches it for the full key first, then the bare suffix.
func resolveInContainer(values map[string]any, containerKey, fullKey, suffix string) (any, bool) {
	nested, ok := asMap(values[containerKey])
	if !ok {
		return nil, false
	}
	if value, ok := Resolve(nested, fullKey); ok {
		return value, true
	}
	return Resolve(nested, suffix)
}

// branchBase strips a trailing _option_N or _item_N suffix, yielding the
// conditional or array key the branch belongs to.
func branchBase(key string) (string, bool) {
	loc := branchSuffixPattern.FindStringIndex(key)
	if loc == nil || loc[0] == 0 {
		return "", false
	}
	return key[:loc[0]], true
}

func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	default:
		return nil, false
	}
}
