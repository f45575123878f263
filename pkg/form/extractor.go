package form

import (
	"strconv"

	"github.com/goliatone/go-schemaform/pkg/fieldkey"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// ItemsWrapperKey marks a repeatable group's value container. Rendering
// surfaces that assemble array submissions place each item's values under
// this marker, keyed by the item slot key.
const ItemsWrapperKey = "items_wrapper"

// Extractor inverts the builder: it walks the same schema together with a
// flat map of submitted values and reconstructs a nested record matching the
// schema's shape. Every dispatch branch here mirrors one in the builder; the
// two must stay symmetric or the round trip breaks.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reconstructs nested data from submitted values. A root without
// properties yields an empty record; no input shape raises an error, since a
// single malformed branch must never abort a large tree walk.
func (e *Extractor) Extract(root *schema.Schema, values map[string]any) *Record {
	out := NewRecord()
	if root == nil || root.Kind() != schema.KindProperties {
		return out
	}
	e.extractObjectInto(out, "", root, values)
	return out
}

func (e *Extractor) extractObjectInto(rec *Record, prefix string, node *schema.Schema, values map[string]any) {
	for _, name := range node.PropertyNames() {
		key := fieldkey.Join(prefix, name)
		if value, ok := e.extractNode(key, node.Property(name), values); ok {
			rec.Set(name, value)
		}
	}
}

func (e *Extractor) extractNode(key string, node *schema.Schema, values map[string]any) (any, bool) {
	switch node.Kind() {
	case schema.KindAllOf:
		rec := NewRecord()
		e.extractAllOfMembers(rec, key, node, values)
		if rec.Len() == 0 {
			return nil, false
		}
		return rec, true
	case schema.KindOneOf:
		return e.extractOneOf(key, node, values)
	case schema.KindProperties:
		rec := NewRecord()
		e.extractObjectInto(rec, key, node, values)
		if rec.Len() == 0 {
			return nil, false
		}
		return rec, true
	case schema.KindArray:
		return e.extractArray(key, node, values), true
	default:
		return e.extractLeaf(key, node, values)
	}
}

// extractAllOfMembers merges every member's contribution into one record.
// Merging is additive: a later member never overwrites a key an earlier one
// already set.
func (e *Extractor) extractAllOfMembers(rec *Record, groupKey string, node *schema.Schema, values map[string]any) {
	for _, member := range node.AllOf {
		switch member.Kind() {
		case schema.KindAllOf:
			if slug := member.MetadataSlug(); slug != "" {
				sub := NewRecord()
				e.extractAllOfMembers(sub, fieldkey.Join(groupKey, slug), member, values)
				if sub.Len() > 0 {
					setIfAbsent(rec, slug, sub)
				}
				continue
			}
			e.extractAllOfMembers(rec, groupKey, member, values)
		case schema.KindProperties:
			for _, name := range member.PropertyNames() {
				if _, exists := rec.Get(name); exists {
					continue
				}
				if value, ok := e.extractNode(fieldkey.Join(groupKey, name), member.Property(name), values); ok {
					rec.Set(name, value)
				}
			}
		case schema.KindOneOf:
			condKey := fieldkey.OneOf(groupKey)
			outName := ""
			if slug := member.MetadataSlug(); slug != "" {
				condKey = fieldkey.Join(groupKey, slug)
				outName = slug
			}
			value, ok := e.extractOneOf(condKey, member, values)
			if !ok {
				continue
			}
			if outName != "" {
				setIfAbsent(rec, outName, value)
				continue
			}
			if sub, isRecord := value.(*Record); isRecord {
				mergeRecords(rec, sub)
			}
		default:
			frag := fieldkey.FromTitle(member.Title)
			if value, ok := e.extractLeaf(fieldkey.Join(groupKey, frag), member, values); ok {
				setIfAbsent(rec, frag, value)
			}
		}
	}
}

// extractOneOf merges data from every populated alternative branch rather
// than pruning by the discriminant choice. An empty merge yields no value,
// which is how the null-typed opt-out alternative takes effect: when the
// sibling branches hold nothing, the whole node reads as unanswered.
func (e *Extractor) extractOneOf(key string, node *schema.Schema, values map[string]any) (any, bool) {
	var merged *Record
	var scalar any
	hasScalar := false

	for i, alt := range node.OneOf {
		if alt.IsNull() {
			continue
		}
		value, ok := e.extractBranchValue(fieldkey.Option(key, i), alt, values)
		if !ok || !hasContent(value) {
			continue
		}
		if sub, isRecord := value.(*Record); isRecord {
			if merged == nil {
				merged = NewRecord()
			}
			mergeRecords(merged, sub)
			continue
		}
		if !hasScalar {
			scalar = value
			hasScalar = true
		}
	}

	if merged != nil && merged.Len() > 0 {
		return merged, true
	}
	if hasScalar {
		return scalar, true
	}
	return nil, false
}

// extractBranchValue extracts the content of a oneOf alternative or array
// item slot, parented at the branch key itself.
func (e *Extractor) extractBranchValue(branchKey string, node *schema.Schema, values map[string]any) (any, bool) {
	switch node.Kind() {
	case schema.KindProperties:
		rec := NewRecord()
		e.extractObjectInto(rec, branchKey, node, values)
		if rec.Len() == 0 {
			return nil, false
		}
		return rec, true
	case schema.KindAllOf:
		rec := NewRecord()
		e.extractAllOfMembers(rec, branchKey, node, values)
		if rec.Len() == 0 {
			return nil, false
		}
		return rec, true
	case schema.KindOneOf:
		return e.extractOneOf(branchKey, node, values)
	case schema.KindArray:
		seq := e.extractArray(branchKey, node, values)
		if len(seq) == 0 {
			return nil, false
		}
		return seq, true
	default:
		return e.extractLeaf(branchKey, node, values)
	}
}

// extractArray iterates item slots densely from index zero, stopping at the
// first missing slot. A container that is absent or lacks its wrapper marker
// degrades to an empty sequence.
func (e *Extractor) extractArray(key string, node *schema.Schema, values map[string]any) []any {
	out := []any{}

	raw, ok := fieldkey.Resolve(values, key)
	if !ok {
		return out
	}
	container, ok := raw.(map[string]any)
	if !ok {
		return out
	}
	wrapper, ok := container[ItemsWrapperKey].(map[string]any)
	if !ok {
		return out
	}

	for index := 0; ; index++ {
		itemKey := fieldkey.Item(key, index)
		itemRaw, ok := wrapper[itemKey]
		if !ok {
			break
		}
		itemValues, ok := itemRaw.(map[string]any)
		if !ok {
			continue
		}
		// Item values stay scoped to their own container; wrapping them under
		// the slot key lets Resolve accept both bare-suffix and full keys.
		scope := map[string]any{itemKey: itemValues}
		if value, populated := e.extractBranchValue(itemKey, node.Items, scope); populated {
			out = append(out, value)
		}
	}
	return out
}

// extractLeaf resolves a scalar value and coerces it to the declared type.
// An absent key yields no value; a present-but-blank value yields an explicit
// null, distinguishable from both absence and falsy answers.
func (e *Extractor) extractLeaf(key string, node *schema.Schema, values map[string]any) (any, bool) {
	raw, ok := fieldkey.Resolve(values, key)
	if !ok {
		return nil, false
	}
	if raw == nil {
		return nil, true
	}
	if text, isText := raw.(string); isText && text == "" {
		return nil, true
	}

	switch node.Type {
	case "integer":
		number, ok := toNumber(raw)
		if !ok {
			return nil, true
		}
		return int64(number), true
	case "number":
		number, ok := toNumber(raw)
		if !ok {
			return nil, true
		}
		return number, true
	case "boolean":
		return truthy(raw), true
	case "string":
		if text, isText := raw.(string); isText {
			return text, true
		}
		return raw, true
	case "array":
		if seq, isSeq := raw.([]any); isSeq {
			return seq, true
		}
		return []any{}, true
	default:
		return raw, true
	}
}

func toNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func truthy(raw any) bool {
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
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return raw != nil
	}
}

// hasContent reports whether a branch value holds any actual answer. A record
// whose fields are all explicit nulls reads as empty, which is what lets the
// null-typed opt-out alternative win when its siblings were left blank.
func hasContent(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case *Record:
		for _, key := range v.Keys() {
			entry, _ := v.Get(key)
			if hasContent(entry) {
				return true
			}
		}
		return false
	case []any:
		for _, entry := range v {
			if hasContent(entry) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func setIfAbsent(rec *Record, key string, value any) {
	if _, exists := rec.Get(key); exists {
		return
	}
	rec.Set(key, value)
}

func mergeRecords(dst, src *Record) {
	for _, key := range src.Keys() {
		if _, exists := dst.Get(key); exists {
			continue
		}
		value, _ := src.Get(key)
		dst.Set(key, value)
	}
}
