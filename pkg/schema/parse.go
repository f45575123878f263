package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ParseDocument decodes a raw JSON document into a Schema tree. Parsing is
// deliberately lenient about shape: unknown keywords are skipped and keyword
// values of the wrong type are dropped rather than rejected, because remote
// documents must degrade to inert nodes instead of aborting a whole form
// build. Property declaration order is captured in PropertyOrder so traversal
// and payload serialization stay deterministic.
func ParseDocument(raw []byte) (*Schema, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("schema: raw document is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	value, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("schema: parse document: %w", err)
	}
	obj, ok := value.(*object)
	if !ok {
		return nil, errors.New("schema: document root must be an object")
	}
	return schemaFromObject(obj), nil
}

// UnmarshalJSON lets callers decode schema payloads with encoding/json while
// still preserving property order.
func (s *Schema) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDocument(data)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// object is a JSON object with its member order retained.
type object struct {
	keys   []string
	values map[string]any
}

func (o *object) lookup(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	value, ok := o.values[key]
	return value, ok
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := &object{values: make(map[string]any)}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key token %v", keyTok)
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			if _, seen := obj.values[key]; !seen {
				obj.keys = append(obj.keys, key)
			}
			obj.values[key] = value
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		var list []any
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

func schemaFromObject(o *object) *Schema {
	out := &Schema{
		Type:        readString(o, "type"),
		Title:       readString(o, "title"),
		Description: readString(o, "description"),
		Required:    readStrings(o, "required"),
		Ignored:     readStrings(o, "ignored"),
	}

	if list, ok := readList(o, "enum"); ok {
		out.Enum = plainList(list)
	}
	out.Minimum = readFloat(o, "minimum")
	out.Maximum = readFloat(o, "maximum")
	out.MaxLength = readInt(o, "maxLength")

	if meta := readObject(o, "metadata"); meta != nil {
		name := readString(meta, "name")
		slug := readString(meta, "slug")
		if name != "" || slug != "" {
			out.Metadata = &Metadata{Name: name, Slug: slug}
		}
	}

	if props := readObject(o, "properties"); props != nil {
		out.Properties = make(map[string]*Schema, len(props.keys))
		out.PropertyOrder = append([]string(nil), props.keys...)
		for _, key := range props.keys {
			if child := readObject(props, key); child != nil {
				out.Properties[key] = schemaFromObject(child)
			} else {
				// Non-object property value degrades to an inert leaf.
				out.Properties[key] = &Schema{}
			}
		}
	}

	out.AllOf = schemaList(o, "allOf")
	out.OneOf = schemaList(o, "oneOf")

	if items := readObject(o, "items"); items != nil {
		out.Items = schemaFromObject(items)
	}

	return out
}

func schemaList(o *object, key string) []*Schema {
	list, ok := readList(o, key)
	if !ok || len(list) == 0 {
		return nil
	}
	out := make([]*Schema, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(*object)
		if !ok {
			continue
		}
		out = append(out, schemaFromObject(obj))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func readObject(o *object, key string) *object {
	value, ok := o.lookup(key)
	if !ok {
		return nil
	}
	obj, ok := value.(*object)
	if !ok {
		return nil
	}
	return obj
}

func readList(o *object, key string) ([]any, bool) {
	value, ok := o.lookup(key)
	if !ok {
		return nil, false
	}
	list, ok := value.([]any)
	return list, ok
}

func readString(o *object, key string) string {
	value, ok := o.lookup(key)
	if !ok {
		return ""
	}
	str, _ := value.(string)
	return str
}

func readStrings(o *object, key string) []string {
	list, ok := readList(o, key)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if str, ok := entry.(string); ok && str != "" {
			out = append(out, str)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func readFloat(o *object, key string) *float64 {
	value, ok := o.lookup(key)
	if !ok {
		return nil
	}
	number, ok := toFloat(value)
	if !ok {
		return nil
	}
	return &number
}

func readInt(o *object, key string) *int {
	value, ok := o.lookup(key)
	if !ok {
		return nil
	}
	number, ok := toFloat(value)
	if !ok {
		return nil
	}
	out := int(number)
	return &out
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		parsed, err := v.Float64()
		return parsed, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func plainList(list []any) []any {
	out := make([]any, 0, len(list))
	for _, entry := range list {
		out = append(out, plainValue(entry))
	}
	return out
}

func plainValue(value any) any {
	switch v := value.(type) {
	case json.Number:
		if parsed, err := v.Float64(); err == nil {
			return parsed
		}
		return v.String()
	case *object:
		out := make(map[string]any, len(v.keys))
		for _, key := range v.keys {
			out[key] = plainValue(v.values[key])
		}
		return out
	case []any:
		return plainList(v)
	default:
		return v
	}
}
