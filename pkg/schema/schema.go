package schema

import "sort"

// Kind identifies which structural shape a node takes. Every node resolves to
// exactly one kind; dispatch in the form builder and extractor switches on it
// so the two traversals cannot drift apart.
type Kind string

const (
	KindProperties Kind = "properties"
	KindAllOf      Kind = "allOf"
	KindOneOf      Kind = "oneOf"
	KindArray      Kind = "array"
	KindLeaf       Kind = "leaf"
)

// Metadata carries optional display hints attached to combinator nodes. Name
// feeds group titles; Slug contributes stable key fragments for nested groups
// and conditionals.
type Metadata struct {
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// Schema is the JSON-Schema-like node consumed by the form builder and data
// extractor. It is treated as immutable for the duration of a build/extract
// cycle; traversals never write to it.
type Schema struct {
	Type        string
	Title       string
	Description string

	Enum     []any
	Minimum  *float64
	Maximum  *float64
	MaxLength *int

	Properties    map[string]*Schema
	PropertyOrder []string
	Required      []string
	Ignored       []string

	AllOf []*Schema
	OneOf []*Schema
	Items *Schema

	Metadata *Metadata
}

// Kind classifies the node. Combinators win over a declared type so a node
// carrying both allOf and a stray type keyword still routes through the
// combinator branch.
func (s *Schema) Kind() Kind {
	switch {
	case s == nil:
		return KindLeaf
	case len(s.AllOf) > 0:
		return KindAllOf
	case len(s.OneOf) > 0:
		return KindOneOf
	case len(s.Properties) > 0:
		return KindProperties
	case s.Type == "array":
		return KindArray
	default:
		return KindLeaf
	}
}

// IsNull reports whether the node is the null-typed opt-out alternative used
// inside oneOf groups.
func (s *Schema) IsNull() bool {
	return s != nil && s.Type == "null"
}

// PropertyNames returns the property names in declaration order. Schemas
// built by hand without PropertyOrder fall back to sorted names so traversal
// stays deterministic.
func (s *Schema) PropertyNames() []string {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}
	if len(s.PropertyOrder) > 0 {
		return s.PropertyOrder
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Property returns the named child schema, or nil.
func (s *Schema) Property(name string) *Schema {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}
	return s.Properties[name]
}

// RequiredSet returns the node's required list as a lookup set.
func (s *Schema) RequiredSet() map[string]struct{} {
	return toSet(s.requiredList())
}

// IgnoredSet returns the node's ignored list as a lookup set.
func (s *Schema) IgnoredSet() map[string]struct{} {
	if s == nil {
		return nil
	}
	return toSet(s.Ignored)
}

// MetadataName returns metadata.name when present.
func (s *Schema) MetadataName() string {
	if s == nil || s.Metadata == nil {
		return ""
	}
	return s.Metadata.Name
}

// MetadataSlug returns metadata.slug when present.
func (s *Schema) MetadataSlug() string {
	if s == nil || s.Metadata == nil {
		return ""
	}
	return s.Metadata.Slug
}

func (s *Schema) requiredList() []string {
	if s == nil {
		return nil
	}
	return s.Required
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		out[item] = struct{}{}
	}
	return out
}
