package form

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemaform/pkg/fieldkey"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// Builder converts schema documents into form-element trees.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	return &Builder{opts: opts}
}

// Build walks the schema and returns the form elements for its root
// properties. A root without properties yields an empty form; no schema shape
// ever aborts the walk.
func (b *Builder) Build(root *schema.Schema, mode Mode) []Element {
	if root == nil || root.Kind() != schema.KindProperties {
		return nil
	}
	return b.buildObject("", root, walk{mode: normalizeMode(mode)})
}

// walk carries traversal state. The mode is threaded explicitly instead of
// read from ambient configuration; conditional marks that an ancestor is a
// oneOf branch, which suppresses required marking on everything beneath it.
type walk struct {
	mode        Mode
	conditional bool
}

func normalizeMode(mode Mode) Mode {
	if mode == ModeBasic {
		return ModeBasic
	}
	return ModeFull
}

func (b *Builder) buildObject(prefix string, node *schema.Schema, w walk) []Element {
	required := node.RequiredSet()
	ignored := node.IgnoredSet()

	var out []Element
	for _, name := range node.PropertyNames() {
		key := fieldkey.Join(prefix, name)
		if w.mode == ModeBasic {
			if _, skip := ignored[name]; skip {
				out = append(out, Element{Key: key, Kind: KindEmpty})
				continue
			}
		}
		_, isRequired := required[name]
		out = append(out, b.buildNode(key, name, node.Property(name), isRequired && !w.conditional, w))
	}
	return out
}

func (b *Builder) buildNode(key, name string, node *schema.Schema, required bool, w walk) Element {
	switch node.Kind() {
	case schema.KindAllOf:
		return b.buildAllOf(key, name, node, required, w)
	case schema.KindOneOf:
		return b.buildConditional(key, name, node, w)
	case schema.KindProperties:
		element := Element{
			Key:         key,
			Kind:        KindGroup,
			Label:       b.groupTitle(node, name),
			Description: node.Description,
			Required:    required,
		}
		element.Children = b.buildObject(key, node, w)
		return element
	case schema.KindArray:
		return b.buildArray(key, name, node, required, w)
	default:
		return b.buildLeaf(key, name, node, required)
	}
}

// buildAllOf renders a conjunction of member schemas as a single presentation
// group. Member fields are parented directly at the group key.
func (b *Builder) buildAllOf(key, name string, node *schema.Schema, required bool, w walk) Element {
	element := Element{
		Key:         key,
		Kind:        KindGroup,
		Label:       b.combinatorTitle(node, name),
		Description: node.Description,
	}
	children, memberRequired := b.buildAllOfMembers(key, node, w)
	element.Children = children
	if required || memberRequired {
		element.Required = true
		if element.Label != "" {
			element.Label += " *"
		}
	}
	return element
}

func (b *Builder) buildAllOfMembers(groupKey string, node *schema.Schema, w walk) ([]Element, bool) {
	var out []Element
	anyRequired := false

	for _, member := range node.AllOf {
		switch member.Kind() {
		case schema.KindAllOf:
			// Nested allOf flattens into the same group unless it declares a
			// slug, which promotes it to a sub-group of its own.
			if slug := member.MetadataSlug(); slug != "" {
				out = append(out, b.buildAllOf(fieldkey.Join(groupKey, slug), slug, member, false, w))
				continue
			}
			nested, nestedRequired := b.buildAllOfMembers(groupKey, member, w)
			out = append(out, nested...)
			anyRequired = anyRequired || nestedRequired
		case schema.KindProperties:
			required := member.RequiredSet()
			ignored := member.IgnoredSet()
			for _, name := range member.PropertyNames() {
				childKey := fieldkey.Join(groupKey, name)
				if w.mode == ModeBasic {
					if _, skip := ignored[name]; skip {
						out = append(out, Element{Key: childKey, Kind: KindEmpty})
						continue
					}
				}
				_, isRequired := required[name]
				isRequired = isRequired && !w.conditional
				anyRequired = anyRequired || isRequired
				out = append(out, b.buildNode(childKey, name, member.Property(name), isRequired, w))
			}
		case schema.KindOneOf:
			condKey := fieldkey.OneOf(groupKey)
			condName := lastSegment(groupKey)
			if slug := member.MetadataSlug(); slug != "" {
				condKey = fieldkey.Join(groupKey, slug)
				condName = slug
			}
			out = append(out, b.buildConditional(condKey, condName, member, w))
		default:
			// Bare leaf descriptor: a member used only to name a field.
			frag := fieldkey.FromTitle(member.Title)
			out = append(out, b.buildLeaf(fieldkey.Join(groupKey, frag), frag, member, false))
		}
	}
	return out, anyRequired
}

// buildConditional renders a oneOf node as a single-choice discriminant plus
// one pre-built branch per non-null alternative. Every branch is built
// eagerly; the presentation layer shows or hides them by the visibility
// predicate, with index 0 as the default selection.
func (b *Builder) buildConditional(key, name string, node *schema.Schema, w walk) Element {
	element := Element{
		Key:         key,
		Kind:        KindConditional,
		Label:       b.combinatorTitle(node, name),
		Description: node.Description,
	}

	branchWalk := w
	branchWalk.conditional = true

	for i, alt := range node.OneOf {
		element.Options = append(element.Options, Option{
			Value: strconv.Itoa(i),
			Label: alternativeLabel(alt, i),
		})
		if alt.IsNull() {
			continue
		}
		branch := b.buildBranchElement(fieldkey.Option(key, i), alt, branchWalk)
		branch.Visibility = &Visibility{Discriminant: key, Option: i}
		element.Children = append(element.Children, branch)
	}
	return element
}

// buildBranchElement builds the container for a oneOf alternative or an array
// item slot. The container takes the branch key itself, so nested content is
// parented at that key without an extra level.
func (b *Builder) buildBranchElement(branchKey string, node *schema.Schema, w walk) Element {
	switch node.Kind() {
	case schema.KindProperties:
		element := Element{Key: branchKey, Kind: KindGroup, Label: node.Title, Description: node.Description}
		element.Children = b.buildObject(branchKey, node, w)
		return element
	case schema.KindAllOf:
		element := Element{Key: branchKey, Kind: KindGroup, Label: b.combinatorTitle(node, ""), Description: node.Description}
		element.Children, _ = b.buildAllOfMembers(branchKey, node, w)
		return element
	case schema.KindOneOf:
		return b.buildConditional(branchKey, "", node, w)
	case schema.KindArray:
		return b.buildArray(branchKey, lastSegment(branchKey), node, false, w)
	default:
		return b.buildLeaf(branchKey, lastSegment(branchKey), node, false)
	}
}

// buildArray renders a complex-item array as a repeatable group holding one
// pre-built item slot and a disabled add action. Dynamic item addition is the
// rendering surface's concern; it can re-run item builds with higher indices
// before render.
func (b *Builder) buildArray(key, name string, node *schema.Schema, required bool, w walk) Element {
	if w.mode == ModeBasic {
		return Element{Key: key, Kind: KindEmpty}
	}

	items := node.Items
	if !arrayItemSupported(items) {
		return Element{
			Key:         key,
			Kind:        KindNote,
			Label:       b.groupTitle(node, name),
			Description: "This list cannot be edited here.",
		}
	}

	element := Element{
		Key:         key,
		Kind:        KindRepeatable,
		Label:       b.groupTitle(node, name),
		Description: node.Description,
		Required:    required,
	}
	item := b.buildBranchElement(fieldkey.Item(key, 0), items, w)
	element.Children = []Element{
		item,
		{Key: key + "_add", Kind: KindAction, Label: "Add item", Disabled: true},
	}
	return element
}

// arrayItemSupported reports whether the item schema is complex enough to
// render as a repeatable group. Bare scalar items are not supported.
func arrayItemSupported(items *schema.Schema) bool {
	if items == nil {
		return false
	}
	switch items.Kind() {
	case schema.KindProperties, schema.KindAllOf, schema.KindOneOf:
		return true
	default:
		return items.Type == "object"
	}
}

func (b *Builder) buildLeaf(key, name string, node *schema.Schema, required bool) Element {
	if name == "" {
		name = lastSegment(key)
	}
	element := Element{
		Key:         key,
		Label:       b.groupTitle(node, name),
		Description: node.Description,
		Required:    required,
	}

	if len(node.Enum) > 0 && (node.Type == "" || node.Type == "string") {
		element.Kind = KindSelect
		element.Options = enumOptions(node.Enum)
		return element
	}

	switch node.Type {
	case "string":
		if node.MaxLength != nil && *node.MaxLength > 255 {
			element.Kind = KindTextarea
		} else {
			element.Kind = KindText
		}
	case "integer", "number":
		element.Kind = KindNumber
		element.Min = node.Minimum
		element.Max = node.Maximum
		element.Step = stepFor(node)
	case "boolean":
		element.Kind = KindCheckbox
		// Unchecked must stay a legal answer, distinct from unanswered.
		element.Required = false
	case "object":
		// Degenerate object with no properties renders as an inert group.
		element.Kind = KindGroup
	default:
		element.Kind = KindNote
		element.Description = "Unsupported field type."
	}
	return element
}

// stepFor yields "1" for fields constrained to whole numbers and "any"
// otherwise. Integer-typed fields always step by one; number-typed fields
// step by one only when both bounds are present and integral.
func stepFor(node *schema.Schema) string {
	if node.Type == "integer" {
		return "1"
	}
	if node.Minimum != nil && node.Maximum != nil && isIntegral(*node.Minimum) && isIntegral(*node.Maximum) {
		return "1"
	}
	return "any"
}

func isIntegral(value float64) bool {
	return value == math.Trunc(value)
}

func enumOptions(values []any) []Option {
	out := make([]Option, 0, len(values))
	for _, value := range values {
		text := enumText(value)
		out = append(out, Option{Value: text, Label: text})
	}
	return out
}

func enumText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if isIntegral(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return ""
	}
}

// groupTitle prefers the node's own title, falling back to a label derived
// from the property name.
func (b *Builder) groupTitle(node *schema.Schema, name string) string {
	if node != nil && node.Title != "" {
		return node.Title
	}
	return b.opts.Labeler(name)
}

// combinatorTitle prefers metadata name, then title, then the property name.
func (b *Builder) combinatorTitle(node *schema.Schema, name string) string {
	if meta := node.MetadataName(); meta != "" {
		return meta
	}
	if node != nil && node.Title != "" {
		return node.Title
	}
	return b.opts.Labeler(name)
}

func alternativeLabel(alt *schema.Schema, index int) string {
	if alt != nil && alt.Title != "" {
		return alt.Title
	}
	return "Option " + strconv.Itoa(index+1)
}

func lastSegment(key string) string {
	if key == "" {
		return ""
	}
	if i := strings.LastIndex(key, fieldkey.Separator); i >= 0 {
		return key[i+len(fieldkey.Separator):]
	}
	return key
}
