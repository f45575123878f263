// Package form turns JSON Schema documents into renderable form-element
// trees and inverts submitted flat values back into schema-shaped records.
// The two transforms share the fieldkey naming convention and mirror each
// other branch for branch.
package form

// Mode selects how aggressively the builder prunes advanced fields.
type Mode string

const (
	// ModeBasic hides properties listed in a schema's ignored set and skips
	// array-typed properties entirely.
	ModeBasic Mode = "basic"
	// ModeFull renders every supported property.
	ModeFull Mode = "full"
)

// Kind identifies what a form element renders as.
type Kind string

const (
	KindGroup       Kind = "group"
	KindConditional Kind = "conditional"
	KindRepeatable  Kind = "repeatable"
	KindText        Kind = "text"
	KindTextarea    Kind = "textarea"
	KindSelect      Kind = "select"
	KindNumber      Kind = "number"
	KindCheckbox    Kind = "checkbox"
	KindAction      Kind = "action"
	// KindEmpty reserves a key without rendering anything, used for pruned
	// properties.
	KindEmpty Kind = "empty"
	// KindNote is an inert explanatory leaf for shapes the builder cannot
	// render as an input.
	KindNote Kind = "note"
)

// Option is a single choice of a select or conditional element.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Visibility is the predicate attached to a conditional branch: the branch is
// shown when the discriminant field holds the alternative's index.
type Visibility struct {
	Discriminant string `json:"discriminant"`
	Option       int    `json:"option"`
}

// Element is one node of the built form tree. Groups, conditionals, and
// repeatables carry children; leaves carry input attributes.
type Element struct {
	Key         string      `json:"key"`
	Kind        Kind        `json:"kind"`
	Label       string      `json:"label,omitempty"`
	Description string      `json:"description,omitempty"`
	Required    bool        `json:"required,omitempty"`
	Options     []Option    `json:"options,omitempty"`
	Min         *float64    `json:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"`
	Step        string      `json:"step,omitempty"`
	Disabled    bool        `json:"disabled,omitempty"`
	Visibility  *Visibility `json:"visibility,omitempty"`
	Children    []Element   `json:"children,omitempty"`
}

// Form is a built element tree together with its presentation envelope.
type Form struct {
	Title    string    `json:"title,omitempty"`
	Mode     Mode      `json:"mode"`
	Elements []Element `json:"elements"`
}

// IsContainer reports whether the element holds children rather than a value.
func (e Element) IsContainer() bool {
	switch e.Kind {
	case KindGroup, KindConditional, KindRepeatable:
		return true
	default:
		return false
	}
}

// Find walks the tree depth-first and returns the first element with the
// given key.
func Find(elements []Element, key string) (Element, bool) {
	for _, element := range elements {
		if element.Key == key {
			return element, true
		}
		if found, ok := Find(element.Children, key); ok {
			return found, true
		}
	}
	return Element{}, false
}
