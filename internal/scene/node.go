package scene

import (
	"strings"
)

// Kind classifies what a Field holds.
type Kind uint8

const (
	KindValue         Kind = iota // plain data, copied by value
	KindReference                 // a single object reference
	KindReferenceList             // an ordered list of object references
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindReference:
		return "reference"
	case KindReferenceList:
		return "reference-list"
	default:
		return "unknown"
	}
}

// ExternalRef is a reference the scene graph cannot resolve to a live object:
// either an object inside another asset (GUID set) or a dangling local id.
// It is carried verbatim through every operation.
type ExternalRef struct {
	GUID string
	ID   int64
}

// Field is one serialized field of a Component.
//
// For KindValue the Value is JSON-like data (nil, bool, int64, float64,
// string, map[string]any, []any). For KindReference the Value is nil,
// *Node, *Component or ExternalRef. For KindReferenceList the Value is a
// []any whose elements follow the KindReference rules.
type Field struct {
	Name  string
	Kind  Kind
	Value any
}

// Component is a typed bag of fields attached to exactly one Node.
type Component struct {
	ID     int64
	Type   string
	Owner  *Node
	Fields []Field
}

// Field returns the field with the given name, or nil.
func (c *Component) Field(name string) *Field {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// SetField sets (or appends) a field by name.
func (c *Component) SetField(name string, kind Kind, value any) {
	if f := c.Field(name); f != nil {
		f.Kind = kind
		f.Value = value
		return
	}
	c.Fields = append(c.Fields, Field{Name: name, Kind: kind, Value: value})
}

// Override is one recorded property modification of a nested template
// instance. Target is the node path relative to the instance root ("" for the
// root itself), Component the component type ("" for node properties) and
// Property a dotted property path whose first segment is the field name.
type Override struct {
	Target    string
	Component string
	Property  string
	Value     any
}

// Link marks a node as the root of an instance of the template asset GUID.
type Link struct {
	GUID      string
	Overrides []Override
}

// Clone returns a copy of the link with its own override slice.
func (l *Link) Clone() *Link {
	if l == nil {
		return nil
	}
	return &Link{
		GUID:      l.GUID,
		Overrides: CloneOverrides(l.Overrides),
	}
}

// CloneOverrides deep-copies an override list.
func CloneOverrides(in []Override) []Override {
	if in == nil {
		return nil
	}
	out := make([]Override, len(in))
	for i, o := range in {
		o.Value = CloneValue(o.Value)
		out[i] = o
	}
	return out
}

// Node is a point in a hierarchy. Names are not required to be unique.
type Node struct {
	ID         int64
	Name       string
	Tag        string
	Layer      int
	Parent     *Node
	Children   []*Node
	Components []*Component

	// Link is non-nil when this node is the root of a nested template
	// instance.
	Link *Link
}

// NewNode returns a detached node.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// AddChild appends child, reparenting it to n.
func (n *Node) AddChild(child *Node) *Node {
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// NewChild creates and appends a child named name.
func (n *Node) NewChild(name string) *Node {
	return n.AddChild(NewNode(name))
}

// AddComponent appends a new component of the given type with no fields.
func (n *Node) AddComponent(typ string) *Component {
	c := &Component{Type: typ, Owner: n}
	n.Components = append(n.Components, c)
	return c
}

// Component returns the first component of the given type, or nil.
func (n *Node) Component(typ string) *Component {
	for _, c := range n.Components {
		if c.Type == typ {
			return c
		}
	}
	return nil
}

// IsDescendantOf reports whether n is ancestor or lives below it.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Path returns the slash-delimited path of n from the top of its hierarchy,
// including the top node's name.
func (n *Node) Path() string {
	return n.PathFrom(nil)
}

// PathFrom returns the slash-delimited path of n relative to ancestor, which
// is excluded from the path. A nil ancestor yields the full path. If ancestor
// is not above n the full path is returned.
func (n *Node) PathFrom(ancestor *Node) string {
	var segs []string
	for p := n; p != nil && p != ancestor; p = p.Parent {
		segs = append(segs, p.Name)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, "/")
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// OwnerOf returns the node a reference value belongs to: the node itself or
// the owner of a component. Anything else yields nil.
func OwnerOf(ref any) *Node {
	switch v := ref.(type) {
	case *Node:
		return v
	case *Component:
		if v == nil {
			return nil
		}
		return v.Owner
	default:
		return nil
	}
}

// Prefab is a template asset: a hierarchy stored under a GUID and path.
type Prefab struct {
	GUID string
	Path string
	Root *Node
}
