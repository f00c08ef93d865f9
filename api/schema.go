package api

// Version is the document schema version written by this tool.
const Version = "1"

// Document is the on-disk form of an asset: a template, a variant or a
// scene. It serializes to JSON (.json) or YAML (.prefab, .yaml, .yml).
type Document struct {
	// Version of the document schema.
	Version string `json:"version" yaml:"version"`
	// GUID identifies the asset across renames.
	GUID string `json:"guid" yaml:"guid"`
	// Root of the hierarchy.
	Root Node `json:"root" yaml:"root"`
}

// Node is one object in the hierarchy.
type Node struct {
	// ID is unique within the document across nodes and components.
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	// Tag is the classification code.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`
	// Layer is the layer/group code.
	Layer int `json:"layer,omitempty" yaml:"layer,omitempty"`
	// Prefab is set when this node is the root of a nested template instance.
	Prefab     *PrefabLink `json:"prefab,omitempty" yaml:"prefab,omitempty"`
	Components []Component `json:"components,omitempty" yaml:"components,omitempty"`
	Children   []Node      `json:"children,omitempty" yaml:"children,omitempty"`
}

// PrefabLink names the template an instance was created from and the
// property overrides recorded against it.
type PrefabLink struct {
	GUID      string     `json:"guid" yaml:"guid"`
	Overrides []Override `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Override is a recorded property modification on a nested instance.
type Override struct {
	// Target is the node path relative to the instance root; empty for the root.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	// Component is the component type; empty for node properties.
	Component string `json:"component,omitempty" yaml:"component,omitempty"`
	// Property is a dotted path whose first segment is the field name.
	Property string `json:"property" yaml:"property"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Component is a typed set of fields.
type Component struct {
	ID     int64   `json:"id" yaml:"id"`
	Type   string  `json:"type" yaml:"type"`
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Field kinds. An empty kind is a value field.
const (
	KindValue = ""
	KindRef   = "ref"
	KindRefs  = "refs"
)

// Field holds a plain value (Value), a single reference (Ref, nil for a null
// reference) or a list of references (Refs, nil entries allowed), as selected
// by Kind.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
	Ref   *Ref   `json:"ref,omitempty" yaml:"ref,omitempty"`
	Refs  []*Ref `json:"refs,omitempty" yaml:"refs,omitempty"`
}

// Ref points at an object by document-local ID. A non-empty GUID makes it a
// reference into another asset.
type Ref struct {
	ID   int64  `json:"id" yaml:"id"`
	GUID string `json:"guid,omitempty" yaml:"guid,omitempty"`
}
