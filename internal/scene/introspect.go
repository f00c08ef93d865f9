package scene

import "fmt"

// Property is a typed accessor for one serialized property of a component.
// Accessors are resolved against the component passed to Get/Set, so a
// property enumerated on one component can be applied to another component
// of the same type.
type Property interface {
	Name() string
	Type() string
	IsReference() bool
	Get(c *Component) any
	Set(c *Component, v any)
}

// FieldIntrospector enumerates the properties of a component in a stable
// order.
type FieldIntrospector interface {
	Fields(c *Component) []Property
}

// Reflector is the FieldIntrospector for scene components. Every field is a
// property; reference lists additionally expose one property per element,
// named "field[i]", after the list itself.
type Reflector struct{}

// Fields implements FieldIntrospector.
func (Reflector) Fields(c *Component) []Property {
	props := make([]Property, 0, len(c.Fields))
	for _, f := range c.Fields {
		props = append(props, fieldProperty{name: f.Name, kind: f.Kind, typ: typeName(f)})
		if f.Kind != KindReferenceList {
			continue
		}
		list, _ := f.Value.([]any)
		for i := range list {
			props = append(props, elementProperty{field: f.Name, index: i})
		}
	}
	return props
}

type fieldProperty struct {
	name string
	kind Kind
	typ  string
}

func (p fieldProperty) Name() string      { return p.name }
func (p fieldProperty) Type() string      { return p.typ }
func (p fieldProperty) IsReference() bool { return p.kind == KindReference }

func (p fieldProperty) Get(c *Component) any {
	if f := c.Field(p.name); f != nil {
		return f.Value
	}
	return nil
}

func (p fieldProperty) Set(c *Component, v any) {
	c.SetField(p.name, p.kind, v)
}

type elementProperty struct {
	field string
	index int
}

func (p elementProperty) Name() string      { return fmt.Sprintf("%s[%d]", p.field, p.index) }
func (p elementProperty) Type() string      { return KindReference.String() }
func (p elementProperty) IsReference() bool { return true }

func (p elementProperty) Get(c *Component) any {
	list := p.list(c)
	if p.index >= len(list) {
		return nil
	}
	return list[p.index]
}

func (p elementProperty) Set(c *Component, v any) {
	list := p.list(c)
	if p.index >= len(list) {
		return
	}
	list[p.index] = v
}

func (p elementProperty) list(c *Component) []any {
	f := c.Field(p.field)
	if f == nil {
		return nil
	}
	list, _ := f.Value.([]any)
	return list
}

func typeName(f Field) string {
	if f.Kind != KindValue {
		return f.Kind.String()
	}
	switch f.Value.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", f.Value)
	}
}
