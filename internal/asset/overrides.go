package asset

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/agentic-research/prefablink/internal/scene"
)

// ApplyOverride writes one recorded modification onto the instance rooted at
// root. Node properties (empty Component) are name, tag and layer. Component
// properties are JSONPath-style paths whose first segment is a field name,
// e.g. "speed", "offset.x" or "points[1].y".
func ApplyOverride(root *scene.Node, o scene.Override) error {
	target, ok := scene.FindRelative(root, o.Target)
	if !ok {
		return fmt.Errorf("override target %q not found", o.Target)
	}
	if o.Component == "" {
		return setNodeProperty(target, o.Property, o.Value)
	}

	c := target.Component(o.Component)
	if c == nil {
		return fmt.Errorf("override target %q has no %s component", o.Target, o.Component)
	}
	name := fieldName(o.Property)
	if name == "" {
		return fmt.Errorf("override property %q has no field name", o.Property)
	}
	f := c.Field(name)
	if f != nil && f.Kind != scene.KindValue {
		return fmt.Errorf("override property %q: %s fields cannot be overridden by value", o.Property, f.Kind)
	}

	x, err := jp.ParseString("$." + o.Property)
	if err != nil {
		return fmt.Errorf("invalid override path %q: %w", o.Property, err)
	}
	holder := map[string]any{}
	if f != nil {
		holder[name] = f.Value
	}
	if err := x.Set(holder, scene.CloneValue(o.Value)); err != nil {
		return fmt.Errorf("apply override %q: %w", o.Property, err)
	}
	c.SetField(name, scene.KindValue, holder[name])
	return nil
}

func fieldName(property string) string {
	if i := strings.IndexAny(property, ".["); i >= 0 {
		return property[:i]
	}
	return property
}

func setNodeProperty(n *scene.Node, property string, v any) error {
	switch property {
	case "name":
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("name override must be a string, got %T", v)
		}
		n.Name = s
	case "tag":
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("tag override must be a string, got %T", v)
		}
		n.Tag = s
	case "layer":
		switch t := v.(type) {
		case int64:
			n.Layer = int(t)
		case float64:
			n.Layer = int(t)
		case int:
			n.Layer = t
		default:
			return fmt.Errorf("layer override must be a number, got %T", v)
		}
	default:
		return fmt.Errorf("unknown node property %q", property)
	}
	return nil
}
