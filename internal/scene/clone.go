package scene

import "reflect"

// Cloner creates copies of hierarchies. References that point inside the
// copied subtree are remapped to the copies; everything else is kept by
// identity.
type Cloner struct{}

// Instantiate creates a fresh instance of the template under parent (nil for
// a new root). Links nested inside the template are preserved and the new
// root is linked to the template itself.
func (Cloner) Instantiate(p *Prefab, parent *Node) *Node {
	root := cloneTree(p.Root, true)
	root.Link = &Link{GUID: p.GUID}
	attach(root, parent)
	return root
}

// Duplicate creates a plain recursive copy of n under parent (nil for a new
// root). The copy carries no template links.
func (Cloner) Duplicate(n *Node, parent *Node) *Node {
	root := cloneTree(n, false)
	attach(root, parent)
	return root
}

func attach(n, parent *Node) {
	if parent == nil {
		n.Parent = nil
		return
	}
	parent.AddChild(n)
}

type cloneMap struct {
	nodes map[*Node]*Node
	comps map[*Component]*Component
}

func cloneTree(src *Node, keepLinks bool) *Node {
	m := &cloneMap{
		nodes: make(map[*Node]*Node),
		comps: make(map[*Component]*Component),
	}
	dst := m.copyNode(src, keepLinks)
	dst.Walk(func(n *Node) bool {
		for _, c := range n.Components {
			for i := range c.Fields {
				f := &c.Fields[i]
				if f.Kind != KindValue {
					f.Value = m.remap(f.Value)
				}
			}
		}
		return true
	})
	return dst
}

func (m *cloneMap) copyNode(src *Node, keepLinks bool) *Node {
	dst := &Node{
		ID:    src.ID,
		Name:  src.Name,
		Tag:   src.Tag,
		Layer: src.Layer,
	}
	if keepLinks {
		dst.Link = src.Link.Clone()
	}
	m.nodes[src] = dst
	for _, c := range src.Components {
		dc := &Component{
			ID:     c.ID,
			Type:   c.Type,
			Owner:  dst,
			Fields: CloneFields(c.Fields),
		}
		m.comps[c] = dc
		dst.Components = append(dst.Components, dc)
	}
	for _, child := range src.Children {
		dst.AddChild(m.copyNode(child, keepLinks))
	}
	return dst
}

func (m *cloneMap) remap(v any) any {
	switch r := v.(type) {
	case *Node:
		if n, ok := m.nodes[r]; ok {
			return n
		}
	case *Component:
		if c, ok := m.comps[r]; ok {
			return c
		}
	case []any:
		out := make([]any, len(r))
		for i, e := range r {
			out[i] = m.remap(e)
		}
		return out
	}
	return v
}

// CloneFields copies a field slice, deep-copying values.
func CloneFields(in []Field) []Field {
	if in == nil {
		return nil
	}
	out := make([]Field, len(in))
	for i, f := range in {
		f.Value = CloneValue(f.Value)
		out[i] = f
	}
	return out
}

// CloneValue deep-copies maps and slices. Scalars and references are
// returned as is.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = CloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Equal compares two field values. References compare by identity, data
// compares structurally.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case *Node, *Component:
		return a == b
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, e := range av {
			be, ok := bv[k]
			if !ok || !Equal(e, be) {
				return false
			}
		}
		return true
	}
	switch b.(type) {
	case *Node, *Component:
		return false
	}
	return reflect.DeepEqual(a, b)
}
