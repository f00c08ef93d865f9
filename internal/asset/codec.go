package asset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentic-research/prefablink/api"
	"github.com/agentic-research/prefablink/internal/scene"
)

// Format is an on-disk document encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFor picks the encoding from the file extension. Anything that is not
// .json is treated as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses a document.
func Decode(data []byte, f Format) (*api.Document, error) {
	var doc api.Document
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

// Encode serializes a document.
func Encode(doc *api.Document, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// normalize maps decoder-specific values onto the scene value set: integers
// become int64, other numbers float64, and map keys strings.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return float64(t)
		}
		return int64(t)
	case float32:
		return float64(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}

// floatValue is a float64 that is always written with a fraction or
// exponent, so decoding yields a float again instead of an integer.
type floatValue float64

func (f floatValue) text() string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (f floatValue) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return json.Marshal(float64(f))
	}
	return []byte(f.text()), nil
}

func (f floatValue) MarshalYAML() (any, error) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return float64(f), nil
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: f.text()}, nil
}

// keepFloats is the encoding counterpart of normalize: it wraps every float64
// in v, nested ones included, as a floatValue.
func keepFloats(v any) any {
	switch t := v.(type) {
	case float64:
		return floatValue(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = keepFloats(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = keepFloats(e)
		}
		return out
	default:
		return v
	}
}

// ToScene builds the object graph of a document. References to IDs that do
// not exist in the document are kept as scene.ExternalRef.
func ToScene(doc *api.Document, path string) (*scene.Prefab, error) {
	b := &sceneBuilder{objects: make(map[int64]any)}
	root, err := b.node(&doc.Root, nil)
	if err != nil {
		return nil, err
	}
	for _, p := range b.pending {
		p.target.SetField(p.field.Name, p.kind, b.resolveField(p.field))
	}
	return &scene.Prefab{GUID: doc.GUID, Path: path, Root: root}, nil
}

type pendingField struct {
	target *scene.Component
	field  *api.Field
	kind   scene.Kind
}

type sceneBuilder struct {
	objects map[int64]any
	pending []pendingField
}

func (b *sceneBuilder) register(id int64, obj any) error {
	if id == 0 {
		return nil
	}
	if _, dup := b.objects[id]; dup {
		return fmt.Errorf("duplicate object id %d", id)
	}
	b.objects[id] = obj
	return nil
}

func (b *sceneBuilder) node(in *api.Node, parent *scene.Node) (*scene.Node, error) {
	n := &scene.Node{ID: in.ID, Name: in.Name, Tag: in.Tag, Layer: in.Layer}
	if err := b.register(in.ID, n); err != nil {
		return nil, err
	}
	if parent != nil {
		parent.AddChild(n)
	}
	if in.Prefab != nil {
		n.Link = &scene.Link{GUID: in.Prefab.GUID, Overrides: overridesToScene(in.Prefab.Overrides)}
	}
	for i := range in.Components {
		ac := &in.Components[i]
		c := n.AddComponent(ac.Type)
		c.ID = ac.ID
		if err := b.register(ac.ID, c); err != nil {
			return nil, err
		}
		for j := range ac.Fields {
			f := &ac.Fields[j]
			kind, err := fieldKind(f.Kind)
			if err != nil {
				return nil, fmt.Errorf("%s: %s.%s: %w", n.Path(), ac.Type, f.Name, err)
			}
			if kind == scene.KindValue {
				c.SetField(f.Name, kind, normalize(f.Value))
				continue
			}
			// Reserve the slot so field order survives; resolved later.
			c.SetField(f.Name, kind, nil)
			b.pending = append(b.pending, pendingField{target: c, field: f, kind: kind})
		}
	}
	for i := range in.Children {
		if _, err := b.node(&in.Children[i], n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func fieldKind(k string) (scene.Kind, error) {
	switch k {
	case api.KindValue:
		return scene.KindValue, nil
	case api.KindRef:
		return scene.KindReference, nil
	case api.KindRefs:
		return scene.KindReferenceList, nil
	default:
		return 0, fmt.Errorf("unknown field kind %q", k)
	}
}

func (b *sceneBuilder) resolveField(f *api.Field) any {
	if f.Kind == api.KindRef {
		return b.resolve(f.Ref)
	}
	list := make([]any, len(f.Refs))
	for i, r := range f.Refs {
		list[i] = b.resolve(r)
	}
	return list
}

func (b *sceneBuilder) resolve(r *api.Ref) any {
	if r == nil {
		return nil
	}
	if r.GUID == "" {
		if obj, ok := b.objects[r.ID]; ok {
			return obj
		}
	}
	return scene.ExternalRef{GUID: r.GUID, ID: r.ID}
}

func overridesToScene(in []api.Override) []scene.Override {
	if in == nil {
		return nil
	}
	out := make([]scene.Override, len(in))
	for i, o := range in {
		out[i] = scene.Override{
			Target:    o.Target,
			Component: o.Component,
			Property:  o.Property,
			Value:     normalize(o.Value),
		}
	}
	return out
}

func overridesToAPI(in []scene.Override) []api.Override {
	if in == nil {
		return nil
	}
	out := make([]api.Override, len(in))
	for i, o := range in {
		out[i] = api.Override{
			Target:    o.Target,
			Component: o.Component,
			Property:  o.Property,
			Value:     keepFloats(o.Value),
		}
	}
	return out
}

// DroppedRef describes a reference that could not be written because its
// target is neither in the document nor an external object.
type DroppedRef struct {
	Node  string
	Field string
}

// FromScene serializes a hierarchy. Existing IDs are kept when unique;
// missing or clashing ones are reassigned above the highest ID in use.
// References to objects outside root are written as null and reported.
func FromScene(root *scene.Node, guid string) (*api.Document, []DroppedRef) {
	e := newSceneEncoder(root)
	doc := &api.Document{
		Version: api.Version,
		GUID:    guid,
		Root:    e.node(root),
	}
	return doc, e.dropped
}

type sceneEncoder struct {
	ids     map[any]int64
	dropped []DroppedRef
}

func newSceneEncoder(root *scene.Node) *sceneEncoder {
	e := &sceneEncoder{ids: make(map[any]int64)}

	var high int64
	used := make(map[int64]bool)
	bump := func(id int64) {
		if id > high {
			high = id
		}
	}
	root.Walk(func(n *scene.Node) bool {
		bump(n.ID)
		for _, c := range n.Components {
			bump(c.ID)
			for _, f := range c.Fields {
				forEachRef(f, func(v any) {
					if r, ok := v.(scene.ExternalRef); ok && r.GUID == "" {
						bump(r.ID)
					}
				})
			}
		}
		return true
	})

	assign := func(obj any, id int64) {
		if id == 0 || used[id] {
			high++
			id = high
		}
		used[id] = true
		e.ids[obj] = id
	}
	root.Walk(func(n *scene.Node) bool {
		assign(n, n.ID)
		for _, c := range n.Components {
			assign(c, c.ID)
		}
		return true
	})
	return e
}

func forEachRef(f scene.Field, fn func(any)) {
	switch f.Kind {
	case scene.KindReference:
		fn(f.Value)
	case scene.KindReferenceList:
		list, _ := f.Value.([]any)
		for _, v := range list {
			fn(v)
		}
	}
}

func (e *sceneEncoder) node(n *scene.Node) api.Node {
	out := api.Node{
		ID:    e.ids[n],
		Name:  n.Name,
		Tag:   n.Tag,
		Layer: n.Layer,
	}
	if n.Link != nil {
		out.Prefab = &api.PrefabLink{GUID: n.Link.GUID, Overrides: overridesToAPI(n.Link.Overrides)}
	}
	for _, c := range n.Components {
		ac := api.Component{ID: e.ids[c], Type: c.Type}
		for _, f := range c.Fields {
			ac.Fields = append(ac.Fields, e.field(n, c, f))
		}
		out.Components = append(out.Components, ac)
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, e.node(child))
	}
	return out
}

func (e *sceneEncoder) field(n *scene.Node, c *scene.Component, f scene.Field) api.Field {
	out := api.Field{Name: f.Name}
	switch f.Kind {
	case scene.KindReference:
		out.Kind = api.KindRef
		out.Ref = e.ref(n, c, f.Name, f.Value)
	case scene.KindReferenceList:
		out.Kind = api.KindRefs
		list, _ := f.Value.([]any)
		out.Refs = make([]*api.Ref, len(list))
		for i, v := range list {
			out.Refs[i] = e.ref(n, c, fmt.Sprintf("%s[%d]", f.Name, i), v)
		}
	default:
		out.Value = keepFloats(f.Value)
	}
	return out
}

func (e *sceneEncoder) ref(n *scene.Node, c *scene.Component, name string, v any) *api.Ref {
	switch r := v.(type) {
	case nil:
		return nil
	case scene.ExternalRef:
		return &api.Ref{ID: r.ID, GUID: r.GUID}
	case *scene.Node, *scene.Component:
		if id, ok := e.ids[v]; ok {
			return &api.Ref{ID: id}
		}
	}
	e.dropped = append(e.dropped, DroppedRef{Node: n.Path(), Field: c.Type + "." + name})
	return nil
}
