package linker

import (
	"fmt"

	"github.com/agentic-research/prefablink/internal/scene"
)

// alignHierarchy checks that dst mirrors src name for name, copies tag and
// layer across, then extends dst with src's trailing children.
//
// Renamed, reordered or removed nodes are not supported. Siblings sharing a
// name are matched by position here but may confuse reference repair.
func (l *Linker) alignHierarchy(src, dst *scene.Node) error {
	if src.Name != dst.Name {
		return l.mismatch(ErrIncompatibleHierarchy, dst, "live node is named %q", src.Name)
	}
	dst.Tag = src.Tag
	dst.Layer = src.Layer

	matched := len(dst.Children)
	if len(src.Children) < matched {
		return l.mismatch(ErrIncompatibleHierarchy, dst,
			"live node has %d children, template has %d", len(src.Children), matched)
	}
	for i := 0; i < matched; i++ {
		if err := l.alignHierarchy(src.Children[i], dst.Children[i]); err != nil {
			return err
		}
	}
	for _, extra := range src.Children[matched:] {
		if _, err := l.extend(extra, dst); err != nil {
			return err
		}
	}
	return nil
}

// extend appends a copy of src under parent. Nested template instances are
// re-instantiated from their template and get src's override list, so the
// link survives; anything else is duplicated as plain nodes.
func (l *Linker) extend(src, parent *scene.Node) (*scene.Node, error) {
	var child *scene.Node
	if l.registry.IsNestedTemplateRoot(src) {
		path, err := l.registry.NearestTemplateAssetPath(src)
		if err != nil {
			return nil, fmt.Errorf("locate template of %s: %w", src.Path(), err)
		}
		prefab, err := l.registry.ResolveTemplateAsset(path)
		if err != nil {
			return nil, fmt.Errorf("load template %s: %w", path, err)
		}
		child = l.inst.Instantiate(prefab, parent)
		if err := l.registry.SetOverrides(child, l.registry.Overrides(src)); err != nil {
			return nil, fmt.Errorf("apply overrides to %s: %w", child.Path(), err)
		}
	} else {
		child = l.inst.Duplicate(src, parent)
	}
	child.Name = src.Name

	l.log.Debug("extended hierarchy", "node", child.Path(), "linked", child.Link != nil)
	return child, nil
}
