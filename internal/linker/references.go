package linker

import (
	"github.com/agentic-research/prefablink/internal/scene"
)

// repairReferences points references copied from the live tree back into the
// output tree. A reference is rewritten when its live target sits inside
// liveRoot's subtree and a node exists at the same path under outRoot;
// otherwise it is left untouched. A component reference whose counterpart
// node has no component of that type is cleared.
func (l *Linker) repairReferences(liveRoot, outRoot *scene.Node) {
	_ = walkPairs(liveRoot, outRoot, func(src, dst *scene.Node) error {
		for j, sc := range src.Components {
			if j >= len(dst.Components) {
				break
			}
			l.repairComponent(liveRoot, outRoot, sc, dst.Components[j])
		}
		return nil
	})
}

// repairComponent pairs properties by name, so a live component whose fields
// are ordered differently from the template's still lines up.
func (l *Linker) repairComponent(liveRoot, outRoot *scene.Node, sc, dc *scene.Component) {
	dstProps := make(map[string]scene.Property)
	for _, p := range l.fields.Fields(dc) {
		dstProps[p.Name()] = p
	}

	for _, sp := range l.fields.Fields(sc) {
		if !sp.IsReference() {
			continue
		}
		dp, ok := dstProps[sp.Name()]
		if !ok {
			continue
		}
		ref := sp.Get(sc)
		owner := scene.OwnerOf(ref)
		if owner == nil || !owner.IsDescendantOf(liveRoot) {
			continue
		}

		path := owner.PathFrom(liveRoot.Parent)
		target, ok := scene.Find(outRoot, path)
		if !ok {
			l.log.Warn("reference target not found in variant",
				"node", dc.Owner.Path(), "field", dp.Name(), "target", path)
			continue
		}

		switch r := ref.(type) {
		case *scene.Node:
			dp.Set(dc, target)
		case *scene.Component:
			c := target.Component(r.Type)
			if c == nil {
				l.log.Warn("referenced component missing in variant, clearing",
					"node", dc.Owner.Path(), "field", dp.Name(), "target", path, "type", r.Type)
				dp.Set(dc, nil)
				continue
			}
			dp.Set(dc, c)
		}
	}
}
