package linker

import (
	"github.com/agentic-research/prefablink/internal/scene"
)

func (l *Linker) syncComponents(src, dst *scene.Node) error {
	return walkPairs(src, dst, l.syncNode)
}

// syncNode copies component data from src onto dst. Components must line up
// by index and concrete type; live components past the template's count are
// appended.
func (l *Linker) syncNode(src, dst *scene.Node) error {
	matched := len(dst.Components)
	if len(src.Components) < matched {
		return l.mismatch(ErrIncompatibleComponents, dst,
			"live node has %d components, template has %d", len(src.Components), matched)
	}

	for j := 0; j < matched; j++ {
		sc, dc := src.Components[j], dst.Components[j]
		if sc.Type != dc.Type {
			return l.mismatch(ErrIncompatibleComponents, dst,
				"component %d is %s on the live node, %s in the template", j, sc.Type, dc.Type)
		}
		if n := l.copyIfDifferent(sc, dc); n > 0 {
			l.log.Debug("synchronized component", "node", dst.Path(), "type", dc.Type, "changed", n)
		}
	}

	for _, sc := range src.Components[matched:] {
		dc := dst.AddComponent(sc.Type)
		l.copyAll(sc, dc)
		l.log.Debug("added component", "node", dst.Path(), "type", dc.Type)
	}
	return nil
}

// copyIfDifferent writes only the properties whose values differ and returns
// how many it wrote.
func (l *Linker) copyIfDifferent(src, dst *scene.Component) int {
	changed := 0
	for _, p := range l.fields.Fields(src) {
		v := p.Get(src)
		if scene.Equal(v, p.Get(dst)) {
			continue
		}
		p.Set(dst, scene.CloneValue(v))
		changed++
	}
	return changed
}

func (l *Linker) copyAll(src, dst *scene.Component) {
	for _, p := range l.fields.Fields(src) {
		p.Set(dst, scene.CloneValue(p.Get(src)))
	}
}
