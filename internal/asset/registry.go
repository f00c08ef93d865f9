package asset

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/agentic-research/prefablink/internal/scene"
)

// Registry resolves nested template instances against the catalog and loads
// template assets through the store. Loaded templates are cached and must be
// treated as read-only.
type Registry struct {
	catalog *Catalog
	store   *Store
	log     *slog.Logger

	mu    sync.Mutex
	cache map[string]*scene.Prefab
}

// NewRegistry returns a Registry. A nil logger discards output.
func NewRegistry(catalog *Catalog, store *Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		catalog: catalog,
		store:   store,
		log:     logger,
		cache:   make(map[string]*scene.Prefab),
	}
}

// IsNestedTemplateRoot reports whether n is the root of a template instance.
func (r *Registry) IsNestedTemplateRoot(n *scene.Node) bool {
	return n != nil && n.Link != nil
}

// nearestLink returns the closest node at or above n carrying a link.
func nearestLink(n *scene.Node) *scene.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Link != nil {
			return cur
		}
	}
	return nil
}

// NearestTemplateAssetPath returns the asset path of the template that the
// closest linked ancestor of n (n included) was instantiated from.
func (r *Registry) NearestTemplateAssetPath(n *scene.Node) (string, error) {
	owner := nearestLink(n)
	if owner == nil {
		return "", fmt.Errorf("%s is not part of a template instance", n.Path())
	}
	path, err := r.catalog.PathForGUID(owner.Link.GUID)
	if err != nil {
		return "", fmt.Errorf("template of %s: %w", owner.Path(), err)
	}
	return path, nil
}

// ResolveTemplateAsset loads the template stored at path.
func (r *Registry) ResolveTemplateAsset(path string) (*scene.Prefab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.cache[path]; ok {
		return p, nil
	}
	p, err := r.store.Load(path)
	if err != nil {
		return nil, err
	}
	r.cache[path] = p
	r.log.Debug("loaded template", "path", path, "guid", p.GUID)
	return p, nil
}

// Invalidate drops a cached template, e.g. after it was rewritten.
func (r *Registry) Invalidate(path string) {
	r.mu.Lock()
	delete(r.cache, path)
	r.mu.Unlock()
}

// Reset drops every cached template.
func (r *Registry) Reset() {
	r.mu.Lock()
	clear(r.cache)
	r.mu.Unlock()
}

// Overrides returns a copy of the overrides recorded on the closest linked
// ancestor of n (n included).
func (r *Registry) Overrides(n *scene.Node) []scene.Override {
	owner := nearestLink(n)
	if owner == nil {
		return nil
	}
	return scene.CloneOverrides(owner.Link.Overrides)
}

// SetOverrides records overrides on the instance root n and applies them to
// its hierarchy. Overrides whose target no longer exists are kept in the
// record but skipped with a warning.
func (r *Registry) SetOverrides(n *scene.Node, overrides []scene.Override) error {
	if n == nil || n.Link == nil {
		return fmt.Errorf("set overrides: node is not a template instance root")
	}
	n.Link.Overrides = scene.CloneOverrides(overrides)
	for _, o := range overrides {
		if err := ApplyOverride(n, o); err != nil {
			r.log.Warn("skipped override", "instance", n.Path(), "target", o.Target,
				"component", o.Component, "property", o.Property, "err", err)
		}
	}
	return nil
}
