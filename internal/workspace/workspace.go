// Package workspace ties the asset store, catalog and linker together for one
// project directory. The CLI and the MCP server both drive it.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/agentic-research/prefablink/internal/asset"
	"github.com/agentic-research/prefablink/internal/config"
	"github.com/agentic-research/prefablink/internal/linker"
	"github.com/agentic-research/prefablink/internal/scene"
)

// Workspace is an open project.
type Workspace struct {
	cfg      config.Config
	store    *asset.Store
	catalog  *asset.Catalog
	registry *asset.Registry
	linker   *linker.Linker
	log      *slog.Logger
}

// Open opens the project described by cfg on the local disk, creating the
// catalog if needed.
func Open(cfg config.Config, logger *slog.Logger) (*Workspace, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	catPath := cfg.CatalogPath()
	if catPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(catPath), 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}
	cat, err := asset.OpenCatalog(catPath)
	if err != nil {
		return nil, err
	}
	return New(cfg, osfs.New(cfg.Project), cat, logger), nil
}

// New assembles a workspace over an arbitrary filesystem and catalog. The
// workspace takes ownership of the catalog.
func New(cfg config.Config, fs billy.Filesystem, cat *asset.Catalog, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := asset.NewStore(fs, logger)
	registry := asset.NewRegistry(cat, store, logger)
	return &Workspace{
		cfg:      cfg,
		store:    store,
		catalog:  cat,
		registry: registry,
		linker:   linker.New(registry, linker.WithLogger(logger)),
		log:      logger,
	}
}

// Close releases the catalog.
func (w *Workspace) Close() error {
	return w.catalog.Close()
}

// Index rescans the asset directory into the catalog. Templates loaded
// before the scan are forgotten.
func (w *Workspace) Index() (asset.IndexStats, error) {
	stats, err := asset.Index(w.store, w.catalog, w.cfg.Assets, w.cfg.Extensions)
	w.registry.Reset()
	return stats, err
}

// Dependents lists every asset that nests the asset at path, transitively
// when deep is set.
func (w *Workspace) Dependents(path string, deep bool) ([]asset.Entry, error) {
	guid, err := w.catalog.GUIDForPath(path)
	if err != nil {
		return nil, err
	}
	idx, err := asset.BuildDependencyIndex(w.catalog)
	if err != nil {
		return nil, err
	}
	if deep {
		return idx.Dependents(guid), nil
	}
	return idx.Direct(guid), nil
}

// ErrNodeNotFound is returned when a node path does not resolve.
var ErrNodeNotFound = errors.New("node not found")

// Find loads the asset at path and resolves nodePath in it. An empty
// nodePath selects the root.
func (w *Workspace) Find(path, nodePath string) (*scene.Node, error) {
	p, err := w.store.Load(path)
	if err != nil {
		return nil, err
	}
	if nodePath == "" {
		return p.Root, nil
	}
	n, ok := scene.Find(p.Root, nodePath)
	if !ok {
		return nil, fmt.Errorf("%s in %s: %w", nodePath, path, ErrNodeNotFound)
	}
	return n, nil
}
