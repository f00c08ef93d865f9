package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/prefablink/api"
)

// DefaultExtensions are the file extensions indexed when none are configured.
var DefaultExtensions = []string{".prefab", ".json", ".yaml", ".yml"}

// IndexStats summarizes an indexing run.
type IndexStats struct {
	Indexed int
	Skipped int
	Pruned  int
}

// Index walks dir in the store and records every asset document in the
// catalog. Files that fail to decode are skipped with a warning. Catalog
// entries whose file is gone are pruned.
func Index(s *Store, c *Catalog, dir string, exts []string) (IndexStats, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	var stats IndexStats
	seen := make(map[string]bool)
	now := time.Now()

	err := util.Walk(s.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasExt(path, exts) {
			return nil
		}
		doc, err := s.ReadDocument(path)
		if err != nil || doc.GUID == "" {
			if err == nil {
				err = fmt.Errorf("missing guid")
			}
			s.log.Warn("skipped file", "path", path, "err", err)
			stats.Skipped++
			return nil
		}
		if err := c.Put(Entry{GUID: doc.GUID, Path: path, Root: doc.Root.Name, IndexedAt: now}, LinksOf(doc)); err != nil {
			return err
		}
		seen[path] = true
		stats.Indexed++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("index %s: %w", dir, err)
	}

	pruned, err := c.Prune(dir, seen)
	if err != nil {
		return stats, fmt.Errorf("prune catalog: %w", err)
	}
	stats.Pruned = pruned
	s.log.Info("indexed assets", "dir", dir, "indexed", stats.Indexed, "skipped", stats.Skipped, "pruned", stats.Pruned)
	return stats, nil
}

// Record adds a single freshly written document to the catalog.
func Record(c *Catalog, path string, doc *api.Document) error {
	return c.Put(Entry{GUID: doc.GUID, Path: path, Root: doc.Root.Name, IndexedAt: time.Now()}, LinksOf(doc))
}

// LinksOf lists every nested template instance in doc, keyed by node path.
// The document root's own link is included: a variant depends on its base.
func LinksOf(doc *api.Document) []LinkEntry {
	var out []LinkEntry
	var walk func(n *api.Node, path string)
	walk = func(n *api.Node, path string) {
		if n.Prefab != nil && n.Prefab.GUID != "" && n.Prefab.GUID != doc.GUID {
			out = append(out, LinkEntry{AssetGUID: doc.GUID, TemplateGUID: n.Prefab.GUID, NodePath: path})
		}
		for i := range n.Children {
			c := &n.Children[i]
			walk(c, path+"/"+c.Name)
		}
	}
	walk(&doc.Root, doc.Root.Name)
	return out
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
