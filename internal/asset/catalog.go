package asset

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when the catalog has no entry for a GUID or path.
var ErrNotFound = errors.New("asset not found")

// Entry is one indexed asset.
type Entry struct {
	GUID      string
	Path      string
	Root      string
	IndexedAt time.Time
}

// LinkEntry records that the node at NodePath inside asset AssetGUID is an
// instance of TemplateGUID.
type LinkEntry struct {
	AssetGUID    string
	TemplateGUID string
	NodePath     string
}

// Catalog maps asset GUIDs to project paths and records which assets nest
// which templates. It is backed by SQLite.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (creating if needed) the catalog database at dbPath.
func OpenCatalog(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// A single connection keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS assets (
		guid TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		root TEXT NOT NULL,
		indexed_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS links (
		asset_guid TEXT NOT NULL,
		template_guid TEXT NOT NULL,
		node_path TEXT NOT NULL,
		PRIMARY KEY (asset_guid, node_path, template_guid)
	) WITHOUT ROWID;
	CREATE INDEX IF NOT EXISTS idx_links_template ON links(template_guid);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Put records an asset and replaces its link rows. A previous entry at the
// same path under another GUID is removed.
func (c *Catalog) Put(e Entry, links []LinkEntry) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM links WHERE asset_guid IN (SELECT guid FROM assets WHERE path = ? AND guid != ?)`, e.Path, e.GUID); err != nil {
		return fmt.Errorf("clear stale links: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM assets WHERE path = ? AND guid != ?`, e.Path, e.GUID); err != nil {
		return fmt.Errorf("clear stale asset: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO assets (guid, path, root, indexed_at)
		VALUES (?, ?, ?, ?)
	`, e.GUID, e.Path, e.Root, e.IndexedAt.Unix()); err != nil {
		return fmt.Errorf("insert asset %s: %w", e.Path, err)
	}
	if _, err := tx.Exec(`DELETE FROM links WHERE asset_guid = ?`, e.GUID); err != nil {
		return fmt.Errorf("clear links: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO links (asset_guid, template_guid, node_path) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, l := range links {
		if _, err := stmt.Exec(e.GUID, l.TemplateGUID, l.NodePath); err != nil {
			return fmt.Errorf("insert link %s: %w", l.NodePath, err)
		}
	}
	return tx.Commit()
}

// PathForGUID returns the project path of an asset.
func (c *Catalog) PathForGUID(guid string) (string, error) {
	var path string
	err := c.db.QueryRow(`SELECT path FROM assets WHERE guid = ?`, guid).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("guid %s: %w", guid, ErrNotFound)
	}
	return path, err
}

// GUIDForPath returns the GUID of the asset at path.
func (c *Catalog) GUIDForPath(path string) (string, error) {
	var guid string
	err := c.db.QueryRow(`SELECT guid FROM assets WHERE path = ?`, path).Scan(&guid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("path %s: %w", path, ErrNotFound)
	}
	return guid, err
}

// Entries lists every asset ordered by path.
func (c *Catalog) Entries() ([]Entry, error) {
	rows, err := c.db.Query(`SELECT guid, path, root, indexed_at FROM assets ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.GUID, &e.Path, &e.Root, &ts); err != nil {
			return nil, err
		}
		e.IndexedAt = time.Unix(ts, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Links lists every recorded nesting.
func (c *Catalog) Links() ([]LinkEntry, error) {
	rows, err := c.db.Query(`SELECT asset_guid, template_guid, node_path FROM links ORDER BY asset_guid, node_path`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []LinkEntry
	for rows.Next() {
		var l LinkEntry
		if err := rows.Scan(&l.AssetGUID, &l.TemplateGUID, &l.NodePath); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Prune removes every asset under dir whose path is not in keep. An empty
// dir or "." covers the whole catalog.
func (c *Catalog) Prune(dir string, keep map[string]bool) (int, error) {
	entries, err := c.Entries()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if keep[e.Path] || !within(dir, e.Path) {
			continue
		}
		if _, err := c.db.Exec(`DELETE FROM links WHERE asset_guid = ?`, e.GUID); err != nil {
			return removed, err
		}
		if _, err := c.db.Exec(`DELETE FROM assets WHERE guid = ?`, e.GUID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func within(dir, path string) bool {
	dir = filepath.Clean(dir)
	if dir == "." || dir == "/" {
		return true
	}
	return path == dir || strings.HasPrefix(path, dir+"/")
}
