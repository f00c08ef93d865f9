package asset

import (
	"fmt"
	"log/slog"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/prefablink/api"
	"github.com/agentic-research/prefablink/internal/scene"
)

// Store reads and writes asset documents on a billy filesystem rooted at the
// project directory. Paths are relative to that root.
type Store struct {
	fs  billy.Filesystem
	log *slog.Logger
}

// NewStore returns a Store over fs. A nil logger discards output.
func NewStore(fs billy.Filesystem, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{fs: fs, log: logger}
}

// Filesystem returns the underlying filesystem.
func (s *Store) Filesystem() billy.Filesystem { return s.fs }

// ReadFile returns the raw bytes of an asset.
func (s *Store) ReadFile(path string) ([]byte, error) {
	return util.ReadFile(s.fs, path)
}

// ReadDocument reads and decodes an asset.
func (s *Store) ReadDocument(path string) (*api.Document, error) {
	data, err := s.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

// Load reads an asset and builds its object graph. Every call returns a fresh
// graph that the caller owns.
func (s *Store) Load(path string) (*scene.Prefab, error) {
	doc, err := s.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	p, err := ToScene(doc, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return p, nil
}

// Marshal serializes root as an asset with the given GUID, in the encoding
// selected by path. Dropped references are logged.
func (s *Store) Marshal(root *scene.Node, path, guid string) ([]byte, error) {
	doc, dropped := FromScene(root, guid)
	for _, d := range dropped {
		s.log.Warn("reference outside the asset written as null", "asset", path, "node", d.Node, "field", d.Field)
	}
	return Encode(doc, FormatFor(path))
}

// WriteFile replaces path atomically: content goes to a temp file in the same
// directory, which is then renamed over the destination.
func (s *Store) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := s.fs.TempFile(dir, ".prefablink-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	s.log.Debug("wrote asset", "path", path, "bytes", len(data))
	return nil
}
