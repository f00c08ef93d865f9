// Package config loads prefablink.hcl, the per-project settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// FileName is the settings file looked up in the working directory.
const FileName = "prefablink.hcl"

// Config holds project settings.
type Config struct {
	// Project is the root directory all asset paths are relative to.
	Project string
	// Catalog is the SQLite catalog path, relative to Project unless absolute.
	Catalog string
	// Assets is the directory (relative to Project) that index walks.
	Assets string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// Extensions lists the file extensions treated as asset documents.
	Extensions []string
	// Color enables colored diff output.
	Color bool
}

// file mirrors Config with every attribute optional.
type file struct {
	Project    *string  `hcl:"project,optional"`
	Catalog    *string  `hcl:"catalog,optional"`
	Assets     *string  `hcl:"assets,optional"`
	LogLevel   *string  `hcl:"log_level,optional"`
	Extensions []string `hcl:"extensions,optional"`
	Color      *bool    `hcl:"color,optional"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Project:    ".",
		Catalog:    ".prefablink/catalog.db",
		Assets:     ".",
		LogLevel:   "info",
		Extensions: []string{".prefab", ".json", ".yaml", ".yml"},
		Color:      true,
	}
}

// Load reads the settings file at path on top of the defaults. A missing file
// is only an error when required is set. A relative project directory is
// resolved against the file's directory.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var f file
	if err := hclsimple.Decode(path, src, nil, &f); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if f.Project != nil {
		cfg.Project = *f.Project
		if !filepath.IsAbs(cfg.Project) {
			cfg.Project = filepath.Join(filepath.Dir(path), cfg.Project)
		}
	}
	if f.Catalog != nil {
		cfg.Catalog = *f.Catalog
	}
	if f.Assets != nil {
		cfg.Assets = *f.Assets
	}
	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}
	if f.Extensions != nil {
		cfg.Extensions = f.Extensions
	}
	if f.Color != nil {
		cfg.Color = *f.Color
	}
	return cfg, cfg.Validate()
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Project == "" {
		return errors.New("config: project must not be empty")
	}
	if c.Catalog == "" {
		return errors.New("config: catalog must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("config: extension %q must start with a dot", ext)
		}
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return l, nil
}

// CatalogPath returns the catalog location on disk.
func (c Config) CatalogPath() string {
	if filepath.IsAbs(c.Catalog) || c.Catalog == ":memory:" {
		return c.Catalog
	}
	return filepath.Join(c.Project, c.Catalog)
}
