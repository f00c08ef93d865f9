package workspace

import (
	"errors"
	"fmt"

	"github.com/agentic-research/prefablink/internal/asset"
	"github.com/agentic-research/prefablink/internal/scene"
)

// LinkRequest describes one variant creation.
type LinkRequest struct {
	// Instance is the asset holding the live, edited instance.
	Instance string
	// Node optionally selects a subtree of Instance as the live instance.
	Node string
	// Template is the template asset path. When empty it is taken from the
	// nearest template link on the live instance.
	Template string
	// Out is where the variant is written. It keeps the GUID of any asset
	// already catalogued there and gets a fresh one otherwise.
	Out string
	// Replace writes the variant over Instance, keeping its GUID.
	Replace bool
	// DryRun computes the result without writing anything.
	DryRun bool
}

// LinkResult is the outcome of a Link call.
type LinkResult struct {
	Variant  *scene.Node
	Template string
	GUID     string
	// Path is the destination; empty when no destination was requested.
	Path string
	// Written is false for dry runs and destination-less requests.
	Written bool
	// Before is the current content at Path (or of Instance when there is no
	// destination), After the serialized variant.
	Before, After string
}

// Link creates a variant of a template from an edited instance and,
// unless asked not to, saves it.
func (w *Workspace) Link(req LinkRequest) (*LinkResult, error) {
	if req.Instance == "" {
		return nil, errors.New("link: instance path is required")
	}
	if req.Replace && req.Out != "" {
		return nil, errors.New("link: --replace and --out are mutually exclusive")
	}
	if req.Replace && req.Node != "" {
		return nil, errors.New("link: --replace cannot be combined with --node")
	}

	src, err := w.store.Load(req.Instance)
	if err != nil {
		return nil, err
	}
	live := src.Root
	if req.Node != "" {
		n, ok := scene.Find(src.Root, req.Node)
		if !ok {
			return nil, fmt.Errorf("%s in %s: %w", req.Node, req.Instance, ErrNodeNotFound)
		}
		live = n
	}

	tmplPath := req.Template
	if tmplPath == "" {
		if tmplPath, err = w.registry.NearestTemplateAssetPath(live); err != nil {
			return nil, fmt.Errorf("link: %w", err)
		}
	}
	tmpl, err := w.registry.ResolveTemplateAsset(tmplPath)
	if err != nil {
		return nil, err
	}

	variant, err := w.linker.CreateVariant(live, tmpl)
	if err != nil {
		return nil, err
	}

	res := &LinkResult{Variant: variant, Template: tmplPath}
	switch {
	case req.Replace:
		res.Path, res.GUID = req.Instance, src.GUID
	case req.Out != "":
		res.Path = req.Out
		res.GUID, err = w.catalog.GUIDForPath(req.Out)
		if errors.Is(err, asset.ErrNotFound) {
			res.GUID, err = asset.NewGUID(), nil
		}
		if err != nil {
			return nil, err
		}
	default:
		res.GUID = src.GUID
	}

	target := res.Path
	if target == "" {
		target = req.Instance
	}
	after, err := w.store.Marshal(variant, target, res.GUID)
	if err != nil {
		return nil, err
	}
	res.After = string(after)
	if before, err := w.store.ReadFile(target); err == nil {
		res.Before = string(before)
	}

	if req.DryRun || res.Path == "" {
		return res, nil
	}
	if err := w.store.WriteFile(res.Path, after); err != nil {
		return nil, err
	}
	doc, err := asset.Decode(after, asset.FormatFor(res.Path))
	if err != nil {
		return nil, err
	}
	if err := asset.Record(w.catalog, res.Path, doc); err != nil {
		return nil, fmt.Errorf("record %s: %w", res.Path, err)
	}
	w.registry.Invalidate(res.Path)
	res.Written = true
	w.log.Info("saved variant", "path", res.Path, "guid", res.GUID, "template", tmplPath)
	return res, nil
}
