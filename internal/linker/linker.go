// Package linker folds the edits of a live instance hierarchy onto a fresh
// instance of a template, producing a template variant.
//
// The fold runs in three passes over matched node pairs: hierarchy alignment
// (which also appends live-only trailing children), component
// synchronization, and reference repair. The first two fail hard on any
// structural divergence; the last is best effort.
package linker

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/agentic-research/prefablink/internal/scene"
)

// Instantiator creates output nodes.
type Instantiator interface {
	// Instantiate creates an instance of the template under parent,
	// preserving nested template links.
	Instantiate(p *scene.Prefab, parent *scene.Node) *scene.Node
	// Duplicate creates a plain recursive copy of n under parent.
	Duplicate(n, parent *scene.Node) *scene.Node
}

// TemplateRegistry answers questions about nested template instances.
type TemplateRegistry interface {
	IsNestedTemplateRoot(n *scene.Node) bool
	NearestTemplateAssetPath(n *scene.Node) (string, error)
	ResolveTemplateAsset(path string) (*scene.Prefab, error)
	Overrides(n *scene.Node) []scene.Override
	SetOverrides(n *scene.Node, overrides []scene.Override) error
}

// Linker creates template variants from live instances.
// A Linker holds no per-call state and may be shared.
type Linker struct {
	registry TemplateRegistry
	inst     Instantiator
	fields   scene.FieldIntrospector
	log      *slog.Logger
}

// Option configures a Linker.
type Option func(*Linker)

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Linker) { l.log = logger }
}

// WithInstantiator replaces the default scene.Cloner.
func WithInstantiator(inst Instantiator) Option {
	return func(l *Linker) { l.inst = inst }
}

// WithFieldIntrospector replaces the default scene.Reflector.
func WithFieldIntrospector(fi scene.FieldIntrospector) Option {
	return func(l *Linker) { l.fields = fi }
}

// New returns a Linker resolving nested templates through registry.
func New(registry TemplateRegistry, opts ...Option) *Linker {
	l := &Linker{
		registry: registry,
		inst:     scene.Cloner{},
		fields:   scene.Reflector{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = slog.New(slog.DiscardHandler)
	}
	return l
}

// CreateVariant returns a new instance of template carrying the edits made to
// live. The template itself is never modified. On failure the returned node is
// nil; a hierarchy or component mismatch is reported as a *MismatchError
// wrapping ErrIncompatibleHierarchy or ErrIncompatibleComponents.
func (l *Linker) CreateVariant(live *scene.Node, template *scene.Prefab) (*scene.Node, error) {
	if live == nil {
		return nil, errors.New("create variant: nil instance")
	}
	if template == nil || template.Root == nil {
		return nil, errors.New("create variant: nil template")
	}

	variant := l.inst.Instantiate(template, nil)
	variant.Name = live.Name

	if err := l.alignHierarchy(live, variant); err != nil {
		var me *MismatchError
		if !errors.As(err, &me) {
			l.log.Error("extend hierarchy failed", "instance", live.Path(), "err", err)
		}
		return nil, err
	}
	if err := l.syncComponents(live, variant); err != nil {
		return nil, err
	}
	l.repairReferences(live, variant)

	l.log.Info("created variant", "instance", live.Path(), "template", template.Path)
	return variant, nil
}

// walkPairs calls fn on the pair itself, then recurses into every child pair
// the output node has. Live children beyond the output's are ignored.
func walkPairs(src, dst *scene.Node, fn func(src, dst *scene.Node) error) error {
	if err := fn(src, dst); err != nil {
		return err
	}
	for i, dc := range dst.Children {
		if i >= len(src.Children) {
			break
		}
		if err := walkPairs(src.Children[i], dc, fn); err != nil {
			return err
		}
	}
	return nil
}

func (l *Linker) mismatch(kind error, dst *scene.Node, format string, args ...any) error {
	err := &MismatchError{
		Err:    kind,
		Path:   dst.Path(),
		Detail: fmt.Sprintf(format, args...),
	}
	l.log.Error(kind.Error(), "node", err.Path, "detail", err.Detail)
	return err
}
