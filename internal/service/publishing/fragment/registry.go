package fragment

import (
	"fmt"
	"sync"

	"golang.org/x/net/html"
)

// RenderFunc produces a markup fragment from an object's attributes.
type RenderFunc func(Object) (string, error)

// ParseFunc recovers the attribute bag from a fragment node produced by
// the matching RenderFunc.
type ParseFunc func(*html.Node) (Object, error)

type entry struct {
	render RenderFunc
	parse  ParseFunc
}

// Registry maps fragment kinds to their render/parse pairs. Dispatch goes
// through the kind tag on the markup rather than type switches at call
// sites.
//
// Thread-safe for concurrent access.
type Registry struct {
	mu    sync.RWMutex
	kinds map[Kind]entry
}

// NewRegistry creates a registry with the standard kinds pre-registered.
func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[Kind]entry)}

	r.Register(KindCallout, renderCallout, parseCallout)
	r.Register(KindImage, renderImage, parseImage)
	r.Register(KindCitation, renderCitationSpan, parseCitationSpan)

	return r
}

// Register adds a kind with its serialization pair. Registering an
// existing kind replaces it.
func (r *Registry) Register(kind Kind, render RenderFunc, parse ParseFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = entry{render: render, parse: parse}
}

// Render serializes an object into its markup fragment.
func (r *Registry) Render(obj Object) (string, error) {
	r.mu.RLock()
	e, ok := r.kinds[obj.FragmentKind()]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("unregistered fragment kind: %s", obj.FragmentKind())
	}
	return e.render(obj)
}

// Recognize reports whether the node is a registered fragment and, if so,
// which kind it carries.
func (r *Registry) Recognize(n *html.Node) (Kind, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	kind := Kind(attr(n, AttrFragment))
	if kind == "" {
		return "", false
	}

	r.mu.RLock()
	_, ok := r.kinds[kind]
	r.mu.RUnlock()
	return kind, ok
}

// Parse reconstructs an object from a fragment node. Returns an error for
// nodes that do not carry a registered kind tag.
func (r *Registry) Parse(n *html.Node) (Object, error) {
	kind, ok := r.Recognize(n)
	if !ok {
		return nil, fmt.Errorf("not a recognized fragment node")
	}

	r.mu.RLock()
	e := r.kinds[kind]
	r.mu.RUnlock()

	return e.parse(n)
}

// ParseString parses a single fragment from serialized markup. Intended
// for round-trip checks and paste handling of standalone fragments.
func (r *Registry) ParseString(markup string) (Object, error) {
	nodes, err := ParseBodyFragment(markup)
	if err != nil {
		return nil, fmt.Errorf("parse fragment markup: %w", err)
	}
	for _, n := range nodes {
		if _, ok := r.Recognize(n); ok {
			return r.Parse(n)
		}
	}
	return nil, fmt.Errorf("no recognized fragment in markup")
}
