/*
Copyright 2020 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package registry is the thread-safe, append-only store of
// derived-metric registrations (name, id, static AST), with context
// binding, lookup, and PMNS-style traversal.
package registry

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"sigs.k8s.io/derived-metrics/ast"
	"sigs.k8s.io/derived-metrics/bind"
	"sigs.k8s.io/derived-metrics/debug"
	"sigs.k8s.io/derived-metrics/errctx"
	"sigs.k8s.io/derived-metrics/host"
	"sigs.k8s.io/derived-metrics/metricsx"
	"sigs.k8s.io/derived-metrics/parse"
)

var nameRegexp = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)*$`)

var (
	ErrNotFound      = errors.New("not found")
	ErrDisabled      = errors.New("derived metric is disabled in this context")
	ErrDuplicateName = errors.New("duplicate derived metric name")
	ErrInvalidName   = errors.New("invalid derived metric name")
)

// entry is a static registration: the registry's own row, owned
// exclusively by the registry for the life of the process.
type entry struct {
	Name      string
	ID        ast.MetricID
	Anonymous bool
	Static    *ast.Node
}

// Registry is the process-wide, concurrency-safe registration store,
// guarded by a single mutex. Configuration loading needs to register
// while already inside a public entry point, so every public entry point
// takes the lock exactly once and calls an unexported *Locked helper;
// LoadConfigStream/LoadPathSpec never re-enter the lock (see DESIGN.md).
type Registry struct {
	mu      sync.Mutex
	entries []*entry
	byName  map[string]int
	byID    map[ast.MetricID]int

	metrics *metricsx.Collector
}

// New returns an empty Registry. metrics may be nil, in which case
// self-instrumentation is skipped.
func New(metrics *metricsx.Collector) *Registry {
	if metrics == nil {
		metrics = metricsx.NewNoop()
	}
	return &Registry{
		byName:  map[string]int{},
		byID:    map[ast.MetricID]int{},
		metrics: metrics,
	}
}

// Register parses expr and appends a new static registration under name.
// On a duplicate name it returns ErrDuplicateName with a diagnostic
// pointing at the start of expr. On a parse failure it returns the
// parser's error, pointing at where lexing of the failing token began.
func (r *Registry) Register(name, expr string) (ast.MetricID, error) {
	errctx.Clear()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(name, expr, false)
}

// RegisterAnonymous wraps Register with a synthetic `anon(T)` expression,
// used to materialise descriptors for anonymous event metrics.
func (r *Registry) RegisterAnonymous(name, typeTag string) (ast.MetricID, error) {
	errctx.Clear()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(name, fmt.Sprintf("anon(%s)", typeTag), true)
}

func (r *Registry) registerLocked(name, expr string, anonymous bool) (ast.MetricID, error) {
	if !nameRegexp.MatchString(name) {
		errctx.Set(0, "Invalid derived metric name")
		return 0, ErrInvalidName
	}
	if _, exists := r.byName[name]; exists {
		errctx.Set(0, "Duplicate derived metric name")
		r.metrics.RegisterFailure()
		return 0, ErrDuplicateName
	}

	root, err := parse.Parse(expr)
	if err != nil {
		r.metrics.RegisterFailure()
		return 0, err
	}

	id := ast.NewDerivedID(len(r.entries) + 1)
	r.entries = append(r.entries, &entry{Name: name, ID: id, Anonymous: anonymous, Static: root})
	r.byName[name] = len(r.entries) - 1
	r.byID[id] = len(r.entries) - 1

	debug.Tracef("registry: registered %s = %q as %v\n", name, expr, id)
	r.metrics.RegisterSuccess()
	return id, nil
}

// LookupID resolves a registered name to its id.
func (r *Registry) LookupID(name string) (ast.MetricID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byName[name]
	if !ok {
		return 0, ErrNotFound
	}
	return r.entries[idx].ID, nil
}

// LookupName resolves a registered id back to its name.
func (r *Registry) LookupName(id ast.MetricID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[id]
	if !ok {
		return "", ErrNotFound
	}
	return r.entries[idx].Name, nil
}

// Len reports the number of registrations, including ones disabled in
// some context.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// boundEntry is one row of a Context's per-context array: parallel to
// the registry's entries at open time, exclusively owned by the context.
type boundEntry struct {
	Name      string
	ID        ast.MetricID
	Anonymous bool
	Root      *ast.Node // nil means disabled for this context
}

// Context is the per-context state a successful OpenContext returns. It
// is exclusively owned by the caller and must not be touched after
// CloseContext.
type Context struct {
	dict    host.Dictionary
	entries []boundEntry
	byName  map[string]int
	byID    map[ast.MetricID]int
}

// OpenContext runs bind for every current registration against dict, in
// registration order, and returns the resulting per-context state. A registration whose bind fails (unresolved name,
// name clash, or semantic error) is retained by id but hidden from
// traversal (bound Root stays nil).
func (r *Registry) OpenContext(dict host.Dictionary) *Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Context{
		dict:   dict,
		byName: map[string]int{},
		byID:   map[ast.MetricID]int{},
	}
	for _, e := range r.entries {
		root, err := bind.Bind(dict, e.Name, e.ID, e.Static)
		if err != nil {
			debug.Tracef("registry: open_context: %s disabled: %v\n", e.Name, err)
			r.metrics.BindFailure()
		}
		c.entries = append(c.entries, boundEntry{Name: e.Name, ID: e.ID, Anonymous: e.Anonymous, Root: root})
		idx := len(c.entries) - 1
		c.byName[e.Name] = idx
		c.byID[e.ID] = idx
	}
	r.metrics.ContextOpened()
	return c
}

// CloseContext releases a context's bound trees. Static trees in the
// registry are untouched.
func (r *Registry) CloseContext(c *Context) {
	if c == nil {
		return
	}
	c.entries = nil
	c.byName = nil
	c.byID = nil
	r.metrics.ContextClosed()
}

// Descriptor reports the descriptor a context resolved for id, or
// ErrDisabled if binding failed for this context, or ErrNotFound if id is
// unknown entirely.
func (r *Registry) Descriptor(c *Context, id ast.MetricID) (ast.Descriptor, error) {
	idx, ok := c.byID[id]
	if !ok {
		return ast.Descriptor{}, ErrNotFound
	}
	if c.entries[idx].Root == nil {
		return ast.Descriptor{}, ErrDisabled
	}
	return c.entries[idx].Root.Descriptor, nil
}
