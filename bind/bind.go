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

// Package bind materialises a per-context copy of a static AST,
// resolving its Name leaves against a host.Dictionary, running the
// semantic analysis bottom-up, and applying the name-clash-with-
// non-derived disable rule.
package bind

import (
	"errors"
	"fmt"

	"sigs.k8s.io/derived-metrics/analyse"
	"sigs.k8s.io/derived-metrics/ast"
	"sigs.k8s.io/derived-metrics/debug"
	"sigs.k8s.io/derived-metrics/errctx"
	"sigs.k8s.io/derived-metrics/host"
)

// ErrNameClash is returned when the registration's own name resolves to
// a non-derived id in the host's namespace for this context; the caller
// must silently disable the entry for this context only.
var ErrNameClash = errors.New("derived metric name clashes with a non-derived metric")

// Bind produces a bound clone of staticRoot for the given registration
// name/id under dict. On success it returns the bound tree with every
// Name leaf resolved and every interior node's Descriptor computed by
// analyse. On any failure it returns (nil, err); the caller disables the
// registration for this context only and binding of other registrations
// continues.
func Bind(dict host.Dictionary, name string, id ast.MetricID, staticRoot *ast.Node) (*ast.Node, error) {
	errctx.Clear()

	if clashID, err := dict.LookupName(name); err == nil && dict.IsNonDerived(clashID) {
		debug.Tracef("bind: %s clashes with non-derived id %v\n", name, clashID)
		return nil, ErrNameClash
	}

	bound := staticRoot.Clone(true)
	if err := resolveNames(dict, bound); err != nil {
		return nil, err
	}
	if err := analyse.Check(bound); err != nil {
		msg := err.Error()
		errctx.Set(0, "%s: %s", name, msg)
		debug.Tracef("bind: %s failed semantic check: %s\n", name, msg)
		return nil, err
	}

	bound.Descriptor.ID = id
	return bound, nil
}

func resolveNames(dict host.Dictionary, n *ast.Node) error {
	if n == nil {
		return nil
	}
	if err := resolveNames(dict, n.Left); err != nil {
		return err
	}
	if err := resolveNames(dict, n.Right); err != nil {
		return err
	}
	if n.Kind != ast.Name {
		return nil
	}
	id, err := dict.LookupName(n.Value)
	if err != nil {
		errctx.Set(0, "Unresolved metric name %q", n.Value)
		return fmt.Errorf("unresolved metric name %q: %w", n.Value, err)
	}
	desc, err := dict.LookupDesc(id)
	if err != nil {
		errctx.Set(0, "Unresolved metric name %q", n.Value)
		return fmt.Errorf("no descriptor for %q: %w", n.Value, err)
	}
	desc.Source = ast.SourceBound
	n.Descriptor = desc
	n.Info.ResolvedID = id
	return nil
}
