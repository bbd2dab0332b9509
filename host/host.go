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

// Package host defines the external oracle contracts the binder
// consults: resolving a dotted metric name to an id, fetching that id's
// descriptor, and testing whether an id belongs to the host's own
// (non-derived) namespace for name-clash detection.
package host

import (
	"errors"

	"sigs.k8s.io/derived-metrics/ast"
)

// ErrNotFound is returned by Dictionary.LookupName/LookupDesc when the
// requested name or id is unknown to the host.
var ErrNotFound = errors.New("not found")

// Dictionary is the per-context metric metadata oracle. Implementations
// are called with the registry's mutex held and must be themselves
// thread-safe.
type Dictionary interface {
	// LookupName resolves a dotted metric name to its host-assigned id.
	LookupName(name string) (ast.MetricID, error)
	// LookupDesc fetches the descriptor for a previously resolved id.
	LookupDesc(id ast.MetricID) (ast.Descriptor, error)
	// IsNonDerived reports whether id belongs to the host's own
	// namespace rather than to a derived-metric registration. It backs
	// the name-clash disable rule at bind time, and relies on LookupName
	// resolving host-native metrics without consulting derived
	// registrations first.
	IsNonDerived(id ast.MetricID) bool
}
