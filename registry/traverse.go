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

package registry

import "strings"

// Child is one entry of a Children listing: the next dotted segment past
// the queried prefix, and whether that segment names a leaf metric
// outright (no further segments) or an interior namespace node.
type Child struct {
	Name string
	Leaf bool
}

func matchesPrefix(name, prefix string) bool {
	if prefix == "" {
		return true
	}
	return name == prefix || strings.HasPrefix(name, prefix+".")
}

func firstSegment(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}

// Traverse returns the fully qualified names of every visible (bound)
// registration matching prefix, in registration order. The match point
// must lie on a dot boundary; "" matches every registration.
func (r *Registry) Traverse(c *Context, prefix string) []string {
	var out []string
	for _, be := range c.entries {
		if be.Root == nil {
			continue
		}
		if matchesPrefix(be.Name, prefix) {
			out = append(out, be.Name)
		}
	}
	return out
}

// Children returns the unique next dotted segment past prefix for every
// visible registration under it, along with whether each such segment is
// itself a leaf metric. If prefix exactly names a registered metric,
// Children returns (nil, true): an exact-prefix match is a leaf and has
// no children by definition.
func (r *Registry) Children(c *Context, prefix string) ([]Child, bool) {
	for _, be := range c.entries {
		if be.Root != nil && be.Name == prefix {
			return nil, true
		}
	}

	seen := map[string]bool{}
	var children []Child
	for _, be := range c.entries {
		if be.Root == nil {
			continue
		}
		var rest string
		switch {
		case prefix == "":
			rest = be.Name
		case strings.HasPrefix(be.Name, prefix+"."):
			rest = be.Name[len(prefix)+1:]
		default:
			continue
		}
		seg := firstSegment(rest)
		if seen[seg] {
			continue
		}
		seen[seg] = true
		children = append(children, Child{Name: seg, Leaf: seg == rest})
	}
	return children, false
}
