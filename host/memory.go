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

package host

import (
	"sync"

	"sigs.k8s.io/derived-metrics/ast"
)

// MemoryDictionary is a fixed, in-memory Dictionary: a fixture for tests
// and for the CLI's offline mode, where metrics are declared up front
// rather than discovered from a live host.
type MemoryDictionary struct {
	mu    sync.RWMutex
	byName map[string]ast.MetricID
	byID   map[ast.MetricID]ast.Descriptor
}

func NewMemoryDictionary() *MemoryDictionary {
	return &MemoryDictionary{
		byName: map[string]ast.MetricID{},
		byID:   map[ast.MetricID]ast.Descriptor{},
	}
}

// Declare registers a non-derived metric under name with the given
// descriptor, synthesising a stable id for it if d.ID is zero.
func (m *MemoryDictionary) Declare(name string, d ast.Descriptor) ast.MetricID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == 0 {
		d.ID = ast.MetricID(len(m.byID) + 1)
	}
	m.byName[name] = d.ID
	m.byID[d.ID] = d
	return d.ID
}

func (m *MemoryDictionary) LookupName(name string) (ast.MetricID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[name]
	if !ok {
		return 0, ErrNotFound
	}
	return id, nil
}

func (m *MemoryDictionary) LookupDesc(id ast.MetricID) (ast.Descriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.byID[id]
	if !ok {
		return ast.Descriptor{}, ErrNotFound
	}
	return d, nil
}

func (m *MemoryDictionary) IsNonDerived(id ast.MetricID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byID[id]
	return ok && !id.IsDerived()
}
