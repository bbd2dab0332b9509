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

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"sigs.k8s.io/derived-metrics/debug"
	"sigs.k8s.io/derived-metrics/errctx"
)

// pathSeparator separates the components of a bulk-load path spec.
const pathSeparator = ":"

// LoadConfigStream parses text as a sequence of `name = expression`
// lines: a line whose first byte is '#' is a comment (the marker counts
// only in column one), a blank line is skipped, and otherwise the first
// '=' splits name from expression. Errors
// on individual lines are reported through errctx and do not abort the
// remaining lines; the return value is the count of successful
// registrations.
func (r *Registry) LoadConfigStream(text string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadConfigStreamLocked(text), nil
}

func (r *Registry) loadConfigStreamLocked(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if trimmed == "" {
			continue
		}
		if trimmed[0] == '#' {
			continue
		}
		name, expr, ok := splitAssignment(trimmed)
		if !ok {
			errctx.Set(0, "Missing '=' in configuration line")
			debug.Tracef("registry: config line missing '=': %q\n", line)
			continue
		}
		if _, err := r.registerLocked(name, expr, false); err != nil {
			debug.Tracef("registry: config line %q: %v\n", line, err)
			continue
		}
		count++
	}
	return count
}

func splitAssignment(line string) (name, expr string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i < 0 {
		return "", "", false
	}
	name = strings.TrimRight(line[:i], " \t")
	expr = strings.TrimLeft(line[i+1:], " \t")
	return name, expr, true
}

// LoadPathSpec loads every file named by pathSpec, a list of files
// and/or directories separated by pathSeparator. Directories are
// walked one level deep, with any subdirectory entries recursed the same
// way, skipping "." and "..". In tolerant mode, a missing file or
// directory is skipped rather than propagated. The return value is the
// total count of successful registrations across every component.
func (r *Registry) LoadPathSpec(pathSpec string, tolerant bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, component := range strings.Split(pathSpec, pathSeparator) {
		component = strings.TrimSpace(component)
		if component == "" {
			continue
		}
		n, err := r.loadPathComponentLocked(component, tolerant)
		total += n
		if err != nil && !tolerant {
			return total, err
		}
	}
	return total, nil
}

func (r *Registry) loadPathComponentLocked(path string, tolerant bool) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		debug.Tracef("registry: path spec component %q: %v\n", path, err)
		if tolerant {
			return 0, nil
		}
		return 0, err
	}
	if info.IsDir() {
		return r.loadDirLocked(path, tolerant)
	}
	return r.loadFileLocked(path, tolerant)
}

func (r *Registry) loadDirLocked(dir string, tolerant bool) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if tolerant {
			return 0, nil
		}
		return 0, err
	}
	total := 0
	for _, de := range entries {
		name := de.Name()
		if name == "." || name == ".." {
			continue
		}
		full := filepath.Join(dir, name)
		var n int
		if de.IsDir() {
			n, err = r.loadDirLocked(full, tolerant)
		} else {
			n, err = r.loadFileLocked(full, tolerant)
		}
		total += n
		if err != nil && !tolerant {
			return total, err
		}
	}
	return total, nil
}

func (r *Registry) loadFileLocked(path string, tolerant bool) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if tolerant {
			return 0, nil
		}
		return 0, err
	}
	if isYAMLPath(path) {
		n, err := r.loadYAMLLocked(data)
		if err != nil && tolerant {
			debug.Tracef("registry: yaml manifest %q: %v\n", path, err)
			return n, nil
		}
		return n, err
	}
	return r.loadConfigStreamLocked(string(data)), nil
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// yamlManifest is the optional bulk-registration format: an alternative
// to the canonical line-based config file for tooling that already emits
// YAML.
type yamlManifest struct {
	Metrics []struct {
		Name string `yaml:"name"`
		Expr string `yaml:"expr"`
	} `yaml:"metrics"`
}

func (r *Registry) loadYAMLLocked(data []byte) (int, error) {
	var manifest yamlManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return 0, fmt.Errorf("parsing yaml manifest: %w", err)
	}
	count := 0
	for _, m := range manifest.Metrics {
		if _, err := r.registerLocked(m.Name, m.Expr, false); err != nil {
			debug.Tracef("registry: yaml entry %q: %v\n", m.Name, err)
			continue
		}
		count++
	}
	return count, nil
}
