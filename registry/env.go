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

import "os"

const (
	// configEnvVar selects the configuration path spec at startup.
	configEnvVar = "DERIVED_CONFIG"
	// defaultConfigDir is loaded when configEnvVar is unset, if it exists.
	defaultConfigDir = "/etc/derived"
)

// LoadFromEnvironment applies the startup contract from the external
// interface description: DERIVED_CONFIG unset loads the default directory
// when present, DERIVED_CONFIG="" loads nothing, and any other value is
// treated as a path spec. Environment-driven loading is always tolerant of
// missing files.
func (r *Registry) LoadFromEnvironment() (int, error) {
	spec, set := os.LookupEnv(configEnvVar)
	if !set {
		if _, err := os.Stat(defaultConfigDir); err != nil {
			return 0, nil
		}
		return r.LoadPathSpec(defaultConfigDir, true)
	}
	if spec == "" {
		return 0, nil
	}
	return r.LoadPathSpec(spec, true)
}
