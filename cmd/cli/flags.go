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

package cli

import (
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/rest"
)

// DerivedFlags carries the command-line switches of the derived CLI.
type DerivedFlags struct {
	// Config is a path spec of configuration files/directories to load in
	// addition to the DERIVED_CONFIG environment contract.
	Config string
	// Tolerant suppresses missing-file errors while loading Config.
	Tolerant bool
	// List prints the registered namespace and exits instead of starting
	// the interactive prompt.
	List bool
	// MetricsFile points at a text-format exposition dump to use as the
	// host dictionary instead of scraping a live endpoint.
	MetricsFile string
	// HostNames overrides the scrape targets; empty means the cluster
	// endpoint from the kubeconfig.
	HostNames []string
}

// DerivedCommand is the completed, runnable form of the CLI options.
type DerivedCommand struct {
	RestConfig *rest.Config
	Streams    genericclioptions.IOStreams
}
