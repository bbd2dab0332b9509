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

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"k8s.io/cli-runtime/pkg/genericclioptions"
	_ "k8s.io/client-go/plugin/pkg/client/auth"
	"k8s.io/client-go/tools/clientcmd/api"

	"sigs.k8s.io/derived-metrics/cmd/cli"
	"sigs.k8s.io/derived-metrics/metricsx"
	"sigs.k8s.io/derived-metrics/promhost"
	"sigs.k8s.io/derived-metrics/registry"
	"sigs.k8s.io/derived-metrics/repl"
)

// DerivedOptions provides the information required to run the derived CLI.
type DerivedOptions struct {
	args        []string
	rawConfig   api.Config
	configFlags *genericclioptions.ConfigFlags
	flags       cli.DerivedFlags
	genericclioptions.IOStreams
}

// NewDerivedOptions provides an instance of DerivedOptions
func NewDerivedOptions(streams genericclioptions.IOStreams) *DerivedOptions {
	return &DerivedOptions{
		configFlags: genericclioptions.NewConfigFlags(true),
		IOStreams:   streams,
	}
}

type RootDerivedCmd struct {
	*cobra.Command
	options *DerivedOptions
}

func addFlags(cmd *cobra.Command, options *DerivedOptions) {
	cmd.Flags().StringVarP(&options.flags.Config, "config", "f", "", "path spec (colon-separated files/directories) of derived metric definitions to load")
	cmd.Flags().BoolVar(&options.flags.Tolerant, "tolerant", true, "if true, missing configuration files are skipped rather than fatal")
	cmd.Flags().BoolVarP(&options.flags.List, "list", "l", options.flags.List, "if true, lists out the bound derived metric names and exits.")
	cmd.Flags().StringVarP(&options.flags.MetricsFile, "metrics-file", "m", "", "use a text-format exposition dump as the host dictionary instead of scraping")
	cmd.Flags().StringArrayVarP(&options.flags.HostNames, "targets", "t", options.flags.HostNames, "By default uses the prometheus target from the master kubernetes from kubeconfig, override to target an arbitrary prometheus endpoint")
}

// NewCmdDerived provides a cobra command wrapping DerivedOptions
func NewCmdDerived(streams genericclioptions.IOStreams) *RootDerivedCmd {
	o := NewDerivedOptions(streams)
	cmd := &cobra.Command{
		Use: "derived [options]",
		Example: `
derived -f ./derived.conf                    # interactive mode over the cluster endpoint
derived -f ./derived.conf -l                 # list the bound derived namespace
derived -m ./metrics.txt                     # interactive mode over a captured exposition dump
derived -t http://localhost:9090/metrics     # target an arbitrary prometheus endpoint
`,
		SilenceUsage: true,

		RunE: func(c *cobra.Command, args []string) error {
			if err := o.Complete(c, args); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			dc, err := o.toDerivedCmd()
			if err != nil {
				return err
			}
			return runDerived(dc, o.flags)
		},
	}
	derived := &RootDerivedCmd{Command: cmd, options: o}

	addFlags(cmd, o)

	return derived
}

// Complete sets all information required for running the command
func (o *DerivedOptions) Complete(cmd *cobra.Command, args []string) error {
	o.args = args

	if o.flags.MetricsFile != "" {
		// offline mode needs no kubeconfig at all
		return nil
	}
	var err error
	o.rawConfig, err = o.configFlags.ToRawKubeConfigLoader().RawConfig()
	if err != nil {
		return err
	}
	return nil
}

// Validate ensures that all required arguments and flag values are provided
func (o *DerivedOptions) Validate() error {
	if o.flags.MetricsFile != "" && len(o.flags.HostNames) > 0 {
		return fmt.Errorf("--metrics-file and --targets are mutually exclusive")
	}
	return nil
}

func (o *DerivedOptions) toDerivedCmd() (cli.DerivedCommand, error) {
	if o.flags.MetricsFile != "" {
		return cli.DerivedCommand{Streams: o.IOStreams}, nil
	}
	rc, err := o.configFlags.ToRESTConfig()
	if err != nil {
		return cli.DerivedCommand{}, err
	}
	return cli.DerivedCommand{RestConfig: rc, Streams: o.IOStreams}, nil
}

func buildSource(dc cli.DerivedCommand, flags cli.DerivedFlags) (promhost.DataSource, error) {
	if flags.MetricsFile != "" {
		return promhost.NewFileSource(flags.MetricsFile), nil
	}
	targets := flags.HostNames
	if len(targets) == 0 && dc.RestConfig != nil {
		targets = []string{dc.RestConfig.Host + "/metrics"}
	}
	multi := promhost.MultiSource{}
	for _, t := range targets {
		src, err := promhost.NewHTTPSource(t, dc.RestConfig)
		if err != nil {
			return nil, err
		}
		multi.Sources = append(multi.Sources, src)
	}
	return multi, nil
}

func runDerived(dc cli.DerivedCommand, flags cli.DerivedFlags) error {
	reg := registry.New(metricsx.New(prometheus.DefaultRegisterer))
	if _, err := reg.LoadFromEnvironment(); err != nil {
		return err
	}
	if flags.Config != "" {
		if _, err := reg.LoadPathSpec(flags.Config, flags.Tolerant); err != nil {
			return err
		}
	}

	source, err := buildSource(dc, flags)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	series, err := source.ScrapePrometheusEndpoint(ctx, time.Now())
	if err != nil {
		return err
	}
	dict := promhost.NewDictionary()
	dict.UpdateAll(series)

	session := repl.NewSession(reg, dict, dict, dc.Streams.Out)
	defer session.Close()

	if flags.List {
		session.Execute("ls")
		return nil
	}
	session.Run()
	return nil
}
