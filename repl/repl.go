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

// Package repl is the interactive front end over the registry: a go-prompt
// line loop with completion for commands, derived names, host metric
// names, and the expression grammar's functions.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/c-bata/go-prompt"

	"sigs.k8s.io/derived-metrics/cmd/cli"
	"sigs.k8s.io/derived-metrics/errctx"
	"sigs.k8s.io/derived-metrics/host"
	"sigs.k8s.io/derived-metrics/registry"
)

// Session wires a registry, a host dictionary, and an output stream into
// an executable command session. The bound context is reopened after every
// successful registration so `desc` always reflects the newest entries.
type Session struct {
	reg   *registry.Registry
	dict  host.Dictionary
	names NameSource
	ctx   *registry.Context
	out   io.Writer
}

// NewSession opens a context against dict and returns a ready session.
// names may be nil, disabling host-name completion and the `names` command.
func NewSession(reg *registry.Registry, dict host.Dictionary, names NameSource, out io.Writer) *Session {
	return &Session{
		reg:   reg,
		dict:  dict,
		names: names,
		ctx:   reg.OpenContext(dict),
		out:   out,
	}
}

// Close releases the session's bound context.
func (s *Session) Close() {
	s.reg.CloseContext(s.ctx)
	s.ctx = nil
}

// Run blocks in the interactive prompt loop until the user exits.
func (s *Session) Run() {
	p := prompt.New(
		s.Execute,
		NewCompleter(s).Complete,
		prompt.OptionTitle("derived"),
		prompt.OptionPrefix("derived> "),
		prompt.OptionCompletionWordSeparator(tokenSeparators),
	)
	p.Run()
}

// Execute dispatches one command line.
func (s *Session) Execute(line string) {
	if cli.ExitFunc(line) {
		return
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	cmd, rest := line, ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		cmd, rest = line[:i], strings.TrimSpace(line[i+1:])
	}
	switch cmd {
	case "reg", "register":
		s.register(rest)
	case "desc":
		s.describe(rest)
	case "ls":
		fmt.Fprint(s.out, nameTable(s.reg.Traverse(s.ctx, rest)))
	case "children":
		s.children(rest)
	case "load":
		s.load(rest)
	case "names":
		s.hostNames(rest)
	case "help":
		s.help()
	default:
		fmt.Fprintf(s.out, "unknown command %q; try help\n", cmd)
	}
}

func (s *Session) register(arg string) {
	name, expr, ok := strings.Cut(arg, "=")
	if !ok {
		fmt.Fprintln(s.out, "usage: reg name = expression")
		return
	}
	name = strings.TrimSpace(name)
	expr = strings.TrimSpace(expr)
	if _, err := s.reg.Register(name, expr); err != nil {
		fmt.Fprintln(s.out, errctx.Report(name, expr, errctx.LastError()))
		return
	}
	s.reopen()
	if _, err := s.descriptorByName(name); err != nil {
		fmt.Fprintf(s.out, "%s registered, but disabled in this context:\n%s\n",
			yellow(name), errctx.Report(name, expr, errctx.LastError()))
		return
	}
	fmt.Fprintf(s.out, "registered %s\n", cyan(name))
}

func (s *Session) reopen() {
	s.reg.CloseContext(s.ctx)
	s.ctx = s.reg.OpenContext(s.dict)
}

func (s *Session) descriptorByName(name string) (string, error) {
	id, err := s.reg.LookupID(name)
	if err != nil {
		return "", err
	}
	d, err := s.reg.Descriptor(s.ctx, id)
	if err != nil {
		return "", err
	}
	out, err := ToPrettyColoredJson(d)
	if err != nil {
		return "", err
	}
	return *out, nil
}

func (s *Session) describe(name string) {
	if name == "" {
		fmt.Fprintln(s.out, "usage: desc name")
		return
	}
	text, err := s.descriptorByName(name)
	if err != nil {
		fmt.Fprintf(s.out, "%s: %v\n", name, err)
		return
	}
	fmt.Fprintf(s.out, "%s\n", text)
}

func (s *Session) children(prefix string) {
	kids, leaf := s.reg.Children(s.ctx, prefix)
	if leaf {
		fmt.Fprintf(s.out, "%s is a leaf metric\n", cyan(prefix))
		return
	}
	for _, k := range kids {
		marker := "+"
		if k.Leaf {
			marker = " "
		}
		fmt.Fprintf(s.out, "%s %s\n", marker, k.Name)
	}
}

func (s *Session) load(spec string) {
	if spec == "" {
		fmt.Fprintln(s.out, "usage: load path[:path...]")
		return
	}
	n, err := s.reg.LoadPathSpec(spec, true)
	if err != nil {
		fmt.Fprintf(s.out, "load: %v\n", err)
	}
	s.reopen()
	fmt.Fprintf(s.out, "loaded %d metric(s)\n", n)
}

func (s *Session) hostNames(substr string) {
	if s.names == nil {
		fmt.Fprintln(s.out, "no host metric source attached")
		return
	}
	var names []string
	for _, n := range s.names.MetricNames().List() {
		if substr == "" || strings.Contains(n, substr) {
			names = append(names, n)
		}
	}
	fmt.Fprint(s.out, nameTable(names))
}

// visibleNames lists the derived names the current context bound, for the
// completer.
func (s *Session) visibleNames() []string {
	return s.reg.Traverse(s.ctx, "")
}

func (s *Session) help() {
	fmt.Fprint(s.out, `commands:
  reg name = expression   register a derived metric
  desc name               show a metric's bound descriptor
  ls [prefix]             list derived metrics under prefix
  children [prefix]       list next name components under prefix
  load path[:path...]     load configuration files or directories
  names [substring]       list host metric names
  quit                    exit
`)
}
