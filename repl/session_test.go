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

package repl_test

import (
	"bytes"

	"github.com/c-bata/go-prompt"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/util/sets"

	"sigs.k8s.io/derived-metrics/ast"
	"sigs.k8s.io/derived-metrics/host"
	"sigs.k8s.io/derived-metrics/registry"
	"sigs.k8s.io/derived-metrics/repl"
)

type staticNames sets.String

func (s staticNames) MetricNames() sets.String { return sets.String(s) }

func testDict() *host.MemoryDictionary {
	dict := host.NewMemoryDictionary()
	dict.Declare("kernel.all.cpu.user", ast.Descriptor{
		ValueType: ast.U64, Semantics: ast.Counter,
		Units:          ast.Units{DimTime: 1, ScaleTime: ast.ScaleMsec},
		InstanceDomain: "cpu",
	})
	dict.Declare("kernel.all.cpu.sys", ast.Descriptor{
		ValueType: ast.U64, Semantics: ast.Counter,
		Units:          ast.Units{DimTime: 1, ScaleTime: ast.ScaleMsec},
		InstanceDomain: "cpu",
	})
	return dict
}

var _ = Describe("Session", func() {
	var (
		out     *bytes.Buffer
		session *repl.Session
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		reg := registry.New(nil)
		names := staticNames(sets.NewString("kernel.all.cpu.user", "kernel.all.cpu.sys"))
		session = repl.NewSession(reg, testDict(), names, out)
	})
	AfterEach(func() {
		session.Close()
	})

	It("registers a derived metric and reports success", func() {
		session.Execute("reg kernel.util = kernel.all.cpu.user + kernel.all.cpu.sys")
		Expect(out.String()).To(ContainSubstring("registered"))
		Expect(out.String()).To(ContainSubstring("kernel.util"))
	})

	It("prints a caret-annotated report for a bad expression", func() {
		session.Execute("reg broken = a + + b")
		Expect(out.String()).To(ContainSubstring("broken: a + + b"))
		Expect(out.String()).To(ContainSubstring("^"))
		Expect(out.String()).To(ContainSubstring("Arithmetic expression expected to follow +"))
	})

	It("lists registered metrics under a prefix", func() {
		session.Execute("reg kernel.util = kernel.all.cpu.user + kernel.all.cpu.sys")
		session.Execute("reg kernel.sys_pct = kernel.all.cpu.sys > 0")
		out.Reset()
		session.Execute("ls kernel")
		Expect(out.String()).To(ContainSubstring("kernel.util"))
		Expect(out.String()).To(ContainSubstring("kernel.sys_pct"))
	})

	It("describes a bound metric", func() {
		session.Execute("reg kernel.util = kernel.all.cpu.user + kernel.all.cpu.sys")
		out.Reset()
		session.Execute("desc kernel.util")
		Expect(out.String()).To(ContainSubstring("U64"))
		Expect(out.String()).To(ContainSubstring("Counter"))
	})

	It("rejects unknown commands", func() {
		session.Execute("frobnicate")
		Expect(out.String()).To(ContainSubstring("unknown command"))
	})
})

var _ = Describe("Completer", func() {
	var completer *repl.Completer

	BeforeEach(func() {
		reg := registry.New(nil)
		_, err := reg.Register("kernel.util", "kernel.all.cpu.user + kernel.all.cpu.sys")
		Expect(err).NotTo(HaveOccurred())
		names := staticNames(sets.NewString("kernel.all.cpu.user", "kernel.all.cpu.sys"))
		session := repl.NewSession(reg, testDict(), names, &bytes.Buffer{})
		completer = repl.NewCompleter(session)
	})

	suggest := func(text string) []string {
		buf := prompt.NewBuffer()
		buf.InsertText(text, false, true)
		var out []string
		for _, s := range completer.Complete(*buf.Document()) {
			out = append(out, s.Text)
		}
		return out
	}

	It("suggests commands on the first word", func() {
		Expect(suggest("de")).To(ConsistOf("desc"))
		Expect(suggest("l")).To(ContainElements("ls", "load"))
	})

	It("suggests nothing on an empty line", func() {
		Expect(suggest("")).To(BeEmpty())
	})

	It("suggests host metrics and functions inside a reg expression", func() {
		Expect(suggest("reg x = kernel.all.cpu.u")).To(ConsistOf("kernel.all.cpu.user"))
		Expect(suggest("reg x = ra")).To(ConsistOf("rate"))
	})

	It("suggests derived names for desc", func() {
		Expect(suggest("desc kern")).To(ConsistOf("kernel.util"))
	})

	It("breaks completion words on operators", func() {
		Expect(suggest("reg x = 1 + kernel.all.cpu.s")).To(ConsistOf("kernel.all.cpu.sys"))
	})
})
