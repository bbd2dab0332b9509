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

package parse

import (
	"testing"

	"sigs.k8s.io/derived-metrics/ast"
)

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	n, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return n
}

func TestParseShapes(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		// want is the fully parenthesised pretty form, which pins both
		// the node kinds and the precedence structure.
		want string
	}{
		{
			name: "addition is left associative",
			src:  "a + b + c",
			want: "((a + b) + c)",
		},
		{
			name: "multiplication binds tighter than addition",
			src:  "a + b * c",
			want: "(a + (b * c))",
		},
		{
			name: "division then subtraction",
			src:  "a / b - c",
			want: "((a / b) - c)",
		},
		{
			name: "parens override precedence",
			src:  "(a + b) * c",
			want: "((a + b) * c)",
		},
		{
			name: "relational binds looser than arithmetic",
			src:  "a + b > c * d",
			want: "((a + b) > (c * d))",
		},
		{
			name: "boolean binds looser than relational",
			src:  "a > b && c < d",
			want: "((a > b) && (c < d))",
		},
		{
			name: "ternary is lowest",
			src:  "a > 0 ? b : c",
			want: "((a > 0) ? b : c)",
		},
		{
			name: "nested ternary in else branch",
			src:  "a ? b : c ? d : e",
			want: "(a ? b : (c ? d : e))",
		},
		{
			name: "unary minus binds tightest",
			src:  "-a * b",
			want: "(-(a) * b)",
		},
		{
			name: "double negation",
			src:  "!!a",
			want: "!(!(a))",
		},
		{
			name: "function call",
			src:  "rate(disk.dev.total_bytes)",
			want: "rate(disk.dev.total_bytes)",
		},
		{
			name: "aggregate over name",
			src:  "avg(kernel.percpu.cpu.user)",
			want: "avg(kernel.percpu.cpu.user)",
		},
		{
			name: "number with units parses as leaf",
			src:  "1 + 2 sec",
			want: "(1 + 2 sec)",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := mustParse(t, tc.src)
			if got := Pretty(n); got != tc.want {
				t.Errorf("Parse(%q) pretty-printed to %q, want %q", tc.src, got, tc.want)
			}
		})
	}
}

// Re-parsing the pretty form must reproduce the same structure; this is the
// lex/parse round-trip property.
func TestParseRoundTrip(t *testing.T) {
	sources := []string{
		"a + b * c",
		"a > 0 ? b : c",
		"rate(disk.dev.total) / count(disk.dev.total)",
		"-(a + b) * 3",
		"!a && b || c != d",
		"avg(m) + sum(m) - min(m) + max(m)",
		"delta(proc.memory.rss)",
		"instant(kernel.all.cpu.idle)",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			first := mustParse(t, src)
			second := mustParse(t, Pretty(first))
			if !first.Equal(second) {
				t.Errorf("round-trip of %q changed the tree: %q", src, Pretty(second))
			}
		})
	}
}

// A literal's units clause must survive pretty-printing, or re-parsing
// would silently strip the literal's descriptor.
func TestPrettyKeepsUnitClauses(t *testing.T) {
	testCases := []struct {
		src  string
		want string
	}{
		{src: "2 sec", want: "2 sec"},
		{src: "10 kbytes/sec", want: "10 kbyte/sec"},
		{src: "5 counts/sec + 1", want: "(5 count/sec + 1)"},
		{src: "3 bytes^2", want: "3 byte^2"},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			if got := Pretty(mustParse(t, tc.src)); got != tc.want {
				t.Errorf("Pretty(%q) = %q, want %q", tc.src, got, tc.want)
			}
		})
	}
}

// Node.Equal ignores descriptors, so the units round-trip is pinned by
// comparing every leaf descriptor across a re-parse of the pretty form.
func TestParseRoundTripUnitDescriptors(t *testing.T) {
	sources := []string{
		"2 sec",
		"10 kbytes/sec + 1",
		"5 counts/sec * 2 msec",
		"1 hour - 30 min",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			first := mustParse(t, src)
			second := mustParse(t, Pretty(first))
			if !first.Equal(second) {
				t.Fatalf("round-trip of %q changed the tree: %q", src, Pretty(second))
			}
			var firstDescs, secondDescs []ast.Descriptor
			first.Walk(func(n *ast.Node) {
				if n.Kind.IsLeaf() {
					firstDescs = append(firstDescs, n.Descriptor)
				}
			})
			second.Walk(func(n *ast.Node) {
				if n.Kind.IsLeaf() {
					secondDescs = append(secondDescs, n.Descriptor)
				}
			})
			for i := range firstDescs {
				if firstDescs[i] != secondDescs[i] {
					t.Errorf("leaf %d descriptor changed: %+v vs %+v", i, firstDescs[i], secondDescs[i])
				}
			}
		})
	}
}

func TestParseTernaryShape(t *testing.T) {
	n := mustParse(t, "a ? b : c")
	if n.Kind != ast.Quest {
		t.Fatalf("root kind = %v, want Quest", n.Kind)
	}
	if n.Right == nil || n.Right.Kind != ast.Colon {
		t.Fatalf("Quest.Right is not a Colon node")
	}
	if n.Left.Value != "a" || n.Right.Left.Value != "b" || n.Right.Right.Value != "c" {
		t.Errorf("ternary branches misplaced: %s", Pretty(n))
	}
}

func TestParseSaveLast(t *testing.T) {
	for _, src := range []string{"avg(m)", "count(m)", "delta(m)", "max(m)", "min(m)", "sum(m)", "rate(m)", "instant(m)"} {
		n := mustParse(t, src)
		if !n.Left.SaveLast {
			t.Errorf("%s: operand SaveLast not set", src)
		}
	}
	n := mustParse(t, "m + 1")
	if n.Left.SaveLast {
		t.Errorf("plain operand should not set SaveLast")
	}
}

func TestParseNumberDescriptors(t *testing.T) {
	testCases := []struct {
		src       string
		wantType  ast.ValueType
		wantUnits ast.Units
	}{
		{src: "42", wantType: ast.U32},
		{src: "4.2", wantType: ast.F64},
		{src: "2 sec", wantType: ast.U32, wantUnits: ast.Units{DimTime: 1, ScaleTime: ast.ScaleSec}},
		{src: "10 kbytes", wantType: ast.U32, wantUnits: ast.Units{DimSpace: 1, ScaleSpace: ast.ScaleKbyte}},
		{src: "5 counts/sec", wantType: ast.U32, wantUnits: ast.Units{DimCount: 1, DimTime: -1, ScaleTime: ast.ScaleSec}},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			n := mustParse(t, tc.src)
			if n.Descriptor.ValueType != tc.wantType {
				t.Errorf("value type = %v, want %v", n.Descriptor.ValueType, tc.wantType)
			}
			if n.Descriptor.Units != tc.wantUnits {
				t.Errorf("units = %+v, want %+v", n.Descriptor.Units, tc.wantUnits)
			}
			if n.Descriptor.Semantics != ast.Discrete {
				t.Errorf("literal semantics = %v, want Discrete", n.Descriptor.Semantics)
			}
		})
	}
}

func TestParseAnon(t *testing.T) {
	n := mustParse(t, "anon(U64)")
	if n.Kind != ast.Anon {
		t.Fatalf("root kind = %v, want Anon", n.Kind)
	}
	child := n.Left
	if child.Kind != ast.Integer {
		t.Errorf("anon child kind = %v, want Integer", child.Kind)
	}
	if child.Descriptor.ValueType != ast.U64 {
		t.Errorf("anon child value type = %v, want U64", child.Descriptor.ValueType)
	}
	if child.Descriptor.ID != 0 {
		t.Errorf("anon child id = %v, want null", child.Descriptor.ID)
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantPos int
		wantMsg string
	}{
		{
			name:    "trailing operator",
			src:     "a +",
			wantPos: 2,
			wantMsg: "Arithmetic expression expected to follow +",
		},
		{
			name:    "leading operator",
			src:     "* a",
			wantPos: 0,
			wantMsg: "Unexpected initial *",
		},
		{
			name:    "missing colon",
			src:     "a ? b",
			wantPos: 5,
			wantMsg: "':' expected to follow '?' branch",
		},
		{
			name:    "function without metric name",
			src:     "avg(1)",
			wantPos: 4,
			wantMsg: "Metric name expected to follow avg(",
		},
		{
			name:    "unknown anon tag",
			src:     "anon(STRING)",
			wantPos: 5,
			wantMsg: "Type tag expected to follow anon(",
		},
		{
			name:    "unclosed paren",
			src:     "(a + b",
			wantPos: 6,
			wantMsg: "')' expected",
		},
		{
			name:    "empty input",
			src:     "",
			wantPos: 0,
			wantMsg: "Arithmetic expression expected",
		},
		{
			name:    "illegal character",
			src:     "a @ b",
			wantPos: 2,
			wantMsg: "Illegal character",
		},
		{
			name:    "oversized constant",
			src:     "1 + 4294967296",
			wantPos: 4,
			wantMsg: "Constant value too large",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			if err == nil {
				t.Fatalf("Parse(%q) unexpectedly succeeded", tc.src)
			}
			perr, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("error type %T, want *ParseError", err)
			}
			if perr.Pos != tc.wantPos {
				t.Errorf("error pos = %d, want %d", perr.Pos, tc.wantPos)
			}
			if perr.Message != tc.wantMsg {
				t.Errorf("error message = %q, want %q", perr.Message, tc.wantMsg)
			}
		})
	}
}
