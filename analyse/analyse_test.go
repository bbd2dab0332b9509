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

package analyse

import (
	"testing"

	"sigs.k8s.io/derived-metrics/ast"
)

// boundLeaf builds a Name leaf the way bind leaves it: descriptor resolved,
// Info attached.
func boundLeaf(name string, d ast.Descriptor) *ast.Node {
	n := ast.NewLeaf(ast.Name, name)
	n.Descriptor = d
	n.Info = &ast.Info{MulScale: 1, DivScale: 1}
	return n
}

// boundLiteral builds an Integer leaf as the parser + clone leave it.
func boundLiteral(text string, d ast.Descriptor) *ast.Node {
	n := ast.NewLeaf(ast.Integer, text)
	n.Descriptor = d
	n.Info = &ast.Info{MulScale: 1, DivScale: 1}
	return n
}

func boundOp(kind ast.Kind, left, right *ast.Node) *ast.Node {
	n := ast.NewBinary(kind, left, right)
	n.Info = &ast.Info{MulScale: 1, DivScale: 1}
	return n
}

var (
	counterMS = ast.Descriptor{
		ValueType: ast.U64, Semantics: ast.Counter,
		Units:          ast.Units{DimTime: 1, ScaleTime: ast.ScaleMsec},
		InstanceDomain: "cpu",
	}
	counterBytes = ast.Descriptor{
		ValueType: ast.U64, Semantics: ast.Counter,
		Units:          ast.Units{DimSpace: 1, ScaleSpace: ast.ScaleByte},
		InstanceDomain: "disk",
	}
	instantNone = ast.Descriptor{
		ValueType: ast.F64, Semantics: ast.Instant,
	}
	instantSec = ast.Descriptor{
		ValueType: ast.F64, Semantics: ast.Instant,
		Units: ast.Units{DimTime: 1, ScaleTime: ast.ScaleSec},
	}
	discreteNone = ast.Descriptor{
		ValueType: ast.U32, Semantics: ast.Discrete,
	}
)

func TestPromoteSymmetry(t *testing.T) {
	all := []ast.ValueType{ast.I32, ast.U32, ast.I64, ast.U64, ast.F32, ast.F64}
	for _, a := range all {
		for _, b := range all {
			if Promote(a, b) != Promote(b, a) {
				t.Errorf("Promote(%v,%v)=%v but Promote(%v,%v)=%v", a, b, Promote(a, b), b, a, Promote(b, a))
			}
		}
	}
}

func TestPromoteTable(t *testing.T) {
	testCases := []struct {
		a, b, want ast.ValueType
	}{
		{ast.I32, ast.I32, ast.I32},
		{ast.I32, ast.U32, ast.U32},
		{ast.I32, ast.I64, ast.I64},
		{ast.U32, ast.I64, ast.I64},
		{ast.U32, ast.U64, ast.U64},
		{ast.I64, ast.U32, ast.I64},
		{ast.U64, ast.I32, ast.U64},
		{ast.F32, ast.U64, ast.F32},
		{ast.F64, ast.F32, ast.F64},
	}
	for _, tc := range testCases {
		if got := Promote(tc.a, tc.b); got != tc.want {
			t.Errorf("Promote(%v,%v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestOperatorLegality(t *testing.T) {
	testCases := []struct {
		name    string
		kind    ast.Kind
		left    ast.Descriptor
		right   ast.Descriptor
		wantErr string
	}{
		{
			name: "counter plus counter is legal",
			kind: ast.Add, left: counterMS, right: counterMS,
		},
		{
			name: "counter times counter is illegal",
			kind: ast.Mul, left: counterMS, right: counterMS,
			wantErr: "Illegal operator for counters",
		},
		{
			name: "counter div counter is illegal",
			kind: ast.Div, left: counterMS, right: counterMS,
			wantErr: "Illegal operator for counters",
		},
		{
			name: "counter plus non-counter is illegal",
			kind: ast.Add, left: counterMS, right: instantNone,
			wantErr: "Illegal operator for counter and non-counter",
		},
		{
			name: "counter times non-counter is legal",
			kind: ast.Mul, left: counterMS, right: instantNone,
		},
		{
			name: "non-counter div counter is illegal",
			kind: ast.Div, left: instantNone, right: counterMS,
			wantErr: "Illegal operator for counter and non-counter",
		},
		{
			name: "non-counter times counter is legal",
			kind: ast.Mul, left: instantNone, right: counterMS,
		},
		{
			name: "relational between counters is legal",
			kind: ast.Gt, left: counterMS, right: counterMS,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			node := boundOp(tc.kind, boundLeaf("a", tc.left), boundLeaf("b", tc.right))
			err := MapDesc(node)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("MapDesc failed: %v", err)
				}
				return
			}
			serr, ok := err.(*SemanticError)
			if !ok {
				t.Fatalf("expected *SemanticError, got %v", err)
			}
			if serr.Message != tc.wantErr {
				t.Errorf("error = %q, want %q", serr.Message, tc.wantErr)
			}
		})
	}
}

func TestDivisionAlwaysF64(t *testing.T) {
	node := boundOp(ast.Div, boundLeaf("a", counterBytes), boundLeaf("b", instantNone))
	if err := MapDesc(node); err != nil {
		t.Fatalf("MapDesc failed: %v", err)
	}
	if node.Descriptor.ValueType != ast.F64 {
		t.Errorf("division result type = %v, want F64", node.Descriptor.ValueType)
	}
}

func TestRelationalAndBooleanAlwaysU32(t *testing.T) {
	for _, kind := range []ast.Kind{ast.Lt, ast.Le, ast.Eq, ast.Ge, ast.Gt, ast.Ne} {
		node := boundOp(kind, boundLeaf("a", instantSec), boundLeaf("b", instantSec))
		if err := MapDesc(node); err != nil {
			t.Fatalf("%v: MapDesc failed: %v", kind, err)
		}
		if node.Descriptor.ValueType != ast.U32 {
			t.Errorf("%v result type = %v, want U32", kind, node.Descriptor.ValueType)
		}
	}
	for _, kind := range []ast.Kind{ast.And, ast.Or} {
		node := boundOp(kind, boundLeaf("a", instantNone), boundLeaf("b", instantNone))
		if err := MapDesc(node); err != nil {
			t.Fatalf("%v: MapDesc failed: %v", kind, err)
		}
		if node.Descriptor.ValueType != ast.U32 {
			t.Errorf("%v result type = %v, want U32", kind, node.Descriptor.ValueType)
		}
	}
}

func TestAdditionDimensionMismatch(t *testing.T) {
	node := boundOp(ast.Add, boundLeaf("a", counterMS), boundLeaf("b", counterBytes))
	err := MapDesc(node)
	if err == nil || err.(*SemanticError).Message != "Dimensions are not the same" {
		t.Errorf("got %v, want dimension mismatch", err)
	}
}

func TestRelationalLiteralEscapesDimensionCheck(t *testing.T) {
	lit := boundLiteral("0", discreteNone)
	node := boundOp(ast.Gt, boundLeaf("a", instantSec), lit)
	if err := MapDesc(node); err != nil {
		t.Errorf("literal comparison should pass dimension check: %v", err)
	}
}

func TestCounterTimesDimensionedNonCounter(t *testing.T) {
	node := boundOp(ast.Mul, boundLeaf("a", counterMS), boundLeaf("b", instantSec))
	err := MapDesc(node)
	if err == nil {
		t.Fatal("expected failure")
	}
	serr := err.(*SemanticError)
	if serr.Message != "Non-counter and not dimensionless for right operand" {
		t.Errorf("error = %q", serr.Message)
	}
	if serr.Operand != "b" {
		t.Errorf("operand echo = %q, want %q", serr.Operand, "b")
	}
}

func TestInstanceDomainUnification(t *testing.T) {
	a := counterMS // indom cpu
	b := counterMS
	b.InstanceDomain = "disk"
	node := boundOp(ast.Add, boundLeaf("a", a), boundLeaf("b", b))
	err := MapDesc(node)
	if err == nil || err.(*SemanticError).Message != "Operands should have the same instance domain" {
		t.Errorf("got %v, want instance-domain mismatch", err)
	}

	scalar := counterMS
	scalar.InstanceDomain = ast.Scalar
	node = boundOp(ast.Add, boundLeaf("a", a), boundLeaf("b", scalar))
	if err := MapDesc(node); err != nil {
		t.Fatalf("scalar + indom should unify: %v", err)
	}
	if node.Descriptor.InstanceDomain != "cpu" {
		t.Errorf("result indom = %q, want cpu", node.Descriptor.InstanceDomain)
	}
}

// A numeric literal adapts to the other operand: `1 + 2sec` analyses
// cleanly and the result carries the time dimension of the right operand.
func TestLiteralAdditionInheritsUnits(t *testing.T) {
	secLit := discreteNone
	secLit.Units = ast.Units{DimTime: 1, ScaleTime: ast.ScaleSec}
	node := boundOp(ast.Add, boundLiteral("1", discreteNone), boundLiteral("2", secLit))
	if err := MapDesc(node); err != nil {
		t.Fatalf("MapDesc failed: %v", err)
	}
	if node.Descriptor.ValueType != ast.U32 {
		t.Errorf("no rescale happened, type = %v, want U32", node.Descriptor.ValueType)
	}
	if node.Descriptor.Units.DimTime != 1 {
		t.Errorf("result units = %+v, want dimTime=1", node.Descriptor.Units)
	}

	// A non-literal operand wins the candidate choice over a literal.
	node = boundOp(ast.Add, boundLiteral("1", discreteNone), boundLeaf("a", instantSec))
	if err := MapDesc(node); err != nil {
		t.Fatalf("MapDesc failed: %v", err)
	}
	if node.Descriptor.Units.DimTime != 1 || node.Descriptor.Units.ScaleTime != ast.ScaleSec {
		t.Errorf("result units = %+v, want the metric operand's", node.Descriptor.Units)
	}
}

func TestResultSemantics(t *testing.T) {
	// non-counter op non-counter is Discrete iff both are Discrete.
	node := boundOp(ast.Add, boundLiteral("1", discreteNone), boundLiteral("2", discreteNone))
	if err := MapDesc(node); err != nil {
		t.Fatal(err)
	}
	if node.Descriptor.Semantics != ast.Discrete {
		t.Errorf("discrete+discrete semantics = %v, want Discrete", node.Descriptor.Semantics)
	}

	node = boundOp(ast.Add, boundLeaf("a", instantNone), boundLiteral("2", discreteNone))
	if err := MapDesc(node); err != nil {
		t.Fatal(err)
	}
	if node.Descriptor.Semantics != ast.Instant {
		t.Errorf("instant+discrete semantics = %v, want Instant", node.Descriptor.Semantics)
	}

	node = boundOp(ast.Add, boundLeaf("a", counterMS), boundLeaf("b", counterMS))
	if err := MapDesc(node); err != nil {
		t.Fatal(err)
	}
	if node.Descriptor.Semantics != ast.Counter {
		t.Errorf("counter+counter semantics = %v, want Counter", node.Descriptor.Semantics)
	}
}
