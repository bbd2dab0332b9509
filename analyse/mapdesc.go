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
	"fmt"

	"sigs.k8s.io/derived-metrics/ast"
)

// SemanticError is raised by any analysis rule. Message is one of the
// stable diagnostic strings; Operand, when non-empty, is the
// human-readable echo (literal text, metric name, or "<expr>") of the
// offending operand.
type SemanticError struct {
	Message string
	Operand string
}

func (e *SemanticError) Error() string {
	if e.Operand == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Operand)
}

func fail(operand *ast.Node, format string, args ...interface{}) *SemanticError {
	return &SemanticError{Message: fmt.Sprintf(format, args...), Operand: echo(operand)}
}

// echo renders the operand a rule rejected: its literal text or metric
// name, or an "<expr>" placeholder for anything deeper.
func echo(n *ast.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case ast.Integer, ast.Double, ast.Name:
		return n.Value
	default:
		return "<expr>"
	}
}

func isLiteral(n *ast.Node) bool {
	return n.Kind == ast.Integer || n.Kind == ast.Double
}

func isCounter(n *ast.Node) bool {
	return n.Descriptor.Semantics == ast.Counter
}

func isRelational(k ast.Kind) bool {
	switch k {
	case ast.Lt, ast.Le, ast.Eq, ast.Ge, ast.Gt, ast.Ne:
		return true
	default:
		return false
	}
}

func isBoolean(k ast.Kind) bool {
	return k == ast.And || k == ast.Or
}

// MapDesc computes the result descriptor for every binary non-ternary
// operator node. It assumes node.Left and node.Right already
// carry their final Descriptor (and, since this only runs during bind, a
// non-nil Info).
func MapDesc(node *ast.Node) error {
	l, r := node.Left, node.Right

	if err := checkOperatorLegality(node.Kind, l, r); err != nil {
		return err
	}

	if !l.Descriptor.ValueType.IsNumeric() {
		return fail(l, "Non-arithmetic type for left operand")
	}
	if !r.Descriptor.ValueType.IsNumeric() {
		return fail(r, "Non-arithmetic type for right operand")
	}

	// The candidate operand seeds the result's units: prefer a non-literal
	// operand, else use the right. A numeric literal adapts to whatever it
	// is combined with, so its (possibly absent) units never win over a
	// real metric's.
	candidate := l
	if isLiteral(l) {
		candidate = r
	}

	semantics := ast.Instant
	if isCounter(l) || isCounter(r) {
		semantics = ast.Counter
	} else if l.Descriptor.Semantics == ast.Discrete && r.Descriptor.Semantics == ast.Discrete {
		semantics = ast.Discrete
	}

	var valueType ast.ValueType
	switch {
	case node.Kind == ast.Div:
		valueType = ast.F64
	case isRelational(node.Kind) || isBoolean(node.Kind):
		valueType = ast.U32
	default:
		valueType = Promote(l.Descriptor.ValueType, r.Descriptor.ValueType)
	}

	switch {
	case node.Kind == ast.Add || node.Kind == ast.Sub, isRelational(node.Kind):
		// Dimensions must agree unless a numeric literal is involved, in
		// which case the literal adapts to the other operand.
		if !l.Descriptor.Units.SameDimensions(r.Descriptor.Units) && !isLiteral(l) && !isLiteral(r) {
			return fail(node, "Dimensions are not the same")
		}
	case isBoolean(node.Kind):
		if !l.Descriptor.Units.IsDimensionless() || !r.Descriptor.Units.IsDimensionless() {
			return fail(node, "Dimensions are not the same")
		}
	}

	if node.Kind == ast.Mul || node.Kind == ast.Div || isRelational(node.Kind) {
		if isCounter(l) != isCounter(r) {
			nonCounter, side := r, "right"
			if isCounter(r) {
				nonCounter, side = l, "left"
			}
			if !nonCounter.Descriptor.Units.IsDimensionless() {
				return &SemanticError{Message: fmt.Sprintf("Non-counter and not dimensionless for %s operand", side), Operand: echo(nonCounter)}
			}
		}
	}

	unitsResult, forced := mapUnits(node, candidate.Descriptor.Units)
	if forced {
		valueType = ast.F64
	}

	indom, err := unifyInstanceDomains(node, l, r)
	if err != nil {
		return err
	}

	node.Descriptor = ast.Descriptor{
		ValueType:      valueType,
		Semantics:      semantics,
		Units:          unitsResult,
		InstanceDomain: indom,
		Source:         ast.SourceBound,
	}
	return nil
}

func unifyInstanceDomains(node, l, r *ast.Node) (ast.InstanceDomain, error) {
	li, ri := l.Descriptor.InstanceDomain, r.Descriptor.InstanceDomain
	if !li.IsScalar() && !ri.IsScalar() && li != ri {
		return "", fail(node, "Operands should have the same instance domain")
	}
	if !li.IsScalar() {
		return li, nil
	}
	return ri, nil
}

// Counters restrict the operator set: counters add and subtract with
// each other, scale by non-counters, and compare freely.
func checkOperatorLegality(kind ast.Kind, l, r *ast.Node) error {
	lc, rc := isCounter(l), isCounter(r)
	rel := isRelational(kind) || isBoolean(kind)
	switch {
	case lc && rc:
		if kind != ast.Add && kind != ast.Sub && !rel {
			return fail(nil, "Illegal operator for counters")
		}
	case lc && !rc:
		if kind != ast.Mul && kind != ast.Div && !rel {
			return fail(nil, "Illegal operator for counter and non-counter")
		}
	case !lc && rc:
		if kind != ast.Mul && !rel {
			return fail(nil, "Illegal operator for counter and non-counter")
		}
	default:
		// non-counter op non-counter: +, -, *, /, relational/boolean all legal.
	}
	return nil
}
