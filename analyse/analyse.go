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

// Package analyse type-checks a bound AST bottom-up: descriptor and unit
// reconciliation for the binary operators, plus the ternary, unary, and
// function-specific rules.
package analyse

import "sigs.k8s.io/derived-metrics/ast"

// Check runs the full rule set bottom-up over root, which must be a bound
// tree whose Name leaves already carry resolved descriptors. It stops at
// the first failing node (no error recovery inside a single expression)
// and returns that node's SemanticError.
func Check(root *ast.Node) error {
	return check(root)
}

func check(n *ast.Node) error {
	if n == nil || n.Kind.IsLeaf() {
		return nil
	}
	if err := check(n.Left); err != nil {
		return err
	}
	if err := check(n.Right); err != nil {
		return err
	}
	return checkNode(n)
}

func checkNode(n *ast.Node) error {
	switch n.Kind {
	case ast.Quest:
		return MapTernary(n)
	case ast.Colon:
		// Colon's Descriptor is populated as a side effect of MapTernary
		// on its parent Quest; nothing to do on its own.
		return nil
	case ast.Neg:
		return MapNeg(n)
	case ast.Not:
		return MapNot(n)
	case ast.Avg, ast.Count, ast.Delta, ast.Max, ast.Min, ast.Sum, ast.Rate, ast.InstantFn, ast.Anon:
		return MapFunc(n)
	default:
		return MapDesc(n)
	}
}
