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

import "sigs.k8s.io/derived-metrics/ast"

// MapNeg checks unary `-`: the operand must be numeric; unsigned operands
// flip to their signed counterpart, everything else inherits the
// operand's descriptor as-is.
func MapNeg(node *ast.Node) error {
	operand := node.Left
	if !operand.Descriptor.ValueType.IsNumeric() {
		return fail(operand, "Non-arithmetic operand for unary negation")
	}
	node.Descriptor = operand.Descriptor
	switch operand.Descriptor.ValueType {
	case ast.U32:
		node.Descriptor.ValueType = ast.I32
	case ast.U64:
		node.Descriptor.ValueType = ast.I64
	}
	node.Descriptor.Source = ast.SourceBound
	return nil
}

// MapNot implements the boolean `!` operator: the operand must be numeric;
// the result is always U32 and keeps the operand's units (no dimension check
// is made).
func MapNot(node *ast.Node) error {
	operand := node.Left
	if !operand.Descriptor.ValueType.IsNumeric() {
		return fail(operand, "Non-arithmetic operand for unary negation")
	}
	node.Descriptor = operand.Descriptor
	node.Descriptor.ValueType = ast.U32
	node.Descriptor.Source = ast.SourceBound
	return nil
}
