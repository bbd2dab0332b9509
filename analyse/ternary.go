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

// MapTernary checks a `?:` expression. node is the Quest node: node.Left
// is the guard, node.Right is the Colon node whose Left/Right are the
// then/else branches. The branches must agree on value type, semantics,
// units and scales, and instance domain.
func MapTernary(node *ast.Node) error {
	guard := node.Left
	colon := node.Right
	then, els := colon.Left, colon.Right

	if !guard.Descriptor.ValueType.IsNumeric() {
		return fail(guard, "Non-arithmetic operand for ternary guard")
	}
	if !guard.Descriptor.InstanceDomain.IsScalar() && then.Descriptor.InstanceDomain.IsScalar() && els.Descriptor.InstanceDomain.IsScalar() {
		return fail(guard, "Non-scalar ternary guard with scalar expressions")
	}

	if then.Descriptor.ValueType != els.Descriptor.ValueType {
		return fail(node, "Different types for ternary operands")
	}
	if then.Descriptor.Semantics != els.Descriptor.Semantics {
		return fail(node, "Different semantics for ternary operands")
	}
	if dim := mismatchedDimension(then.Descriptor.Units, els.Descriptor.Units); dim != "" {
		return fail(node, "Different units or scale (%s) for ternary operands", dim)
	}

	indom, err := unifyInstanceDomains(node, then, els)
	if err != nil {
		return fail(node, "Different instance domains for ternary operands")
	}

	colon.Descriptor = ast.Descriptor{
		ValueType:      then.Descriptor.ValueType,
		Semantics:      then.Descriptor.Semantics,
		Units:          then.Descriptor.Units,
		InstanceDomain: indom,
		Source:         ast.SourceBound,
	}
	node.Descriptor = colon.Descriptor
	return nil
}

func mismatchedDimension(a, b ast.Units) string {
	switch {
	case a.DimSpace != b.DimSpace || a.ScaleSpace != b.ScaleSpace:
		return "space"
	case a.DimTime != b.DimTime || a.ScaleTime != b.ScaleTime:
		return "time"
	case a.DimCount != b.DimCount || a.ScaleCount != b.ScaleCount:
		return "count"
	default:
		return ""
	}
}
