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

// MapFunc computes the result descriptor for
// count/instant/avg/sum/min/max/rate/delta/anon. node.Left is the single
// operand (the function's Name argument, or the synthesised Integer for
// anon).
func MapFunc(node *ast.Node) error {
	switch node.Kind {
	case ast.Count:
		node.Descriptor = ast.Descriptor{
			ValueType: ast.U32,
			Semantics: ast.Instant,
			Units:     ast.Units{DimCount: 1},
			Source:    ast.SourceBound,
		}
		return nil
	case ast.InstantFn:
		d := node.Left.Descriptor
		if d.Semantics == ast.Counter {
			d.Semantics = ast.Instant
		}
		d.Source = ast.SourceBound
		node.Descriptor = d
		return nil
	case ast.Avg, ast.Sum, ast.Min, ast.Max:
		return mapAggregate(node)
	case ast.Rate:
		return mapRate(node)
	case ast.Delta:
		return mapDelta(node)
	case ast.Anon:
		d := node.Left.Descriptor
		d.Source = ast.SourceBound
		node.Descriptor = d
		return nil
	default:
		return nil
	}
}

func mapAggregate(node *ast.Node) error {
	operand := node.Left
	if !operand.Descriptor.ValueType.IsNumeric() {
		return fail(operand, "Non-arithmetic operand for function")
	}
	d := operand.Descriptor
	d.Semantics = ast.Instant
	d.InstanceDomain = ast.Scalar
	if node.Kind == ast.Avg {
		d.ValueType = ast.F32
	}
	d.Source = ast.SourceBound
	node.Descriptor = d
	return nil
}

func mapRate(node *ast.Node) error {
	operand := node.Left
	if !operand.Descriptor.ValueType.IsNumeric() {
		return fail(operand, "Non-arithmetic operand for function")
	}
	dimTime := operand.Descriptor.Units.DimTime
	if dimTime != 0 && dimTime != 1 {
		return fail(operand, "Incorrect time dimension for operand")
	}
	d := operand.Descriptor
	d.ValueType = ast.F64
	d.Semantics = ast.Instant
	d.Units.DimTime = dimTime - 1
	if d.Units.DimTime == 0 {
		d.Units.ScaleTime = 0
	} else {
		d.Units.ScaleTime = ast.ScaleSec
	}
	d.Source = ast.SourceBound
	node.Descriptor = d
	return nil
}

func mapDelta(node *ast.Node) error {
	operand := node.Left
	if !operand.Descriptor.ValueType.IsNumeric() {
		return fail(operand, "Non-arithmetic operand for function")
	}
	d := operand.Descriptor
	d.Semantics = ast.Instant
	d.Source = ast.SourceBound
	node.Descriptor = d
	return nil
}
