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
	"sigs.k8s.io/derived-metrics/ast"
	"sigs.k8s.io/derived-metrics/units"
)

// mapUnits reconciles operand units into the node's result units. It
// assumes node.Left and node.Right already carry their final Descriptor
// and (since this only ever runs during bind) a non-nil Info. base is the candidate operand's
// units the result inherits outside the reconciled dimensions. It returns
// the reconciled Units for node and whether a rescale forced the result to
// F64.
func mapUnits(node *ast.Node, base ast.Units) (ast.Units, bool) {
	l, r := node.Left, node.Right
	switch node.Kind {
	case ast.Mul, ast.Div:
		return combineProductUnits(node.Kind, l, r), false
	default:
		return reconcileAdditiveUnits(l, r, base)
	}
}

// reconcileAdditiveUnits handles +, -, and the relational/boolean
// operators: every dimension both operands share gets rescaled to the
// larger of the two scales, with the factor recorded on the smaller
// operand's Info so the evaluator can apply it per sample.
func reconcileAdditiveUnits(l, r *ast.Node, base ast.Units) (ast.Units, bool) {
	result := base
	forced := false

	if l.Descriptor.Units.DimSpace != 0 && r.Descriptor.Units.DimSpace != 0 {
		scale, f := reconcileScale(l, r, int(l.Descriptor.Units.ScaleSpace), int(r.Descriptor.Units.ScaleSpace),
			l.Descriptor.Units.DimSpace < 0, units.SpaceFactorBetween, func(n *ast.Node, v int) { n.Descriptor.Units.ScaleSpace = ast.SpaceScale(v) })
		result.ScaleSpace = ast.SpaceScale(scale)
		forced = forced || f
	}
	if l.Descriptor.Units.DimTime != 0 && r.Descriptor.Units.DimTime != 0 {
		scale, f := reconcileScale(l, r, int(l.Descriptor.Units.ScaleTime), int(r.Descriptor.Units.ScaleTime),
			l.Descriptor.Units.DimTime < 0, units.TimeFactorBetween, func(n *ast.Node, v int) { n.Descriptor.Units.ScaleTime = ast.TimeScale(v) })
		result.ScaleTime = ast.TimeScale(scale)
		forced = forced || f
	}
	if l.Descriptor.Units.DimCount != 0 && r.Descriptor.Units.DimCount != 0 {
		scale, f := reconcileScale(l, r, int(l.Descriptor.Units.ScaleCount), int(r.Descriptor.Units.ScaleCount),
			l.Descriptor.Units.DimCount < 0, units.CountFactorBetween, func(n *ast.Node, v int) { n.Descriptor.Units.ScaleCount = ast.CountScale(v) })
		result.ScaleCount = ast.CountScale(scale)
		forced = forced || f
	}
	return result, forced
}

// reconcileScale rescales whichever of l/r sits at the smaller scale index
// up to the larger, returns the (now-shared) scale index and whether a
// rescale happened. denominator selects whether the accumulated factor
// lands in MulScale (denominator position) or DivScale (numerator
// position).
func reconcileScale(l, r *ast.Node, lScale, rScale int, denominator bool, factor func(from, to int) int64, setScale func(*ast.Node, int)) (int, bool) {
	if lScale == rScale {
		return lScale, false
	}
	small, target := l, rScale
	smallScale, bigScale := lScale, rScale
	if lScale > rScale {
		small, target = r, lScale
		smallScale, bigScale = rScale, lScale
	}
	f := factor(smallScale, bigScale)
	if denominator {
		small.Info.MulScale *= f
	} else {
		small.Info.DivScale *= f
	}
	setScale(small, target)
	return target, true
}

// combineProductUnits implements the * and / dimension arithmetic: sums
// for *, differences for /, with the result's per-dimension scale
// inherited from whichever operand actually contributed that dimension
// (the right operand when the left contributed nothing).
func combineProductUnits(kind ast.Kind, l, r *ast.Node) ast.Units {
	lu, ru := l.Descriptor.Units, r.Descriptor.Units
	sign := int8(1)
	if kind == ast.Div {
		sign = -1
	}
	var out ast.Units
	out.DimSpace = lu.DimSpace + sign*ru.DimSpace
	out.DimTime = lu.DimTime + sign*ru.DimTime
	out.DimCount = lu.DimCount + sign*ru.DimCount

	out.ScaleSpace = lu.ScaleSpace
	if out.DimSpace != 0 && lu.DimSpace == 0 {
		out.ScaleSpace = ru.ScaleSpace
	}
	out.ScaleTime = lu.ScaleTime
	if out.DimTime != 0 && lu.DimTime == 0 {
		out.ScaleTime = ru.ScaleTime
	}
	out.ScaleCount = lu.ScaleCount
	if out.DimCount != 0 && lu.DimCount == 0 {
		out.ScaleCount = ru.ScaleCount
	}
	return out
}
