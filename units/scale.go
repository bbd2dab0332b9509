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

// Package units holds the scale-step factor tables unit reconciliation
// rescales operands against: 1024 per space step, the {nsec,usec,msec,
// sec,min,hour} time step table, and 10 per count step.
package units

// SpaceStep is the per-step multiplier between adjacent ast.SpaceScale
// values (always 1024).
const SpaceStep = 1024

// CountStep is the per-step multiplier between adjacent ast.CountScale
// values (always 10).
const CountStep = 10

// timeSteps[i] is the multiplier from time scale i to time scale i+1, e.g.
// timeSteps[0] (nsec->usec) is 1000, timeSteps[3] (sec->min) is 60.
var timeSteps = [5]int64{1000, 1000, 1000, 60, 60}

// SpaceFactorBetween returns the factor to rescale a value at space scale
// index from up to index to (from <= to): 1024^(to-from).
func SpaceFactorBetween(from, to int) int64 {
	f := int64(1)
	for i := from; i < to; i++ {
		f *= SpaceStep
	}
	return f
}

// TimeFactorBetween returns the accumulated factor between two time scale
// indexes, walking the non-uniform step table (from <= to).
func TimeFactorBetween(from, to int) int64 {
	f := int64(1)
	for i := from; i < to; i++ {
		f *= timeSteps[i]
	}
	return f
}

// CountFactorBetween returns 10^(to-from).
func CountFactorBetween(from, to int) int64 {
	f := int64(1)
	for i := from; i < to; i++ {
		f *= CountStep
	}
	return f
}
