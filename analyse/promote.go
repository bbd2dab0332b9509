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

// Promote picks the result type for non-division, non-relational binary
// operators: any F64 wins outright, else any F32 wins, else the usual
// C-like integer conversion: any U64 gives U64, else any I64 gives I64,
// else any U32 gives U32, else I32. It is symmetric: Promote(a,b) ==
// Promote(b,a).
func Promote(a, b ast.ValueType) ast.ValueType {
	if a == ast.F64 || b == ast.F64 {
		return ast.F64
	}
	if a == ast.F32 || b == ast.F32 {
		return ast.F32
	}
	switch {
	case a == ast.U64 || b == ast.U64:
		return ast.U64
	case is64(a) || is64(b):
		return ast.I64
	case isUnsigned(a) || isUnsigned(b):
		return ast.U32
	default:
		return ast.I32
	}
}

func is64(v ast.ValueType) bool {
	return v == ast.I64 || v == ast.U64
}

func isUnsigned(v ast.ValueType) bool {
	return v == ast.U32 || v == ast.U64
}
