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
	"fmt"

	"sigs.k8s.io/derived-metrics/ast"
)

var binaryOp = map[ast.Kind]string{
	ast.Add: "+", ast.Sub: "-", ast.Mul: "*", ast.Div: "/",
	ast.Lt: "<", ast.Le: "<=", ast.Eq: "==", ast.Ge: ">=", ast.Gt: ">", ast.Ne: "!=",
	ast.And: "&&", ast.Or: "||",
}

var fnName = map[ast.Kind]string{
	ast.Avg: "avg", ast.Count: "count", ast.Delta: "delta", ast.Max: "max",
	ast.Min: "min", ast.Sum: "sum", ast.Rate: "rate", ast.InstantFn: "instant",
}

// Pretty re-renders a static AST as a fully parenthesised expression
// that Parse is guaranteed to reproduce structurally. It is a test and
// debugging aid, not part of the evaluation path.
func Pretty(n *ast.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case ast.Integer, ast.Double:
		// A literal keeps any units clause it was written with, so the
		// re-parsed leaf carries the same descriptor.
		if u := n.Descriptor.Units.String(); u != "" {
			return n.Value + " " + u
		}
		return n.Value
	case ast.Name:
		return n.Value
	case ast.Neg:
		return fmt.Sprintf("-(%s)", Pretty(n.Left))
	case ast.Not:
		return fmt.Sprintf("!(%s)", Pretty(n.Left))
	case ast.Anon:
		return fmt.Sprintf("anon(%s)", n.Left.Value)
	case ast.Quest:
		return fmt.Sprintf("(%s ? %s : %s)", Pretty(n.Left), Pretty(n.Right.Left), Pretty(n.Right.Right))
	}
	if name, ok := fnName[n.Kind]; ok {
		return fmt.Sprintf("%s(%s)", name, n.Left.Value)
	}
	if op, ok := binaryOp[n.Kind]; ok {
		return fmt.Sprintf("(%s %s %s)", Pretty(n.Left), op, Pretty(n.Right))
	}
	return "?"
}
