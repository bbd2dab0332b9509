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

// Package parse implements the recursive-descent, operator-precedence
// expression grammar: it consumes the token stream from lex and builds a
// static ast.Node tree whose literal strings it owns.
package parse

import (
	"fmt"

	"sigs.k8s.io/derived-metrics/ast"
	"sigs.k8s.io/derived-metrics/debug"
	"sigs.k8s.io/derived-metrics/errctx"
	"sigs.k8s.io/derived-metrics/lex"
)

// ParseError reports a syntax or lexical error. The byte offset always
// points into the source text handed to Parse.
type ParseError struct {
	Pos     int
	Message string

	// missingOperand marks the generic no-operand failures an enclosing
	// operator replaces with its contextual "expected to follow" message.
	// Deeper, more specific errors propagate untouched.
	missingOperand bool
}

func (e *ParseError) Error() string {
	return e.Message
}

// Parse lexes and parses src into a static AST. On success the returned
// error is nil and the caller owns the tree (and its literal strings). On
// failure the partial tree is discarded and a *ParseError is returned;
// the same diagnostic is also published through errctx for callers that
// assemble a caret-annotated report.
func Parse(src string) (*ast.Node, error) {
	errctx.Clear()
	p := &parser{lx: lex.New(src)}
	p.advance()
	n, ok := p.parseTernary()
	if !ok {
		return nil, p.err
	}
	if p.cur.Type == lex.Error {
		p.failLex()
		return nil, p.err
	}
	if p.cur.Type != lex.EOS {
		p.fail(p.cur.Pos, "Unexpected token %q", p.cur.Value)
		return nil, p.err
	}
	return n, nil
}

type parser struct {
	lx  *lex.Lexer
	cur lex.Token
	err *ParseError
}

func (p *parser) advance() {
	p.cur = p.lx.Next()
	debug.Tracef("parse: token %v %q@%d\n", p.cur.Type, p.cur.Value, p.cur.Pos)
}

func (p *parser) fail(pos int, format string, args ...interface{}) bool {
	msg := fmt.Sprintf(format, args...)
	errctx.Set(pos, msg)
	p.err = &ParseError{Pos: pos, Message: msg}
	return false
}

// failLex turns a lexer Error token into a ParseError carrying whatever
// cause the lexer already published (illegal character, oversized
// constant).
func (p *parser) failLex() bool {
	msg := "Illegal character"
	if d := errctx.LastError(); d != nil {
		msg = d.Message
	}
	return p.fail(p.cur.Pos, "%s", msg)
}

// failMissingOperand is fail plus the marker letting an enclosing operator
// substitute its contextual diagnostic.
func (p *parser) failMissingOperand(pos int, format string, args ...interface{}) bool {
	p.fail(pos, format, args...)
	p.err.missingOperand = true
	return false
}

// failOperator reports a missing/ill-formed operand after an operator
// token, unless the operand subtree already produced a more specific
// error.
func (p *parser) failOperator(op lex.Token, format string) bool {
	if p.err != nil && !p.err.missingOperand {
		return false
	}
	return p.fail(op.Pos, format, op.Value)
}

// ---- precedence climbing, low to high: ?: | || && | ! | relational | + - | * / | unary - ----

func (p *parser) parseTernary() (*ast.Node, bool) {
	cond, ok := p.parseOrAnd()
	if !ok {
		return nil, false
	}
	if p.cur.Type != lex.Question {
		return cond, true
	}
	p.advance()
	then, ok := p.parseTernary()
	if !ok {
		return nil, false
	}
	if p.cur.Type != lex.Colon {
		return nil, p.fail(p.cur.Pos, "':' expected to follow '?' branch")
	}
	p.advance()
	els, ok := p.parseTernary()
	if !ok {
		return nil, false
	}
	return ast.NewTernary(cond, then, els), true
}

func (p *parser) parseOrAnd() (*ast.Node, bool) {
	left, ok := p.parseNot()
	if !ok {
		return nil, false
	}
	for p.cur.Type == lex.AndAnd || p.cur.Type == lex.OrOr {
		op := p.cur
		kind := ast.And
		if op.Type == lex.OrOr {
			kind = ast.Or
		}
		p.advance()
		right, ok := p.parseNot()
		if !ok {
			return nil, p.failOperator(op, "Boolean expression expected to follow %s")
		}
		left = ast.NewBinary(kind, left, right)
	}
	return left, true
}

func (p *parser) parseNot() (*ast.Node, bool) {
	if p.cur.Type == lex.Not {
		opPos := p.cur.Pos
		p.advance()
		operand, ok := p.parseNot()
		if !ok {
			if p.err == nil || p.err.missingOperand {
				p.fail(opPos, "Boolean expression expected to follow !")
			}
			return nil, false
		}
		return ast.NewUnary(ast.Not, operand), true
	}
	return p.parseRelational()
}

func (p *parser) parseRelational() (*ast.Node, bool) {
	left, ok := p.parseAdditive()
	if !ok {
		return nil, false
	}
	for {
		kind, isRel := relKind(p.cur.Type)
		if !isRel {
			break
		}
		op := p.cur
		p.advance()
		right, ok := p.parseAdditive()
		if !ok {
			return nil, p.failOperator(op, "Arithmetic expression expected to follow %s")
		}
		left = ast.NewBinary(kind, left, right)
	}
	return left, true
}

func relKind(t lex.TokenType) (ast.Kind, bool) {
	switch t {
	case lex.Lt:
		return ast.Lt, true
	case lex.Le:
		return ast.Le, true
	case lex.EqEq:
		return ast.Eq, true
	case lex.Ge:
		return ast.Ge, true
	case lex.Gt:
		return ast.Gt, true
	case lex.Ne:
		return ast.Ne, true
	default:
		return 0, false
	}
}

func (p *parser) parseAdditive() (*ast.Node, bool) {
	left, ok := p.parseMultiplicative()
	if !ok {
		return nil, false
	}
	for p.cur.Type == lex.Plus || p.cur.Type == lex.Minus {
		op := p.cur
		kind := ast.Add
		if op.Type == lex.Minus {
			kind = ast.Sub
		}
		p.advance()
		right, ok := p.parseMultiplicative()
		if !ok {
			return nil, p.failOperator(op, "Arithmetic expression expected to follow %s")
		}
		left = ast.NewBinary(kind, left, right)
	}
	return left, true
}

func (p *parser) parseMultiplicative() (*ast.Node, bool) {
	left, ok := p.parseUnaryMinus()
	if !ok {
		return nil, false
	}
	for p.cur.Type == lex.Star || p.cur.Type == lex.Slash {
		op := p.cur
		kind := ast.Mul
		if op.Type == lex.Slash {
			kind = ast.Div
		}
		p.advance()
		right, ok := p.parseUnaryMinus()
		if !ok {
			return nil, p.failOperator(op, "Arithmetic expression expected to follow %s")
		}
		left = ast.NewBinary(kind, left, right)
	}
	return left, true
}

func (p *parser) parseUnaryMinus() (*ast.Node, bool) {
	if p.cur.Type == lex.Minus {
		opPos := p.cur.Pos
		p.advance()
		operand, ok := p.parseUnaryMinus()
		if !ok {
			if p.err == nil || p.err.missingOperand {
				p.fail(opPos, "Arithmetic expression expected to follow -")
			}
			return nil, false
		}
		return ast.NewUnary(ast.Neg, operand), true
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*ast.Node, bool) {
	switch p.cur.Type {
	case lex.Integer, lex.Double:
		return p.parseNumber()
	case lex.Name:
		n := ast.NewLeaf(ast.Name, p.cur.Value)
		p.advance()
		return n, true
	case lex.LParen:
		p.advance()
		inner, ok := p.parseTernary()
		if !ok {
			return nil, false
		}
		if p.cur.Type != lex.RParen {
			return nil, p.fail(p.cur.Pos, "')' expected")
		}
		p.advance()
		return inner, true
	case lex.Avg, lex.CountFn, lex.Delta, lex.Max, lex.Min, lex.Sum, lex.Rate, lex.InstantFn, lex.Anon:
		return p.parseFunc()
	case lex.Error:
		return nil, p.failLex()
	case lex.EOS:
		return nil, p.failMissingOperand(p.cur.Pos, "Arithmetic expression expected")
	default:
		return nil, p.failMissingOperand(p.cur.Pos, "Unexpected initial %s", p.cur.Value)
	}
}

func (p *parser) parseNumber() (*ast.Node, bool) {
	tok := p.cur
	kind := ast.Integer
	if tok.Type == lex.Double {
		kind = ast.Double
	}
	n := ast.NewLeaf(kind, tok.Value)
	valType := ast.U32
	if kind == ast.Double {
		valType = ast.F64
	}
	units, _ := p.lx.ScanUnitClause()
	n.Descriptor = ast.Descriptor{
		ValueType: valType,
		Semantics: ast.Discrete,
		Units:     unitsFromTokens(units),
	}
	p.advance()
	return n, true
}

func unitsFromTokens(toks []lex.UnitToken) ast.Units {
	var u ast.Units
	for _, t := range toks {
		sign := int8(1)
		if t.Denominator {
			sign = -1
		}
		switch t.Dimension {
		case lex.DimSpace:
			u.DimSpace = sign * int8(t.Power)
			u.ScaleSpace = ast.SpaceScale(t.ScaleIndex)
		case lex.DimTime:
			u.DimTime = sign * int8(t.Power)
			u.ScaleTime = ast.TimeScale(t.ScaleIndex)
		case lex.DimCount:
			u.DimCount = sign * int8(t.Power)
			u.ScaleCount = ast.CountScale(t.ScaleIndex)
		}
	}
	return u
}

var funcKind = map[lex.TokenType]ast.Kind{
	lex.Avg:       ast.Avg,
	lex.CountFn:   ast.Count,
	lex.Delta:     ast.Delta,
	lex.Max:       ast.Max,
	lex.Min:       ast.Min,
	lex.Sum:       ast.Sum,
	lex.Rate:      ast.Rate,
	lex.InstantFn: ast.InstantFn,
	lex.Anon:      ast.Anon,
}

var anonTypeTags = map[string]ast.ValueType{
	"PM_TYPE_32": ast.I32,
	"U32":        ast.U32,
	"64":         ast.I64,
	"U64":        ast.U64,
	"FLOAT":      ast.F32,
	"DOUBLE":     ast.F64,
}

func (p *parser) parseFunc() (*ast.Node, bool) {
	fnTok := p.cur
	kind := funcKind[fnTok.Type]
	p.advance()
	if p.cur.Type != lex.LParen {
		return nil, p.fail(p.cur.Pos, "'(' expected to follow %s", fnTok.Value)
	}
	p.advance()

	if kind == ast.Anon {
		return p.parseAnonArg(fnTok)
	}

	if p.cur.Type != lex.Name {
		return nil, p.fail(p.cur.Pos, "Metric name expected to follow %s(", fnTok.Value)
	}
	arg := ast.NewLeaf(ast.Name, p.cur.Value)
	arg.SaveLast = true
	p.advance()
	if p.cur.Type != lex.RParen {
		return nil, p.fail(p.cur.Pos, "')' expected to follow %s(%s", fnTok.Value, arg.Value)
	}
	p.advance()
	return ast.NewUnary(kind, arg), true
}

func (p *parser) parseAnonArg(fnTok lex.Token) (*ast.Node, bool) {
	tagPos := p.cur.Pos
	var tagText string
	switch p.cur.Type {
	case lex.Name, lex.Integer:
		tagText = p.cur.Value
	default:
		return nil, p.fail(p.cur.Pos, "Type tag expected to follow anon(")
	}
	vt, ok := anonTypeTags[tagText]
	if !ok {
		return nil, p.fail(tagPos, "Type tag expected to follow anon(")
	}
	p.advance()
	if p.cur.Type != lex.RParen {
		return nil, p.fail(p.cur.Pos, "')' expected to follow anon(%s", tagText)
	}
	p.advance()

	child := ast.NewLeaf(ast.Integer, tagText)
	child.Descriptor = ast.Descriptor{ValueType: vt, Semantics: ast.Discrete}
	return ast.NewUnary(ast.Anon, child), true
}
