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

package lex

import (
	"strconv"
	"strings"

	"sigs.k8s.io/derived-metrics/debug"
	"sigs.k8s.io/derived-metrics/errctx"
)

const eof = 0

// Lexer scans a source string with one-rune look-ahead (Unget).
type Lexer struct {
	src  string
	pos  int // next unread byte
	una  byte
	have bool // true if una holds an ungot byte
}

// New returns a Lexer positioned at the start of src.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

func (l *Lexer) getc() byte {
	if l.have {
		l.have = false
		return l.una
	}
	if l.pos >= len(l.src) {
		return eof
	}
	c := l.src[l.pos]
	l.pos++
	return c
}

// Unget pushes a single byte back onto the stream; only one level of
// look-ahead is supported.
func (l *Lexer) Unget(c byte) {
	l.una = c
	l.have = true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }
func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// Next scans and returns the next token, skipping leading whitespace.
func (l *Lexer) Next() Token {
	for {
		c := l.getc()
		if c == eof {
			return Token{Type: EOS, Pos: l.pos}
		}
		if isSpace(c) {
			continue
		}
		start := l.pos - 1

		switch {
		case isDigit(c) || c == '.':
			return l.scanNumber(c, start)
		case isAlpha(c):
			return l.scanNameOrFunc(c, start)
		}

		switch c {
		case '+':
			return Token{Type: Plus, Value: "+", Pos: start}
		case '-':
			return Token{Type: Minus, Value: "-", Pos: start}
		case '*':
			return Token{Type: Star, Value: "*", Pos: start}
		case '/':
			return Token{Type: Slash, Value: "/", Pos: start}
		case '(':
			return Token{Type: LParen, Value: "(", Pos: start}
		case ')':
			return Token{Type: RParen, Value: ")", Pos: start}
		case '?':
			return Token{Type: Question, Value: "?", Pos: start}
		case ':':
			return Token{Type: Colon, Value: ":", Pos: start}
		case '<':
			return l.scanMaybeEq(c, '=', Lt, Le, start)
		case '>':
			return l.scanMaybeEq(c, '=', Gt, Ge, start)
		case '=':
			n := l.getc()
			if n == '=' {
				return Token{Type: EqEq, Value: "==", Pos: start}
			}
			l.Unget(n)
			return l.illegal(c, start)
		case '!':
			n := l.getc()
			if n == '=' {
				return Token{Type: Ne, Value: "!=", Pos: start}
			}
			l.Unget(n)
			return Token{Type: Not, Value: "!", Pos: start}
		case '&':
			n := l.getc()
			if n == '&' {
				return Token{Type: AndAnd, Value: "&&", Pos: start}
			}
			l.Unget(n)
			return l.illegal(c, start)
		case '|':
			n := l.getc()
			if n == '|' {
				return Token{Type: OrOr, Value: "||", Pos: start}
			}
			l.Unget(n)
			return l.illegal(c, start)
		default:
			return l.illegal(c, start)
		}
	}
}

func (l *Lexer) scanMaybeEq(c, want byte, lone, withEq TokenType, start int) Token {
	n := l.getc()
	if n == want {
		return Token{Type: withEq, Value: string(c) + string(want), Pos: start}
	}
	l.Unget(n)
	return Token{Type: lone, Value: string(c), Pos: start}
}

func (l *Lexer) illegal(c byte, start int) Token {
	debug.Tracef("lex: illegal character %q at %d\n", c, start)
	errctx.Set(start, "Illegal character")
	return Token{Type: Error, Value: string(c), Pos: start}
}

func (l *Lexer) scanNumber(first byte, start int) Token {
	var b strings.Builder
	b.WriteByte(first)
	isDouble := first == '.'
	for {
		c := l.getc()
		if isDigit(c) {
			b.WriteByte(c)
			continue
		}
		if c == '.' && !isDouble {
			isDouble = true
			b.WriteByte(c)
			continue
		}
		if c != eof {
			l.Unget(c)
		}
		break
	}
	text := b.String()
	if text == "." {
		return l.illegal('.', start)
	}
	if isDouble {
		return Token{Type: Double, Value: text, Pos: start}
	}
	if _, err := strconv.ParseUint(text, 10, 32); err != nil {
		debug.Tracef("lex: integer literal %q too large at %d\n", text, start)
		errctx.Set(start, "Constant value too large")
		return Token{Type: Error, Value: text, Pos: start}
	}
	return Token{Type: Integer, Value: text, Pos: start}
}

func (l *Lexer) scanNameOrFunc(first byte, start int) Token {
	var b strings.Builder
	b.WriteByte(first)
	for {
		c := l.getc()
		if isAlnum(c) || c == '_' || c == '.' {
			b.WriteByte(c)
			continue
		}
		if c != eof {
			l.Unget(c)
		}
		break
	}
	text := b.String()

	// If the accumulated text is immediately followed by '(' and matches
	// the function table, emit the function token and put the '(' back
	// so the parser consumes it normally.
	c := l.getc()
	if c == '(' {
		if tt, ok := functionKeywords[text]; ok {
			l.Unget(c)
			return Token{Type: tt, Value: text, Pos: start}
		}
	}
	if c != eof {
		l.Unget(c)
	}
	return Token{Type: Name, Value: text, Pos: start}
}
