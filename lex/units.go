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

import "strings"

// unitWords maps every singular unit keyword to the dimension/scale pair it
// names. Plural forms ("bytes", "secs") are recognised by stripping a
// trailing 's' before lookup.
var unitWords = map[string]struct {
	dim   UnitDimension
	scale int
}{
	"byte":  {DimSpace, 0},
	"kbyte": {DimSpace, 1},
	"mbyte": {DimSpace, 2},
	"gbyte": {DimSpace, 3},
	"tbyte": {DimSpace, 4},
	"pbyte": {DimSpace, 5},
	"ebyte": {DimSpace, 6},

	"nsec": {DimTime, 0},
	"usec": {DimTime, 1},
	"msec": {DimTime, 2},
	"sec":  {DimTime, 3},
	"min":  {DimTime, 4},
	"hour": {DimTime, 5},

	"count": {DimCount, 0},
}

// checkpoint captures enough Lexer state to backtrack a failed units scan.
type checkpoint struct {
	pos  int
	una  byte
	have bool
}

func (l *Lexer) mark() checkpoint {
	return checkpoint{pos: l.pos, una: l.una, have: l.have}
}

func (l *Lexer) restore(c checkpoint) {
	l.pos, l.una, l.have = c.pos, c.una, c.have
}

// ScanUnitClause attempts to consume a trailing units clause after a
// numeric literal: single-word unit keywords (singular or plural),
// `unit^n`, and a leading `/unit` for denominator position. It is only ever invoked by the parser immediately
// after a numeric literal; on failure to recognise anything it rewinds the
// lexer exactly to where it started and returns ok=false so the caller can
// resume normal tokenisation (e.g. the word was actually the start of the
// next expression, not a unit).
func (l *Lexer) ScanUnitClause() (toks []UnitToken, ok bool) {
	start := l.mark()
	for {
		wordStart := l.mark()
		l.skipSpace()
		denom := false
		c := l.getc()
		if c == '/' {
			denom = true
		} else if isAlpha(c) {
			l.Unget(c)
		} else {
			l.restore(wordStart)
			break
		}
		word, matched := l.scanUnitWord()
		if !matched {
			l.restore(wordStart)
			break
		}
		power := 1
		if p, got := l.scanPower(); got {
			power = p
		}
		toks = append(toks, UnitToken{
			Dimension:   word.dim,
			ScaleIndex:  word.scale,
			Power:       power,
			Denominator: denom,
		})
	}
	if len(toks) == 0 {
		l.restore(start)
		return nil, false
	}
	return toks, true
}

func (l *Lexer) skipSpace() {
	for {
		c := l.getc()
		if c == eof || !isSpace(c) {
			if c != eof {
				l.Unget(c)
			}
			return
		}
	}
}

func (l *Lexer) scanUnitWord() (struct {
	dim   UnitDimension
	scale int
}, bool) {
	var b strings.Builder
	for {
		c := l.getc()
		if isAlpha(c) {
			b.WriteByte(c)
			continue
		}
		if c != eof {
			l.Unget(c)
		}
		break
	}
	text := strings.ToLower(b.String())
	if w, ok := unitWords[text]; ok {
		return w, true
	}
	if strings.HasSuffix(text, "s") {
		if w, ok := unitWords[strings.TrimSuffix(text, "s")]; ok {
			return w, true
		}
	}
	return struct {
		dim   UnitDimension
		scale int
	}{}, false
}

func (l *Lexer) scanPower() (int, bool) {
	mk := l.mark()
	c := l.getc()
	if c != '^' {
		if c != eof {
			l.Unget(c)
		}
		return 0, false
	}
	var b strings.Builder
	for {
		c = l.getc()
		if isDigit(c) {
			b.WriteByte(c)
			continue
		}
		if c != eof {
			l.Unget(c)
		}
		break
	}
	if b.Len() == 0 {
		l.restore(mk)
		return 0, false
	}
	n := 0
	for _, d := range b.String() {
		n = n*10 + int(d-'0')
	}
	return n, true
}
