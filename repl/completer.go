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

package repl

import (
	"strings"

	"github.com/c-bata/go-prompt"
	"k8s.io/apimachinery/pkg/util/sets"
)

const (
	// spaces can't individually demarcate lexical units in the expression
	// grammar, so completion words break on operators and parens too.
	tokenSeparators = " +-*/()?:<>=!&|,"
)

// functionWords are the expression grammar's function keywords, suggested
// inside a `reg` expression.
var functionWords = []string{"avg", "count", "delta", "max", "min", "sum", "rate", "instant", "anon"}

// NameSource lists the host metric names completion can draw from.
type NameSource interface {
	MetricNames() sets.String
}

// Completer suggests command keywords, derived-metric names, host metric
// names, and function keywords depending on where in the line the cursor
// sits.
type Completer struct {
	session *Session
}

func NewCompleter(session *Session) *Completer {
	return &Completer{session: session}
}

var commandSuggestions = []prompt.Suggest{
	{Text: "reg", Description: "register a derived metric: reg name = expression"},
	{Text: "desc", Description: "show the bound descriptor of a metric"},
	{Text: "ls", Description: "list registered derived metrics under a prefix"},
	{Text: "children", Description: "list next name components under a prefix"},
	{Text: "load", Description: "load a configuration path spec"},
	{Text: "names", Description: "list host metric names"},
	{Text: "help", Description: "show help"},
	{Text: "quit", Description: "exit"},
}

func (c *Completer) Complete(d prompt.Document) []prompt.Suggest {
	if d.TextBeforeCursor() == "" {
		return []prompt.Suggest{}
	}
	fields := strings.Fields(d.TextBeforeCursor())
	word := lastWord(d.TextBeforeCursor())

	if len(fields) == 1 && !strings.ContainsAny(d.TextBeforeCursor(), " ") {
		return prompt.FilterHasPrefix(commandSuggestions, word, true)
	}

	switch fields[0] {
	case "reg":
		// After the '=' the argument is an expression: functions plus host
		// metric names. Before it, nothing useful to suggest.
		if !strings.Contains(d.TextBeforeCursor(), "=") {
			return []prompt.Suggest{}
		}
		return prompt.FilterHasPrefix(c.expressionSuggestions(), word, true)
	case "desc", "ls", "children":
		return prompt.FilterHasPrefix(c.derivedSuggestions(), word, true)
	default:
		return []prompt.Suggest{}
	}
}

func (c *Completer) expressionSuggestions() []prompt.Suggest {
	var out []prompt.Suggest
	for _, f := range functionWords {
		out = append(out, prompt.Suggest{Text: f, Description: "function"})
	}
	if c.session.names != nil {
		for _, n := range c.session.names.MetricNames().List() {
			out = append(out, prompt.Suggest{Text: n, Description: "host metric"})
		}
	}
	return out
}

func (c *Completer) derivedSuggestions() []prompt.Suggest {
	var out []prompt.Suggest
	for _, n := range c.session.visibleNames() {
		out = append(out, prompt.Suggest{Text: n, Description: "derived metric"})
	}
	return out
}

// lastWord carves the completion word off the end of the text before the
// cursor, breaking on any separator rather than only spaces.
func lastWord(text string) string {
	cut := -1
	for i := len(text) - 1; i >= 0; i-- {
		if strings.ContainsRune(tokenSeparators, rune(text[i])) {
			cut = i
			break
		}
	}
	return text[cut+1:]
}
