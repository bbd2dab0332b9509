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
	"encoding/json"
	"strings"

	"github.com/fatih/color"
	"github.com/golang/protobuf/proto"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-runewidth"

	"sigs.k8s.io/derived-metrics/ast"
)

var (
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
)

// descriptorView is the JSON shape `desc` prints; it spells the enums out
// rather than dumping their integer values.
type descriptorView struct {
	ID             string `json:"id"`
	ValueType      string `json:"valueType"`
	Semantics      string `json:"semantics"`
	InstanceDomain string `json:"instanceDomain,omitempty"`
	Units          string `json:"units,omitempty"`
}

func viewOf(d ast.Descriptor) descriptorView {
	return descriptorView{
		ID:             d.ID.String(),
		ValueType:      d.ValueType.String(),
		Semantics:      d.Semantics.String(),
		InstanceDomain: string(d.InstanceDomain),
		Units:          d.Units.String(),
	}
}

// ToPrettyJson renders a descriptor as plain indented JSON.
func ToPrettyJson(d ast.Descriptor) (*string, error) {
	s, err := json.MarshalIndent(viewOf(d), "", "  ")
	if err != nil {
		return nil, err
	}
	return proto.String(string(s)), nil
}

// ToPrettyColoredJson renders a descriptor as colorised JSON for the
// interactive prompt.
func ToPrettyColoredJson(d ast.Descriptor) (*string, error) {
	f := prettyjson.NewFormatter()
	f.Indent = 4
	f.KeyColor = color.New(color.FgGreen)
	f.NullColor = color.New(color.Underline)
	f.NumberColor = color.New(color.FgYellow)
	f.StringColor = color.New(color.FgHiCyan)
	s, err := f.Marshal(viewOf(d))
	if err != nil {
		return nil, err
	}
	return proto.String(string(s)), nil
}

// nameTable renders names two to a row, padded by display width so the
// columns line up regardless of rune width.
func nameTable(names []string) string {
	if len(names) == 0 {
		return "(none)\n"
	}
	colWidth := 0
	for _, n := range names {
		if w := runewidth.StringWidth(n); w > colWidth {
			colWidth = w
		}
	}
	sb := &strings.Builder{}
	for i, n := range names {
		sb.WriteString(runewidth.FillRight(n, colWidth+2))
		if i%2 == 1 {
			sb.WriteString("\n")
		}
	}
	if len(names)%2 == 1 {
		sb.WriteString("\n")
	}
	return sb.String()
}
