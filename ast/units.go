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

package ast

import (
	"fmt"
	"strings"
)

// SpaceScale enumerates the byte-multiple steps a space dimension can be
// expressed in.
type SpaceScale int

const (
	ScaleByte SpaceScale = iota
	ScaleKbyte
	ScaleMbyte
	ScaleGbyte
	ScaleTbyte
	ScalePbyte
	ScaleEbyte
)

// TimeScale enumerates the step table used by unit reconciliation for the
// time dimension.
type TimeScale int

const (
	ScaleNsec TimeScale = iota
	ScaleUsec
	ScaleMsec
	ScaleSec
	ScaleMin
	ScaleHour
)

// CountScale enumerates the 10^n steps for the count dimension.
type CountScale int

const (
	ScaleCount1 CountScale = iota
	ScaleCount10
	ScaleCount100
	ScaleCount1K
	ScaleCount10K
	ScaleCount100K
	ScaleCount1M
)

// Units is the dimension/scale tuple attached to every Descriptor. Positive
// dimensions mean the unit appears in the numerator, negative in the
// denominator (e.g. bytes/sec has dimSpace=1, dimTime=-1).
type Units struct {
	DimSpace int8
	DimTime  int8
	DimCount int8

	ScaleSpace SpaceScale
	ScaleTime  TimeScale
	ScaleCount CountScale
}

// IsDimensionless reports whether every dimension is zero.
func (u Units) IsDimensionless() bool {
	return u.DimSpace == 0 && u.DimTime == 0 && u.DimCount == 0
}

// SameDimensions reports whether two Units agree on dimension (ignoring
// scale).
func (u Units) SameDimensions(o Units) bool {
	return u.DimSpace == o.DimSpace && u.DimTime == o.DimTime && u.DimCount == o.DimCount
}

// Equal reports whether two Units agree on both dimension and scale.
func (u Units) Equal(o Units) bool {
	return u.SameDimensions(o) &&
		u.ScaleSpace == o.ScaleSpace && u.ScaleTime == o.ScaleTime && u.ScaleCount == o.ScaleCount
}

var spaceUnitNames = map[SpaceScale]string{
	ScaleByte: "byte", ScaleKbyte: "kbyte", ScaleMbyte: "mbyte",
	ScaleGbyte: "gbyte", ScaleTbyte: "tbyte", ScalePbyte: "pbyte",
	ScaleEbyte: "ebyte",
}

var timeUnitNames = map[TimeScale]string{
	ScaleNsec: "nsec", ScaleUsec: "usec", ScaleMsec: "msec",
	ScaleSec: "sec", ScaleMin: "min", ScaleHour: "hour",
}

// String renders the units as a clause the lexer's units sub-lexer accepts
// verbatim: numerator keywords first, then `/unit` denominators, with `^n`
// powers past one. Dimensionless units render as the empty string.
func (u Units) String() string {
	if u.IsDimensionless() {
		return ""
	}
	var b strings.Builder
	numerator := func(dim int8, word string) {
		if dim <= 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
		if dim > 1 {
			fmt.Fprintf(&b, "^%d", dim)
		}
	}
	denominator := func(dim int8, word string) {
		if dim >= 0 {
			return
		}
		b.WriteByte('/')
		b.WriteString(word)
		if dim < -1 {
			fmt.Fprintf(&b, "^%d", -dim)
		}
	}
	numerator(u.DimSpace, spaceUnitNames[u.ScaleSpace])
	numerator(u.DimTime, timeUnitNames[u.ScaleTime])
	numerator(u.DimCount, "count")
	denominator(u.DimSpace, spaceUnitNames[u.ScaleSpace])
	denominator(u.DimTime, timeUnitNames[u.ScaleTime])
	denominator(u.DimCount, "count")
	return b.String()
}
