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

import "fmt"

// ValueType is the numeric representation a node's value is produced in.
type ValueType int

const (
	ValueTypeUnknown ValueType = iota
	I32
	U32
	I64
	U64
	F32
	F64
)

func (v ValueType) IsNumeric() bool {
	return v >= I32 && v <= F64
}

func (v ValueType) IsFloat() bool {
	return v == F32 || v == F64
}

func (v ValueType) IsSigned() bool {
	return v == I32 || v == I64
}

func (v ValueType) String() string {
	switch v {
	case I32:
		return "I32"
	case U32:
		return "U32"
	case I64:
		return "I64"
	case U64:
		return "U64"
	case F32:
		return "F32"
	case F64:
		return "F64"
	default:
		return "UNKNOWN"
	}
}

// Semantics classifies how a metric's value evolves over time.
type Semantics int

const (
	SemanticsUnknown Semantics = iota
	Counter
	Instant
	Discrete
)

func (s Semantics) String() string {
	switch s {
	case Counter:
		return "Counter"
	case Instant:
		return "Instant"
	case Discrete:
		return "Discrete"
	default:
		return "Unknown"
	}
}

// InstanceDomain identifies the multi-valued shape of a metric. The zero
// value (empty string) means scalar; non-derived ids use their host's own
// identifier scheme so this is opaque here.
type InstanceDomain string

// Scalar is the null instance domain.
const Scalar InstanceDomain = ""

func (d InstanceDomain) IsScalar() bool {
	return d == Scalar
}

// DescriptorSource distinguishes, purely for debug printing, whether a
// Descriptor belongs to a static or a bound node. It has no bearing on any
// semantic invariant.
type DescriptorSource int

const (
	SourceStatic DescriptorSource = iota
	SourceBound
)

// Descriptor is the semantic type produced at a node, or reported for a
// resolved metric id.
type Descriptor struct {
	ID             MetricID
	ValueType      ValueType
	InstanceDomain InstanceDomain
	Semantics      Semantics
	Units          Units
	Source         DescriptorSource
}

func (d Descriptor) String() string {
	indom := "<scalar>"
	if !d.InstanceDomain.IsScalar() {
		indom = string(d.InstanceDomain)
	}
	return fmt.Sprintf("{id=%v type=%v sem=%v indom=%v}", d.ID, d.ValueType, d.Semantics, indom)
}

// MetricID is an opaque metric identifier. Derived ids set the
// high-order DerivedFlag bit; the rest packs domain (reserved dynamic
// domain) / cluster (always 0 for derived ids) / item (1-based
// registration index).
type MetricID uint32

const (
	// DerivedFlag marks an id as belonging to the dynamic/derived domain.
	DerivedFlag MetricID = 1 << 31
	// DerivedDomain is the reserved PMNS domain used for every derived id.
	DerivedDomain MetricID = 250

	domainShift  = 22
	clusterShift = 10
	domainMask   = 0x1FF
	clusterMask  = 0xFFF
	itemMask     = 0x3FF
)

// NewDerivedID packs the reserved domain, cluster 0, and a 1-based item
// index into an opaque derived metric id.
func NewDerivedID(item int) MetricID {
	return DerivedFlag | ((DerivedDomain & domainMask) << domainShift) | (MetricID(item) & itemMask)
}

func (id MetricID) IsDerived() bool {
	return id&DerivedFlag != 0
}

func (id MetricID) Item() int {
	return int(id & itemMask)
}

func (id MetricID) String() string {
	return fmt.Sprintf("%#x", uint32(id))
}
