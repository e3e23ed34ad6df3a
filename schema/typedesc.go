// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"fmt"
	"regexp"
)

// BitWidth is the bit size of an int/uint leaf.
type BitWidth int

const (
	BitWidth8  BitWidth = 8
	BitWidth16 BitWidth = 16
	BitWidth32 BitWidth = 32
	BitWidth64 BitWidth = 64
)

var intRange = map[BitWidth]Rb{
	BitWidth8:  {-128, 127},
	BitWidth16: {-32768, 32767},
	BitWidth32: {-2147483648, 2147483647},
	BitWidth64: {-9223372036854775808, 9223372036854775807},
}

var uintRange = map[BitWidth]Urb{
	BitWidth8:  {0, 255},
	BitWidth16: {0, 65535},
	BitWidth32: {0, 4294967295},
	BitWidth64: {0, 18446744073709551615},
}

// Fracdigit is a decimal64 type's fraction-digits (1..18).
type Fracdigit int

// decimalRange holds the representable [min,max] for each fraction-digits
// value, the boundary a decimal64(fraction-digits=N) can hold without
// overflowing an int64 mantissa.
var decimalRange = map[Fracdigit]Drb{
	1:  {-922337203685477580.8, 922337203685477580.7},
	2:  {-92233720368547758.08, 92233720368547758.07},
	3:  {-9223372036854775.808, 9223372036854775.807},
	4:  {-922337203685477.5808, 922337203685477.5807},
	5:  {-92233720368547.75808, 92233720368547.75807},
	6:  {-9223372036854.775808, 9223372036854.775807},
	7:  {-922337203685.4775808, 922337203685.4775807},
	8:  {-92233720368.54775808, 92233720368.54775807},
	9:  {-9223372036.854775808, 9223372036.854775807},
	10: {-922337203.6854775808, 922337203.6854775807},
	11: {-92233720.36854775808, 92233720.36854775807},
	12: {-9223372.036854775808, 9223372.036854775807},
	13: {-922337.2036854775808, 922337.2036854775807},
	14: {-92233.72036854775808, 92233.72036854775807},
	15: {-9223.372036854775808, 9223.372036854775807},
	16: {-922.3372036854775808, 922.3372036854775807},
	17: {-92.23372036854775808, 92.23372036854775807},
	18: {-9.223372036854775808, 9.223372036854775807},
}

// DefaultIntRange/DefaultUintRange/DefaultDecimalRange return the full
// representable range for a bit width / fraction-digits value, used by
// the type resolver when no explicit "range" restriction narrows it.
func DefaultIntRange(w BitWidth) Rb         { return intRange[w] }
func DefaultUintRange(w BitWidth) Urb       { return uintRange[w] }
func DefaultDecimalRange(f Fracdigit) Drb   { return decimalRange[f] }

// Rb is an inclusive range boundary over signed integers.
type Rb struct{ Start, End int64 }

func (r Rb) Contains(v int64) bool { return v >= r.Start && v <= r.End }
func (r Rb) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Urb is an inclusive range boundary over unsigned integers.
type Urb struct{ Start, End uint64 }

func (r Urb) Contains(v uint64) bool { return v >= r.Start && v <= r.End }
func (r Urb) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Drb is an inclusive range boundary over decimal64 values (represented
// as float64 here; canonicalisation re-quantizes to fraction-digits).
type Drb struct{ Start, End float64 }

func (r Drb) Contains(v float64) bool { return v >= r.Start && v <= r.End }
func (r Drb) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%g", r.Start)
	}
	return fmt.Sprintf("%g..%g", r.Start, r.End)
}

// Length is an inclusive length boundary, used for string/binary types.
type Length struct{ Min, Max uint64 }

func (l Length) Contains(n uint64) bool { return n >= l.Min && n <= l.Max }

// Pattern is a compiled YANG "pattern" restriction. YANG patterns are
// cumulative: a derived type's value must match every pattern in its
// ancestry.
type Pattern struct {
	Source  string
	Invert  bool // YANG 1.1 modifier "invert-match"
	Regexp  *regexp.Regexp
	Message string
	AppTag  string
}

func (p Pattern) Matches(s string) bool {
	m := p.Regexp.MatchString(s)
	if p.Invert {
		return !m
	}
	return m
}

// EnumValue is one named value of an enumeration type.
type EnumValue struct {
	Name  string
	Value int64
}

// BitPosition is one named position of a bits type.
type BitPosition struct {
	Name     string
	Position uint32
}

// TypeKind tags the TypeDescriptor sum type (spec.md §3).
type TypeKind int

const (
	TInt8 TypeKind = iota
	TInt16
	TInt32
	TInt64
	TUint8
	TUint16
	TUint32
	TUint64
	TDecimal64
	TString
	TBoolean
	TEnumeration
	TBits
	TBinary
	TLeafref
	TIdentityref
	TInstanceIdentifier
	TEmpty
	TUnion
	TUserDefined
)

// TypeDescriptor is the sum type spec.md §3 describes for a leaf/leaf-
// list's value space. Only the fields relevant to Kind are populated;
// Base, if non-nil, is the typedef this type directly derives from and
// is kept for diagnostics and status-gating, never consulted for
// constraint evaluation (constraints are already the fully-intersected
// closure computed by the resolver's type-closure pass).
type TypeDescriptor struct {
	Kind TypeKind
	Name string // the type's own name (builtin name, or typedef name)
	Base *TypeDescriptor

	// int*/uint*
	IntRanges  []Rb
	UintRanges []Urb
	Bits       BitWidth

	// decimal64
	FractionDigits Fracdigit
	DecimalRanges  []Drb

	// string/binary
	Lengths  []Length
	Patterns []Pattern

	// enumeration/bits
	Enums   []EnumValue
	BitPos  []BitPosition

	// leafref
	LeafrefPath     string      // the unresolved XPath "path" argument
	LeafrefExpr     CompiledExpr // LeafrefPath, compiled by resolver pass 8
	LeafrefTarget   *Leaf        // the schema-mode resolution target of LeafrefPath, also pass 8
	RequireInstance bool

	// identityref
	IdentityBases []*Identity

	// instance-identifier shares RequireInstance above

	// union
	Members []*TypeDescriptor

	// user-defined
	UserValidate func(lexical string) error
}

// IsNumeric reports whether Kind is one of the integral or decimal64
// number kinds.
func (t *TypeDescriptor) IsNumeric() bool {
	switch t.Kind {
	case TInt8, TInt16, TInt32, TInt64, TUint8, TUint16, TUint32, TUint64, TDecimal64:
		return true
	}
	return false
}
