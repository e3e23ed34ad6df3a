// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// This file defines the pre-resolution schema skeleton: the shape the
// schema-parser interface (spec.md §6) produces via a sequence of
// "declare module / declare import / declare typedef / declare
// data-def-statement" calls, before resolve.Resolve links it into the
// immutable Module tree of node.go. Splitting parse (produces a
// resolvable skeleton) from resolve (finalizes it) is the two-phase
// redesign spec.md §9 ("Coroutine-like control flow") calls for; a
// RawNode is the typed placeholder variant unresolved references live
// in until the resolver eliminates them.
package schema

// RawModule is what a schema-parser (external collaborator, or the
// adapter/schema/builder reference implementation) hands to
// resolve.Resolve.
type RawModule struct {
	Name      string
	Namespace string
	Prefix    string
	Revisions []string // newest-first is NOT guaranteed; pass 2 sorts

	Imports  []RawImport
	Includes []RawInclude

	Typedefs   []RawTypedef
	Groupings  []*RawNode // Kind == KindGrouping
	Identities []RawIdentityDecl
	Features   []RawFeatureDecl

	Children      []*RawNode // top-level data-definition statements
	Rpcs          []*RawNode // Kind == KindRpc
	Notifications []*RawNode // Kind == KindNotification

	Deviations []RawDeviation
}

type RawImport struct {
	Module   string
	Prefix   string
	Revision string // "" means "latest known"
}

type RawInclude struct {
	Submodule string
	Revision  string
}

type RawTypedef struct {
	Name string
	Type RawType
}

type RawIdentityDecl struct {
	Name  string
	Bases []string
}

type RawFeatureDecl struct {
	Name      string
	IfFeature string // boolean if-feature expression, "" if unconditional
}

// RawNode is the generic pre-resolution data-definition node. Only the
// substructure matching Kind is populated.
type RawNode struct {
	Kind       Kind
	Name       string
	Status     Status
	ConfigSet  bool
	Config     bool
	Mandatory  bool
	IfFeature  string
	Extensions []RawExtension
	Children   []*RawNode

	Container    *RawContainerData
	List         *RawListData
	Leaf         *RawLeafData
	LeafList     *RawLeafListData
	Choice       *RawChoiceData
	Case         *RawCaseData
	AnyData      *RawAnyDataData
	Rpc          *RawRpcData
	Notification *RawNotificationData
	Uses         *RawUsesData
	Augment      *RawAugmentData
}

type RawExtension struct {
	Module string
	Name   string
	Arg    string
}

type RawMust struct {
	Expr         string
	ErrorMessage string
	ErrorAppTag  string
}

type RawContainerData struct {
	Presence bool
	When     string
	Must     []RawMust
}

type RawListData struct {
	Keyname   []string
	Unique    [][]string // each entry a space-separated-turned-slice relative path list
	Min       uint64
	Max       uint64 // ^uint64(0) == unbounded
	OrderedBy OrderedBy
	When      string
	Must      []RawMust
}

type RawLeafData struct {
	Type       RawType
	Default    string
	HasDefault bool
	When       string
	Must       []RawMust
}

type RawLeafListData struct {
	Type      RawType
	Defaults  []string
	Min       uint64
	Max       uint64
	OrderedBy OrderedBy
	When      string
	Must      []RawMust
}

type RawChoiceData struct {
	DefaultCase string
	When        string
}

type RawCaseData struct {
	When string
}

type RawAnyDataData struct {
	IsXML bool
	When  string
	Must  []RawMust
}

type RawRpcData struct {
	Input  []*RawNode
	Output []*RawNode
}

type RawNotificationData struct {
	Must []RawMust
}

type RawUsesData struct {
	Grouping string
	Refine   map[string]RawRefine // relative path joined by '/'
	Augments []RawAugmentData
	When     string
}

type RawRefine struct {
	Default     string
	HasDefault  bool
	Mandatory   *bool
	Min, Max    *uint64
	Description string
	Must        []RawMust
	When        string
	Config      *bool
}

type RawAugmentData struct {
	TargetPath string
	When       string
	Children   []*RawNode
}

// RawDeviation is a top-level "deviation" statement.
type RawDeviation struct {
	TargetPath string
	Type       DeviationType
	ConfigSet  bool
	Config     bool
	Default    string
	HasDefault bool
	Mandatory  *bool
	Min, Max   *uint64
	Must       []RawMust
}

type DeviationType int

const (
	DeviationNotSupported DeviationType = iota
	DeviationAdd
	DeviationDelete
	DeviationReplace
)

// RawType mirrors TypeDescriptor but with constraints still in their
// lexical/unresolved form (range/length argument strings not yet
// parsed and intersected with the base type, leafref path not yet
// bound, union members not yet closed over their own typedef chains).
type RawType struct {
	Name string // builtin name, or a (possibly prefixed) typedef reference

	RangeArg  string // raw "range" statement argument, e.g. "1..4 | 10..20"
	LengthArg string // raw "length" statement argument
	Patterns  []RawPattern

	FractionDigits int

	Enums []RawEnum
	Bits  []RawBit

	Path            string // leafref "path" argument
	RequireInstance bool
	RequireInstanceSet bool

	IdentityBases []string

	Union []RawType
}

type RawPattern struct {
	Pattern string
	Invert  bool
	Message string
	AppTag  string
}

type RawEnum struct {
	Name     string
	Value    int64
	HasValue bool
}

type RawBit struct {
	Name        string
	Position    uint32
	HasPosition bool
}
