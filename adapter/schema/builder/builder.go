// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Package builder is the reference schema-parser spec.md §6 names
// (DeclareModule/DeclareImport/DeclareTypedef/DeclareDataDef, …): a
// programmatic way to assemble a schema.RawModule skeleton one
// statement at a time, handed to resolve.Resolve exactly as a textual
// YANG parser's output would be. Grounded on schema/raw.go's
// documented consumption contract (the shape resolve.pass2DeclareModules
// and its sibling passes actually read off a RawModule/RawNode) and on
// the now-superseded parse package's declarative AST-building style,
// of which this builder is the direct programmatic counterpart: where
// that package built a RawNode tree by reducing yacc productions, this
// one builds the same tree by a sequence of explicit Declare* calls a
// caller (a test, or a non-text schema source such as a database)
// drives directly.
package builder

import "github.com/ysemantic/yangcore/schema"

// Builder accumulates one module's statements. Nested data-definition
// statements are declared by pushing/popping a cursor stack: DeclareDataDef
// attaches the new node as a child of whatever's on top of the stack
// (or directly to the module if the stack is empty) and pushes it so
// that subsequent DeclareDataDef calls nest under it, until a matching
// EndDataDef pops back out.
type Builder struct {
	mod   *schema.RawModule
	stack []*schema.RawNode
}

// NewBuilder starts a module declaration: DeclareModule's counterpart.
func NewBuilder(name, namespace, prefix string) *Builder {
	return &Builder{mod: &schema.RawModule{Name: name, Namespace: namespace, Prefix: prefix}}
}

// DeclareRevision records one "revision" statement's date argument.
func (b *Builder) DeclareRevision(date string) *Builder {
	b.mod.Revisions = append(b.mod.Revisions, date)
	return b
}

// DeclareImport records one "import" statement.
func (b *Builder) DeclareImport(module, prefix, revision string) *Builder {
	b.mod.Imports = append(b.mod.Imports, schema.RawImport{Module: module, Prefix: prefix, Revision: revision})
	return b
}

// DeclareInclude records one "include" statement.
func (b *Builder) DeclareInclude(submodule, revision string) *Builder {
	b.mod.Includes = append(b.mod.Includes, schema.RawInclude{Submodule: submodule, Revision: revision})
	return b
}

// DeclareTypedef records one module-level "typedef" statement.
func (b *Builder) DeclareTypedef(name string, t schema.RawType) *Builder {
	b.mod.Typedefs = append(b.mod.Typedefs, schema.RawTypedef{Name: name, Type: t})
	return b
}

// DeclareIdentity records one "identity" statement and its "base"
// references (possibly prefixed, resolved later by resolve pass 4).
func (b *Builder) DeclareIdentity(name string, bases ...string) *Builder {
	b.mod.Identities = append(b.mod.Identities, schema.RawIdentityDecl{Name: name, Bases: bases})
	return b
}

// DeclareFeature records one "feature" statement.
func (b *Builder) DeclareFeature(name, ifFeature string) *Builder {
	b.mod.Features = append(b.mod.Features, schema.RawFeatureDecl{Name: name, IfFeature: ifFeature})
	return b
}

// DeclareGrouping records a top-level "grouping" statement's template
// tree, built the same way a DeclareDataDef/EndDataDef pair would but
// filed under Groupings instead of Children.
func (b *Builder) DeclareGrouping(n *schema.RawNode) *Builder {
	n.Kind = schema.KindGrouping
	b.mod.Groupings = append(b.mod.Groupings, n)
	return b
}

// DeclareRpc/DeclareNotification record top-level "rpc"/"notification"
// statements.
func (b *Builder) DeclareRpc(n *schema.RawNode) *Builder {
	n.Kind = schema.KindRpc
	b.mod.Rpcs = append(b.mod.Rpcs, n)
	return b
}

func (b *Builder) DeclareNotification(n *schema.RawNode) *Builder {
	n.Kind = schema.KindNotification
	b.mod.Notifications = append(b.mod.Notifications, n)
	return b
}

// DeclareDeviation records a top-level "deviation" statement.
func (b *Builder) DeclareDeviation(d schema.RawDeviation) *Builder {
	b.mod.Deviations = append(b.mod.Deviations, d)
	return b
}

// DeclareDataDef attaches n as a child of the current nesting cursor
// (the module's top level if nothing is open) and descends into it:
// every DeclareDataDef call until the matching EndDataDef nests under
// n. Use EndDataDef immediately after a leaf/leaf-list/anydata node
// that never has children of its own, or let it stand open across a
// container/list/choice/case's body.
func (b *Builder) DeclareDataDef(n *schema.RawNode) *Builder {
	if len(b.stack) == 0 {
		b.mod.Children = append(b.mod.Children, n)
	} else {
		top := b.stack[len(b.stack)-1]
		top.Children = append(top.Children, n)
	}
	b.stack = append(b.stack, n)
	return b
}

// EndDataDef closes the data-definition statement most recently opened
// by DeclareDataDef.
func (b *Builder) EndDataDef() *Builder {
	if len(b.stack) > 0 {
		b.stack = b.stack[:len(b.stack)-1]
	}
	return b
}

// Module returns the assembled skeleton, ready for resolve.Resolve.
// Calling it with data-definition statements still open (unbalanced
// DeclareDataDef/EndDataDef calls) returns whatever was built so far;
// the caller is responsible for balancing its own calls.
func (b *Builder) Module() *schema.RawModule { return b.mod }

// Container/List/Leaf/LeafList/Choice/Case/AnyData/Uses/Augment build
// one *schema.RawNode of the matching kind, ready to pass to
// DeclareDataDef. They're free functions rather than Builder methods
// since they don't touch the module under construction — only
// DeclareDataDef/DeclareGrouping/DeclareRpc/DeclareNotification do.

func Container(name string, presence bool) *schema.RawNode {
	return &schema.RawNode{Kind: schema.KindContainer, Name: name,
		Container: &schema.RawContainerData{Presence: presence}}
}

func List(name string, keys []string, min, max uint64) *schema.RawNode {
	return &schema.RawNode{Kind: schema.KindList, Name: name,
		List: &schema.RawListData{Keyname: keys, Min: min, Max: max}}
}

func Leaf(name string, t schema.RawType) *schema.RawNode {
	return &schema.RawNode{Kind: schema.KindLeaf, Name: name,
		Leaf: &schema.RawLeafData{Type: t}}
}

func LeafWithDefault(name string, t schema.RawType, def string) *schema.RawNode {
	n := Leaf(name, t)
	n.Leaf.Default, n.Leaf.HasDefault = def, true
	return n
}

func LeafList(name string, t schema.RawType, min, max uint64) *schema.RawNode {
	return &schema.RawNode{Kind: schema.KindLeafList, Name: name,
		LeafList: &schema.RawLeafListData{Type: t, Min: min, Max: max}}
}

func Choice(name string, defaultCase string) *schema.RawNode {
	return &schema.RawNode{Kind: schema.KindChoice, Name: name,
		Choice: &schema.RawChoiceData{DefaultCase: defaultCase}}
}

func Case(name string) *schema.RawNode {
	return &schema.RawNode{Kind: schema.KindCase, Name: name, Case: &schema.RawCaseData{}}
}

func AnyData(name string, isXML bool) *schema.RawNode {
	return &schema.RawNode{Kind: schema.KindAnyData, Name: name,
		AnyData: &schema.RawAnyDataData{IsXML: isXML}}
}

func Uses(grouping string) *schema.RawNode {
	return &schema.RawNode{Kind: schema.KindUses, Name: grouping,
		Uses: &schema.RawUsesData{Grouping: grouping, Refine: map[string]schema.RawRefine{}}}
}

func Augment(targetPath, when string) *schema.RawNode {
	return &schema.RawNode{Kind: schema.KindAugment,
		Augment: &schema.RawAugmentData{TargetPath: targetPath, When: when}}
}

// WithWhen/WithMust/WithConfig/WithMandatory/WithIfFeature mutate a
// just-built RawNode's cross-cutting statements in place and return it,
// letting callers chain them onto a Container/List/... constructor
// without a combinatorial explosion of constructor variants.

func WithConfig(n *schema.RawNode, v bool) *schema.RawNode {
	n.ConfigSet, n.Config = true, v
	return n
}

func WithMandatory(n *schema.RawNode, v bool) *schema.RawNode {
	n.Mandatory = v
	return n
}

func WithIfFeature(n *schema.RawNode, expr string) *schema.RawNode {
	n.IfFeature = expr
	return n
}

func WithWhen(n *schema.RawNode, expr string) *schema.RawNode {
	switch n.Kind {
	case schema.KindContainer:
		n.Container.When = expr
	case schema.KindList:
		n.List.When = expr
	case schema.KindLeaf:
		n.Leaf.When = expr
	case schema.KindLeafList:
		n.LeafList.When = expr
	case schema.KindChoice:
		n.Choice.When = expr
	case schema.KindCase:
		n.Case.When = expr
	case schema.KindAnyData:
		n.AnyData.When = expr
	case schema.KindUses:
		n.Uses.When = expr
	}
	return n
}

func WithMust(n *schema.RawNode, m schema.RawMust) *schema.RawNode {
	switch n.Kind {
	case schema.KindContainer:
		n.Container.Must = append(n.Container.Must, m)
	case schema.KindList:
		n.List.Must = append(n.List.Must, m)
	case schema.KindLeaf:
		n.Leaf.Must = append(n.Leaf.Must, m)
	case schema.KindLeafList:
		n.LeafList.Must = append(n.LeafList.Must, m)
	case schema.KindAnyData:
		n.AnyData.Must = append(n.AnyData.Must, m)
	}
	return n
}

// StringType/IntType/... build the common RawType shapes by name so a
// caller rarely has to populate schema.RawType literally.

func StringType() schema.RawType { return schema.RawType{Name: "string"} }
func BooleanType() schema.RawType { return schema.RawType{Name: "boolean"} }
func EmptyType() schema.RawType   { return schema.RawType{Name: "empty"} }

func IntType(name string) schema.RawType { return schema.RawType{Name: name} }

func LeafrefType(path string, requireInstance bool) schema.RawType {
	return schema.RawType{Name: "leafref", Path: path,
		RequireInstance: requireInstance, RequireInstanceSet: true}
}

func IdentityrefType(bases ...string) schema.RawType {
	return schema.RawType{Name: "identityref", IdentityBases: bases}
}

func UnionType(members ...schema.RawType) schema.RawType {
	return schema.RawType{Name: "union", Union: members}
}
