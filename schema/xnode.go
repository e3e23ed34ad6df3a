// Copyright (c) 2018-2019,2021, AT&T Intellectual Property.
// All rights reserved.
//
// Copyright (c) 2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// This file adapts the schema tree to the xutils.Node interface so the
// XPath evaluator can walk a schema in "schema mode" (spec.md §4.3,
// atomize) the same way it walks a data tree. Grounded on the teacher's
// schema/node_xpath.go XNode wrapper.
package schema

import (
	"github.com/ysemantic/yangcore/internal/intern"
	"github.com/ysemantic/yangcore/xutils"
)

// XNode wraps a schema Node (or, at the root, just a Module) so it can
// be handed to the XPath evaluator in schema mode.
type XNode struct {
	n      Node
	m      *Module
	parent *XNode
}

// NewRootXNode returns the schema-mode root for m: its XChildren are
// m's top-level data-definition statements.
func NewRootXNode(m *Module) *XNode { return &XNode{m: m} }

// NewXNode wraps n, whose parent in the XPath tree is parent (the
// module's root XNode for its top-level children).
func NewXNode(n Node, parent *XNode) *XNode {
	return &XNode{n: n, m: n.Module(), parent: parent}
}

var _ xutils.Node = (*XNode)(nil)

func (x *XNode) Parent() xutils.Node {
	if x.parent == nil {
		return nil
	}
	return x.parent
}

func (x *XNode) Root() xutils.Node {
	cur := x
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

func (x *XNode) children() []Node {
	if x.n == nil {
		return x.m.Children
	}
	return x.n.Children()
}

func (x *XNode) Children(filter xutils.Filter, _ xutils.SortSpec) []xutils.Node {
	kids := x.children()
	out := make([]xutils.Node, 0, len(kids))
	for _, c := range kids {
		if filter == xutils.ConfigOnly && !c.Config() {
			continue
		}
		if filter == xutils.StateOnly && c.Config() {
			continue
		}
		out = append(out, NewXNode(c, x))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (x *XNode) Name() string {
	if x.n == nil {
		return x.m.Name.String()
	}
	return x.n.Name()
}

func (x *XNode) Namespace() intern.Symbol {
	if x.m == nil {
		return intern.Symbol{}
	}
	return x.m.Namespace
}

func (x *XNode) Value() string  { return "" }
func (x *XNode) Values() []string { return nil }

func (x *XNode) IsLeaf() bool {
	if x.n == nil {
		return false
	}
	return x.n.Kind() == KindLeaf
}

func (x *XNode) IsLeafList() bool {
	if x.n == nil {
		return false
	}
	return x.n.Kind() == KindLeafList
}

func (x *XNode) IsNonPresenceContainer() bool {
	if c, ok := x.n.(*Container); ok {
		return !c.Presence
	}
	return false
}

// Schema-mode nodes always refer to real definitions, never to the
// ephemeral ancestors a must/when evaluation synthesizes for a
// non-presence container in data mode.
func (x *XNode) Ephemeral() bool { return false }

func (x *XNode) ListKeyMatches(string, string) bool { return false }
func (x *XNode) ListKeys() []xutils.KeyValue         { return nil }

// Node returns the underlying schema.Node (nil at the module root).
func (x *XNode) Node() Node { return x.n }

// Module returns the owning module.
func (x *XNode) Module() *Module { return x.m }
