// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2016 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Package data holds instance (data-tree) nodes: the other half of the
// dual-mode xutils.Node abstraction schema.XNode implements for the
// schema side. A data tree is built by an adapter/instance/{json,xml,
// yaml} decoder from a schema.Module plus a serialized document, each
// leaf/leaf-list value passing through StoreValue on the way in.
// Grounded on the teacher's data/datanode package (DataNode's
// name/children/values shape), generalized here to carry its schema
// binding and key/config/ephemeral state directly rather than leaving
// value interpretation to a separate encoding-specific layer.
package data

import (
	"github.com/ysemantic/yangcore/internal/intern"
	"github.com/ysemantic/yangcore/schema"
	"github.com/ysemantic/yangcore/xutils"
)

// Node is the capability set every instance node implements, layered
// over xutils.Node with the one extra accessor (Schema) the validate
// package needs to look up constraints for a concrete instance.
type Node interface {
	xutils.Node
	Schema() schema.Node
}

// Branch is a container or list-instance node: anything that holds
// children rather than a value.
type Branch struct {
	schemaNode schema.Node
	parent     Node
	children   []Node
	presence   bool // explicit presence marker for a presence container
	ephemeral  bool
}

// NewBranch creates a container or list-instance data node bound to
// its schema definition. presence is the instance's explicit presence
// marker (also set by SetPresence); IsNonPresenceContainer does not
// read it and answers from the schema's Presence flag instead. A list
// instance always passes true since "presence" isn't a meaningful
// concept for list entries.
func NewBranch(s schema.Node, parent Node, presence bool) *Branch {
	return &Branch{schemaNode: s, parent: parent, presence: presence}
}

// AddChild appends a child and fixes up its parent pointer.
func (b *Branch) AddChild(n Node) {
	setParent(n, b)
	b.children = append(b.children, n)
}

// RemoveChildAt deletes the i'th child in place, used by the validator's
// when-auto-delete (spec.md §4.4 phase 6).
func (b *Branch) RemoveChildAt(i int) {
	b.children = append(b.children[:i], b.children[i+1:]...)
}

// InstanceChildren returns the concrete child nodes in storage order,
// the data-mode counterpart to schema.Node's Children(); the validator
// walks and mutates this slice directly rather than through the
// read-only xutils.Node view.
func (b *Branch) InstanceChildren() []Node { return b.children }

// SetPresence marks/unmarks an explicit presence container instance.
func (b *Branch) SetPresence(v bool) { b.presence = v }

func (b *Branch) Schema() schema.Node { return b.schemaNode }
func (b *Branch) Parent() xutils.Node {
	if b.parent == nil {
		return nil
	}
	return b.parent
}
func (b *Branch) Root() xutils.Node {
	var cur xutils.Node = b
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return cur
}
func (b *Branch) Children(filter xutils.Filter, _ xutils.SortSpec) []xutils.Node {
	out := make([]xutils.Node, 0, len(b.children))
	for _, c := range b.children {
		if filter == xutils.ConfigOnly && !c.Schema().Config() {
			continue
		}
		if filter == xutils.StateOnly && c.Schema().Config() {
			continue
		}
		out = append(out, c)
	}
	return out
}
func (b *Branch) Name() string { return b.schemaNode.Name() }
func (b *Branch) Namespace() intern.Symbol {
	return b.schemaNode.Module().Namespace
}
func (b *Branch) Value() string    { return "" }
func (b *Branch) Values() []string { return nil }
func (b *Branch) IsLeaf() bool     { return false }
func (b *Branch) IsLeafList() bool { return false }
func (b *Branch) IsNonPresenceContainer() bool {
	c, ok := b.schemaNode.(*schema.Container)
	return ok && !c.Presence
}
func (b *Branch) Ephemeral() bool { return b.ephemeral }

func (b *Branch) ListKeyMatches(local, val string) bool {
	l, ok := b.schemaNode.(*schema.List)
	if !ok {
		return false
	}
	for _, kn := range l.Keyname {
		if kn != local {
			continue
		}
		for _, c := range b.children {
			if c.Name() == kn {
				return c.Value() == val
			}
		}
	}
	return false
}

func (b *Branch) ListKeys() []xutils.KeyValue {
	l, ok := b.schemaNode.(*schema.List)
	if !ok {
		return nil
	}
	var out []xutils.KeyValue
	for _, kn := range l.Keyname {
		for _, c := range b.children {
			if c.Name() == kn {
				out = append(out, xutils.KeyValue{Name: kn, Value: c.Value()})
				break
			}
		}
	}
	return out
}

// Leaf is a leaf-instance node holding one canonical lexical value.
type Leaf struct {
	schemaNode schema.Node
	parent     Node
	value      string
	ephemeral  bool
	fromDefault bool
}

func NewLeaf(s schema.Node, parent Node, value string) *Leaf {
	return &Leaf{schemaNode: s, parent: parent, value: value}
}

// FromDefault reports whether this leaf instance was synthesized by the
// validator's default-insertion phase rather than explicitly supplied
// (spec.md §4.4 phase 2, "mark them with the default bit").
func (l *Leaf) FromDefault() bool { return l.fromDefault }

// SetFromDefault sets the default-insertion marker bit.
func (l *Leaf) SetFromDefault(v bool) { l.fromDefault = v }

func (l *Leaf) Schema() schema.Node { return l.schemaNode }
func (l *Leaf) Parent() xutils.Node {
	if l.parent == nil {
		return nil
	}
	return l.parent
}
func (l *Leaf) Root() xutils.Node {
	var cur xutils.Node = l
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return cur
}
func (l *Leaf) Children(xutils.Filter, xutils.SortSpec) []xutils.Node { return nil }
func (l *Leaf) Name() string                                         { return l.schemaNode.Name() }
func (l *Leaf) Namespace() intern.Symbol                             { return l.schemaNode.Module().Namespace }
func (l *Leaf) Value() string                                        { return l.value }
func (l *Leaf) Values() []string                                     { return nil }
func (l *Leaf) IsLeaf() bool                                         { return true }
func (l *Leaf) IsLeafList() bool                                     { return false }
func (l *Leaf) IsNonPresenceContainer() bool                         { return false }
func (l *Leaf) Ephemeral() bool                                      { return l.ephemeral }
func (l *Leaf) ListKeyMatches(string, string) bool                   { return false }
func (l *Leaf) ListKeys() []xutils.KeyValue                          { return nil }

// LeafList is a leaf-list-instance node: one schema definition, many
// ordered values (spec.md §3 leaf-list payload).
type LeafList struct {
	schemaNode schema.Node
	parent     Node
	values     []string
}

func NewLeafList(s schema.Node, parent Node, values []string) *LeafList {
	return &LeafList{schemaNode: s, parent: parent, values: values}
}

// AppendValue adds one more value to the leaf-list instance, used by
// an instance adapter decoding a format (like XML) that presents a
// leaf-list's entries as repeated sibling elements rather than as one
// array it can decode in a single step.
func (l *LeafList) AppendValue(v string) { l.values = append(l.values, v) }

func (l *LeafList) Schema() schema.Node { return l.schemaNode }
func (l *LeafList) Parent() xutils.Node {
	if l.parent == nil {
		return nil
	}
	return l.parent
}
func (l *LeafList) Root() xutils.Node {
	var cur xutils.Node = l
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return cur
}
func (l *LeafList) Children(xutils.Filter, xutils.SortSpec) []xutils.Node { return nil }
func (l *LeafList) Name() string                                         { return l.schemaNode.Name() }
func (l *LeafList) Namespace() intern.Symbol                             { return l.schemaNode.Module().Namespace }
func (l *LeafList) Value() string {
	if len(l.values) == 0 {
		return ""
	}
	return l.values[0]
}
func (l *LeafList) Values() []string                      { return l.values }
func (l *LeafList) IsLeaf() bool                           { return false }
func (l *LeafList) IsLeafList() bool                       { return true }
func (l *LeafList) IsNonPresenceContainer() bool           { return false }
func (l *LeafList) Ephemeral() bool                        { return false }
func (l *LeafList) ListKeyMatches(string, string) bool     { return false }
func (l *LeafList) ListKeys() []xutils.KeyValue            { return nil }

func setParent(n Node, p Node) {
	switch t := n.(type) {
	case *Branch:
		t.parent = p
	case *Leaf:
		t.parent = p
	case *LeafList:
		t.parent = p
	}
}

var (
	_ Node = (*Branch)(nil)
	_ Node = (*Leaf)(nil)
	_ Node = (*LeafList)(nil)
)
