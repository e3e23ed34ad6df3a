// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package schema

import "github.com/ysemantic/yangcore/internal/intern"

// Import is a resolved "import" statement: the imported Module, the
// local prefix it is imported under, and the revision-date the import
// statement named ("" when it named none).
type Import struct {
	Module   *Module
	Prefix   string
	Revision string
}

// Include is a resolved "include" statement pulling a submodule's
// statements into this module's namespace.
type Include struct {
	SubmoduleName string
	Revision      string
}

// Module is the root of a resolved schema tree (spec.md §3, "Schema
// nodes form a tree rooted at a module"). After resolve.Resolve
// succeeds, a Module and everything reachable from it is immutable
// (spec.md §8, "Schema immutability").
type Module struct {
	Name      intern.Symbol
	Namespace intern.Symbol
	Prefix    string
	Revision  string // newest revision, picked in pass 2

	Imports  []Import
	Includes []Include

	Typedefs   map[string]*Typedef
	Groupings  map[string]*Grouping
	Identities map[string]*Identity
	Features   map[string]*Feature

	// Children are the module's top-level data-definition statements
	// (after uses/augment/deviation have been applied).
	Children []Node

	Rpcs          map[string]*Rpc
	Notifications map[string]*Notification

	// EnabledFeatures records which of Features evaluate true for this
	// load (spec.md §3, "status/feature gating").
	EnabledFeatures map[*Feature]bool
}

// Config is always true for a module root; config/state split starts at
// its top-level children.
func (m *Module) Config() bool { return true }

// NewModule returns an empty, pre-resolution-complete module shell. The
// resolver fills in Children/Rpcs/Notifications as its passes run.
func NewModule(name, namespace intern.Symbol, prefix string) *Module {
	return &Module{
		Name:       name,
		Namespace:  namespace,
		Prefix:     prefix,
		Typedefs:   map[string]*Typedef{},
		Groupings:  map[string]*Grouping{},
		Identities: map[string]*Identity{},
		Features:   map[string]*Feature{},
		Rpcs:       map[string]*Rpc{},
		Notifications: map[string]*Notification{},
		EnabledFeatures: map[*Feature]bool{},
	}
}

// FindChild returns the direct child of m with the given local name, or
// nil. Used by the resolver to detect sibling-name collisions (spec.md
// §3, "Schema invariants").
func (m *Module) FindChild(name string) Node {
	for _, c := range m.Children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// AddChild appends a resolved top-level data-definition node.
func (m *Module) AddChild(n Node) {
	n.setParent(nil)
	m.Children = append(m.Children, n)
}
