// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"fmt"

	"github.com/ysemantic/yangcore/schema"
	"github.com/ysemantic/yangcore/xpath"
)

// BindExpressions runs resolver passes 8 and 9 over an already-resolved
// Result: it compiles every When/Must source string into a
// *xpath.Expr, and statically resolves every leafref's path to its
// target schema.Leaf by evaluating the compiled path expression in
// schema mode, rooted at the leaf's own position in its module's tree.
//
// This is a separate entry point from Resolve, rather than folded into
// its pass pipeline, so that Resolve's own passes never compile an
// expression: a caller that only needs the structural schema (no
// constraint evaluation) can call Resolve alone.
func BindExpressions(result *Result) error {
	for _, name := range result.Order {
		mod := result.Modules[name]
		if err := bindChildren(mod.Children, mod); err != nil {
			return fmt.Errorf("module %s: %w", name, err)
		}
		for _, rpc := range mod.Rpcs {
			if err := bindIO(rpc.Input, mod); err != nil {
				return err
			}
			if err := bindIO(rpc.Output, mod); err != nil {
				return err
			}
		}
		for _, not := range mod.Notifications {
			if err := bindMustList(not.Must); err != nil {
				return err
			}
			if err := bindChildren(not.Children(), mod); err != nil {
				return err
			}
		}
	}
	return nil
}

func bindIO(c *schema.Container, mod *schema.Module) error {
	if c == nil {
		return nil
	}
	return bindChildren(c.Children(), mod)
}

func bindChildren(children []schema.Node, mod *schema.Module) error {
	for _, n := range children {
		if err := bindNode(n, mod); err != nil {
			return err
		}
		if act, ok := n.(*schema.Action); ok {
			if err := bindIO(act.Input, mod); err != nil {
				return err
			}
			if err := bindIO(act.Output, mod); err != nil {
				return err
			}
			continue
		}
		if err := bindChildren(n.Children(), mod); err != nil {
			return err
		}
	}
	return nil
}

// bindNode compiles n's own When/Must statements and, if n is a leaf or
// leaf-list typed as a leafref, resolves its path statically.
func bindNode(n schema.Node, mod *schema.Module) error {
	when, musts := whenAndMustsOf(n)
	if when != nil && when.Cond == nil {
		expr, err := xpath.Compile(when.Source)
		if err != nil {
			return fmt.Errorf("%v: when %q: %w", n.Path(), when.Source, err)
		}
		when.Cond = expr
	}
	if err := bindMustList(musts); err != nil {
		return fmt.Errorf("%v: %w", n.Path(), err)
	}

	var td *schema.TypeDescriptor
	switch t := n.(type) {
	case *schema.Leaf:
		td = t.Type
	case *schema.LeafList:
		td = t.Type
	}
	if td != nil {
		if err := bindType(td, n, mod); err != nil {
			return fmt.Errorf("%v: %w", n.Path(), err)
		}
	}
	return nil
}

func bindMustList(musts []schema.Must) error {
	for i := range musts {
		if musts[i].Cond != nil {
			continue
		}
		expr, err := xpath.Compile(musts[i].Source)
		if err != nil {
			return fmt.Errorf("must %q: %w", musts[i].Source, err)
		}
		musts[i].Cond = expr
	}
	return nil
}

// bindType compiles td's leafref path (recursing into union members)
// and statically resolves it to a target schema.Leaf by evaluating the
// compiled path in schema mode, rooted at host's own schema position
// (relative leafref paths are resolved from there; absolute ones
// traverse from the module root regardless).
func bindType(td *schema.TypeDescriptor, host schema.Node, mod *schema.Module) error {
	if td.Kind == schema.TUnion {
		for _, m := range td.Members {
			if err := bindType(m, host, mod); err != nil {
				return err
			}
		}
		return nil
	}
	if td.Kind != schema.TLeafref || td.LeafrefPath == "" {
		return nil
	}
	expr, err := xpath.Compile(td.LeafrefPath)
	if err != nil {
		return fmt.Errorf("leafref path %q: %w", td.LeafrefPath, err)
	}
	td.LeafrefExpr = expr

	hostX := schemaXNodeFor(host, mod)
	v, err := xpath.Eval(expr, &xpath.Context{Node: hostX, Current: hostX})
	if err != nil {
		// A leafref path that doesn't statically resolve (e.g. it
		// depends on a predicate XPath can't evaluate in schema mode)
		// isn't a structural error: LeafrefTarget simply stays nil and
		// the validator falls back to purely dynamic resolution.
		return nil
	}
	if v.Kind != xpath.NodeSetValue {
		return nil
	}
	for _, cand := range v.Nodes {
		xn, ok := cand.(*schema.XNode)
		if !ok {
			continue
		}
		if leaf, ok := xn.Node().(*schema.Leaf); ok {
			td.LeafrefTarget = leaf
			break
		}
	}
	return nil
}

// schemaXNodeFor builds the schema.XNode chain from mod's root down to
// host, giving the XPath evaluator the parent links it needs to climb
// "../" steps during schema-mode leafref resolution.
func schemaXNodeFor(host schema.Node, mod *schema.Module) *schema.XNode {
	path := host.Path()
	cur := schema.NewRootXNode(mod)
	node := schema.Node(nil)
	children := mod.Children
	for _, seg := range path {
		node = nil
		for _, c := range children {
			if c.Name() == seg {
				node = c
				break
			}
		}
		if node == nil {
			break
		}
		cur = schema.NewXNode(node, cur)
		children = node.Children()
	}
	return cur
}

func whenAndMustsOf(n schema.Node) (*schema.When, []schema.Must) {
	switch t := n.(type) {
	case *schema.Container:
		return t.When, t.Must
	case *schema.List:
		return t.When, t.Must
	case *schema.Leaf:
		return t.When, t.Must
	case *schema.LeafList:
		return t.When, t.Must
	case *schema.Choice:
		return t.When, nil
	case *schema.Case:
		return t.When, nil
	case *schema.AnyData:
		return t.When, t.Must
	}
	return nil, nil
}
