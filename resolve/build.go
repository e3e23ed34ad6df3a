// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"fmt"

	"github.com/ysemantic/yangcore/internal/intern"
	"github.com/ysemantic/yangcore/schema"
)

// pendingAugment records a deferred "augment" statement (top-level, or
// nested inside a "uses") until pass6 can order and apply it by target
// depth (spec.md §4.1 pass 6).
type pendingAugment struct {
	module     *schema.Module
	targetPath []string
	raw        schema.RawAugmentData
}

// pass5ExpandUsesAndAugments builds each module's top-level Children,
// Rpcs and Notifications from its RawModule, inlining every "uses"
// (deep-copying and refining the referenced grouping's template, per
// spec.md §4.1 pass 5) and deferring every "augment" it encounters to
// r.pendingAugments for pass 6.
func (r *resolver) pass5ExpandUsesAndAugments() error {
	for _, name := range r.order {
		raw := r.in.Modules[name]
		mod := r.modules[name]

		for _, rawChild := range raw.Children {
			nodes, err := r.buildNode(name, mod, rawChild, nil)
			if err != nil {
				return err
			}
			for _, n := range nodes {
				if mod.FindChild(n.Name()) != nil {
					return schema.NewDuplicateIdentifierError(n.Path(), n.Name())
				}
				mod.AddChild(n)
			}
		}
		for _, rawRpc := range raw.Rpcs {
			rpcNode, err := r.buildRpc(name, mod, rawRpc)
			if err != nil {
				return err
			}
			mod.Rpcs[rpcNode.Name()] = rpcNode
		}
		for _, rawNotif := range raw.Notifications {
			n, err := r.buildNotification(name, mod, rawNotif)
			if err != nil {
				return err
			}
			mod.Notifications[n.Name()] = n
		}
		for _, dev := range raw.Deviations {
			path, err := r.splitPath(name, dev.TargetPath)
			if err != nil {
				return err
			}
			r.pendingDeviation = append(r.pendingDeviation, pendingDeviation{
				module:     mod,
				targetPath: path,
				raw:        dev,
			})
		}
	}
	return nil
}

// buildNode converts one RawNode (and, for a "uses", the grouping
// template it names) into zero or more schema.Node values. An
// "augment" yields none (it is queued for pass 6 together with its
// child statements); any other non-uses node yields exactly one; a
// "uses" yields the grouping's expanded child list directly into the
// caller (uses never survives into the resolved tree, spec.md §9
// "Deep inheritance").
func (r *resolver) buildNode(moduleName string, module *schema.Module, raw *schema.RawNode, container schema.Node) ([]schema.Node, error) {
	switch raw.Kind {
	case schema.KindUses:
		return r.expandUses(moduleName, module, raw)
	case schema.KindAugment:
		path, err := r.splitPath(moduleName, raw.Augment.TargetPath)
		if err != nil {
			return nil, err
		}
		aug := *raw.Augment
		aug.Children = append(append([]*schema.RawNode{}, aug.Children...), raw.Children...)
		r.pendingAugments = append(r.pendingAugments, pendingAugment{
			module:     module,
			targetPath: path,
			raw:        aug,
		})
		return nil, nil
	}

	n, err := r.buildPlainNode(moduleName, module, raw)
	if err != nil {
		return nil, err
	}

	var children []schema.Node
	for _, rc := range raw.Children {
		kids, err := r.buildNode(moduleName, module, rc, n)
		if err != nil {
			return nil, err
		}
		children = append(children, kids...)
	}
	addChildren(n, children)

	return []schema.Node{n}, nil
}

// buildPlainNode builds the single concrete schema.Node for every Kind
// except Uses/Augment (handled by the caller).
func (r *resolver) buildPlainNode(moduleName string, module *schema.Module, raw *schema.RawNode) (schema.Node, error) {
	name := r.interner.Intern(raw.Name)

	var n schema.Node
	switch raw.Kind {
	case schema.KindContainer:
		c := schema.NewContainer(name, module)
		c.Presence = raw.Container.Presence
		c.Must = buildMusts(raw.Container.Must)
		c.When = whenOf(raw.Container.When)
		n = c
	case schema.KindList:
		l := schema.NewList(name, module)
		l.Keyname = raw.List.Keyname
		l.Min, l.Max = raw.List.Min, raw.List.Max
		l.OrderedBy = raw.List.OrderedBy
		l.Must = buildMusts(raw.List.Must)
		l.When = whenOf(raw.List.When)
		for _, u := range raw.List.Unique {
			l.Unique = append(l.Unique, schema.Unique{Paths: [][]string{u}})
		}
		n = l
	case schema.KindLeaf:
		leaf := schema.NewLeaf(name, module)
		td, err := r.resolveType(moduleName, raw.Leaf.Type)
		if err != nil {
			return nil, fmt.Errorf("leaf %s: %w", raw.Name, err)
		}
		leaf.Type = td
		leaf.Default = raw.Leaf.Default
		leaf.HasDefault = raw.Leaf.HasDefault
		leaf.Must = buildMusts(raw.Leaf.Must)
		leaf.When = whenOf(raw.Leaf.When)
		n = leaf
	case schema.KindLeafList:
		ll := schema.NewLeafList(name, module)
		td, err := r.resolveType(moduleName, raw.LeafList.Type)
		if err != nil {
			return nil, fmt.Errorf("leaf-list %s: %w", raw.Name, err)
		}
		ll.Type = td
		ll.Defaults = raw.LeafList.Defaults
		ll.Min, ll.Max = raw.LeafList.Min, raw.LeafList.Max
		ll.OrderedBy = raw.LeafList.OrderedBy
		ll.Must = buildMusts(raw.LeafList.Must)
		ll.When = whenOf(raw.LeafList.When)
		n = ll
	case schema.KindChoice:
		ch := schema.NewChoice(name, module)
		if raw.Choice != nil {
			ch.When = whenOf(raw.Choice.When)
		}
		n = ch
	case schema.KindCase:
		c := schema.NewCase(name, module)
		if raw.Case != nil {
			c.When = whenOf(raw.Case.When)
		}
		n = c
	case schema.KindAnyData, schema.KindAnyXML:
		a := schema.NewAnyData(name, module, raw.Kind == schema.KindAnyXML)
		if raw.AnyData != nil {
			a.Must = buildMusts(raw.AnyData.Must)
			a.When = whenOf(raw.AnyData.When)
		}
		n = a
	case schema.KindNotification:
		not := schema.NewNotification(name, module)
		if raw.Notification != nil {
			not.Must = buildMusts(raw.Notification.Must)
		}
		n = not
	case schema.KindAction:
		act := schema.NewAction(name, module)
		if raw.Rpc != nil {
			input, err := r.buildIOContainer(moduleName, module, "input", raw.Rpc.Input)
			if err != nil {
				return nil, err
			}
			act.Input = input
			output, err := r.buildIOContainer(moduleName, module, "output", raw.Rpc.Output)
			if err != nil {
				return nil, err
			}
			act.Output = output
		}
		n = act
	default:
		return nil, fmt.Errorf("unexpected top-level raw node kind %v", raw.Kind)
	}

	r.applyCommonExt(n, raw)
	if err := r.applyFeatureGate(moduleName, n, raw.IfFeature); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *resolver) buildRpc(moduleName string, module *schema.Module, raw *schema.RawNode) (*schema.Rpc, error) {
	name := r.interner.Intern(raw.Name)
	rpc := schema.NewRpc(name, module)
	r.applyCommonExt(rpc, raw)
	if raw.Rpc != nil {
		input, err := r.buildIOContainer(moduleName, module, "input", raw.Rpc.Input)
		if err != nil {
			return nil, err
		}
		rpc.Input = input
		output, err := r.buildIOContainer(moduleName, module, "output", raw.Rpc.Output)
		if err != nil {
			return nil, err
		}
		rpc.Output = output
	}
	return rpc, nil
}

func (r *resolver) buildNotification(moduleName string, module *schema.Module, raw *schema.RawNode) (*schema.Notification, error) {
	name := r.interner.Intern(raw.Name)
	not := schema.NewNotification(name, module)
	if raw.Notification != nil {
		not.Must = buildMusts(raw.Notification.Must)
	}
	r.applyCommonExt(not, raw)
	var children []schema.Node
	for _, rc := range raw.Children {
		kids, err := r.buildNode(moduleName, module, rc, not)
		if err != nil {
			return nil, err
		}
		children = append(children, kids...)
	}
	addChildren(not, children)
	return not, nil
}

func (r *resolver) buildIOContainer(moduleName string, module *schema.Module, name string, rawChildren []*schema.RawNode) (*schema.Container, error) {
	c := schema.NewContainer(r.interner.Intern(name), module)
	var children []schema.Node
	for _, rc := range rawChildren {
		kids, err := r.buildNode(moduleName, module, rc, c)
		if err != nil {
			return nil, err
		}
		children = append(children, kids...)
	}
	addChildren(c, children)
	return c, nil
}

// expandUses deep-copies the grouping's RawNode template (a fresh
// build call per use site, so two "uses" of the same grouping never
// alias nodes) and applies any "refine" overrides, keyed by the
// relative path from the use site (spec.md §4.1 pass 5). The uses
// statement itself never appears in the output.
func (r *resolver) expandUses(moduleName string, module *schema.Module, raw *schema.RawNode) ([]schema.Node, error) {
	gMod, gName, err := r.splitPrefixed(moduleName, raw.Uses.Grouping)
	if err != nil {
		return nil, err
	}
	groupingRaw, ok := r.groupings[gMod][gName]
	if !ok {
		return nil, schema.NewGroupingNotFoundError([]string{moduleName}, raw.Uses.Grouping)
	}

	var out []schema.Node
	for _, rc := range groupingRaw.Children {
		kids, err := r.buildNode(gMod, module, rc, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, kids...)
	}

	for relPath, refine := range raw.Uses.Refine {
		target := findByRelativePath(out, relPath)
		if target == nil {
			continue
		}
		applyRefine(target, refine)
	}

	for _, nestedAug := range raw.Uses.Augments {
		path, err := r.splitPath(moduleName, nestedAug.TargetPath)
		if err != nil {
			return nil, err
		}
		r.pendingAugments = append(r.pendingAugments, pendingAugment{
			module:     module,
			targetPath: path,
			raw:        nestedAug,
		})
	}

	return out, nil
}

func findByRelativePath(roots []schema.Node, relPath string) schema.Node {
	segs := splitRelPath(relPath)
	var cur schema.Node
	children := roots
	for i, seg := range segs {
		var next schema.Node
		for _, c := range children {
			if c.Name() == seg {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
		if i < len(segs)-1 {
			children = cur.Children()
		}
	}
	return cur
}

func splitRelPath(p string) []string {
	var segs []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			if i > start {
				segs = append(segs, stripPrefix(p[start:i]))
			}
			start = i + 1
		}
	}
	if start < len(p) {
		segs = append(segs, stripPrefix(p[start:]))
	}
	return segs
}

func stripPrefix(seg string) string {
	for i := 0; i < len(seg); i++ {
		if seg[i] == ':' {
			return seg[i+1:]
		}
	}
	return seg
}

func applyRefine(n schema.Node, rf schema.RawRefine) {
	type configurable interface{ SetConfig(bool) }
	type mandatable interface{ SetMandatory(bool) }

	if rf.Config != nil {
		if c, ok := n.(configurable); ok {
			c.SetConfig(*rf.Config)
		}
	}
	if rf.Mandatory != nil {
		if m, ok := n.(mandatable); ok {
			m.SetMandatory(*rf.Mandatory)
		}
	}
	switch t := n.(type) {
	case *schema.Leaf:
		if rf.HasDefault {
			t.Default, t.HasDefault = rf.Default, true
		}
		if len(rf.Must) > 0 {
			t.Must = append(t.Must, buildMusts(rf.Must)...)
		}
	case *schema.List:
		if rf.Min != nil {
			t.Min = *rf.Min
		}
		if rf.Max != nil {
			t.Max = *rf.Max
		}
	case *schema.LeafList:
		if rf.Min != nil {
			t.Min = *rf.Min
		}
		if rf.Max != nil {
			t.Max = *rf.Max
		}
	}
}

// whenOf wraps a raw "when" source string into an (uncompiled) When,
// or returns nil if the statement wasn't present. BindExpressions
// (bind.go) compiles Source into Cond with xpath.Compile; Resolve's
// own passes never compile it.
func whenOf(src string) *schema.When {
	if src == "" {
		return nil
	}
	return &schema.When{Source: src}
}

func buildMusts(raws []schema.RawMust) []schema.Must {
	var out []schema.Must
	for _, m := range raws {
		out = append(out, schema.Must{
			Source:       m.Expr,
			ErrorMessage: m.ErrorMessage,
			ErrorAppTag:  m.ErrorAppTag,
		})
	}
	return out
}

// applyCommonExt copies the kind-independent attributes common to every
// RawNode (status, config, mandatory, extensions) onto the built node.
func (r *resolver) applyCommonExt(n schema.Node, raw *schema.RawNode) {
	type setter interface {
		SetConfig(bool)
		SetMandatory(bool)
		SetStatus(schema.Status)
		AddExtension(schema.ExtensionInstance)
	}
	s, ok := n.(setter)
	if !ok {
		return
	}
	if raw.ConfigSet {
		s.SetConfig(raw.Config)
	}
	s.SetMandatory(raw.Mandatory)
	s.SetStatus(raw.Status)
	for _, e := range raw.Extensions {
		s.AddExtension(schema.ExtensionInstance{
			QName: intern.QName{Module: r.interner.Intern(e.Module), Local: r.interner.Intern(e.Name)},
			Arg:   e.Arg,
		})
	}
}

// addChildren attaches children to n's capability-set AddChild if the
// concrete kind supports having children (leaves/leaf-lists/anydata
// never do).
func addChildren(n schema.Node, children []schema.Node) {
	type parent interface{ AddChild(schema.Node) }
	if p, ok := n.(parent); ok {
		for _, c := range children {
			p.AddChild(c)
		}
	}
}

func (r *resolver) applyFeatureGate(moduleName string, n schema.Node, ifFeature string) error {
	if ifFeature == "" {
		return nil
	}
	type gatable interface{ SetFeatureGate(*schema.FeatureExpr) }
	g, ok := n.(gatable)
	if !ok {
		return nil
	}
	expr, err := r.parseFeatureExpr(moduleName, ifFeature)
	if err != nil {
		return err
	}
	g.SetFeatureGate(expr)
	return nil
}

// splitPath splits an absolute "/prefix:a/prefix:b" target path
// (augment/deviation) into local-name segments, discarding each
// segment's prefix; prefixes are not checked against the import table.
func (r *resolver) splitPath(moduleName, path string) ([]string, error) {
	segs := splitRelPath(path)
	return segs, nil
}
