// Copyright (c) 2017-2019 AT&T Intellectual Property
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package validate

import (
	"github.com/danos/mgmterror"
	"github.com/ysemantic/yangcore/data"
	"github.com/ysemantic/yangcore/schema"
	"github.com/ysemantic/yangcore/xpath"
)

// insertDefaults implements spec.md §4.4 phase 2: for every present
// container/list-instance, add default leaves/leaf-lists not already
// supplied, passed through data.StoreValue so the inserted value is
// canonical, and marked with the default bit (Leaf.FromDefault).
func insertDefaults(n *data.Branch) {
	sn := n.Schema()
	if sn == nil {
		for _, c := range n.InstanceChildren() {
			if b, ok := c.(*data.Branch); ok {
				insertDefaults(b)
			}
		}
		return
	}

	present := map[string]bool{}
	for _, c := range n.InstanceChildren() {
		present[c.Name()] = true
	}

	for _, csn := range sn.Children() {
		switch v := csn.(type) {
		case *schema.Leaf:
			if present[v.Name()] || !v.HasDefault {
				continue
			}
			canon, err := data.StoreValue(v.Type, v.Default)
			if err != nil {
				continue
			}
			leaf := data.NewLeaf(v, n, canon)
			leaf.SetFromDefault(true)
			n.AddChild(leaf)
		case *schema.LeafList:
			if present[v.Name()] || len(v.Defaults) == 0 {
				continue
			}
			vals := make([]string, 0, len(v.Defaults))
			for _, d := range v.Defaults {
				if canon, err := data.StoreValue(v.Type, d); err == nil {
					vals = append(vals, canon)
				}
			}
			n.AddChild(data.NewLeafList(v, n, vals))
		}
	}

	for _, c := range n.InstanceChildren() {
		if b, ok := c.(*data.Branch); ok {
			insertDefaults(b)
		}
	}
}

// checkKeyUniqueMinMax implements spec.md §4.4 phase 3.
func checkKeyUniqueMinMax(n *data.Branch, opts Options) error {
	sn := n.Schema()
	if sn == nil {
		return recurseChildren(n, opts, checkKeyUniqueMinMax)
	}

	// Group this branch's list-instance children by list schema name so
	// key/unique/min-max are checked per list, not per individual entry.
	byList := map[string][]*data.Branch{}
	for _, c := range n.InstanceChildren() {
		b, ok := c.(*data.Branch)
		if !ok {
			continue
		}
		if _, ok := b.Schema().(*schema.List); ok {
			byList[b.Name()] = append(byList[b.Name()], b)
		}
	}

	for name, entries := range byList {
		l := entries[0].Schema().(*schema.List)
		if skip(entries[0], opts) {
			continue
		}
		if uint64(len(entries)) < l.Min {
			return newStructuralError(pathOf(n), "too few elements in list "+name)
		}
		if l.Max != ^uint64(0) && uint64(len(entries)) > l.Max {
			return newStructuralError(pathOf(n), "too many elements in list "+name)
		}
		seen := map[string]bool{}
		for _, e := range entries {
			id := keyTupleOf(e)
			if seen[id] {
				return newStructuralError(pathOf(e), "duplicate key tuple in list "+name)
			}
			seen[id] = true
		}
		if err := checkUniques(n, entries, l.Unique); err != nil {
			return err
		}
	}

	return recurseChildren(n, opts, checkKeyUniqueMinMax)
}

func keyTupleOf(e *data.Branch) string {
	s := ""
	for _, kv := range e.ListKeys() {
		s += kv.Name + "=" + kv.Value + ";"
	}
	return s
}

// checkUniques implements the "unique" statement: a projection over
// each entry's named relative leaf paths must be distinct across
// entries, skipping entries where any projected leaf is absent (spec.md
// §3, "absent leaves do not participate").
func checkUniques(parent *data.Branch, entries []*data.Branch, uniques []schema.Unique) error {
	for _, u := range uniques {
		seen := map[string]bool{}
		for _, e := range entries {
			key, ok := projectUnique(e, u.Paths)
			if !ok {
				continue
			}
			if seen[key] {
				return newStructuralError(pathOf(e), "unique constraint violated")
			}
			seen[key] = true
		}
	}
	return nil
}

func projectUnique(e *data.Branch, paths [][]string) (string, bool) {
	key := ""
	for _, p := range paths {
		v, ok := resolveRelative(e, p)
		if !ok {
			return "", false
		}
		key += v + "\x00"
	}
	return key, true
}

func resolveRelative(n data.Node, path []string) (string, bool) {
	cur := n
	for _, seg := range path {
		b, ok := cur.(*data.Branch)
		if !ok {
			return "", false
		}
		var next data.Node
		for _, c := range b.InstanceChildren() {
			if c.Name() == seg {
				next = c
				break
			}
		}
		if next == nil {
			return "", false
		}
		cur = next
	}
	return cur.Value(), true
}

func recurseChildren(n *data.Branch, opts Options, f func(*data.Branch, Options) error) error {
	for _, c := range n.InstanceChildren() {
		if b, ok := c.(*data.Branch); ok {
			if err := f(b, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkMandatory implements spec.md §4.4 phase 4: mandatory leaves and
// min-elements>0 lists/leaf-lists must be present under every present
// ancestor, recursing through absent non-presence containers since
// their mandatory descendants are still required.
func checkMandatory(n *data.Branch, opts Options) error {
	sn := n.Schema()
	if sn != nil && skip(n, opts) {
		return nil
	}
	if sn != nil {
		present := map[string]bool{}
		for _, c := range n.InstanceChildren() {
			present[c.Name()] = true
		}
		for _, csn := range sn.Children() {
			if present[csn.Name()] {
				continue
			}
			if err := checkMissingMandatory(csn, pathOf(n), present); err != nil {
				return err
			}
		}
	}
	return recurseChildren(n, opts, checkMandatory)
}

func checkMissingMandatory(csn schema.Node, path []string, present map[string]bool) error {
	switch v := csn.(type) {
	case *schema.Leaf:
		if v.Mandatory() {
			return newStructuralError(path, "missing mandatory node "+v.Name())
		}
	case *schema.List:
		if v.Min > 0 {
			return newStructuralError(path, "missing mandatory node "+v.Name())
		}
	case *schema.LeafList:
		if v.Min > 0 {
			return newStructuralError(path, "missing mandatory node "+v.Name())
		}
	case *schema.Container:
		if !v.Presence {
			childPath := append(append([]string{}, path...), v.Name())
			for _, grandchild := range v.Children() {
				if err := checkMissingMandatory(grandchild, childPath, nil); err != nil {
					return err
				}
			}
		}
	case *schema.Choice:
		if v.Mandatory() && !choicePresent(v, present) {
			return newStructuralError(path, "missing mandatory node "+v.Name())
		}
	}
	return nil
}

// choicePresent reports whether any data-definition node belonging to
// one of c's cases is actually present, transparently recursing through
// nested choice/case wrappers: a choice and its cases are never
// themselves instantiated as data nodes, so a chosen case's children
// appear as direct children of the enclosing branch, under the same
// present set as any other sibling.
func choicePresent(c *schema.Choice, present map[string]bool) bool {
	for _, cs := range c.Children() {
		for _, n := range cs.Children() {
			if nested, ok := n.(*schema.Choice); ok {
				if choicePresent(nested, present) {
					return true
				}
				continue
			}
			if present[n.Name()] {
				return true
			}
		}
	}
	return false
}

// resolveReferences implements spec.md §4.4 phase 5.
func resolveReferences(n *data.Branch, opts Options) error {
	for _, c := range n.InstanceChildren() {
		var td *schema.TypeDescriptor
		switch v := c.Schema().(type) {
		case *schema.Leaf:
			td = v.Type
		case *schema.LeafList:
			td = v.Type
		}
		if td != nil && td.Kind == schema.TLeafref && td.LeafrefExpr != nil {
			if skip(c, opts) {
				continue
			}
			if err := checkLeafrefInstance(c, td); err != nil {
				return err
			}
		}
		if b, ok := c.(*data.Branch); ok {
			if err := resolveReferences(b, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

// valuesOf returns the single value of a leaf instance or every value
// of a leaf-list instance, the set a leafref's stored lexical form must
// match against the target path's resolved node-set.
func valuesOf(n data.Node) []string {
	if n.IsLeafList() {
		return n.Values()
	}
	return []string{n.Value()}
}

func checkLeafrefInstance(c data.Node, td *schema.TypeDescriptor) error {
	expr, ok := td.LeafrefExpr.(*xpath.Expr)
	if !ok {
		return nil
	}
	nodes, err := xpath.Atomize(expr, &xpath.Context{Node: c, Current: c})
	if err != nil {
		if td.RequireInstance {
			return newStructuralError(pathOf(c), "leafref path failed to evaluate: "+err.Error())
		}
		return nil
	}
	for _, v := range valuesOf(c) {
		found := false
		for _, tgt := range nodes {
			if tgt.Value() == v {
				found = true
				break
			}
		}
		if !found && td.RequireInstance {
			return newStructuralError(pathOf(c),
				"leafref target does not exist for value "+v)
		}
	}
	return nil
}

// runWhenPass implements spec.md §4.4 phase 6. It returns progressed =
// true if at least one subtree was deleted (when auto-delete) this
// round, which keeps the fixpoint loop in Validate going.
func runWhenPass(n *data.Branch, opts Options) (bool, error) {
	progressed := false
	// Iterate by index and re-scan after a deletion since deleting a
	// child shifts the slice; InstanceChildren() always reflects the
	// branch's current state.
	for i := 0; i < len(n.InstanceChildren()); {
		c := n.InstanceChildren()[i]
		when, _ := whenAndMustsOf(c.Schema())
		if when != nil && when.Cond != nil {
			expr, ok := when.Cond.(*xpath.Expr)
			if !ok {
				i++
				continue
			}
			val, err := xpath.Eval(expr, &xpath.Context{Node: c, Current: c})
			if err != nil {
				// Evaluation failed to produce a definite result
				// (unresolved-when); leave the node and move on, the
				// next fixpoint round may resolve it once a sibling
				// changes.
				i++
				continue
			}
			if !val.AsBoolean() {
				if opts.has(WhenAutoDelete) {
					n.RemoveChildAt(i)
					progressed = true
					continue
				}
				return progressed, newStructuralError(pathOf(c), "when condition is false")
			}
		}
		if b, ok := c.(*data.Branch); ok {
			childProgressed, err := runWhenPass(b, opts)
			if err != nil {
				return progressed, err
			}
			progressed = progressed || childProgressed
		}
		i++
	}
	return progressed, nil
}

// runMustPass implements spec.md §4.4 phase 7.
func runMustPass(n *data.Branch, opts Options) error {
	for _, c := range n.InstanceChildren() {
		if skip(c, opts) {
			continue
		}
		_, musts := whenAndMustsOf(c.Schema())
		for _, m := range musts {
			expr, ok := m.Cond.(*xpath.Expr)
			if !ok || expr == nil {
				continue
			}
			val, err := xpath.Eval(expr, &xpath.Context{Node: c, Current: c})
			if err != nil {
				return newStructuralError(pathOf(c), "must failed to evaluate: "+err.Error())
			}
			if !val.AsBoolean() {
				msg := m.ErrorMessage
				if msg == "" {
					msg = "must constraint violated: " + m.Source
				}
				e := mgmterror.NewOperationFailedApplicationError()
				e.Message = msg
				e.AppTag = m.ErrorAppTag
				return e
			}
		}
		if b, ok := c.(*data.Branch); ok {
			if err := runMustPass(b, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

// runExtensionHooks implements spec.md §4.4 phase 8.
func runExtensionHooks(n *data.Branch) error {
	for _, c := range n.InstanceChildren() {
		sn := c.Schema()
		if sn != nil {
			for _, ext := range sn.Extensions() {
				if ext.Validator == nil {
					continue
				}
				if err := ext.Validator(sn); err != nil {
					return err
				}
			}
		}
		if b, ok := c.(*data.Branch); ok {
			if err := runExtensionHooks(b); err != nil {
				return err
			}
		}
	}
	return nil
}
