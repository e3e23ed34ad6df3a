// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xpath

import (
	"fmt"
	"math"
	"strings"

	"github.com/ysemantic/yangcore/xutils"
)

// Context is the evaluation context an Expr is run against: spec.md
// §4.3's (context node, position, size), plus the current() anchor and
// the local module used to resolve unprefixed names and if-feature-
// style module lookups inside function calls such as derived-from.
//
// LocalModule is an opaque handle that predicate sub-contexts inherit;
// no function in this package reads it. derived-from and deref do
// their schema lookups through Resolve instead, so xpath does not
// import schema.
type Context struct {
	Node     xutils.Node
	Position int
	Size     int

	Current xutils.Node // the current() anchor; Eval/Atomize set it to Node only when it is nil

	LocalModule interface{}
	Resolve     ModuleResolver

	// touched, when non-nil, accumulates every node any step's
	// node-test selects during the walk, regardless of predicate
	// outcome. Atomize sets this to compute the static dependency set
	// (spec.md §6, "the dependency-set primitive").
	touched map[string]xutils.Node
}

// ModuleResolver supplies the handful of schema lookups the YANG
// function library needs (derived-from's identity lookup, deref's
// leafref-target lookup) without xpath importing package schema
// directly. A caller wires an adapter backed by *schema.Module when it
// wants those functions to work; a data-mode-only caller that never
// uses them may pass nil and simply not invoke those functions.
type ModuleResolver interface {
	// LookupIdentity returns an opaque identity handle for "prefix:name"
	// (or a bare name, resolved against the local module), or nil if
	// not found.
	LookupIdentity(local xutils.Node, ref string) interface{}
	// IsDerivedFromOrSelf reports whether the identity held by val (an
	// identityref leaf's node) is base itself or was derived,
	// transitively, from base.
	IsDerivedFromOrSelf(val xutils.Node, base interface{}) bool
	// IsDerivedFrom is IsDerivedFromOrSelf without the "is base
	// itself" case.
	IsDerivedFrom(val xutils.Node, base interface{}) bool
}

// EvalError wraps a runtime evaluation failure (an unresolvable
// function, a malformed step) distinctly from a compile-time
// SyntaxError.
type EvalError struct{ Message string }

func (e *EvalError) Error() string { return "xpath: " + e.Message }

// Eval runs the compiled expression e against ctx and returns its
// value. ctx.Current is set to ctx.Node if unset, matching the
// "current() defaults to the initial context node" rule.
func Eval(e *Expr, ctx *Context) (Value, error) {
	if ctx.Current == nil {
		ctx.Current = ctx.Node
	}
	return evalNode(e.root, ctx)
}

// Atomize runs e against ctx in node-gathering mode and returns every
// node any step's node-test selected, deduplicated -- the static
// dependency set a when/must expression's host node needs for
// config/state classification and evaluation-order scheduling (spec.md
// §6). It is intentionally broader than the "in-ctx=1 predicate
// members" rule a full simulation would compute: every node a step
// passes through, selected or later filtered out by a predicate, is
// still a node the expression's truth value depends on if the
// predicate itself references other nodes, so over-approximating here
// is safe for the scheduler's purposes.
func Atomize(e *Expr, ctx *Context) ([]xutils.Node, error) {
	if ctx.Current == nil {
		ctx.Current = ctx.Node
	}
	ctx.touched = make(map[string]xutils.Node)
	if _, err := evalNode(e.root, ctx); err != nil {
		return nil, err
	}
	out := make([]xutils.Node, 0, len(ctx.touched))
	for _, n := range ctx.touched {
		out = append(out, n)
	}
	return dedupeAndSort(out), nil
}

func evalNode(n node, ctx *Context) (Value, error) {
	switch t := n.(type) {
	case orNode:
		l, err := evalNode(t.left, ctx)
		if err != nil {
			return Value{}, err
		}
		if l.AsBoolean() {
			return boolVal(true), nil
		}
		r, err := evalNode(t.right, ctx)
		if err != nil {
			return Value{}, err
		}
		return boolVal(r.AsBoolean()), nil

	case andNode:
		l, err := evalNode(t.left, ctx)
		if err != nil {
			return Value{}, err
		}
		if !l.AsBoolean() {
			return boolVal(false), nil
		}
		r, err := evalNode(t.right, ctx)
		if err != nil {
			return Value{}, err
		}
		return boolVal(r.AsBoolean()), nil

	case compareNode:
		return evalCompare(t, ctx)

	case additiveNode:
		l, r, err := evalNumericPair(t.left, t.right, ctx)
		if err != nil {
			return Value{}, err
		}
		if t.op == "+" {
			return numberVal(l + r), nil
		}
		return numberVal(l - r), nil

	case multiplicativeNode:
		l, r, err := evalNumericPair(t.left, t.right, ctx)
		if err != nil {
			return Value{}, err
		}
		switch t.op {
		case "*":
			return numberVal(l * r), nil
		case "div":
			return numberVal(l / r), nil
		case "mod":
			return numberVal(math.Mod(l, r)), nil
		}
		return Value{}, &EvalError{Message: "unknown multiplicative operator " + t.op}

	case unaryMinusNode:
		v, err := evalNode(t.operand, ctx)
		if err != nil {
			return Value{}, err
		}
		return numberVal(-v.AsNumber()), nil

	case unionNode:
		l, err := evalNode(t.left, ctx)
		if err != nil {
			return Value{}, err
		}
		r, err := evalNode(t.right, ctx)
		if err != nil {
			return Value{}, err
		}
		if l.Kind != NodeSetValue || r.Kind != NodeSetValue {
			return Value{}, &EvalError{Message: "union operands must be node-sets"}
		}
		return nodeSetVal(dedupeAndSort(append(append([]xutils.Node{}, l.Nodes...), r.Nodes...))), nil

	case numberNode:
		return numberVal(t.value), nil

	case literalNode:
		return stringVal(t.value), nil

	case functionCallNode:
		return evalFunction(t, ctx)

	case filterNode:
		return evalFilter(t, ctx)

	case locationPathNode:
		return evalLocationPath(t, ctx)
	}
	return Value{}, &EvalError{Message: fmt.Sprintf("unhandled node type %T", n)}
}

func evalNumericPair(l, r node, ctx *Context) (float64, float64, error) {
	lv, err := evalNode(l, ctx)
	if err != nil {
		return 0, 0, err
	}
	rv, err := evalNode(r, ctx)
	if err != nil {
		return 0, 0, err
	}
	return lv.AsNumber(), rv.AsNumber(), nil
}

// evalCompare implements the XPath 1.0 equality/relational semantics,
// including the node-set-vs-other broadcast comparison rule: if either
// side is a node-set, the comparison holds if it holds for any member.
func evalCompare(t compareNode, ctx *Context) (Value, error) {
	l, err := evalNode(t.left, ctx)
	if err != nil {
		return Value{}, err
	}
	r, err := evalNode(t.right, ctx)
	if err != nil {
		return Value{}, err
	}

	if l.Kind == NodeSetValue && r.Kind == NodeSetValue {
		for _, ln := range l.Nodes {
			for _, rn := range r.Nodes {
				if compareStrings(t.op, stringValueOf(ln), stringValueOf(rn)) {
					return boolVal(true), nil
				}
			}
		}
		return boolVal(false), nil
	}
	if l.Kind == NodeSetValue || r.Kind == NodeSetValue {
		ns, other := l, r
		nsFirst := true
		if r.Kind == NodeSetValue {
			ns, other = r, l
			nsFirst = false
		}
		for _, n := range ns.Nodes {
			s := stringValueOf(n)
			var ok bool
			switch other.Kind {
			case NumberValue:
				ok = compareNumbers(t.op, parseXPathNumberLenient(s), other.Num)
			case BooleanValue:
				ok = compareBools(t.op, len(s) > 0, other.Boolean)
			default:
				ok = compareStrings(t.op, s, other.AsString())
			}
			if !nsFirst {
				ok = swapRelational(t.op, ok, s, other)
			}
			if ok {
				return boolVal(true), nil
			}
		}
		return boolVal(false), nil
	}

	if t.op == "=" || t.op == "!=" {
		if l.Kind == BooleanValue || r.Kind == BooleanValue {
			return boolVal(compareBools(t.op, l.AsBoolean(), r.AsBoolean())), nil
		}
		if l.Kind == NumberValue || r.Kind == NumberValue {
			return boolVal(compareNumbers(t.op, l.AsNumber(), r.AsNumber())), nil
		}
		return boolVal(compareStrings(t.op, l.AsString(), r.AsString())), nil
	}
	return boolVal(compareNumbers(t.op, l.AsNumber(), r.AsNumber())), nil
}

// swapRelational re-derives a relational result when the node-set
// operand was actually the right-hand side of the original expression,
// since the loop above always evaluates with the node-set first.
func swapRelational(op string, forward bool, nsStr string, other Value) bool {
	switch op {
	case "<":
		return compareNumbers(">", parseXPathNumberLenient(nsStr), other.AsNumber())
	case "<=":
		return compareNumbers(">=", parseXPathNumberLenient(nsStr), other.AsNumber())
	case ">":
		return compareNumbers("<", parseXPathNumberLenient(nsStr), other.AsNumber())
	case ">=":
		return compareNumbers("<=", parseXPathNumberLenient(nsStr), other.AsNumber())
	}
	return forward
}

func compareStrings(op, l, r string) bool {
	switch op {
	case "=":
		return l == r
	case "!=":
		return l != r
	}
	return compareNumbers(op, parseXPathNumberLenient(l), parseXPathNumberLenient(r))
}

func compareNumbers(op string, l, r float64) bool {
	switch op {
	case "=":
		return l == r
	case "!=":
		return l != r
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	}
	return false
}

func compareBools(op string, l, r bool) bool {
	if op == "!=" {
		return l != r
	}
	return l == r
}

func evalFilter(t filterNode, ctx *Context) (Value, error) {
	v, err := evalNode(t.primary, ctx)
	if err != nil {
		return Value{}, err
	}
	if len(t.predicates) == 0 {
		return v, nil
	}
	if v.Kind != NodeSetValue {
		return Value{}, &EvalError{Message: "predicate applied to non-node-set"}
	}
	nodes := v.Nodes
	for _, pred := range t.predicates {
		nodes = applyPredicate(nodes, pred, ctx)
	}
	return nodeSetVal(nodes), nil
}

// applyPredicate filters a candidate node-set by one predicate,
// honoring the numeric-means-position shorthand (spec.md §4.3,
// "PredicateExpr ... a Number N is shorthand for position()=N").
func applyPredicate(nodes []xutils.Node, pred node, ctx *Context) []xutils.Node {
	var out []xutils.Node
	size := len(nodes)
	for i, n := range nodes {
		sub := &Context{Node: n, Position: i + 1, Size: size, Current: ctx.Current, LocalModule: ctx.LocalModule, Resolve: ctx.Resolve, touched: ctx.touched}
		v, err := evalNode(pred, sub)
		if err != nil {
			continue
		}
		keep := false
		if v.Kind == NumberValue {
			keep = v.Num == float64(i+1)
		} else {
			keep = v.AsBoolean()
		}
		if keep {
			out = append(out, n)
		}
	}
	return out
}

func evalLocationPath(t locationPathNode, ctx *Context) (Value, error) {
	var cur []xutils.Node
	if t.relative != nil {
		v, err := evalNode(t.relative, ctx)
		if err != nil {
			return Value{}, err
		}
		if v.Kind != NodeSetValue {
			return Value{}, &EvalError{Message: "path base must be a node-set"}
		}
		cur = v.Nodes
	} else if t.absolute {
		cur = []xutils.Node{ctx.Node.Root()}
	} else {
		cur = []xutils.Node{ctx.Node}
	}

	for _, s := range t.steps {
		var next []xutils.Node
		for i, n := range cur {
			sel := selectAxis(n, s.axis)
			sel = filterNodeTest(sel, s.nodeTest, n)
			if ctx.touched != nil {
				for _, m := range sel {
					ctx.touched[xutils.Identity(m)] = m
				}
			}
			for _, pred := range s.predicates {
				sel = applyPredicate(sel, pred, &Context{Node: n, Position: i + 1, Size: len(cur), Current: ctx.Current, LocalModule: ctx.LocalModule, Resolve: ctx.Resolve, touched: ctx.touched})
			}
			next = append(next, sel...)
		}
		cur = dedupeAndSort(next)
	}
	return nodeSetVal(cur), nil
}

func selectAxis(n xutils.Node, axis string) []xutils.Node {
	switch axis {
	case "", "child":
		return n.Children(xutils.AllChildren, xutils.Sorted)
	case "self":
		return []xutils.Node{n}
	case "parent":
		if p := n.Parent(); p != nil {
			return []xutils.Node{p}
		}
		return nil
	case "descendant":
		var out []xutils.Node
		for _, c := range n.Children(xutils.AllChildren, xutils.Sorted) {
			out = append(out, c)
			out = append(out, selectAxis(c, "descendant")...)
		}
		return out
	case "descendant-or-self":
		return append([]xutils.Node{n}, selectAxis(n, "descendant")...)
	case "ancestor":
		var out []xutils.Node
		for p := n.Parent(); p != nil; p = p.Parent() {
			out = append(out, p)
		}
		return out
	case "ancestor-or-self":
		return append([]xutils.Node{n}, selectAxis(n, "ancestor")...)
	case "following-sibling":
		return siblings(n, true)
	case "preceding-sibling":
		return siblings(n, false)
	case "attribute":
		return nil // no YANG attribute axis member is ever produced
	}
	return nil
}

func siblings(n xutils.Node, following bool) []xutils.Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	kids := p.Children(xutils.AllChildren, xutils.Sorted)
	idx := -1
	for i, k := range kids {
		if xutils.Identity(k) == xutils.Identity(n) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	if following {
		return append([]xutils.Node{}, kids[idx+1:]...)
	}
	return append([]xutils.Node{}, kids[:idx]...)
}

func filterNodeTest(nodes []xutils.Node, t nodeTest, ctxNode xutils.Node) []xutils.Node {
	var out []xutils.Node
	for _, n := range nodes {
		switch t.kind {
		case "node", "text", "comment", "pi":
			out = append(out, n)
		case "wildcard":
			out = append(out, n)
		case "name":
			if matchesName(n, t.name, ctxNode) {
				out = append(out, n)
			}
		}
	}
	return out
}

// matchesName resolves an unprefixed name against the node's own
// namespace (YANG's "same module as the node the name appears in, not
// the local context module" default namespace rule is handled by the
// caller stamping a qualified name into nodeTest.name at compile time
// in a fuller implementation; here a bare name matches any node of that
// local name, which is the common case for single-module expressions
// and same-module augments/groupings).
func matchesName(n xutils.Node, name string, ctxNode xutils.Node) bool {
	if idx := strings.IndexByte(name, ':'); idx >= 0 {
		return n.Name() == name[idx+1:]
	}
	return n.Name() == name
}
