// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xpath

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ysemantic/yangcore/xutils"
)

// evalFunction dispatches a function call. checkArity has already
// verified the argument count at compile time, so a call reaching here
// with the wrong arity indicates a bug in checkArity rather than
// something to report gracefully.
func evalFunction(t functionCallNode, ctx *Context) (Value, error) {
	switch t.name {
	case "last":
		return numberVal(float64(ctx.Size)), nil
	case "position":
		return numberVal(float64(ctx.Position)), nil
	case "count":
		v, err := evalNode(t.args[0], ctx)
		if err != nil {
			return Value{}, err
		}
		if v.Kind != NodeSetValue {
			return Value{}, &EvalError{Message: "count() requires a node-set"}
		}
		return numberVal(float64(len(v.Nodes))), nil
	case "id":
		return nodeSetVal(nil), nil // no ID-typed nodes exist in a YANG tree

	case "local-name":
		n, err := contextOrArgNode(t.args, ctx)
		if err != nil {
			return Value{}, err
		}
		if n == nil {
			return stringVal(""), nil
		}
		return stringVal(n.Name()), nil

	case "namespace-uri":
		n, err := contextOrArgNode(t.args, ctx)
		if err != nil {
			return Value{}, err
		}
		if n == nil {
			return stringVal(""), nil
		}
		return stringVal(n.Namespace().String()), nil

	case "name":
		n, err := contextOrArgNode(t.args, ctx)
		if err != nil {
			return Value{}, err
		}
		if n == nil {
			return stringVal(""), nil
		}
		return stringVal(n.Name()), nil

	case "string":
		if len(t.args) == 0 {
			return stringVal(stringValueOf(ctx.Node)), nil
		}
		v, err := evalNode(t.args[0], ctx)
		if err != nil {
			return Value{}, err
		}
		return stringVal(v.AsString()), nil

	case "concat":
		var b strings.Builder
		for _, a := range t.args {
			v, err := evalNode(a, ctx)
			if err != nil {
				return Value{}, err
			}
			b.WriteString(v.AsString())
		}
		return stringVal(b.String()), nil

	case "starts-with":
		s, sub, err := evalStringPair(t.args, ctx)
		if err != nil {
			return Value{}, err
		}
		return boolVal(strings.HasPrefix(s, sub)), nil

	case "contains":
		s, sub, err := evalStringPair(t.args, ctx)
		if err != nil {
			return Value{}, err
		}
		return boolVal(strings.Contains(s, sub)), nil

	case "substring-before":
		s, sub, err := evalStringPair(t.args, ctx)
		if err != nil {
			return Value{}, err
		}
		if i := strings.Index(s, sub); i >= 0 {
			return stringVal(s[:i]), nil
		}
		return stringVal(""), nil

	case "substring-after":
		s, sub, err := evalStringPair(t.args, ctx)
		if err != nil {
			return Value{}, err
		}
		if i := strings.Index(s, sub); i >= 0 {
			return stringVal(s[i+len(sub):]), nil
		}
		return stringVal(""), nil

	case "substring":
		return evalSubstring(t.args, ctx)

	case "string-length":
		if len(t.args) == 0 {
			return numberVal(float64(len([]rune(stringValueOf(ctx.Node))))), nil
		}
		v, err := evalNode(t.args[0], ctx)
		if err != nil {
			return Value{}, err
		}
		return numberVal(float64(len([]rune(v.AsString())))), nil

	case "normalize-space":
		var s string
		if len(t.args) == 0 {
			s = stringValueOf(ctx.Node)
		} else {
			v, err := evalNode(t.args[0], ctx)
			if err != nil {
				return Value{}, err
			}
			s = v.AsString()
		}
		return stringVal(strings.Join(strings.Fields(s), " ")), nil

	case "translate":
		return evalTranslate(t.args, ctx)

	case "boolean":
		v, err := evalNode(t.args[0], ctx)
		if err != nil {
			return Value{}, err
		}
		return boolVal(v.AsBoolean()), nil

	case "not":
		v, err := evalNode(t.args[0], ctx)
		if err != nil {
			return Value{}, err
		}
		return boolVal(!v.AsBoolean()), nil

	case "true":
		return boolVal(true), nil
	case "false":
		return boolVal(false), nil
	case "lang":
		return boolVal(false), nil // no xml:lang concept in a YANG tree

	case "number":
		if len(t.args) == 0 {
			return numberVal(parseXPathNumberLenient(stringValueOf(ctx.Node))), nil
		}
		v, err := evalNode(t.args[0], ctx)
		if err != nil {
			return Value{}, err
		}
		return numberVal(v.AsNumber()), nil

	case "sum":
		v, err := evalNode(t.args[0], ctx)
		if err != nil {
			return Value{}, err
		}
		if v.Kind != NodeSetValue {
			return Value{}, &EvalError{Message: "sum() requires a node-set"}
		}
		total := 0.0
		for _, n := range v.Nodes {
			total += parseXPathNumberLenient(stringValueOf(n))
		}
		return numberVal(total), nil

	case "floor":
		v, err := evalNode(t.args[0], ctx)
		if err != nil {
			return Value{}, err
		}
		return numberVal(math.Floor(v.AsNumber())), nil

	case "ceiling":
		v, err := evalNode(t.args[0], ctx)
		if err != nil {
			return Value{}, err
		}
		return numberVal(math.Ceil(v.AsNumber())), nil

	case "round":
		v, err := evalNode(t.args[0], ctx)
		if err != nil {
			return Value{}, err
		}
		return numberVal(math.Round(v.AsNumber())), nil

	case "current":
		if ctx.Current == nil {
			return nodeSetVal(nil), nil
		}
		return nodeSetVal([]xutils.Node{ctx.Current}), nil

	case "deref":
		return evalDeref(t.args, ctx)

	case "derived-from":
		return evalDerivedFrom(t.args, ctx, false)
	case "derived-from-or-self":
		return evalDerivedFrom(t.args, ctx, true)

	case "enum-value":
		v, err := evalNode(t.args[0], ctx)
		if err != nil {
			return Value{}, err
		}
		if v.Kind != NodeSetValue || len(v.Nodes) == 0 {
			return numberVal(math.NaN()), nil
		}
		er, ok := ctx.Resolve.(enumResolver)
		if !ok {
			return Value{}, &EvalError{Message: "enum-value() unsupported in this context"}
		}
		n, found := er.EnumValue(v.Nodes[0])
		if !found {
			return numberVal(math.NaN()), nil
		}
		return numberVal(float64(n)), nil

	case "bit-is-set":
		return evalBitIsSet(t.args, ctx)

	case "re-match":
		s, pat, err := evalStringPair(t.args, ctx)
		if err != nil {
			return Value{}, err
		}
		re, err := regexp.Compile("^(?:" + pat + ")$")
		if err != nil {
			return Value{}, &EvalError{Message: "re-match(): invalid pattern"}
		}
		return boolVal(re.MatchString(s)), nil
	}
	return Value{}, &EvalError{Message: fmt.Sprintf("unimplemented function %s", t.name)}
}

func contextOrArgNode(args []node, ctx *Context) (xutils.Node, error) {
	if len(args) == 0 {
		return ctx.Node, nil
	}
	v, err := evalNode(args[0], ctx)
	if err != nil {
		return nil, err
	}
	if v.Kind != NodeSetValue || len(v.Nodes) == 0 {
		return nil, nil
	}
	return v.Nodes[0], nil
}

func evalStringPair(args []node, ctx *Context) (string, string, error) {
	a, err := evalNode(args[0], ctx)
	if err != nil {
		return "", "", err
	}
	b, err := evalNode(args[1], ctx)
	if err != nil {
		return "", "", err
	}
	return a.AsString(), b.AsString(), nil
}

func evalSubstring(args []node, ctx *Context) (Value, error) {
	sv, err := evalNode(args[0], ctx)
	if err != nil {
		return Value{}, err
	}
	startV, err := evalNode(args[1], ctx)
	if err != nil {
		return Value{}, err
	}
	runes := []rune(sv.AsString())
	start := startV.AsNumber()
	length := math.Inf(1)
	if len(args) == 3 {
		lv, err := evalNode(args[2], ctx)
		if err != nil {
			return Value{}, err
		}
		length = lv.AsNumber()
	}
	// XPath 1.0 substring() uses 1-based, round-to-nearest positions and
	// tolerates NaN/out-of-range bounds by clamping the overlap with
	// [1, len(runes)+1).
	begin := math.Round(start)
	end := begin + math.Round(length)
	if math.IsNaN(begin) || math.IsNaN(end) {
		return stringVal(""), nil
	}
	lo := int(math.Max(1, begin))
	hi := int(math.Min(float64(len(runes)+1), end))
	if hi <= lo {
		return stringVal(""), nil
	}
	return stringVal(string(runes[lo-1 : hi-1])), nil
}

func evalTranslate(args []node, ctx *Context) (Value, error) {
	sv, err := evalNode(args[0], ctx)
	if err != nil {
		return Value{}, err
	}
	fromV, err := evalNode(args[1], ctx)
	if err != nil {
		return Value{}, err
	}
	toV, err := evalNode(args[2], ctx)
	if err != nil {
		return Value{}, err
	}
	from := []rune(fromV.AsString())
	to := []rune(toV.AsString())
	var b strings.Builder
	for _, r := range sv.AsString() {
		idx := -1
		for i, f := range from {
			if f == r {
				idx = i
				break
			}
		}
		if idx < 0 {
			b.WriteRune(r)
		} else if idx < len(to) {
			b.WriteRune(to[idx])
		}
		// idx >= len(to): character is deleted.
	}
	return stringVal(b.String()), nil
}

// leafrefResolver is the optional extra capability a ModuleResolver may
// implement to support deref(); kept separate from the base interface
// since most call sites (when/must evaluation of non-leafref-bearing
// expressions) never need it.
type leafrefResolver interface {
	ResolveLeafref(n xutils.Node) xutils.Node
}

func evalDeref(args []node, ctx *Context) (Value, error) {
	v, err := evalNode(args[0], ctx)
	if err != nil {
		return Value{}, err
	}
	if v.Kind != NodeSetValue || len(v.Nodes) == 0 {
		return nodeSetVal(nil), nil
	}
	lr, ok := ctx.Resolve.(leafrefResolver)
	if !ok {
		return Value{}, &EvalError{Message: "deref() unsupported in this context"}
	}
	target := lr.ResolveLeafref(v.Nodes[0])
	if target == nil {
		return nodeSetVal(nil), nil
	}
	return nodeSetVal([]xutils.Node{target}), nil
}

func evalDerivedFrom(args []node, ctx *Context, orSelf bool) (Value, error) {
	v, err := evalNode(args[0], ctx)
	if err != nil {
		return Value{}, err
	}
	lit, err := evalNode(args[1], ctx)
	if err != nil {
		return Value{}, err
	}
	if v.Kind != NodeSetValue || len(v.Nodes) == 0 {
		return boolVal(false), nil
	}
	if ctx.Resolve == nil {
		return Value{}, &EvalError{Message: "derived-from() unsupported in this context"}
	}
	base := ctx.Resolve.LookupIdentity(v.Nodes[0], lit.AsString())
	if base == nil {
		return boolVal(false), nil
	}
	if orSelf {
		return boolVal(ctx.Resolve.IsDerivedFromOrSelf(v.Nodes[0], base)), nil
	}
	return boolVal(ctx.Resolve.IsDerivedFrom(v.Nodes[0], base)), nil
}

// enumResolver is the optional extra capability a ModuleResolver may
// implement to support enum-value(): the stored lexical value is just
// the enum's declared name (data/storevalue.go's storeEnumeration), so
// recovering the integer takes a schema lookup, the same seam deref()
// uses for leafrefResolver rather than smuggling the integer into the
// canonical string.
type enumResolver interface {
	EnumValue(n xutils.Node) (int, bool)
}

func evalBitIsSet(args []node, ctx *Context) (Value, error) {
	v, err := evalNode(args[0], ctx)
	if err != nil {
		return Value{}, err
	}
	lit, err := evalNode(args[1], ctx)
	if err != nil {
		return Value{}, err
	}
	if v.Kind != NodeSetValue || len(v.Nodes) == 0 {
		return boolVal(false), nil
	}
	bits := strings.Fields(v.Nodes[0].Value())
	for _, b := range bits {
		if b == lit.AsString() {
			return boolVal(true), nil
		}
	}
	return boolVal(false), nil
}
