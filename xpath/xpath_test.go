// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xpath_test

import (
	"testing"

	"github.com/ysemantic/yangcore/adapter/instance/json"
	"github.com/ysemantic/yangcore/adapter/schema/builder"
	"github.com/ysemantic/yangcore/data"
	"github.com/ysemantic/yangcore/resolve"
	"github.com/ysemantic/yangcore/schema"
	"github.com/ysemantic/yangcore/xpath"
)

// buildFixture resolves a small module (a "top" container holding a
// name/count scalar pair, a keyed "item" list, and a "tag" leaf-list)
// and decodes a matching instance document, returning the "top"
// container's data.Branch as the context node every test evaluates
// paths relative to.
func buildFixture(t *testing.T) *data.Branch {
	t.Helper()

	b := builder.NewBuilder("acme", "urn:acme", "acme")
	b.DeclareDataDef(builder.Container("top", false))
	b.DeclareDataDef(builder.Leaf("name", builder.StringType()))
	b.EndDataDef()
	b.DeclareDataDef(builder.Leaf("count", builder.IntType("int32")))
	b.EndDataDef()
	b.DeclareDataDef(builder.List("item", []string{"id"}, 0, 0))
	b.DeclareDataDef(builder.Leaf("id", builder.StringType()))
	b.EndDataDef()
	b.DeclareDataDef(builder.Leaf("value", builder.IntType("int32")))
	b.EndDataDef()
	b.EndDataDef() // close "item"
	b.DeclareDataDef(builder.LeafList("tag", builder.StringType(), 0, 0))
	b.EndDataDef()
	b.EndDataDef() // close "top"

	result, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"acme": b.Module()},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	mod := result.Modules["acme"]

	doc := `{"top":{"name":"widget","count":3,` +
		`"item":[{"id":"a","value":10},{"id":"b","value":20}],` +
		`"tag":["x","y","z"]}}`
	root, err := json.Unmarshal(mod, json.Plain, []byte(doc))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return root.InstanceChildren()[0].(*data.Branch)
}

func evalString(t *testing.T, ctx *xpath.Context, src string) string {
	t.Helper()
	expr, err := xpath.Compile(src)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	v, err := xpath.Eval(expr, ctx)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v.AsString()
}

func evalNumber(t *testing.T, ctx *xpath.Context, src string) float64 {
	t.Helper()
	expr, err := xpath.Compile(src)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	v, err := xpath.Eval(expr, ctx)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v.AsNumber()
}

func evalBool(t *testing.T, ctx *xpath.Context, src string) bool {
	t.Helper()
	expr, err := xpath.Compile(src)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	v, err := xpath.Eval(expr, ctx)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v.AsBoolean()
}

func TestCompileRejectsMalformedExpression(t *testing.T) {
	if _, err := xpath.Compile("2 +"); err == nil {
		t.Fatalf("expected a syntax error for a dangling operator")
	}
	if _, err := xpath.Compile("concat('a'"); err == nil {
		t.Fatalf("expected a syntax error for an unclosed function call")
	}
}

func TestCompileRejectsOverlongExpression(t *testing.T) {
	huge := make([]byte, xpath.MaxExprLen+1)
	for i := range huge {
		huge[i] = 'a'
	}
	if _, err := xpath.Compile(string(huge)); err == nil {
		t.Fatalf("expected MaxExprLen to be enforced")
	}
}

func TestEvalArithmeticPrecedence(t *testing.T) {
	ctx := &xpath.Context{Node: buildFixture(t)}
	if got := evalNumber(t, ctx, "2 + 3 * 4"); got != 14 {
		t.Fatalf("2 + 3 * 4 = %v, want 14 (multiplication must bind tighter than addition)", got)
	}
	if got := evalNumber(t, ctx, "(2 + 3) * 4"); got != 20 {
		t.Fatalf("(2 + 3) * 4 = %v, want 20", got)
	}
	if got := evalNumber(t, ctx, "10 mod 3"); got != 1 {
		t.Fatalf("10 mod 3 = %v, want 1", got)
	}
	if got := evalNumber(t, ctx, "-count"); got != -3 {
		t.Fatalf("-count = %v, want -3", got)
	}
}

func TestEvalStringFunctions(t *testing.T) {
	ctx := &xpath.Context{Node: buildFixture(t)}
	if got := evalString(t, ctx, "concat('a', 'b', name)"); got != "abwidget" {
		t.Fatalf("concat = %q, want %q", got, "abwidget")
	}
	if got := evalNumber(t, ctx, "string-length(name)"); got != 6 {
		t.Fatalf("string-length(name) = %v, want 6", got)
	}
	if !evalBool(t, ctx, "contains(name, 'idg')") {
		t.Fatalf("expected contains(name, 'idg') to be true")
	}
	if got := evalString(t, ctx, "substring(name, 1, 4)"); got != "widg" {
		t.Fatalf("substring(name, 1, 4) = %q, want %q", got, "widg")
	}
	if got := evalString(t, ctx, "substring-before(name, 'dget')"); got != "wi" {
		t.Fatalf("substring-before = %q, want %q", got, "wi")
	}
}

func TestEvalBooleanLogic(t *testing.T) {
	ctx := &xpath.Context{Node: buildFixture(t)}
	if !evalBool(t, ctx, "true() and not(false())") {
		t.Fatalf("expected true() and not(false()) to be true")
	}
	if evalBool(t, ctx, "count > 10 and name = 'widget'") {
		t.Fatalf("expected a false 'and' short-circuit: count > 10 is false")
	}
	if !evalBool(t, ctx, "count > 10 or name = 'widget'") {
		t.Fatalf("expected 'or' to pick up the true name comparison")
	}
}

func TestEvalChildAndSelfPaths(t *testing.T) {
	top := buildFixture(t)
	ctx := &xpath.Context{Node: top}
	if got := evalString(t, ctx, "name"); got != "widget" {
		t.Fatalf("name = %q, want %q", got, "widget")
	}

	// Re-root the context at the "name" leaf itself and walk back up
	// with "..", the parent axis shorthand.
	var nameLeaf *data.Leaf
	for _, c := range top.InstanceChildren() {
		if l, ok := c.(*data.Leaf); ok && l.Name() == "name" {
			nameLeaf = l
		}
	}
	if nameLeaf == nil {
		t.Fatalf("fixture is missing the %q leaf", "name")
	}
	leafCtx := &xpath.Context{Node: nameLeaf}
	if got := evalString(t, leafCtx, "../count"); got != "3" {
		t.Fatalf("../count = %q, want %q", got, "3")
	}
}

func TestEvalPredicateAndUnion(t *testing.T) {
	ctx := &xpath.Context{Node: buildFixture(t)}
	if got := evalNumber(t, ctx, "item[id='a']/value"); got != 10 {
		t.Fatalf("item[id='a']/value = %v, want 10", got)
	}
	if got := evalNumber(t, ctx, "item[id='b']/value"); got != 20 {
		t.Fatalf("item[id='b']/value = %v, want 20", got)
	}
	if got := evalNumber(t, ctx, "item[2]/value"); got != 20 {
		t.Fatalf("item[2]/value (numeric predicate as position()) = %v, want 20", got)
	}

	expr, err := xpath.Compile("name | count")
	if err != nil {
		t.Fatalf("compile union: %v", err)
	}
	v, err := xpath.Eval(expr, ctx)
	if err != nil {
		t.Fatalf("eval union: %v", err)
	}
	if len(v.Nodes) != 2 {
		t.Fatalf("name | count produced %d nodes, want 2", len(v.Nodes))
	}
}

func TestEvalCountAndSum(t *testing.T) {
	ctx := &xpath.Context{Node: buildFixture(t)}
	if got := evalNumber(t, ctx, "count(item)"); got != 2 {
		t.Fatalf("count(item) = %v, want 2", got)
	}
	if got := evalNumber(t, ctx, "count(tag)"); got != 3 {
		t.Fatalf("count(tag) = %v, want 3", got)
	}
	if got := evalNumber(t, ctx, "sum(item/value)"); got != 30 {
		t.Fatalf("sum(item/value) = %v, want 30", got)
	}
}

func TestEvalNodeSetComparison(t *testing.T) {
	ctx := &xpath.Context{Node: buildFixture(t)}
	if !evalBool(t, ctx, "item/id = 'a'") {
		t.Fatalf("expected the node-set broadcast comparison to find id='a' among the item entries")
	}
	if evalBool(t, ctx, "item/id = 'no-such-id'") {
		t.Fatalf("expected no item entry to match 'no-such-id'")
	}
	if !evalBool(t, ctx, "item/value > 15") {
		t.Fatalf("expected the node-set/number broadcast comparison to find a value > 15")
	}
}

func TestAtomizeDependencySet(t *testing.T) {
	top := buildFixture(t)
	expr, err := xpath.Compile("name = 'widget' and count > 1")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ctx := &xpath.Context{Node: top}
	touched, err := xpath.Atomize(expr, ctx)
	if err != nil {
		t.Fatalf("atomize: %v", err)
	}
	names := map[string]bool{}
	for _, n := range touched {
		names[n.Name()] = true
	}
	if !names["name"] || !names["count"] {
		t.Fatalf("expected the dependency set to include both referenced leaves, got %v", names)
	}
}
