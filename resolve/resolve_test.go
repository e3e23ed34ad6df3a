// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package resolve_test

import (
	"strings"
	"testing"

	"github.com/ysemantic/yangcore/adapter/schema/builder"
	"github.com/ysemantic/yangcore/resolve"
	"github.com/ysemantic/yangcore/schema"
)

func TestResolveBasicModule(t *testing.T) {
	b := builder.NewBuilder("acme", "urn:acme", "acme")
	b.DeclareDataDef(builder.Container("top", false))
	b.DeclareDataDef(builder.Leaf("name", builder.StringType()))
	b.EndDataDef()
	b.DeclareDataDef(builder.Leaf("count", builder.IntType("int32")))
	b.EndDataDef()
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

	top := mod.FindChild("top")
	if top == nil {
		t.Fatalf("expected top-level container %q", "top")
	}
	container, ok := top.(*schema.Container)
	if !ok {
		t.Fatalf("expected *schema.Container, got %T", top)
	}

	var nameLeaf *schema.Leaf
	var countLeaf *schema.Leaf
	var tagLeafList *schema.LeafList
	for _, c := range container.Children() {
		switch c.Name() {
		case "name":
			nameLeaf = c.(*schema.Leaf)
		case "count":
			countLeaf = c.(*schema.Leaf)
		case "tag":
			tagLeafList = c.(*schema.LeafList)
		}
	}
	if nameLeaf == nil || nameLeaf.Type.Kind != schema.TString {
		t.Fatalf("expected string leaf %q, got %+v", "name", nameLeaf)
	}
	if countLeaf == nil || countLeaf.Type.Kind != schema.TInt32 {
		t.Fatalf("expected int32 leaf %q, got %+v", "count", countLeaf)
	}
	if tagLeafList == nil || tagLeafList.Type.Kind != schema.TString {
		t.Fatalf("expected string leaf-list %q, got %+v", "tag", tagLeafList)
	}
}

func TestResolveDuplicateIdentifier(t *testing.T) {
	b := builder.NewBuilder("acme", "urn:acme", "acme")
	b.DeclareDataDef(builder.Leaf("dup", builder.StringType()))
	b.EndDataDef()
	b.DeclareDataDef(builder.Leaf("dup", builder.StringType()))
	b.EndDataDef()

	_, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"acme": b.Module()},
	})
	if err == nil {
		t.Fatalf("expected a duplicate identifier error, got nil")
	}
}

func TestResolveImportCycle(t *testing.T) {
	a := &schema.RawModule{Name: "a", Namespace: "urn:a", Prefix: "a",
		Imports: []schema.RawImport{{Module: "b", Prefix: "b"}}}
	bMod := &schema.RawModule{Name: "b", Namespace: "urn:b", Prefix: "b",
		Imports: []schema.RawImport{{Module: "a", Prefix: "a"}}}

	_, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"a": a, "b": bMod},
	})
	if err == nil {
		t.Fatalf("expected an import cycle error, got nil")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected error mentioning a cycle, got %v", err)
	}
}

func TestResolveAugment(t *testing.T) {
	base := builder.NewBuilder("base", "urn:base", "b")
	base.DeclareDataDef(builder.Container("top", false))
	base.EndDataDef()

	ext := builder.NewBuilder("ext", "urn:ext", "e")
	ext.DeclareImport("base", "b", "")
	ext.DeclareDataDef(builder.Augment("/b:top", ""))
	ext.DeclareDataDef(builder.Leaf("extra", builder.StringType()))
	ext.EndDataDef()
	ext.EndDataDef() // close the augment

	result, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"base": base.Module(), "ext": ext.Module()},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	top := result.Modules["base"].FindChild("top")
	if top == nil {
		t.Fatalf("expected base module to still declare %q", "top")
	}
	var extra schema.Node
	for _, c := range top.Children() {
		if c.Name() == "extra" {
			extra = c
		}
	}
	if extra == nil {
		t.Fatalf("expected augmented leaf %q grafted onto %q", "extra", "top")
	}
}

func TestResolveAugmentMissingTarget(t *testing.T) {
	ext := builder.NewBuilder("ext", "urn:ext", "e")
	ext.DeclareDataDef(builder.Augment("/nosuch:thing", ""))
	ext.DeclareDataDef(builder.Leaf("extra", builder.StringType()))
	ext.EndDataDef()
	ext.EndDataDef()

	_, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"ext": ext.Module()},
	})
	if err == nil {
		t.Fatalf("expected a missing augment target error, got nil")
	}
}

func TestResolveIdentityDerivation(t *testing.T) {
	b := builder.NewBuilder("acme", "urn:acme", "acme")
	b.DeclareIdentity("root")
	b.DeclareIdentity("mid", "root")
	b.DeclareIdentity("leaf-identity", "mid")

	result, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"acme": b.Module()},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	mod := result.Modules["acme"]

	root := mod.Identities["root"]
	mid := mod.Identities["mid"]
	leaf := mod.Identities["leaf-identity"]

	if !leaf.IsDerivedFrom(root) {
		t.Fatalf("expected %q to be transitively derived from %q", "leaf-identity", "root")
	}
	if !leaf.IsDerivedFromOrSelf(leaf) {
		t.Fatalf("expected IsDerivedFromOrSelf to include self")
	}
	if leaf.IsDerivedFrom(leaf) {
		t.Fatalf("expected IsDerivedFrom to exclude self")
	}
	if !mid.IsDerivedFrom(root) {
		t.Fatalf("expected %q to be derived from %q", "mid", "root")
	}
}

func TestResolveIdentityCycle(t *testing.T) {
	b := builder.NewBuilder("acme", "urn:acme", "acme")
	b.DeclareIdentity("a", "b")
	b.DeclareIdentity("b", "a")

	_, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"acme": b.Module()},
	})
	if err == nil {
		t.Fatalf("expected an identity base cycle error, got nil")
	}
}

func TestResolveFeatureGate(t *testing.T) {
	b := builder.NewBuilder("acme", "urn:acme", "acme")
	b.DeclareFeature("enabled-by-default", "")
	b.DeclareFeature("gated", "not enabled-by-default")

	result, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"acme": b.Module()},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	mod := result.Modules["acme"]

	if !mod.EnabledFeatures[mod.Features["enabled-by-default"]] {
		t.Fatalf("expected an unconditional feature to be enabled")
	}
	if mod.EnabledFeatures[mod.Features["gated"]] {
		t.Fatalf("expected %q gated on the negation of an enabled feature to be disabled", "gated")
	}
}

func TestResolveUsesExpandsGrouping(t *testing.T) {
	b := builder.NewBuilder("acme", "urn:acme", "acme")
	grouping := builder.Container("placeholder-for-grouping-body", false)
	grouping.Children = []*schema.RawNode{
		builder.Leaf("from-grouping", builder.StringType()),
	}
	b.DeclareGrouping(grouping)
	b.DeclareDataDef(builder.Uses("placeholder-for-grouping-body"))
	b.EndDataDef()

	result, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"acme": b.Module()},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	mod := result.Modules["acme"]
	if mod.FindChild("from-grouping") == nil {
		t.Fatalf("expected %q inlined from the grouping at module top level", "from-grouping")
	}
	if mod.FindChild("placeholder-for-grouping-body") != nil {
		t.Fatalf("expected the uses statement itself not to survive into the resolved tree")
	}
}

func TestResolveUnknownGrouping(t *testing.T) {
	b := builder.NewBuilder("acme", "urn:acme", "acme")
	b.DeclareDataDef(builder.Uses("nosuch"))
	b.EndDataDef()

	_, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"acme": b.Module()},
	})
	if err == nil {
		t.Fatalf("expected an unknown grouping error, got nil")
	}
}

func TestResolveStatusDowngrade(t *testing.T) {
	raw := &schema.RawModule{Name: "acme", Namespace: "urn:acme", Prefix: "acme"}
	deprecatedContainer := builder.Container("outer", false)
	deprecatedContainer.Status = schema.Deprecated
	currentLeaf := builder.Leaf("inner", builder.StringType())
	currentLeaf.Status = schema.Current
	deprecatedContainer.Children = []*schema.RawNode{currentLeaf}
	raw.Children = []*schema.RawNode{deprecatedContainer}

	_, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"acme": raw},
	})
	if err == nil {
		t.Fatalf("expected a status downgrade error for a current leaf under a deprecated container")
	}
}

func TestBindExpressionsResolvesLeafref(t *testing.T) {
	b := builder.NewBuilder("acme", "urn:acme", "acme")
	b.DeclareDataDef(builder.Container("top", false))
	b.DeclareDataDef(builder.Leaf("target", builder.StringType()))
	b.EndDataDef()
	b.DeclareDataDef(builder.Leaf("ref", builder.LeafrefType("../target", true)))
	b.EndDataDef()
	b.EndDataDef() // close "top"

	result, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"acme": b.Module()},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := resolve.BindExpressions(result); err != nil {
		t.Fatalf("bind: %v", err)
	}

	top := result.Modules["acme"].FindChild("top").(*schema.Container)
	var target, ref *schema.Leaf
	for _, c := range top.Children() {
		switch c.Name() {
		case "target":
			target = c.(*schema.Leaf)
		case "ref":
			ref = c.(*schema.Leaf)
		}
	}
	if ref == nil || ref.Type.LeafrefTarget != target {
		t.Fatalf("expected ref's leafref to statically bind to target, got %+v", ref)
	}
}
