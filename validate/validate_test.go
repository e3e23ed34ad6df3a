// Copyright (c) 2017-2019 AT&T Intellectual Property
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package validate_test

import (
	"testing"

	"github.com/ysemantic/yangcore/data"
	"github.com/ysemantic/yangcore/internal/intern"
	"github.com/ysemantic/yangcore/schema"
	"github.com/ysemantic/yangcore/validate"
	"github.com/ysemantic/yangcore/xpath"
)

func newTestModule(in *intern.Interner) *schema.Module {
	return schema.NewModule(in.Intern("test"), in.Intern("urn:test"), "")
}

func TestValidateMissingMandatory(t *testing.T) {
	in := intern.New()
	mod := newTestModule(in)

	top := schema.NewContainer(in.Intern("top"), mod)
	name := schema.NewLeaf(in.Intern("name"), mod)
	name.Type = &schema.TypeDescriptor{Kind: schema.TString}
	name.SetMandatory(true)
	top.AddChild(name)
	mod.AddChild(top)

	root := data.NewBranch(nil, nil, true)
	topInst := data.NewBranch(top, root, true)
	root.AddChild(topInst)

	err := validate.Validate(root, 0)
	if err == nil {
		t.Fatal("expected missing mandatory leaf error")
	}
}

func TestValidateMissingMandatoryChoice(t *testing.T) {
	in := intern.New()
	mod := newTestModule(in)

	top := schema.NewContainer(in.Intern("top"), mod)
	choice := schema.NewChoice(in.Intern("proto"), mod)
	choice.SetMandatory(true)
	caseA := schema.NewCase(in.Intern("a-case"), mod)
	leafA := schema.NewLeaf(in.Intern("a"), mod)
	leafA.Type = &schema.TypeDescriptor{Kind: schema.TString}
	caseA.AddChild(leafA)
	choice.AddChild(caseA)
	top.AddChild(choice)
	mod.AddChild(top)

	root := data.NewBranch(nil, nil, true)
	topInst := data.NewBranch(top, root, true)
	root.AddChild(topInst)

	if err := validate.Validate(root, 0); err == nil {
		t.Fatal("expected a missing-mandatory-choice error when no case node is present")
	}

	root2 := data.NewBranch(nil, nil, true)
	topInst2 := data.NewBranch(top, root2, true)
	topInst2.AddChild(data.NewLeaf(leafA, topInst2, "x"))
	root2.AddChild(topInst2)

	if err := validate.Validate(root2, 0); err != nil {
		t.Fatalf("expected no error once a case leaf is present, got %v", err)
	}
}

func TestValidateDefaultInsertion(t *testing.T) {
	in := intern.New()
	mod := newTestModule(in)

	top := schema.NewContainer(in.Intern("top"), mod)
	mode := schema.NewLeaf(in.Intern("mode"), mod)
	mode.Type = &schema.TypeDescriptor{Kind: schema.TString}
	mode.Default = "auto"
	mode.HasDefault = true
	top.AddChild(mode)
	mod.AddChild(top)

	root := data.NewBranch(nil, nil, true)
	topInst := data.NewBranch(top, root, true)
	root.AddChild(topInst)

	if err := validate.Validate(root, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	children := topInst.InstanceChildren()
	if len(children) != 1 {
		t.Fatalf("expected default leaf to be inserted, got %d children", len(children))
	}
	leaf, ok := children[0].(*data.Leaf)
	if !ok || leaf.Value() != "auto" || !leaf.FromDefault() {
		t.Fatalf("expected inserted default leaf with value %q", "auto")
	}
}

func TestValidateWhenAutoDelete(t *testing.T) {
	in := intern.New()
	mod := newTestModule(in)

	top := schema.NewContainer(in.Intern("top"), mod)
	enabled := schema.NewLeaf(in.Intern("enabled"), mod)
	enabled.Type = &schema.TypeDescriptor{Kind: schema.TBoolean}
	top.AddChild(enabled)

	gated := schema.NewLeaf(in.Intern("gated"), mod)
	gated.Type = &schema.TypeDescriptor{Kind: schema.TString}
	expr, err := xpath.Compile("../enabled = 'true'")
	if err != nil {
		t.Fatalf("compile when: %v", err)
	}
	gated.When = &schema.When{Source: "../enabled = 'true'", Cond: expr}
	top.AddChild(gated)
	mod.AddChild(top)

	root := data.NewBranch(nil, nil, true)
	topInst := data.NewBranch(top, root, true)
	root.AddChild(topInst)
	topInst.AddChild(data.NewLeaf(enabled, topInst, "false"))
	topInst.AddChild(data.NewLeaf(gated, topInst, "anything"))

	if err := validate.Validate(root, validate.WhenAutoDelete); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, c := range topInst.InstanceChildren() {
		if c.Name() == "gated" {
			t.Fatal("expected gated leaf to be auto-deleted when its when is false")
		}
	}
}

func TestValidateWhenErrorsWithoutAutoDelete(t *testing.T) {
	in := intern.New()
	mod := newTestModule(in)

	top := schema.NewContainer(in.Intern("top"), mod)
	enabled := schema.NewLeaf(in.Intern("enabled"), mod)
	enabled.Type = &schema.TypeDescriptor{Kind: schema.TBoolean}
	top.AddChild(enabled)

	gated := schema.NewLeaf(in.Intern("gated"), mod)
	gated.Type = &schema.TypeDescriptor{Kind: schema.TString}
	expr, err := xpath.Compile("../enabled = 'true'")
	if err != nil {
		t.Fatalf("compile when: %v", err)
	}
	gated.When = &schema.When{Source: "../enabled = 'true'", Cond: expr}
	top.AddChild(gated)
	mod.AddChild(top)

	root := data.NewBranch(nil, nil, true)
	topInst := data.NewBranch(top, root, true)
	root.AddChild(topInst)
	topInst.AddChild(data.NewLeaf(enabled, topInst, "false"))
	topInst.AddChild(data.NewLeaf(gated, topInst, "anything"))

	if err := validate.Validate(root, 0); err == nil {
		t.Fatal("expected a false when to be reported as an error without WhenAutoDelete")
	}
}
