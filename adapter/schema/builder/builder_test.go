// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package builder_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ysemantic/yangcore/adapter/instance/json"
	"github.com/ysemantic/yangcore/adapter/schema/builder"
	"github.com/ysemantic/yangcore/resolve"
	"github.com/ysemantic/yangcore/schema"
	"github.com/ysemantic/yangcore/testutils/assert"
	"github.com/ysemantic/yangcore/validate"
)

func buildSystemModule() *schema.RawModule {
	b := builder.NewBuilder("system", "urn:test:system", "sys")

	b.DeclareDataDef(builder.Container("system", false))
	b.DeclareDataDef(builder.LeafWithDefault("hostname", builder.StringType(), "localhost"))
	b.EndDataDef()
	b.DeclareDataDef(builder.WithMandatory(builder.Leaf("enabled", builder.BooleanType()), true))
	b.EndDataDef()
	b.EndDataDef() // close "system" container

	return b.Module()
}

// TestBuilderResolveValidateRoundTrip exercises the full adapter chain
// this package's reference implementations are for: a programmatically
// built schema resolves, a JSON document decodes against it, the
// fixpoint validator inserts the missing default and accepts the tree,
// and re-encoding produces the canonical form back out.
func TestBuilderResolveValidateRoundTrip(t *testing.T) {
	result, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"system": buildSystemModule()},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	mod := result.Modules["system"]

	input := []byte(`{"system":{"enabled":true}}`)
	root, err := json.Unmarshal(mod, json.Plain, input)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if err := validate.Validate(root, 0); err != nil {
		t.Fatalf("validate: %v", err)
	}

	out, err := json.Marshal(mod, json.Plain, root)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"hostname":"localhost"`) {
		t.Fatalf("expected inserted default hostname in re-encoded output, got %s", out)
	}
}

// TestBuilderUnknownTypeError exercises the resolver's type-closure
// error path (resolve/types.go's resolveType), wiring the shared
// assert helper the project carries for string-output comparisons.
func TestBuilderUnknownTypeError(t *testing.T) {
	b := builder.NewBuilder("broken", "urn:test:broken", "brk")
	b.DeclareDataDef(builder.Leaf("bogus", builder.IntType("not-a-real-type")))
	b.EndDataDef()

	_, err := resolve.Resolve(&resolve.Set{
		Modules: map[string]*schema.RawModule{"broken": b.Module()},
	})

	assert.NewExpectedError("leaf bogus: module broken: unknown type not-a-real-type").Matches(t, err)
}

// TestBuilderProducesExpectedSkeleton deep-compares the pre-resolution
// RawModule skeleton the Declare* sequence builds against a literal
// built the same way a hand-written textual parser's output would be
// asserted against, catching a wrong Kind/field on any statement
// without hand-rolling a field-by-field walk.
func TestBuilderProducesExpectedSkeleton(t *testing.T) {
	b := builder.NewBuilder("system", "urn:test:system", "sys")
	b.DeclareDataDef(builder.Container("system", false))
	b.DeclareDataDef(builder.LeafWithDefault("hostname", builder.StringType(), "localhost"))
	b.EndDataDef()
	b.DeclareDataDef(builder.WithMandatory(builder.Leaf("enabled", builder.BooleanType()), true))
	b.EndDataDef()
	b.EndDataDef() // close "system" container

	got := b.Module()
	want := &schema.RawModule{
		Name: "system", Namespace: "urn:test:system", Prefix: "sys",
		Children: []*schema.RawNode{
			{
				Kind: schema.KindContainer, Name: "system",
				Container: &schema.RawContainerData{},
				Children: []*schema.RawNode{
					{
						Kind: schema.KindLeaf, Name: "hostname",
						Leaf: &schema.RawLeafData{
							Type:       schema.RawType{Name: "string"},
							Default:    "localhost",
							HasDefault: true,
						},
					},
					{
						Kind: schema.KindLeaf, Name: "enabled", Mandatory: true,
						Leaf: &schema.RawLeafData{Type: schema.RawType{Name: "boolean"}},
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("builder skeleton mismatch (-want +got):\n%s", diff)
	}
}
