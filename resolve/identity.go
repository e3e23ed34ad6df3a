// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"fmt"

	"github.com/ysemantic/yangcore/schema"
)

// pass4ResolveIdentities links each identity to its declared bases and
// memoises the transitive derived-from set, erroring on a cyclic base
// chain. Grounded on compile.Compiler.checkIdentities, generalized
// from its map[string]parse.Node bookkeeping to schema.Identity
// values that already exist from pass 2.
func (r *resolver) pass4ResolveIdentities() error {
	for _, name := range r.order {
		raw := r.in.Modules[name]
		for _, idecl := range raw.Identities {
			id := r.identities[name][idecl.Name]
			for _, baseRef := range idecl.Bases {
				baseMod, baseLocal, err := r.splitPrefixed(name, baseRef)
				if err != nil {
					return fmt.Errorf("identity %s:%s: %w", name, idecl.Name, err)
				}
				base, ok := r.identities[baseMod][baseLocal]
				if !ok {
					return fmt.Errorf("identity %s:%s: unknown base identity %s", name, idecl.Name, baseRef)
				}
				id.Bases = append(id.Bases, base)
			}
		}
	}

	// Compute the transitive derived set for every identity, detecting
	// cycles via a visiting/visited three-colour walk.
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[*schema.Identity]int{}
	var visit func(id *schema.Identity) (map[*schema.Identity]bool, error)
	visit = func(id *schema.Identity) (map[*schema.Identity]bool, error) {
		if color[id] == black {
			return id.DerivedSetSnapshot(), nil
		}
		if color[id] == gray {
			return nil, fmt.Errorf("identity %s: cyclic base identity chain", id.Name())
		}
		color[id] = gray
		derived := map[*schema.Identity]bool{}
		for _, base := range id.Bases {
			baseDerived, err := visit(base)
			if err != nil {
				return nil, err
			}
			derived[base] = true
			for d := range baseDerived {
				derived[d] = true
			}
		}
		id.SetDerivedSet(derived)
		color[id] = black
		return derived, nil
	}
	for _, byMod := range r.identities {
		for _, id := range byMod {
			if _, err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitPrefixed splits a possibly-"prefix:local" reference made inside
// moduleName into the target module name and local identifier,
// resolving the prefix against moduleName's import table (or itself,
// for an unprefixed reference).
func (r *resolver) splitPrefixed(moduleName, ref string) (string, string, error) {
	for i := 0; i < len(ref); i++ {
		if ref[i] == ':' {
			prefix, local := ref[:i], ref[i+1:]
			for _, imp := range r.in.Modules[moduleName].Imports {
				if imp.Prefix == prefix {
					return imp.Module, local, nil
				}
			}
			return "", "", fmt.Errorf("unknown prefix %s", prefix)
		}
	}
	return moduleName, ref, nil
}
