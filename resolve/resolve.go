// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Package resolve turns a set of schema.RawModule skeletons into
// resolved, immutable schema.Module trees. It runs the same sequence
// of whole-schema passes the teacher's compile.Compiler.ExpandModules/
// BuildModules does (import/include ordering, feature/identity
// closure, uses/augment expansion, deviations, then a binding pass for
// leafref/when/must), generalized from the teacher's goyang-parsed
// parse.Node input to this module's own RawModule skeleton.
package resolve

import (
	"fmt"
	"sort"

	"github.com/danos/utils/tsort"
	"github.com/sirupsen/logrus"

	"github.com/ysemantic/yangcore/internal/intern"
	"github.com/ysemantic/yangcore/schema"
)

// Set is the input to Resolve: every module (and submodule, folded
// into its owning module's RawModule.Includes processing by the
// caller) known to this compilation.
type Set struct {
	Modules map[string]*schema.RawModule
	Log     *logrus.Logger
}

// Result is the output of a successful Resolve.
type Result struct {
	Modules map[string]*schema.Module
	// Order is the dependency-sorted module name list Resolve
	// processed in (leaf imports first), exposed so callers that need
	// deterministic multi-module diagnostics can rely on it.
	Order []string
}

type resolver struct {
	in  *Set
	log *logrus.Logger

	interner *intern.Interner
	order    []string
	modules  map[string]*schema.Module

	typedefs   map[string]map[string]*rawTypedefEntry
	groupings  map[string]map[string]*schema.RawNode
	identities map[string]map[string]*schema.Identity
	features   map[string]map[string]*schema.Feature

	pendingAugments  []pendingAugment
	pendingDeviation []pendingDeviation
}

type rawTypedefEntry struct {
	module *schema.Module
	raw    schema.RawType
}

// Resolve runs the full pass pipeline (spec.md §4.1) and returns the
// closed-over, immutable Module set, or the first structural error
// encountered.
func Resolve(in *Set) (*Result, error) {
	log := in.Log
	if log == nil {
		log = logrus.New()
	}
	r := &resolver{
		in:         in,
		log:        log,
		interner:   intern.New(),
		modules:    map[string]*schema.Module{},
		typedefs:   map[string]map[string]*rawTypedefEntry{},
		groupings:  map[string]map[string]*schema.RawNode{},
		identities: map[string]map[string]*schema.Identity{},
		features:   map[string]map[string]*schema.Feature{},
	}

	if err := r.pass1ImportOrder(); err != nil {
		return nil, err
	}
	if err := r.pass2DeclareModules(); err != nil {
		return nil, err
	}
	if err := r.pass3ResolveFeatures(); err != nil {
		return nil, err
	}
	if err := r.pass4ResolveIdentities(); err != nil {
		return nil, err
	}
	if err := r.pass5ExpandUsesAndAugments(); err != nil {
		return nil, err
	}
	if err := r.pass6ApplyAugments(); err != nil {
		return nil, err
	}
	if err := r.pass7ApplyDeviations(); err != nil {
		return nil, err
	}
	// Passes 8/9 (leafref binding, when/must static check) are run by
	// the caller via BindExpressions (bind.go), which compiles the
	// expressions with package xpath; Resolve itself does not run them.
	if err := r.pass10StatusCheck(); err != nil {
		return nil, err
	}

	return &Result{Modules: r.modules, Order: r.order}, nil
}

// pass1ImportOrder builds the import dependency graph and topologically
// sorts it, erroring out on an import cycle (spec.md §4.1 pass 1).
// Grounded on compile.Compiler.ExpandModules's tsort.New()/AddEdge/Sort
// use for the same purpose.
func (r *resolver) pass1ImportOrder() error {
	g := tsort.New()
	for name, m := range r.in.Modules {
		g.AddVertex(name)
		for _, imp := range m.Imports {
			g.AddEdge(name, imp.Module)
		}
	}
	order, err := g.Sort()
	if err != nil {
		return schema.NewImportCycleError(err.Error())
	}
	// tsort.Sort may include transitively-discovered names for
	// modules never supplied in the Set (a dangling import); filter
	// those out so later passes only walk modules we actually have.
	for _, name := range order {
		if _, ok := r.in.Modules[name]; ok {
			r.order = append(r.order, name)
		}
	}
	return nil
}

// pass2DeclareModules creates the Module shell for every RawModule and
// registers its typedefs/groupings/identities/features for later
// lookup, detecting duplicate identifiers within one module's scope
// (spec.md §4.1 pass 2, §3 "Schema invariants").
func (r *resolver) pass2DeclareModules() error {
	for _, name := range r.order {
		raw := r.in.Modules[name]
		revision := newestRevision(raw.Revisions)

		mod := schema.NewModule(
			r.interner.Intern(raw.Name),
			r.interner.Intern(raw.Namespace),
			raw.Prefix)
		mod.Revision = revision
		for _, inc := range raw.Includes {
			mod.Includes = append(mod.Includes, schema.Include{
				SubmoduleName: inc.Submodule,
				Revision:      inc.Revision,
			})
		}
		r.modules[name] = mod

		r.typedefs[name] = map[string]*rawTypedefEntry{}
		for _, td := range raw.Typedefs {
			if _, dup := r.typedefs[name][td.Name]; dup {
				return schema.NewDuplicateIdentifierError([]string{name}, td.Name)
			}
			r.typedefs[name][td.Name] = &rawTypedefEntry{module: mod, raw: td.Type}
		}

		r.groupings[name] = map[string]*schema.RawNode{}
		seen := map[string]bool{}
		for _, g := range raw.Groupings {
			if seen[g.Name] {
				return schema.NewDuplicateIdentifierError([]string{name}, g.Name)
			}
			seen[g.Name] = true
			r.groupings[name][g.Name] = g
		}

		r.identities[name] = map[string]*schema.Identity{}
		for _, idecl := range raw.Identities {
			if _, dup := r.identities[name][idecl.Name]; dup {
				return schema.NewDuplicateIdentifierError([]string{name}, idecl.Name)
			}
			id := schema.NewIdentity(r.interner.Intern(idecl.Name), mod)
			r.identities[name][idecl.Name] = id
			mod.Identities[idecl.Name] = id
		}

		r.features[name] = map[string]*schema.Feature{}
		for _, fdecl := range raw.Features {
			if _, dup := r.features[name][fdecl.Name]; dup {
				return schema.NewDuplicateIdentifierError([]string{name}, fdecl.Name)
			}
			f := schema.NewFeature(r.interner.Intern(fdecl.Name), mod)
			r.features[name][fdecl.Name] = f
			mod.Features[fdecl.Name] = f
		}

		for _, td := range raw.Typedefs {
			t := schema.NewTypedef(r.interner.Intern(td.Name), mod)
			mod.Typedefs[td.Name] = t
		}
	}

	// Imports reference other Modules; fill those in now that every
	// module shell exists.
	for _, name := range r.order {
		raw := r.in.Modules[name]
		mod := r.modules[name]
		for _, imp := range raw.Imports {
			target, ok := r.modules[imp.Module]
			if !ok {
				return fmt.Errorf("module %s imports unknown module %s", name, imp.Module)
			}
			mod.Imports = append(mod.Imports, schema.Import{
				Module:   target,
				Prefix:   imp.Prefix,
				Revision: imp.Revision,
			})
		}
	}
	return nil
}

// newestRevision returns the lexicographically greatest (YANG
// revisions are YYYY-MM-DD, so lexicographic order is chronological
// order) revision string, or "" if none were declared.
func newestRevision(revisions []string) string {
	if len(revisions) == 0 {
		return ""
	}
	sorted := append([]string{}, revisions...)
	sort.Strings(sorted)
	return sorted[len(sorted)-1]
}

// pass3ResolveFeatures evaluates every feature's if-feature gate,
// grounded on compile.Compiler.checkFeatures. Forward references
// across modules are allowed since all Feature shells already exist
// from pass 2.
func (r *resolver) pass3ResolveFeatures() error {
	for _, name := range r.order {
		raw := r.in.Modules[name]
		for _, fdecl := range raw.Features {
			f := r.features[name][fdecl.Name]
			if fdecl.IfFeature == "" {
				continue
			}
			expr, err := r.parseFeatureExpr(name, fdecl.IfFeature)
			if err != nil {
				return err
			}
			f.Gate = expr
		}
	}
	// Compute every feature's enabled bit via memoized recursion rather
	// than one linear pass over mod.Features: a linear pass reads
	// map[*Feature]bool entries in Go's unspecified map iteration
	// order, so a same-module if-feature referencing a feature whose
	// own bit hasn't been computed yet would silently read a false
	// zero value. Recursing resolves each dependency on first use
	// regardless of declaration or map-iteration order; a cyclic
	// if-feature reference (a enabled on b, b enabled on a) resolves to
	// false rather than looping forever.
	enabled := map[*schema.Feature]bool{}
	resolving := map[*schema.Feature]bool{}
	var resolveFeature func(f *schema.Feature) bool
	resolveFeature = func(f *schema.Feature) bool {
		if v, ok := enabled[f]; ok {
			return v
		}
		if resolving[f] {
			return false
		}
		resolving[f] = true
		v := evalFeatureGate(f.Gate, resolveFeature)
		delete(resolving, f)
		enabled[f] = v
		return v
	}
	for _, byMod := range r.features {
		for _, f := range byMod {
			resolveFeature(f)
		}
	}
	for _, name := range r.order {
		mod := r.modules[name]
		for _, f := range mod.Features {
			mod.EnabledFeatures[f] = enabled[f]
		}
	}
	return nil
}

// evalFeatureGate mirrors schema.FeatureExpr.Eval's boolean combination
// but resolves each leaf reference through resolveFeature instead of a
// single shared map, letting the caller compute dependencies on demand.
func evalFeatureGate(e *schema.FeatureExpr, resolveFeature func(*schema.Feature) bool) bool {
	if e == nil {
		return true
	}
	switch e.Op {
	case "not":
		return !evalFeatureGate(e.Left, resolveFeature)
	case "and":
		return evalFeatureGate(e.Left, resolveFeature) && evalFeatureGate(e.Right, resolveFeature)
	case "or":
		return evalFeatureGate(e.Left, resolveFeature) || evalFeatureGate(e.Right, resolveFeature)
	default:
		return resolveFeature(e.Ref)
	}
}

// parseFeatureExpr parses a boolean if-feature expression ("a and (b
// or not c)") into a schema.FeatureExpr tree, resolving each leaf
// reference (optionally prefixed) against the current module's import
// table. This is XPath-adjacent but deliberately hand-rolled rather
// than routed through the xpath package: if-feature's grammar is a
// small fixed boolean grammar over feature names, not general XPath,
// and resolving it here keeps the resolver passes independent of
// package xpath.
func (r *resolver) parseFeatureExpr(moduleName, src string) (*schema.FeatureExpr, error) {
	toks := tokenizeFeatureExpr(src)
	p := &featureExprParser{toks: toks, r: r, module: moduleName}
	expr, err := p.parseOr()
	if err != nil {
		return nil, fmt.Errorf("module %s: if-feature %q: %w", moduleName, src, err)
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("module %s: if-feature %q: trailing tokens", moduleName, src)
	}
	return expr, nil
}

func (r *resolver) lookupFeature(moduleName, ref string) (*schema.Feature, error) {
	target := moduleName
	local := ref
	for i := 0; i < len(ref); i++ {
		if ref[i] == ':' {
			prefix := ref[:i]
			local = ref[i+1:]
			found := false
			for _, imp := range r.in.Modules[moduleName].Imports {
				if imp.Prefix == prefix {
					target = imp.Module
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("unknown prefix %s", prefix)
			}
			break
		}
	}
	f, ok := r.features[target][local]
	if !ok {
		return nil, fmt.Errorf("unknown feature %s", ref)
	}
	return f, nil
}
