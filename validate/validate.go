// Copyright (c) 2017-2019 AT&T Intellectual Property
// All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Package validate runs a resolved data tree through the eight-phase
// instance validator spec.md §4.4 describes, fixpoint-iterated because
// a `when` pass can delete nodes that in turn unblock other `when`
// evaluations. Grounded on the teacher's schema/validate.go (phase
// functions, ValidateCtx/ValidationType split, mgmterror construction)
// generalized from its single string/length/pattern-only type checker
// to the full key/unique/min-max/mandatory/leafref/when/must/extension
// pipeline this engine's schema model carries.
package validate

import (
	"github.com/danos/mgmterror"
	"github.com/danos/utils/pathutil"
	"github.com/ysemantic/yangcore/data"
	"github.com/ysemantic/yangcore/schema"
	"github.com/ysemantic/yangcore/xutils"
)

// Options is the validator's behaviour bitmask (spec.md §6).
type Options uint32

const (
	// ConfigOnly restricts validation to config true nodes.
	ConfigOnly Options = 1 << iota
	// RPCInput marks the root as an rpc/action input tree.
	RPCInput
	// RPCReply marks the root as an rpc/action output tree.
	RPCReply
	// NotificationTree marks the root as a notification payload.
	NotificationTree
	// Strict rejects unknown nodes and out-of-order keys at parse time;
	// the validator itself does not consult it.
	Strict
	// WhenAutoDelete makes phase 6 remove a false-when subtree instead
	// of reporting it as an error.
	WhenAutoDelete
)

func (o Options) has(bit Options) bool { return o&bit != 0 }

// Validate runs the fixpoint loop over root, which must be a
// *data.Branch standing in for the document root (its own Schema() may
// be nil; its children are the top-level present nodes). It returns nil
// on success — root may have been mutated by default insertion and/or
// when-auto-delete — or the first structural/constraint error any phase
// reports; that error ends validation in the round it occurs.
func Validate(root *data.Branch, opts Options) error {
	if err := checkTopLevelShape(root, opts); err != nil {
		return err
	}

	bound := countWhenCarriers(root) + 1
	for round := 0; round < bound; round++ {
		insertDefaults(root)

		if err := checkKeyUniqueMinMax(root, opts); err != nil {
			return err
		}
		if err := checkMandatory(root, opts); err != nil {
			return err
		}
		if err := resolveReferences(root, opts); err != nil {
			return err
		}

		progressed, err := runWhenPass(root, opts)
		if err != nil {
			return err
		}

		if err := runMustPass(root, opts); err != nil {
			return err
		}
		if err := runExtensionHooks(root); err != nil {
			return err
		}

		if !progressed {
			return nil
		}
	}
	return nil
}

// countWhenCarriers bounds the fixpoint loop per spec.md §4.4's
// termination argument: every round resolves at least one
// unresolved-when or deletes a node, so the loop cannot run longer than
// the number of when-carrying nodes in the tree.
func countWhenCarriers(n data.Node) int {
	count := 0
	if w, _ := whenAndMustsOf(n.Schema()); w != nil {
		count++
	}
	if b, ok := n.(*data.Branch); ok {
		for _, c := range b.InstanceChildren() {
			count += countWhenCarriers(c)
		}
	}
	return count
}

func skip(n data.Node, opts Options) bool {
	if !opts.has(ConfigOnly) {
		return false
	}
	sn := n.Schema()
	return sn != nil && !sn.Config()
}

// checkTopLevelShape enforces spec.md §4.4 phase 1: reject data whose
// schema kind doesn't belong under the requested context, and enforce
// the single-root rule implied by an rpc-input/rpc-reply/notification
// root (each of those is a single named node, never a forest).
func checkTopLevelShape(root *data.Branch, opts Options) error {
	single := opts.has(RPCInput) || opts.has(RPCReply) || opts.has(NotificationTree)
	if !single {
		return nil
	}
	if len(root.InstanceChildren()) > 1 {
		return newStructuralError(nil, "exactly one top-level node is required in this context")
	}
	return nil
}

func whenAndMustsOf(n schema.Node) (*schema.When, []schema.Must) {
	switch v := n.(type) {
	case *schema.Container:
		return v.When, v.Must
	case *schema.List:
		return v.When, v.Must
	case *schema.Leaf:
		return v.When, v.Must
	case *schema.LeafList:
		return v.When, v.Must
	case *schema.Choice:
		return v.When, nil
	case *schema.Case:
		return v.When, nil
	case *schema.AnyData:
		return v.When, v.Must
	case *schema.Notification:
		return nil, v.Must
	}
	return nil, nil
}

func newStructuralError(path []string, msg string) error {
	e := mgmterror.NewOperationFailedApplicationError()
	e.Path = pathutil.Pathstr(path)
	e.Message = msg
	return e
}

func pathOf(n data.Node) []string {
	var segs []string
	for cur := xutils.Node(n); cur != nil && cur.Parent() != nil; cur = cur.Parent() {
		segs = append([]string{cur.Name()}, segs...)
	}
	return segs
}

var _ xutils.Node = (*data.Branch)(nil)
