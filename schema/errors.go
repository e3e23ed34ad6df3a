// Copyright (c) 2017,2019, AT&T Intellectual Property. All rights reserved
//
// Copyright (c) 2016-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"github.com/danos/mgmterror"
	"github.com/danos/utils/pathutil"
)

const (
	msgDuplicateIdentifier = "Duplicate identifier in module scope"
	msgMissingKey          = "List key refers to a leaf that does not exist"
	msgLeafrefCycle        = "Leafref resolves to itself through a cycle"
	msgGroupingNotFound    = "uses refers to a grouping that is not reachable"
	msgAugmentTargetMissing = "augment target does not exist"
	msgDeviationTargetMissing = "deviation target does not exist"
	msgImportCycle          = "import/include graph contains a cycle"
	msgStatusDowngrade       = "reference to a definition of lower status"
)

// NewDuplicateIdentifierError reports two sibling definitions sharing a
// name within one module scope (spec.md §4.1 pass 2).
func NewDuplicateIdentifierError(path []string, name string) error {
	e := mgmterror.NewUnknownElementApplicationError(name)
	e.Path = pathutil.Pathstr(path)
	e.Message = msgDuplicateIdentifier
	return e
}

// NewMissingKeyError reports a list "key" statement naming a leaf the
// list has no child of (spec.md §3, "Schema invariants").
func NewMissingKeyError(path []string, keyname string) error {
	e := mgmterror.NewUnknownElementApplicationError(keyname)
	e.Path = pathutil.Pathstr(path)
	e.Message = msgMissingKey
	return e
}

// NewLeafrefCycleError reports a leafref that transitively resolves to
// itself. No resolver pass calls it: BindExpressions binds each
// leafref's target without checking for cycles.
func NewLeafrefCycleError(path []string) error {
	e := mgmterror.NewOperationFailedApplicationError()
	e.Path = pathutil.Pathstr(path)
	e.Message = msgLeafrefCycle
	return e
}

// NewGroupingNotFoundError reports a "uses" whose grouping is not
// reachable from its scope (spec.md §3, "Schema invariants").
func NewGroupingNotFoundError(path []string, name string) error {
	e := mgmterror.NewUnknownElementApplicationError(name)
	e.Path = pathutil.Pathstr(path)
	e.Message = msgGroupingNotFound
	return e
}

// NewAugmentTargetMissingError reports an "augment" whose target path
// does not resolve against the already-expanded tree (spec.md §4.1
// pass 6).
func NewAugmentTargetMissingError(path []string) error {
	e := mgmterror.NewDataMissingError()
	e.Path = pathutil.Pathstr(path)
	e.Message = msgAugmentTargetMissing
	return e
}

// NewDeviationTargetMissingError reports a "deviation" whose target
// does not exist (spec.md §4.1 pass 7).
func NewDeviationTargetMissingError(path []string) error {
	e := mgmterror.NewDataMissingError()
	e.Path = pathutil.Pathstr(path)
	e.Message = msgDeviationTargetMissing
	return e
}

// NewImportCycleError reports a cycle in the import/include graph
// (spec.md §4.1 pass 1).
func NewImportCycleError(detail string) error {
	e := mgmterror.NewOperationFailedApplicationError()
	e.Message = msgImportCycle + ": " + detail
	return e
}

// NewStatusDowngradeError reports a `current` definition referencing a
// `deprecated`/`obsolete` one (spec.md §4.1 pass 10).
func NewStatusDowngradeError(path []string, refName string) error {
	e := mgmterror.NewOperationFailedApplicationError()
	e.Path = pathutil.Pathstr(path)
	e.Message = msgStatusDowngrade + ": " + refName
	return e
}
