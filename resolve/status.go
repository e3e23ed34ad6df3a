// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package resolve

import "github.com/ysemantic/yangcore/schema"

// pass10StatusCheck walks every module's final tree once, verifying
// that no descendant declares a status more current than its least
// current ancestor (spec.md §3, "status/feature gating"): a node
// inside a deprecated container cannot itself claim to be current. A
// node's effective status floor is the highest (least current) status
// value among its ancestors.
func (r *resolver) pass10StatusCheck() error {
	for _, mod := range r.modules {
		for _, n := range mod.Children {
			if err := checkStatusFloor(n, schema.Current); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkStatusFloor(n schema.Node, floor schema.Status) error {
	if n.Status() < floor {
		return schema.NewStatusDowngradeError(n.Path(), n.Name())
	}
	next := floor
	if n.Status() > next {
		next = n.Status()
	}
	for _, c := range n.Children() {
		if err := checkStatusFloor(c, next); err != nil {
			return err
		}
	}
	return nil
}
