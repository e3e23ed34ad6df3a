// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xpath

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ysemantic/yangcore/xutils"
)

// ValueKind tags the four XPath 1.0 result types (spec.md §4.3).
type ValueKind int

const (
	NodeSetValue ValueKind = iota
	StringValue
	NumberValue
	BooleanValue
)

// Value is an evaluation result: exactly one of the four XPath 1.0
// types. A schema-mode result is still a NodeSetValue -- its members
// are schema.XNode-wrapped schema nodes rather than data nodes.
type Value struct {
	Kind    ValueKind
	Nodes   []xutils.Node
	Str     string
	Num     float64
	Boolean bool
}

func nodeSetVal(nodes []xutils.Node) Value { return Value{Kind: NodeSetValue, Nodes: nodes} }
func stringVal(s string) Value             { return Value{Kind: StringValue, Str: s} }
func numberVal(n float64) Value            { return Value{Kind: NumberValue, Num: n} }
func boolVal(b bool) Value                 { return Value{Kind: BooleanValue, Boolean: b} }

// AsBoolean applies the XPath 1.0 boolean() coercion.
func (v Value) AsBoolean() bool {
	switch v.Kind {
	case NodeSetValue:
		return len(v.Nodes) > 0
	case StringValue:
		return len(v.Str) > 0
	case NumberValue:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case BooleanValue:
		return v.Boolean
	}
	return false
}

// AsString applies the XPath 1.0 string() coercion.
func (v Value) AsString() string {
	switch v.Kind {
	case NodeSetValue:
		if len(v.Nodes) == 0 {
			return ""
		}
		return stringValueOf(v.Nodes[0])
	case StringValue:
		return v.Str
	case NumberValue:
		return formatXPathNumber(v.Num)
	case BooleanValue:
		if v.Boolean {
			return "true"
		}
		return "false"
	}
	return ""
}

// AsNumber applies the XPath 1.0 number() coercion.
func (v Value) AsNumber() float64 {
	switch v.Kind {
	case NodeSetValue:
		s := v.AsString()
		return parseXPathNumberLenient(s)
	case StringValue:
		return parseXPathNumberLenient(v.Str)
	case NumberValue:
		return v.Num
	case BooleanValue:
		if v.Boolean {
			return 1
		}
		return 0
	}
	return math.NaN()
}

func parseXPathNumberLenient(s string) float64 {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func formatXPathNumber(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// stringValueOf implements the XPath 1.0 string-value of a node: a
// leaf/leaf-list's own value, or the concatenation of a subtree's
// descendant text in document order for a container/list.
func stringValueOf(n xutils.Node) string {
	if n.IsLeaf() || n.IsLeafList() {
		return n.Value()
	}
	var b strings.Builder
	for _, c := range n.Children(xutils.AllChildren, xutils.Unsorted) {
		b.WriteString(stringValueOf(c))
	}
	return b.String()
}

// dedupeAndSort removes duplicate members (by xutils.Identity) and
// returns the node-set in document order (spec.md §4.3, "Node-set
// ordering", "Duplicates are eliminated using a hash side-index").
func dedupeAndSort(nodes []xutils.Node) []xutils.Node {
	deduped := xutils.RemoveDuplicates(nodes)
	sort.SliceStable(deduped, func(i, j int) bool {
		return documentOrderKey(deduped[i]) < documentOrderKey(deduped[j])
	})
	return deduped
}

// documentOrderKey builds a sortable key from the root-to-node path of
// sibling indices, giving a total document order without needing a
// pre-assigned position on every node (the teacher's xpath/context.go
// instead caches positions as they are discovered during a walk; this
// module's xutils.Node has no position field to cache into, so the key
// is recomputed per comparison -- acceptable since sort.SliceStable
// calls it O(n log n) times on an already-small predicate node-set).
func documentOrderKey(n xutils.Node) string {
	var segs []string
	cur := n
	for cur != nil {
		parent := cur.Parent()
		if parent == nil {
			segs = append([]string{"0"}, segs...)
			break
		}
		idx := 0
		for i, c := range parent.Children(xutils.AllChildren, xutils.Unsorted) {
			if xutils.Identity(c) == xutils.Identity(cur) {
				idx = i
				break
			}
		}
		segs = append([]string{fmt.Sprintf("%04d", idx)}, segs...)
		cur = parent
	}
	return strings.Join(segs, "/")
}
