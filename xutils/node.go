// Package xutils defines the node abstraction shared by the schema and
// data packages so that a single XPath evaluator (package xpath) can
// walk either a data tree or a schema tree without knowing which one it
// has. This is the dual-mode mechanism spec.md §4.3 requires; it is
// grounded on the teacher library's XpathNode interface, generalized
// here to also cover schema-mode walks instead of only data-mode ones.
package xutils

import "github.com/ysemantic/yangcore/internal/intern"

// Filter selects which children Children should return.
type Filter int

const (
	AllChildren  Filter = iota // every child, config and state
	ConfigOnly                 // only config true children
	StateOnly                  // only config false children
)

// Sorted requests document-order children from Children; Unsorted lets
// the implementation return them in whatever (cheaper) order it has them
// in, for callers that don't care (e.g. counting).
type SortSpec bool

const (
	Unsorted SortSpec = false
	Sorted   SortSpec = true
)

// Node is the contract the XPath evaluator needs from a tree node,
// whether that node is a schema.Node (schema/atomize mode) or a
// data.Node (ordinary evaluation mode).
type Node interface {
	// Parent returns the parent node, or nil at the root.
	Parent() Node
	// Children returns the node's children, honoring filter. The
	// data.Branch and schema.XNode implementations ignore sort and
	// return storage order (insertion or declaration order) for both
	// Sorted and Unsorted; no YANG natural sort is applied.
	Children(filter Filter, sort SortSpec) []Node
	// Root returns the root of the tree this node belongs to.
	Root() Node
	// Name returns the unqualified (local) node name.
	Name() string
	// Namespace returns the owning module's namespace, used for
	// unprefixed name resolution (local module) per spec.md §4.3.
	Namespace() intern.Symbol
	// Value returns the lexical string value for a leaf/leaf-list
	// instance node, or "" for anything else.
	Value() string
	// Values returns every string value for a leaf-list node (data
	// mode only; schema mode always returns nil).
	Values() []string

	IsLeaf() bool
	IsLeafList() bool
	// IsNonPresenceContainer reports whether this is a container
	// without the presence flag set (relevant to `must`'s "ephemeral
	// evaluation of non-presence containers" rule).
	IsNonPresenceContainer() bool
	// Ephemeral nodes exist only for the duration of a when/must
	// evaluation (synthesized ancestors of a non-presence container);
	// they participate in evaluation but were never actually present.
	Ephemeral() bool

	// ListKeyMatches reports whether this node is a list instance
	// whose key named by local has the given value; used by leafref
	// predicate filtering.
	ListKeyMatches(local string, val string) bool
	// ListKeys returns the ordered key name/value pairs if this node
	// is a list instance, else nil.
	ListKeys() []KeyValue
}

// KeyValue is one key leaf's name and current value within a list
// instance, used for building a node's canonical identity string.
type KeyValue struct {
	Name  string
	Value string
}

// Identity returns a string that uniquely identifies a node within its
// tree: two nodes with the same Identity are the same node. List
// instances are distinguished by key values, leaf/leaf-list instances
// additionally carry their value, grounded on the teacher's NodeString.
func Identity(n Node) string {
	s := pathString(n)
	if n.IsLeaf() || n.IsLeafList() {
		s += "=" + n.Value()
	}
	return s
}

func pathString(n Node) string {
	if n == nil {
		return ""
	}
	parent := n.Parent()
	if parent == nil {
		return "/"
	}
	seg := n.Name()
	for _, kv := range n.ListKeys() {
		seg += "[" + kv.Name + "=" + kv.Value + "]"
	}
	if parent.Parent() == nil {
		return "/" + seg
	}
	return pathString(parent) + "/" + seg
}

// RemoveDuplicates de-duplicates a node-set using Identity as the key,
// preserving the first occurrence of each node (spec.md §4.3, "Set
// operations").
func RemoveDuplicates(nodes []Node) []Node {
	if len(nodes) < 2 {
		return nodes
	}
	seen := make(map[string]struct{}, len(nodes))
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		id := Identity(n)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Walk visits node and then, recursively, every descendant in document
// order, calling fn for each. Walk stops early if fn returns false.
func Walk(node Node, fn func(Node) bool) bool {
	if !fn(node) {
		return false
	}
	for _, c := range node.Children(AllChildren, Sorted) {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}
