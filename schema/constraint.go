package schema

// When is a compiled "when" statement: existence of the host node is
// conditional on cond evaluating true (spec.md §3, §4.4 phase 6).
type When struct {
	Source string
	Cond   CompiledExpr
}

// Must is a compiled "must" statement: the host node's value/subtree
// must satisfy cond whenever the host node is present (spec.md §4.4
// phase 7).
type Must struct {
	Source       string
	Cond         CompiledExpr
	ErrorMessage string
	ErrorAppTag  string
}

// CompiledExpr is implemented by *xpath.Expr; schema carries only the
// interface and does not import xpath (xpath walks schema trees
// through XNode's xutils.Node implementation, not schema.Node).
type CompiledExpr interface {
	Source() string
}

// Unique is a single "unique" statement: the named relative leaf paths
// must, taken together, be distinct across all instances of the owning
// list (spec.md §3 list payload, §4.4 phase 3).
type Unique struct {
	Paths [][]string // each entry is a relative path to a leaf, split on '/'
}
