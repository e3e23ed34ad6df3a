// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package schema

import "github.com/ysemantic/yangcore/internal/intern"

// Node is the capability set every schema definition kind implements
// (spec.md §9, "Deep inheritance": "a tagged sum with one variant per
// kind and a small capability set").
type Node interface {
	Kind() Kind
	Name() string
	QName() intern.QName
	Module() *Module
	Parent() Node
	Children() []Node

	Status() Status
	// Config reports the effective config flag: explicit on this node,
	// else inherited from the nearest ancestor that sets it, else true.
	Config() bool
	Mandatory() bool
	FeatureGate() *FeatureExpr
	Extensions() []ExtensionInstance
	DependsOn() DependsOn

	// Path returns the absolute schema path as a slice of local names.
	Path() []string

	setParent(Node)
}

// base is embedded by every concrete kind and supplies the Node methods
// common to all of them. self lets a method promoted from *base hand
// back the concrete node the caller attached it to (e.g. AddChild needs
// to set a new child's parent to the *Container/*List/... value, not to
// the embedded *base).
type base struct {
	self        Node
	kind        Kind
	name        intern.Symbol
	module      *Module
	parent      Node
	children    []Node
	status      Status
	configSet   bool
	config      bool
	mandatory   bool
	featureGate *FeatureExpr
	extensions  []ExtensionInstance
	dependsOn   DependsOn
}

func initBase(self Node, kind Kind, name intern.Symbol, module *Module) base {
	return base{self: self, kind: kind, name: name, module: module}
}

func (b *base) Kind() Kind      { return b.kind }
func (b *base) Name() string    { return b.name.String() }
func (b *base) Module() *Module { return b.module }
func (b *base) Parent() Node {
	if b.parent == nil {
		return nil
	}
	return b.parent
}
func (b *base) Children() []Node                { return b.children }
func (b *base) Status() Status                  { return b.status }
func (b *base) Mandatory() bool                  { return b.mandatory }
func (b *base) FeatureGate() *FeatureExpr         { return b.featureGate }
func (b *base) Extensions() []ExtensionInstance   { return b.extensions }
func (b *base) DependsOn() DependsOn              { return b.dependsOn }
func (b *base) setParent(p Node)                  { b.parent = p }

func (b *base) QName() intern.QName {
	ns := intern.Symbol{}
	if b.module != nil {
		ns = b.module.Namespace
	}
	return intern.QName{Module: ns, Local: b.name}
}

func (b *base) Config() bool {
	if b.configSet {
		return b.config
	}
	if b.parent != nil {
		return b.parent.Config()
	}
	return true
}

func (b *base) Path() []string {
	if b.parent == nil {
		return []string{b.Name()}
	}
	return append(append([]string{}, b.parent.Path()...), b.Name())
}

// SetConfig records an explicit config statement on the node (used by
// the resolver and by "refine").
func (b *base) SetConfig(v bool) { b.configSet, b.config = true, v }

// SetMandatory is used by the resolver/refine to set the mandatory flag.
func (b *base) SetMandatory(v bool) { b.mandatory = v }

// SetStatus is used by the resolver while compiling the status statement.
func (b *base) SetStatus(s Status) { b.status = s }

// SetFeatureGate attaches the node's if-feature expression.
func (b *base) SetFeatureGate(f *FeatureExpr) { b.featureGate = f }

// SetDependsOn is set by resolver pass 9 (when/must static check).
func (b *base) SetDependsOn(d DependsOn) { b.dependsOn = d }

// AddExtension appends one extension-instance attachment.
func (b *base) AddExtension(e ExtensionInstance) { b.extensions = append(b.extensions, e) }

// AddChild appends a resolved child, fixing up its parent pointer to
// the concrete node this base is embedded in.
func (b *base) AddChild(n Node) {
	n.setParent(b.self)
	b.children = append(b.children, n)
}

// ResetChildren replaces the full child list, used by deviation
// pass 7's "not-supported" handling to drop a child in place.
func (b *base) ResetChildren(children []Node) { b.children = children }

// ExtensionInstance is an opaque attachment for a YANG extension
// statement use-site, carried as a typed list rather than subclassing
// (spec.md §9, "Deep inheritance").
type ExtensionInstance struct {
	QName intern.QName
	Arg   string
	// Validator, if non-nil, is invoked by the validator's extension
	// hook (spec.md §4.4 phase 8).
	Validator func(host Node) error
}

// FeatureExpr is a boolean combination of feature references gating a
// schema node's existence ("if-feature").
type FeatureExpr struct {
	// Op is "", "not", "and", "or". "" means Ref is a leaf reference.
	Op    string
	Ref   *Feature
	Left  *FeatureExpr
	Right *FeatureExpr
}

// Eval evaluates the feature expression given the set of currently
// enabled features.
func (f *FeatureExpr) Eval(enabled map[*Feature]bool) bool {
	if f == nil {
		return true
	}
	switch f.Op {
	case "not":
		return !f.Left.Eval(enabled)
	case "and":
		return f.Left.Eval(enabled) && f.Right.Eval(enabled)
	case "or":
		return f.Left.Eval(enabled) || f.Right.Eval(enabled)
	default:
		return enabled[f.Ref]
	}
}

// ---- concrete kinds ----

type Container struct {
	base
	Presence bool
	When     *When
	Must     []Must
}

func NewContainer(name intern.Symbol, module *Module) *Container {
	c := &Container{}
	c.base = initBase(c, KindContainer, name, module)
	return c
}

type List struct {
	base
	Keyname   []string
	Unique    []Unique
	Min, Max  uint64 // Max == ^uint64(0) means unbounded
	OrderedBy OrderedBy
	When      *When
	Must      []Must
}

func NewList(name intern.Symbol, module *Module) *List {
	l := &List{Max: ^uint64(0)}
	l.base = initBase(l, KindList, name, module)
	return l
}

type Leaf struct {
	base
	Type       *TypeDescriptor
	Default    string
	HasDefault bool
	When       *When
	Must       []Must
}

func NewLeaf(name intern.Symbol, module *Module) *Leaf {
	l := &Leaf{}
	l.base = initBase(l, KindLeaf, name, module)
	return l
}

type LeafList struct {
	base
	Type      *TypeDescriptor
	Defaults  []string
	Min, Max  uint64
	OrderedBy OrderedBy
	When      *When
	Must      []Must
}

func NewLeafList(name intern.Symbol, module *Module) *LeafList {
	l := &LeafList{Max: ^uint64(0)}
	l.base = initBase(l, KindLeafList, name, module)
	return l
}

type Choice struct {
	base
	DefaultCase *Case
	When        *When
}

func NewChoice(name intern.Symbol, module *Module) *Choice {
	c := &Choice{}
	c.base = initBase(c, KindChoice, name, module)
	return c
}

type Case struct {
	base
	When *When
}

func NewCase(name intern.Symbol, module *Module) *Case {
	c := &Case{}
	c.base = initBase(c, KindCase, name, module)
	return c
}

type AnyData struct {
	base
	When  *When
	Must  []Must
	IsXML bool // true for anyxml, false for anydata
}

func NewAnyData(name intern.Symbol, module *Module, isXML bool) *AnyData {
	a := &AnyData{IsXML: isXML}
	kind := KindAnyData
	if isXML {
		kind = KindAnyXML
	}
	a.base = initBase(a, kind, name, module)
	return a
}

type Rpc struct {
	base
	Input  *Container
	Output *Container
}

func NewRpc(name intern.Symbol, module *Module) *Rpc {
	r := &Rpc{}
	r.base = initBase(r, KindRpc, name, module)
	return r
}

type Action struct {
	base
	Input  *Container
	Output *Container
}

func NewAction(name intern.Symbol, module *Module) *Action {
	a := &Action{}
	a.base = initBase(a, KindAction, name, module)
	return a
}

type Notification struct {
	base
	Must []Must
}

func NewNotification(name intern.Symbol, module *Module) *Notification {
	n := &Notification{}
	n.base = initBase(n, KindNotification, name, module)
	return n
}

// Grouping's children are a template: never instantiated directly, only
// deep-copied by uses-expansion (spec.md §4.1 pass 5).
type Grouping struct {
	base
}

func NewGrouping(name intern.Symbol, module *Module) *Grouping {
	g := &Grouping{}
	g.base = initBase(g, KindGrouping, name, module)
	return g
}

type Augment struct {
	base
	Target []string
	When   *When
}

func NewAugment(module *Module) *Augment {
	a := &Augment{}
	a.base = initBase(a, KindAugment, intern.Symbol{}, module)
	return a
}

type Uses struct {
	base
	Grouping *Grouping
	Refine   map[string]*Refine // relative path (joined by '/') -> refine
	Augments []*Augment
	When     *When
}

func NewUses(name intern.Symbol, module *Module) *Uses {
	u := &Uses{Refine: map[string]*Refine{}}
	u.base = initBase(u, KindUses, name, module)
	return u
}

// Refine holds the subset of a uses's "refine" statement this engine
// supports tightening (spec.md §4.1 pass 5).
type Refine struct {
	Default     string
	HasDefault  bool
	Mandatory   *bool
	Min, Max    *uint64
	Description string
	Must        []Must
	When        *When
	Config      *bool
}

type Identity struct {
	base
	Bases   []*Identity
	derived map[*Identity]bool // memoised transitive-derived set
}

func NewIdentity(name intern.Symbol, module *Module) *Identity {
	id := &Identity{}
	id.base = initBase(id, KindIdentity, name, module)
	return id
}

// IsDerivedFromOrSelf implements the identity DAG walk spec.md §4.1 pass
// 4 memoises, backing the `derived-from-or-self` XPath function.
func (id *Identity) IsDerivedFromOrSelf(target *Identity) bool {
	if id == target {
		return true
	}
	return id.derived[target]
}

// IsDerivedFrom is like IsDerivedFromOrSelf but excludes the identity
// matching itself, backing `derived-from`.
func (id *Identity) IsDerivedFrom(target *Identity) bool {
	if id == target {
		return false
	}
	return id.derived[target]
}

// SetDerivedSet is called once by the resolver after computing the
// transitive closure of id's bases.
func (id *Identity) SetDerivedSet(d map[*Identity]bool) { id.derived = d }

// DerivedSetSnapshot returns the memoised transitive base set computed
// by SetDerivedSet, or nil before resolution has reached this identity.
func (id *Identity) DerivedSetSnapshot() map[*Identity]bool { return id.derived }

type Typedef struct {
	base
	Type *TypeDescriptor
}

func NewTypedef(name intern.Symbol, module *Module) *Typedef {
	t := &Typedef{}
	t.base = initBase(t, KindTypedef, name, module)
	return t
}

type Feature struct {
	base
	Gate *FeatureExpr // this feature's own if-feature gate, if any
}

func NewFeature(name intern.Symbol, module *Module) *Feature {
	f := &Feature{}
	f.base = initBase(f, KindFeature, name, module)
	return f
}
