// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xpath

import "fmt"

// parser is a recursive-descent implementation of the XPath 1.0
// grammar (spec.md §4.2's "reparse that walks the grammar... without
// materialising an AST" -- this implementation does build a tree,
// the pragmatic deviation documented in token.go's package comment).
// At each entry point it also records the PrecLevel that production
// corresponds to into the shared repeat table, keyed by the starting
// token's position, giving every sub-expression start a list of the
// precedence levels reachable there (spec.md §4.2 "repeat[]").
type parser struct {
	toks   []token
	pos    int
	src    string
	repeat map[int][]PrecLevel
}

func newParser(src string, toks []token) *parser {
	return &parser{toks: toks, src: src, repeat: map[int][]PrecLevel{}}
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() *token {
	if p.atEnd() {
		return nil
	}
	return &p.toks[p.pos]
}

func (p *parser) next() *token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) errAt(pos int, format string, args ...interface{}) error {
	return &SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) srcPos() int {
	if p.atEnd() {
		return len(p.src)
	}
	return p.peek().pos
}

func (p *parser) markLevel(lvl PrecLevel) {
	pos := p.srcPos()
	p.repeat[pos] = append(p.repeat[pos], lvl)
}

// parseExpr is the grammar's top production (Expr ::= OrExpr).
func (p *parser) parseExpr() (node, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (node, error) {
	p.markLevel(LevelOr)
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil || t.kind != OP_LOG || t.text != "or" {
			return left, nil
		}
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
}

func (p *parser) parseAnd() (node, error) {
	p.markLevel(LevelAnd)
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil || t.kind != OP_LOG || t.text != "and" {
			return left, nil
		}
		p.next()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
}

func (p *parser) parseEquality() (node, error) {
	p.markLevel(LevelEquality)
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil || t.kind != OP_COMP || (t.text != "=" && t.text != "!=") {
			return left, nil
		}
		p.next()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = compareNode{op: t.text, left: left, right: right}
	}
}

func (p *parser) parseRelational() (node, error) {
	p.markLevel(LevelRelational)
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil || t.kind != OP_COMP || (t.text != "<" && t.text != "<=" && t.text != ">" && t.text != ">=") {
			return left, nil
		}
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = compareNode{op: t.text, left: left, right: right}
	}
}

func (p *parser) parseAdditive() (node, error) {
	p.markLevel(LevelAdditive)
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil || t.kind != OP_MATH || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = additiveNode{op: t.text, left: left, right: right}
	}
}

func (p *parser) parseMultiplicative() (node, error) {
	p.markLevel(LevelMultiplicative)
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil {
			return left, nil
		}
		if t.kind == OP_MATH && t.text == "*" {
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = multiplicativeNode{op: "*", left: left, right: right}
			continue
		}
		if t.kind == OP_MATH && (t.text == "div" || t.text == "mod") {
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = multiplicativeNode{op: t.text, left: left, right: right}
			continue
		}
		return left, nil
	}
}

func (p *parser) parseUnary() (node, error) {
	p.markLevel(LevelUnary)
	t := p.peek()
	if t != nil && t.kind == OP_MATH && t.text == "-" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryMinusNode{operand: operand}, nil
	}
	return p.parseUnion()
}

func (p *parser) parseUnion() (node, error) {
	p.markLevel(LevelUnion)
	left, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil || t.kind != OP_UNI {
			return left, nil
		}
		p.next()
		right, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		left = unionNode{left: left, right: right}
	}
}

// parsePath implements PathExpr: either a LocationPath, or a
// FilterExpr optionally followed by "/"/"//" and a RelativeLocationPath.
func (p *parser) parsePath() (node, error) {
	p.markLevel(LevelPath)
	if p.looksLikeLocationPath() {
		return p.parseLocationPath()
	}

	primary, err := p.parseFilterExpr()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t != nil && t.kind == OP_PATH {
		op := t.text
		p.next()
		steps, err := p.parseRelativeSteps()
		if err != nil {
			return nil, err
		}
		if op == "//" {
			steps = append([]step{{axis: "descendant-or-self", nodeTest: nodeTest{kind: "node"}}}, steps...)
		}
		return locationPathNode{relative: primary, steps: steps}, nil
	}
	return primary, nil
}

// looksLikeLocationPath decides, without consuming input, whether the
// upcoming tokens start a LocationPath rather than a FilterExpr. A
// LocationPath starts with "/", "//", ".", "..", "@", an axis name
// followed by "::", or a NAMETEST/NODETYPE/"*" step.
func (p *parser) looksLikeLocationPath() bool {
	t := p.peek()
	if t == nil {
		return false
	}
	switch t.kind {
	case OP_PATH, DOT, DDOT, AT:
		return true
	case NAMETEST, NODETYPE:
		return true
	}
	return false
}

func (p *parser) parseLocationPath() (node, error) {
	t := p.peek()
	if t != nil && t.kind == OP_PATH {
		op := t.text
		p.next()
		if p.atEnd() || !p.looksLikeStepStart() {
			// bare "/" selects the document root; not meaningful for a
			// schema/data tree rooted at a module, but accepted
			// syntactically as an empty relative path beneath root.
			return locationPathNode{absolute: true}, nil
		}
		steps, err := p.parseRelativeSteps()
		if err != nil {
			return nil, err
		}
		if op == "//" {
			steps = append([]step{{axis: "descendant-or-self", nodeTest: nodeTest{kind: "node"}}}, steps...)
		}
		return locationPathNode{absolute: true, steps: steps}, nil
	}
	steps, err := p.parseRelativeSteps()
	if err != nil {
		return nil, err
	}
	return locationPathNode{steps: steps}, nil
}

func (p *parser) looksLikeStepStart() bool {
	t := p.peek()
	if t == nil {
		return false
	}
	switch t.kind {
	case DOT, DDOT, AT, NAMETEST, NODETYPE:
		return true
	}
	return false
}

func (p *parser) parseRelativeSteps() ([]step, error) {
	var steps []step
	s, err := p.parseStep()
	if err != nil {
		return nil, err
	}
	steps = append(steps, s)
	for {
		t := p.peek()
		if t == nil || t.kind != OP_PATH {
			return steps, nil
		}
		op := t.text
		p.next()
		if op == "//" {
			steps = append(steps, step{axis: "descendant-or-self", nodeTest: nodeTest{kind: "node"}})
		}
		s, err := p.parseStep()
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
}

func (p *parser) parseStep() (step, error) {
	t := p.peek()
	if t == nil {
		return step{}, p.errAt(p.srcPos(), "expected step")
	}
	if t.kind == DOT {
		p.next()
		return step{axis: "self", nodeTest: nodeTest{kind: "node"}}, nil
	}
	if t.kind == DDOT {
		p.next()
		return step{axis: "parent", nodeTest: nodeTest{kind: "node"}}, nil
	}

	axis := "child"
	if t.kind == AT {
		axis = "attribute"
		p.next()
		t = p.peek()
	} else if t.kind == NAMETEST && isAxisName(t.text) {
		// lookahead for "::"
		if p.pos+1 < len(p.toks) && p.toks[p.pos+1].kind == OP_PATH && p.toks[p.pos+1].text == "::" {
			axis = t.text
			p.next()
			p.next()
			t = p.peek()
		}
	}

	nt, err := p.parseNodeTest(t)
	if err != nil {
		return step{}, err
	}

	var preds []node
	for {
		pt := p.peek()
		if pt == nil || pt.kind != BRACK1 {
			break
		}
		p.next()
		pred, err := p.parseExpr()
		if err != nil {
			return step{}, err
		}
		if p.peek() == nil || p.peek().kind != BRACK2 {
			return step{}, p.errAt(p.srcPos(), "expected ]")
		}
		p.next()
		preds = append(preds, pred)
	}

	return step{axis: axis, nodeTest: nt, predicates: preds}, nil
}

func isAxisName(s string) bool {
	switch s {
	case "ancestor", "ancestor-or-self", "attribute", "child", "descendant",
		"descendant-or-self", "following", "following-sibling", "namespace",
		"parent", "preceding", "preceding-sibling", "self":
		return true
	}
	return false
}

// parseNodeTest consumes the node-test's own tokens (for a NODETYPE
// test, that includes the "(" ["literal"] ")" argument list --
// processing-instruction takes an optional literal target, the other
// three take none).
func (p *parser) parseNodeTest(t *token) (nodeTest, error) {
	if t == nil {
		return nodeTest{}, p.errAt(p.srcPos(), "expected node test")
	}
	switch t.kind {
	case NAMETEST:
		p.next()
		if t.text == "*" {
			return nodeTest{kind: "wildcard"}, nil
		}
		return nodeTest{kind: "name", name: t.text}, nil
	case NODETYPE:
		p.next()
		if p.peek() == nil || p.peek().kind != PAR1 {
			return nodeTest{}, p.errAt(p.srcPos(), "expected ( after node-type test")
		}
		p.next()
		if p.peek() != nil && p.peek().kind == LITERAL {
			p.next()
		}
		if p.peek() == nil || p.peek().kind != PAR2 {
			return nodeTest{}, p.errAt(p.srcPos(), "expected ) to close node-type test")
		}
		p.next()
		return nodeTest{kind: t.text}, nil
	default:
		return nodeTest{}, p.errAt(t.pos, "expected node test, got %s", t.kind)
	}
}

// parseFilterExpr implements FilterExpr ::= PrimaryExpr Predicate*.
func (p *parser) parseFilterExpr() (node, error) {
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	var preds []node
	for {
		t := p.peek()
		if t == nil || t.kind != BRACK1 {
			break
		}
		p.next()
		pred, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek() == nil || p.peek().kind != BRACK2 {
			return nil, p.errAt(p.srcPos(), "expected ]")
		}
		p.next()
		preds = append(preds, pred)
	}
	if len(preds) == 0 {
		return primary, nil
	}
	return filterNode{primary: primary, predicates: preds}, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.peek()
	if t == nil {
		return nil, p.errAt(p.srcPos(), "unexpected end of expression")
	}
	switch t.kind {
	case PAR1:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek() == nil || p.peek().kind != PAR2 {
			return nil, p.errAt(p.srcPos(), "expected )")
		}
		p.next()
		return inner, nil
	case LITERAL:
		p.next()
		return literalNode{value: t.text}, nil
	case NUMBER:
		p.next()
		v, err := parseXPathNumber(t.text)
		if err != nil {
			return nil, p.errAt(t.pos, "invalid number %q", t.text)
		}
		return numberNode{value: v}, nil
	case FUNCNAME:
		p.next()
		if p.peek() == nil || p.peek().kind != PAR1 {
			return nil, p.errAt(p.srcPos(), "expected ( after function name")
		}
		p.next()
		var args []node
		if p.peek() != nil && p.peek().kind != PAR2 {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.peek() != nil && p.peek().kind == COMMA {
					p.next()
					continue
				}
				break
			}
		}
		if p.peek() == nil || p.peek().kind != PAR2 {
			return nil, p.errAt(p.srcPos(), "expected ) to close function call")
		}
		p.next()
		return functionCallNode{name: t.text, args: args}, nil
	default:
		return nil, p.errAt(t.pos, "unexpected token %s", t.kind)
	}
}
