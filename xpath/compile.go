// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xpath

import "strconv"

// Expr is a compiled XPath expression: the flat parallel-array token
// stream spec.md §4.2 specifies (Token/ExprPos/TokLen/Repeat), plus
// the expression tree the evaluator dispatches on (root).
type Expr struct {
	source string

	Token   []TokenKind
	ExprPos []int
	TokLen  []int
	Repeat  [][]PrecLevel

	root node
}

// Source returns the original expression text; Expr implements
// schema.CompiledExpr via this method.
func (e *Expr) Source() string { return e.source }

// MaxExprLen is the longest expression Compile accepts (spec.md §4.2
// "length ≤ 65535").
const MaxExprLen = 65535

// Compile lexes and parses src into an immutable Expr, or returns a
// *SyntaxError carrying the byte offset of the first lexical or
// grammatical problem found. An unknown function name or a wrong
// argument count is reported as a plain error without an offset.
func Compile(src string) (*Expr, error) {
	if len(src) > MaxExprLen {
		return nil, &SyntaxError{Pos: MaxExprLen, Message: "expression exceeds maximum length"}
	}

	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := newParser(src, toks)
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errAt(p.srcPos(), "unexpected trailing input")
	}
	if err := checkArity(root); err != nil {
		return nil, err
	}

	e := &Expr{source: src, root: root}
	for _, t := range toks {
		e.Token = append(e.Token, t.kind)
		e.ExprPos = append(e.ExprPos, t.pos)
		e.TokLen = append(e.TokLen, t.len)
		e.Repeat = append(e.Repeat, p.repeat[t.pos])
	}
	return e, nil
}

func parseXPathNumber(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
