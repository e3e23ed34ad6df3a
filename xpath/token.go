// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Package xpath compiles and evaluates XPath 1.0 expressions extended
// with the YANG function library (spec.md §4.2/§4.3/§6). The compiler
// produces a flat, parallel-array token stream (TokenKind/ExprPos/
// TokLen/Repeat) per spec.md §4.2's representation contract; the
// evaluator walks a small expression tree built alongside that stream
// during compilation rather than re-descending the flat arrays at
// every evaluate() call (spec.md §9 notes this as a deliberate
// simplification: the flat arrays are real, addressable compiled
// output usable for diagnostics and tooling, but evaluation dispatches
// on the tree form for tractable recursive descent). Grounded on the
// teacher's xpath/program.go (byte-offset-addressable compiled form)
// and xpath/machine.go (evaluator structure), generalized from its
// yacc-generated bytecode to this module's own recursive-descent
// compiler/evaluator pair.
package xpath

// TokenKind tags one lexical token of a compiled expression.
type TokenKind int

const (
	PAR1 TokenKind = iota
	PAR2
	BRACK1
	BRACK2
	DOT
	DDOT
	AT
	COMMA
	NAMETEST
	NODETYPE
	FUNCNAME
	OP_LOG
	OP_COMP
	OP_MATH
	OP_UNI
	OP_PATH
	LITERAL
	NUMBER
)

func (k TokenKind) String() string {
	switch k {
	case PAR1:
		return "("
	case PAR2:
		return ")"
	case BRACK1:
		return "["
	case BRACK2:
		return "]"
	case DOT:
		return "."
	case DDOT:
		return ".."
	case AT:
		return "@"
	case COMMA:
		return ","
	case NAMETEST:
		return "nametest"
	case NODETYPE:
		return "nodetype"
	case FUNCNAME:
		return "funcname"
	case OP_LOG:
		return "logical-op"
	case OP_COMP:
		return "comparison-op"
	case OP_MATH:
		return "math-op"
	case OP_UNI:
		return "union-op"
	case OP_PATH:
		return "path-op"
	case LITERAL:
		return "literal"
	case NUMBER:
		return "number"
	default:
		return "unknown"
	}
}

// PrecLevel is one operator-precedence level a token position may
// start a sub-expression at (spec.md §4.2 "repeat[]").
type PrecLevel int

const (
	LevelOr PrecLevel = iota
	LevelAnd
	LevelEquality
	LevelRelational
	LevelAdditive
	LevelMultiplicative
	LevelUnary
	LevelUnion
	LevelPath
)

// token is the lexer's internal representation before it is folded
// into the Expr's parallel arrays.
type token struct {
	kind TokenKind
	pos  int
	len  int
	text string // raw spelling: operator symbol, name, literal contents, number spelling
}
