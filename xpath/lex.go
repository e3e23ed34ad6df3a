// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xpath

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// SyntaxError carries the byte offset of a lexical or grammatical
// failure (spec.md §4.2 "fail with a syntactic error pointing to a
// byte offset").
type SyntaxError struct {
	Pos     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("xpath: %s (at byte %d)", e.Message, e.Pos)
}

var nodeTypeNames = map[string]bool{
	"node": true, "text": true, "comment": true, "processing-instruction": true,
}

// logicalWords and mathWords cover the named operators XPath 1.0 lexes as
// NAMETEST-shaped tokens ("and", "or", "mod", "div") so the lexer's
// disambiguation pass (spec.md §4.2 "NAMETEST followed by ( becomes
// FUNCNAME or NODETYPE") can tell a name apart from a keyword.
var logicalWords = map[string]bool{"and": true, "or": true}
var mathWords = map[string]bool{"mod": true, "div": true}

// lex scans src into a flat token list. It implements production
// 28 (ExprToken) of the XPath 1.0 grammar's lexical structure,
// including the "*" multiply-vs-wildcard and "/" vs "//"
// disambiguation rules.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	n := len(src)

	// prevAllowsOperator reports whether the previous emitted token
	// allows "*" to be read as an operator (per the XPath 1.0 lexical
	// disambiguation rule based on preceding-token context); "-" is
	// always lexed as OP_MATH.
	prevAllowsOperator := func() bool {
		if len(toks) == 0 {
			return false
		}
		switch toks[len(toks)-1].kind {
		case AT, OP_LOG, OP_COMP, OP_MATH, OP_UNI, OP_PATH, PAR1, BRACK1, COMMA:
			return false
		default:
			return true
		}
	}

	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{kind: PAR1, pos: i, len: 1})
			i++
		case c == ')':
			toks = append(toks, token{kind: PAR2, pos: i, len: 1})
			i++
		case c == '[':
			toks = append(toks, token{kind: BRACK1, pos: i, len: 1})
			i++
		case c == ']':
			toks = append(toks, token{kind: BRACK2, pos: i, len: 1})
			i++
		case c == '@':
			toks = append(toks, token{kind: AT, pos: i, len: 1})
			i++
		case c == ',':
			toks = append(toks, token{kind: COMMA, pos: i, len: 1})
			i++
		case c == '.':
			if i+1 < n && src[i+1] == '.' {
				toks = append(toks, token{kind: DDOT, pos: i, len: 2})
				i += 2
			} else if i+1 < n && isDigit(src[i+1]) {
				start := i
				i++
				for i < n && isDigit(src[i]) {
					i++
				}
				toks = append(toks, token{kind: NUMBER, pos: start, len: i - start, text: src[start:i]})
			} else {
				toks = append(toks, token{kind: DOT, pos: i, len: 1})
				i++
			}
		case c == '/':
			if i+1 < n && src[i+1] == '/' {
				toks = append(toks, token{kind: OP_PATH, pos: i, len: 2, text: "//"})
				i += 2
			} else {
				toks = append(toks, token{kind: OP_PATH, pos: i, len: 1, text: "/"})
				i++
			}
		case c == '|':
			toks = append(toks, token{kind: OP_UNI, pos: i, len: 1, text: "|"})
			i++
		case c == '+':
			toks = append(toks, token{kind: OP_MATH, pos: i, len: 1, text: "+"})
			i++
		case c == '-':
			toks = append(toks, token{kind: OP_MATH, pos: i, len: 1, text: "-"})
			i++
		case c == '=':
			toks = append(toks, token{kind: OP_COMP, pos: i, len: 1, text: "="})
			i++
		case c == '!':
			if i+1 < n && src[i+1] == '=' {
				toks = append(toks, token{kind: OP_COMP, pos: i, len: 2, text: "!="})
				i += 2
			} else {
				return nil, &SyntaxError{Pos: i, Message: "unexpected '!'"}
			}
		case c == '<':
			if i+1 < n && src[i+1] == '=' {
				toks = append(toks, token{kind: OP_COMP, pos: i, len: 2, text: "<="})
				i += 2
			} else {
				toks = append(toks, token{kind: OP_COMP, pos: i, len: 1, text: "<"})
				i++
			}
		case c == '>':
			if i+1 < n && src[i+1] == '=' {
				toks = append(toks, token{kind: OP_COMP, pos: i, len: 2, text: ">="})
				i += 2
			} else {
				toks = append(toks, token{kind: OP_COMP, pos: i, len: 1, text: ">"})
				i++
			}
		case c == '*':
			if prevAllowsOperator() {
				toks = append(toks, token{kind: OP_MATH, pos: i, len: 1, text: "*"})
			} else {
				toks = append(toks, token{kind: NAMETEST, pos: i, len: 1, text: "*"})
			}
			i++
		case c == '\'' || c == '"':
			start := i
			quote := c
			i++
			for i < n && src[i] != quote {
				i++
			}
			if i >= n {
				return nil, &SyntaxError{Pos: start, Message: "unterminated string literal"}
			}
			toks = append(toks, token{kind: LITERAL, pos: start, len: i - start + 1, text: src[start+1 : i]})
			i++
		case isDigit(c):
			start := i
			for i < n && isDigit(src[i]) {
				i++
			}
			if i < n && src[i] == '.' {
				i++
				for i < n && isDigit(src[i]) {
					i++
				}
			}
			toks = append(toks, token{kind: NUMBER, pos: start, len: i - start, text: src[start:i]})
		case c == ':' && i+1 < n && src[i+1] == ':':
			toks = append(toks, token{kind: OP_PATH, pos: i, len: 2, text: "::"})
			i += 2
		case isNameStart(rune(c)) || c >= 0x80:
			start := i
			r, sz := decodeRune(src, i)
			i += sz
			_ = r
			for i < n {
				if src[i] == ':' && i+1 < n && src[i+1] == ':' {
					break // axis separator, lexed on its own below
				}
				rc, rsz := decodeRune(src, i)
				if !isNameChar(rc) {
					break
				}
				i += rsz
			}
			name := src[start:i]
			toks = append(toks, classifyName(src, name, start, i))
		default:
			return nil, &SyntaxError{Pos: i, Message: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	return toks, nil
}

// classifyName implements the NAMETEST/FUNCNAME/NODETYPE/OP_LOG/OP_MATH
// disambiguation: a name immediately followed by "(" is a function call
// unless it is one of the four node-type test keywords (spec.md §4.2).
func classifyName(src, name string, start, end int) token {
	// peek past whitespace for '('
	j := end
	for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
		j++
	}
	followedByParen := j < len(src) && src[j] == '('

	lower := name
	if logicalWords[lower] {
		return token{kind: OP_LOG, pos: start, len: end - start, text: lower}
	}
	if mathWords[lower] {
		return token{kind: OP_MATH, pos: start, len: end - start, text: lower}
	}
	if followedByParen {
		if nodeTypeNames[name] {
			return token{kind: NODETYPE, pos: start, len: end - start, text: name}
		}
		return token{kind: FUNCNAME, pos: start, len: end - start, text: name}
	}
	return token{kind: NAMETEST, pos: start, len: end - start, text: name}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == ':' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func decodeRune(s string, i int) (rune, int) {
	r, sz := utf8.DecodeRuneInString(s[i:])
	return r, sz
}
