// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"fmt"
	"strings"

	"github.com/ysemantic/yangcore/schema"
)

// tokenizeFeatureExpr splits an if-feature argument into identifiers,
// parens, and the "and"/"or"/"not" keywords. YANG's if-feature grammar
// (RFC 7950 §9.10.2) has no other token kinds.
func tokenizeFeatureExpr(src string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, ch := range src {
		switch {
		case ch == '(' || ch == ')':
			flush()
			toks = append(toks, string(ch))
		case ch == ' ' || ch == '\t' || ch == '\n':
			flush()
		default:
			cur.WriteRune(ch)
		}
	}
	flush()
	return toks
}

type featureExprParser struct {
	toks   []string
	pos    int
	r      *resolver
	module string
}

func (p *featureExprParser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *featureExprParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *featureExprParser) parseOr() (*schema.FeatureExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek() == "or" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &schema.FeatureExpr{Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *featureExprParser) parseAnd() (*schema.FeatureExpr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek() == "and" {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &schema.FeatureExpr{Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *featureExprParser) parseUnary() (*schema.FeatureExpr, error) {
	if p.peek() == "not" {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &schema.FeatureExpr{Op: "not", Left: inner}, nil
	}
	return p.parseAtom()
}

func (p *featureExprParser) parseAtom() (*schema.FeatureExpr, error) {
	tok := p.next()
	if tok == "(" {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next() != ")" {
			return nil, fmt.Errorf("missing closing paren")
		}
		return inner, nil
	}
	if tok == "" {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	f, err := p.r.lookupFeature(p.module, tok)
	if err != nil {
		return nil, err
	}
	return &schema.FeatureExpr{Ref: f}, nil
}
