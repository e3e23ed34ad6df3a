// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xpath

import "fmt"

// arity describes the valid argument count range for a function name,
// [Min,Max]; Max == -1 means unbounded (spec.md §6 function library,
// "Function-call arity is checked during reparse against a static
// table").
type arity struct{ Min, Max int }

var functionArity = map[string]arity{
	// XPath 1.0 core library
	"last":              {0, 0},
	"position":          {0, 0},
	"count":             {1, 1},
	"id":                {1, 1},
	"local-name":        {0, 1},
	"namespace-uri":     {0, 1},
	"name":              {0, 1},
	"string":            {0, 1},
	"concat":            {2, -1},
	"starts-with":       {2, 2},
	"contains":          {2, 2},
	"substring-before":  {2, 2},
	"substring-after":   {2, 2},
	"substring":         {2, 3},
	"string-length":     {0, 1},
	"normalize-space":   {0, 1},
	"translate":         {3, 3},
	"boolean":           {1, 1},
	"not":               {1, 1},
	"true":              {0, 0},
	"false":             {0, 0},
	"lang":              {1, 1},
	"number":            {0, 1},
	"sum":               {1, 1},
	"floor":             {1, 1},
	"ceiling":           {1, 1},
	"round":             {1, 1},

	// YANG function library
	"current":              {0, 0},
	"deref":                {1, 1},
	"derived-from":         {2, 2},
	"derived-from-or-self": {2, 2},
	"enum-value":           {1, 1},
	"bit-is-set":           {2, 2},
	"re-match":             {2, 2},
}

func checkArity(n node) error {
	switch t := n.(type) {
	case functionCallNode:
		a, ok := functionArity[t.name]
		if !ok {
			return fmt.Errorf("xpath: unknown function %s", t.name)
		}
		if len(t.args) < a.Min || (a.Max >= 0 && len(t.args) > a.Max) {
			return fmt.Errorf("xpath: function %s called with %d arguments", t.name, len(t.args))
		}
		for _, a := range t.args {
			if err := checkArity(a); err != nil {
				return err
			}
		}
	case orNode:
		return firstErr(checkArity(t.left), checkArity(t.right))
	case andNode:
		return firstErr(checkArity(t.left), checkArity(t.right))
	case compareNode:
		return firstErr(checkArity(t.left), checkArity(t.right))
	case additiveNode:
		return firstErr(checkArity(t.left), checkArity(t.right))
	case multiplicativeNode:
		return firstErr(checkArity(t.left), checkArity(t.right))
	case unaryMinusNode:
		return checkArity(t.operand)
	case unionNode:
		return firstErr(checkArity(t.left), checkArity(t.right))
	case filterNode:
		if err := checkArity(t.primary); err != nil {
			return err
		}
		for _, pr := range t.predicates {
			if err := checkArity(pr); err != nil {
				return err
			}
		}
	case locationPathNode:
		if t.relative != nil {
			if err := checkArity(t.relative); err != nil {
				return err
			}
		}
		for _, s := range t.steps {
			for _, pr := range s.predicates {
				if err := checkArity(pr); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
