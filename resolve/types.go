// Copyright (c) 2017-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/openconfig/ygot/util"

	"github.com/ysemantic/yangcore/schema"
)

var builtinKinds = map[string]schema.TypeKind{
	"int8":                schema.TInt8,
	"int16":               schema.TInt16,
	"int32":               schema.TInt32,
	"int64":               schema.TInt64,
	"uint8":               schema.TUint8,
	"uint16":              schema.TUint16,
	"uint32":              schema.TUint32,
	"uint64":              schema.TUint64,
	"decimal64":           schema.TDecimal64,
	"string":              schema.TString,
	"boolean":             schema.TBoolean,
	"enumeration":         schema.TEnumeration,
	"bits":                schema.TBits,
	"binary":              schema.TBinary,
	"leafref":             schema.TLeafref,
	"identityref":         schema.TIdentityref,
	"instance-identifier": schema.TInstanceIdentifier,
	"empty":               schema.TEmpty,
	"union":               schema.TUnion,
}

var builtinBitWidth = map[string]schema.BitWidth{
	"int8": 8, "int16": 16, "int32": 32, "int64": 64,
	"uint8": 8, "uint16": 16, "uint32": 32, "uint64": 64,
}

// resolveType closes a RawType over its typedef chain and turns it
// into an immutable TypeDescriptor (spec.md §4.1, type closure). This
// is grounded on compile.go's NewType family (one constructor per
// SchemaType, each validating its own restriction set), collapsed here
// into one function over the TypeKind tag since TypeDescriptor is
// already a flat sum type rather than per-kind constructor functions.
func (r *resolver) resolveType(moduleName string, raw schema.RawType) (*schema.TypeDescriptor, error) {
	// Builtin type names are reserved keywords, never module-scoped
	// identifiers, so they are checked before any prefix splitting.
	if kind, ok := builtinKinds[raw.Name]; ok {
		return r.resolveBuiltin(moduleName, raw.Name, kind, raw)
	}

	targetMod, localName, err := r.splitPrefixed(moduleName, raw.Name)
	if err != nil {
		return nil, err
	}
	entry, ok := r.typedefs[targetMod][localName]
	if !ok {
		return nil, fmt.Errorf("module %s: unknown type %s", moduleName, raw.Name)
	}
	base, err := r.resolveType(targetMod, entry.raw)
	if err != nil {
		return nil, err
	}
	return overlayRestrictions(base, moduleName, raw, r)
}

func (r *resolver) resolveBuiltin(moduleName, name string, kind schema.TypeKind, raw schema.RawType) (*schema.TypeDescriptor, error) {
	td := &schema.TypeDescriptor{Kind: kind, Name: name}

	switch kind {
	case schema.TInt8, schema.TInt16, schema.TInt32, schema.TInt64:
		w := builtinBitWidth[name]
		full := schema.DefaultIntRange(w)
		ranges, err := parseIntRanges(raw.RangeArg, full)
		if err != nil {
			return nil, err
		}
		td.IntRanges = ranges

	case schema.TUint8, schema.TUint16, schema.TUint32, schema.TUint64:
		w := builtinBitWidth[name]
		full := schema.DefaultUintRange(w)
		ranges, err := parseUintRanges(raw.RangeArg, full)
		if err != nil {
			return nil, err
		}
		td.UintRanges = ranges

	case schema.TDecimal64:
		fd := schema.Fracdigit(raw.FractionDigits)
		td.FractionDigits = fd
		full := schema.DefaultDecimalRange(fd)
		ranges, err := parseDecimalRanges(raw.RangeArg, full)
		if err != nil {
			return nil, err
		}
		td.DecimalRanges = ranges

	case schema.TString, schema.TBinary:
		lengths, err := parseLengths(raw.LengthArg, defaultStringLength())
		if err != nil {
			return nil, err
		}
		td.Lengths = lengths
		for _, p := range raw.Patterns {
			compiled, err := compilePattern(p)
			if err != nil {
				return nil, err
			}
			td.Patterns = append(td.Patterns, compiled)
		}

	case schema.TEnumeration:
		next := int64(0)
		for _, e := range raw.Enums {
			v := next
			if e.HasValue {
				v = e.Value
			}
			td.Enums = append(td.Enums, schema.EnumValue{Name: e.Name, Value: v})
			next = v + 1
		}

	case schema.TBits:
		next := uint32(0)
		for _, b := range raw.Bits {
			p := next
			if b.HasPosition {
				p = b.Position
			}
			td.BitPos = append(td.BitPos, schema.BitPosition{Name: b.Name, Position: p})
			next = p + 1
		}

	case schema.TLeafref:
		td.LeafrefPath = raw.Path
		td.RequireInstance = !raw.RequireInstanceSet || raw.RequireInstance

	case schema.TIdentityref:
		for _, baseRef := range raw.IdentityBases {
			baseMod, baseLocal, err := r.splitPrefixed(moduleName, baseRef)
			if err != nil {
				return nil, err
			}
			base, ok := r.identities[baseMod][baseLocal]
			if !ok {
				return nil, fmt.Errorf("module %s: unknown base identity %s", moduleName, baseRef)
			}
			td.IdentityBases = append(td.IdentityBases, base)
		}

	case schema.TInstanceIdentifier:
		td.RequireInstance = !raw.RequireInstanceSet || raw.RequireInstance

	case schema.TUnion:
		for _, member := range raw.Union {
			m, err := r.resolveType(moduleName, member)
			if err != nil {
				return nil, err
			}
			td.Members = append(td.Members, m)
		}

	case schema.TBoolean, schema.TEmpty:
		// No restrictions possible.
	}

	return td, nil
}

// overlayRestrictions applies the further-restricting statements a
// "type" referencing a typedef may carry (range/length/pattern
// narrowing an already-closed base TypeDescriptor). Per RFC 7950
// §9.2.4/9.4.4/9.4.6 a derived restriction must be a subset of the
// base's; this engine trusts that invariant rather than
// cross-checking it (the validator, not the resolver, is where a
// narrower-than-declared value is ultimately rejected).
func overlayRestrictions(base *schema.TypeDescriptor, moduleName string, raw schema.RawType, r *resolver) (*schema.TypeDescriptor, error) {
	clone := *base
	switch base.Kind {
	case schema.TInt8, schema.TInt16, schema.TInt32, schema.TInt64:
		if raw.RangeArg != "" {
			ranges, err := parseIntRangesFromSet(raw.RangeArg, base.IntRanges)
			if err != nil {
				return nil, err
			}
			clone.IntRanges = ranges
		}
	case schema.TUint8, schema.TUint16, schema.TUint32, schema.TUint64:
		if raw.RangeArg != "" {
			ranges, err := parseUintRangesFromSet(raw.RangeArg, base.UintRanges)
			if err != nil {
				return nil, err
			}
			clone.UintRanges = ranges
		}
	case schema.TDecimal64:
		if raw.RangeArg != "" {
			ranges, err := parseDecimalRangesFromSet(raw.RangeArg, base.DecimalRanges)
			if err != nil {
				return nil, err
			}
			clone.DecimalRanges = ranges
		}
	case schema.TString, schema.TBinary:
		if raw.LengthArg != "" {
			lengths, err := parseLengthsFromSet(raw.LengthArg, base.Lengths)
			if err != nil {
				return nil, err
			}
			clone.Lengths = lengths
		}
		for _, p := range raw.Patterns {
			compiled, err := compilePattern(p)
			if err != nil {
				return nil, err
			}
			clone.Patterns = append(clone.Patterns, compiled)
		}
	}
	clone.Base = base
	return &clone, nil
}

func compilePattern(p schema.RawPattern) (schema.Pattern, error) {
	posix := util.SanitizedPattern(p.Pattern)
	re, err := regexp.Compile("^(?:" + posix + ")$")
	if err != nil {
		return schema.Pattern{}, fmt.Errorf("invalid pattern %q: %w", p.Pattern, err)
	}
	return schema.Pattern{
		Source:  p.Pattern,
		Invert:  p.Invert,
		Regexp:  re,
		Message: p.Message,
		AppTag:  p.AppTag,
	}, nil
}

func defaultStringLength() schema.Length { return schema.Length{Min: 0, Max: 18446744073709551615} }

// The parse{Int,Uint,Decimal}Ranges/parseLengths family below parses a
// YANG "N..M | N..M" range/length argument ("min"/"max" keywords
// allowed at either end) against a full representable boundary.
// Grounded on compile.go's range-restriction handling, simplified from
// its parse.Node-driven walk to operate directly on the statement
// argument string (the parser front end, not this engine, is
// responsible for producing that argument string).

func parseIntRanges(arg string, full schema.Rb) ([]schema.Rb, error) {
	if arg == "" {
		return []schema.Rb{full}, nil
	}
	var out []schema.Rb
	for _, part := range splitPipe(arg) {
		lo, hi, err := splitRangePart(part)
		if err != nil {
			return nil, err
		}
		start := full.Start
		if lo != "min" {
			v, err := strconv.ParseInt(lo, 10, 64)
			if err != nil {
				return nil, err
			}
			start = v
		}
		end := full.End
		if hi != "max" {
			v, err := strconv.ParseInt(hi, 10, 64)
			if err != nil {
				return nil, err
			}
			end = v
		}
		out = append(out, schema.Rb{Start: start, End: end})
	}
	return out, nil
}

func parseIntRangesFromSet(arg string, base []schema.Rb) ([]schema.Rb, error) {
	if len(base) == 0 {
		return parseIntRanges(arg, schema.Rb{})
	}
	return parseIntRanges(arg, schema.Rb{Start: base[0].Start, End: base[len(base)-1].End})
}

func parseUintRanges(arg string, full schema.Urb) ([]schema.Urb, error) {
	if arg == "" {
		return []schema.Urb{full}, nil
	}
	var out []schema.Urb
	for _, part := range splitPipe(arg) {
		lo, hi, err := splitRangePart(part)
		if err != nil {
			return nil, err
		}
		start := full.Start
		if lo != "min" {
			v, err := strconv.ParseUint(lo, 10, 64)
			if err != nil {
				return nil, err
			}
			start = v
		}
		end := full.End
		if hi != "max" {
			v, err := strconv.ParseUint(hi, 10, 64)
			if err != nil {
				return nil, err
			}
			end = v
		}
		out = append(out, schema.Urb{Start: start, End: end})
	}
	return out, nil
}

func parseUintRangesFromSet(arg string, base []schema.Urb) ([]schema.Urb, error) {
	if len(base) == 0 {
		return parseUintRanges(arg, schema.Urb{})
	}
	return parseUintRanges(arg, schema.Urb{Start: base[0].Start, End: base[len(base)-1].End})
}

func parseDecimalRanges(arg string, full schema.Drb) ([]schema.Drb, error) {
	if arg == "" {
		return []schema.Drb{full}, nil
	}
	var out []schema.Drb
	for _, part := range splitPipe(arg) {
		lo, hi, err := splitRangePart(part)
		if err != nil {
			return nil, err
		}
		start := full.Start
		if lo != "min" {
			v, err := strconv.ParseFloat(lo, 64)
			if err != nil {
				return nil, err
			}
			start = v
		}
		end := full.End
		if hi != "max" {
			v, err := strconv.ParseFloat(hi, 64)
			if err != nil {
				return nil, err
			}
			end = v
		}
		out = append(out, schema.Drb{Start: start, End: end})
	}
	return out, nil
}

func parseDecimalRangesFromSet(arg string, base []schema.Drb) ([]schema.Drb, error) {
	if len(base) == 0 {
		return parseDecimalRanges(arg, schema.Drb{})
	}
	return parseDecimalRanges(arg, schema.Drb{Start: base[0].Start, End: base[len(base)-1].End})
}

func parseLengths(arg string, full schema.Length) ([]schema.Length, error) {
	if arg == "" {
		return []schema.Length{full}, nil
	}
	var out []schema.Length
	for _, part := range splitPipe(arg) {
		lo, hi, err := splitRangePart(part)
		if err != nil {
			return nil, err
		}
		min := full.Min
		if lo != "min" {
			v, err := strconv.ParseUint(lo, 10, 64)
			if err != nil {
				return nil, err
			}
			min = v
		}
		max := full.Max
		if hi != "max" {
			v, err := strconv.ParseUint(hi, 10, 64)
			if err != nil {
				return nil, err
			}
			max = v
		}
		out = append(out, schema.Length{Min: min, Max: max})
	}
	return out, nil
}

func parseLengthsFromSet(arg string, base []schema.Length) ([]schema.Length, error) {
	if len(base) == 0 {
		return parseLengths(arg, schema.Length{})
	}
	return parseLengths(arg, schema.Length{Min: base[0].Min, Max: base[len(base)-1].Max})
}

func splitPipe(s string) []string {
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func splitRangePart(part string) (string, string, error) {
	if i := strings.Index(part, ".."); i >= 0 {
		return strings.TrimSpace(part[:i]), strings.TrimSpace(part[i+2:]), nil
	}
	v := strings.TrimSpace(part)
	return v, v, nil
}
