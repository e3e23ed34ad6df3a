// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package data

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/ysemantic/yangcore/schema"
)

// StoreValue implements the store-value primitive spec.md §6
// describes: parse a lexical string against t, canonicalize it, and
// validate it against every constraint t carries. The result is the
// canonical lexical form a Leaf/LeafList node stores, stable across
// whichever encoding (JSON/XML/YAML) produced the original lexical
// value. Grounded on the teacher's data/encoding package, which does
// this same parse-validate-canonicalize sequence per type keyword
// inline in its JSON/XML decoders; this module centralizes it into one
// encoding-independent primitive instead of duplicating it per format.
func StoreValue(t *schema.TypeDescriptor, lexical string) (string, error) {
	switch t.Kind {
	case schema.TInt8, schema.TInt16, schema.TInt32, schema.TInt64:
		return storeInt(t, lexical)
	case schema.TUint8, schema.TUint16, schema.TUint32, schema.TUint64:
		return storeUint(t, lexical)
	case schema.TDecimal64:
		return storeDecimal64(t, lexical)
	case schema.TString:
		return storeString(t, lexical)
	case schema.TBoolean:
		return storeBoolean(lexical)
	case schema.TEnumeration:
		return storeEnumeration(t, lexical)
	case schema.TBits:
		return storeBits(t, lexical)
	case schema.TBinary:
		return storeBinary(t, lexical)
	case schema.TEmpty:
		if lexical != "" {
			return "", fmt.Errorf("type empty carries no value, got %q", lexical)
		}
		return "", nil
	case schema.TLeafref, schema.TIdentityref, schema.TInstanceIdentifier:
		// These carry a reference, not a self-contained value; the
		// lexical form is its own canonical form (instance existence is
		// a validate-package concern, not a store-value one).
		return lexical, nil
	case schema.TUnion:
		return storeUnion(t, lexical)
	case schema.TUserDefined:
		if t.UserValidate != nil {
			if err := t.UserValidate(lexical); err != nil {
				return "", err
			}
		}
		return lexical, nil
	}
	return "", fmt.Errorf("unhandled type kind %v", t.Kind)
}

func storeInt(t *schema.TypeDescriptor, lexical string) (string, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(lexical), 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid integer %q: %w", lexical, err)
	}
	if len(t.IntRanges) > 0 {
		ok := false
		for _, r := range t.IntRanges {
			if r.Contains(v) {
				ok = true
				break
			}
		}
		if !ok {
			return "", fmt.Errorf("value %d outside permitted range", v)
		}
	}
	return strconv.FormatInt(v, 10), nil
}

func storeUint(t *schema.TypeDescriptor, lexical string) (string, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(lexical), 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid unsigned integer %q: %w", lexical, err)
	}
	if len(t.UintRanges) > 0 {
		ok := false
		for _, r := range t.UintRanges {
			if r.Contains(v) {
				ok = true
				break
			}
		}
		if !ok {
			return "", fmt.Errorf("value %d outside permitted range", v)
		}
	}
	return strconv.FormatUint(v, 10), nil
}

func storeDecimal64(t *schema.TypeDescriptor, lexical string) (string, error) {
	canon, err := CanonicalDecimal64(strings.TrimSpace(lexical), int(t.FractionDigits))
	if err != nil {
		return "", err
	}
	if len(t.DecimalRanges) > 0 {
		f, _ := strconv.ParseFloat(canon, 64)
		ok := false
		for _, r := range t.DecimalRanges {
			if r.Contains(f) {
				ok = true
				break
			}
		}
		if !ok {
			return "", fmt.Errorf("value %s outside permitted range", canon)
		}
	}
	return canon, nil
}

func storeString(t *schema.TypeDescriptor, lexical string) (string, error) {
	n := uint64(len([]rune(lexical)))
	if len(t.Lengths) > 0 {
		ok := false
		for _, l := range t.Lengths {
			if l.Contains(n) {
				ok = true
				break
			}
		}
		if !ok {
			return "", fmt.Errorf("string length %d outside permitted length", n)
		}
	}
	for _, p := range t.Patterns {
		if !p.Matches(lexical) {
			return "", fmt.Errorf("value %q does not match pattern %q", lexical, p.Source)
		}
	}
	return lexical, nil
}

func storeBoolean(lexical string) (string, error) {
	switch lexical {
	case "true", "false":
		return lexical, nil
	}
	return "", fmt.Errorf("invalid boolean %q", lexical)
}

// storeEnumeration canonicalizes to the enum's declared name: the name
// is the instance data's canonical lexical form (RFC 7950 §9.6.4), not
// the "name value" pair. enum-value() recovers the integer by looking
// the name back up against the leaf's schema (xpath/functions.go),
// the same way derived-from()/deref() resolve through the
// ModuleResolver seam rather than by smuggling extra state into the
// stored string.
func storeEnumeration(t *schema.TypeDescriptor, lexical string) (string, error) {
	for _, e := range t.Enums {
		if e.Name == lexical {
			return e.Name, nil
		}
	}
	return "", fmt.Errorf("%q is not a declared enum value", lexical)
}

// storeBits canonicalizes to the bit names present, space-separated,
// reordered to schema declaration order (RFC 7950's canonical bits
// form), regardless of the order the lexical value listed them in.
func storeBits(t *schema.TypeDescriptor, lexical string) (string, error) {
	want := map[string]bool{}
	for _, f := range strings.Fields(lexical) {
		found := false
		for _, b := range t.BitPos {
			if b.Name == f {
				found = true
				break
			}
		}
		if !found {
			return "", fmt.Errorf("%q is not a declared bit", f)
		}
		want[f] = true
	}
	var out []string
	for _, b := range t.BitPos {
		if want[b.Name] {
			out = append(out, b.Name)
		}
	}
	return strings.Join(out, " "), nil
}

func storeBinary(t *schema.TypeDescriptor, lexical string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(lexical)
	if err != nil {
		return "", fmt.Errorf("invalid base64 %q: %w", lexical, err)
	}
	n := uint64(len(decoded))
	if len(t.Lengths) > 0 {
		ok := false
		for _, l := range t.Lengths {
			if l.Contains(n) {
				ok = true
				break
			}
		}
		if !ok {
			return "", fmt.Errorf("binary length %d outside permitted length", n)
		}
	}
	return base64.StdEncoding.EncodeToString(decoded), nil
}

// storeUnion tries each member type in declaration order and keeps the
// first that accepts the lexical value (RFC 7950 §9.12's union
// resolution rule).
func storeUnion(t *schema.TypeDescriptor, lexical string) (string, error) {
	var firstErr error
	for _, m := range t.Members {
		v, err := StoreValue(m, lexical)
		if err == nil {
			return v, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("union type has no members")
	}
	return "", fmt.Errorf("%q did not match any union member: %w", lexical, firstErr)
}
