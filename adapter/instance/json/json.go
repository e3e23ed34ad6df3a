// Copyright (c) 2017, 2019, AT&T Intellectual Property.
// All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Package json is the reference JSON instance adapter spec.md §2 names:
// it decodes a serialized document into a data.Branch tree rooted at a
// resolved schema.Module, and encodes a tree back out, in both plain
// JSON and RFC 7951 (module-prefixed member names, quoted 64-bit
// integers) flavours. Grounded on the teacher's data/encoding package
// (JSONReader/JSONWriter's per-schema-kind walk), generalized to build
// data.Node values directly instead of going through the teacher's
// intermediate datanode.DataNode representation, and to read/write
// against the new schema.Node kind set instead of the teacher's
// schema.Container/List/Leaf/LeafList interface hierarchy.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danos/encoding/rfc7951"
	"github.com/ysemantic/yangcore/data"
	"github.com/ysemantic/yangcore/schema"
)

// Encoding selects between plain JSON (no module prefixes written, big
// integers as native JSON numbers) and RFC 7951 (module prefix only at
// a namespace boundary, 64-bit integers quoted). Unmarshal strips a
// member name's prefix under either encoding.
type Encoding int

const (
	Plain Encoding = iota
	RFC7951
)

// Unmarshal decodes input against mod's top-level data definitions and
// returns the document root: a presence-less *data.Branch whose
// children are the top-level instances present in input. Every scalar
// passes through data.StoreValue so the tree holds canonical lexical
// values regardless of how the wire form spelled them.
func Unmarshal(mod *schema.Module, enc Encoding, input []byte) (*data.Branch, error) {
	var decoded map[string]interface{}
	var err error
	if enc == RFC7951 {
		err = rfc7951.Unmarshal(input, &decoded)
	} else {
		err = json.Unmarshal(input, &decoded)
	}
	if err != nil {
		return nil, err
	}

	root := data.NewBranch(nil, nil, true)
	for key, raw := range decoded {
		name := localName(key)
		csn := mod.FindChild(name)
		if csn == nil {
			return nil, fmt.Errorf("no schema node named %q", name)
		}
		if err := decodeInto(root, csn, raw); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func localName(qname string) string {
	if idx := strings.IndexByte(qname, ':'); idx != -1 {
		return qname[idx+1:]
	}
	return qname
}

// decodeValue turns one decoded JSON scalar into the lexical form
// data.StoreValue expects, mirroring the teacher's decodeValue: a JSON
// number always arrives as float64 from encoding/json's default
// decoding, a JSON null means an empty-type leaf.
func decodeValue(val interface{}) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case float64:
		return fmt.Sprintf("%d", int64(v)), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unrepresentable JSON scalar %v", val)
	}
}

func decodeInto(parent *data.Branch, csn schema.Node, raw interface{}) error {
	switch v := csn.(type) {
	case *schema.Container:
		m, ok := raw.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%s: expected a JSON object", v.Name())
		}
		branch := data.NewBranch(v, parent, true)
		for key, child := range m {
			childSn := findChild(v, localName(key))
			if childSn == nil {
				return fmt.Errorf("%s: no schema node named %q", v.Name(), localName(key))
			}
			if err := decodeInto(branch, childSn, child); err != nil {
				return err
			}
		}
		parent.AddChild(branch)

	case *schema.List:
		entries, ok := raw.([]interface{})
		if !ok {
			return fmt.Errorf("%s: expected a JSON array", v.Name())
		}
		for _, e := range entries {
			m, ok := e.(map[string]interface{})
			if !ok {
				return fmt.Errorf("%s: expected a JSON object list entry", v.Name())
			}
			branch := data.NewBranch(v, parent, true)
			for key, child := range m {
				childSn := findChild(v, localName(key))
				if childSn == nil {
					return fmt.Errorf("%s: no schema node named %q", v.Name(), localName(key))
				}
				if err := decodeInto(branch, childSn, child); err != nil {
					return err
				}
			}
			parent.AddChild(branch)
		}

	case *schema.Leaf:
		lexical, err := decodeValue(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name(), err)
		}
		canon, err := data.StoreValue(v.Type, lexical)
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name(), err)
		}
		parent.AddChild(data.NewLeaf(v, parent, canon))

	case *schema.LeafList:
		entries, ok := raw.([]interface{})
		if !ok {
			return fmt.Errorf("%s: expected a JSON array", v.Name())
		}
		vals := make([]string, 0, len(entries))
		for _, e := range entries {
			lexical, err := decodeValue(e)
			if err != nil {
				return fmt.Errorf("%s: %w", v.Name(), err)
			}
			canon, err := data.StoreValue(v.Type, lexical)
			if err != nil {
				return fmt.Errorf("%s: %w", v.Name(), err)
			}
			vals = append(vals, canon)
		}
		parent.AddChild(data.NewLeafList(v, parent, vals))

	default:
		return fmt.Errorf("%s: unsupported schema kind for JSON decoding", csn.Name())
	}
	return nil
}

func findChild(n schema.Node, name string) schema.Node {
	for _, c := range n.Children() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Marshal encodes root's children back to JSON/RFC 7951 text. mod
// supplies the module name used for the outermost member prefix; a
// child's own member carries a prefix only where its module differs
// from its parent's, matching RFC 7951 §4's "only at a namespace
// boundary" rule.
func Marshal(mod *schema.Module, enc Encoding, root *data.Branch) ([]byte, error) {
	w := &writer{rfc7951: enc == RFC7951}
	w.WriteByte('{')
	w.writeChildren(mod.Name.String(), root.InstanceChildren())
	w.WriteByte('}')
	return w.Bytes(), nil
}

type writer struct {
	bytes.Buffer
	rfc7951 bool
}

// writeChildren walks one branch's instance children, collapsing
// consecutive list-entry siblings that share a schema name into a
// single JSON array member (list entries aren't nested under their
// own named member the way a container's children are).
func (w *writer) writeChildren(parentModule string, children []data.Node) {
	i := 0
	first := true
	for i < len(children) {
		c := children[i]
		if !first {
			w.WriteByte(',')
		}
		first = false
		if _, ok := c.Schema().(*schema.List); ok {
			name := c.Name()
			group := []data.Node{c}
			j := i + 1
			for j < len(children) && children[j].Name() == name {
				group = append(group, children[j])
				j++
			}
			w.writeListMember(parentModule, group)
			i = j
			continue
		}
		w.writeMember(parentModule, c)
		i++
	}
}

func (w *writer) writeName(parentModule string, sn schema.Node) {
	w.WriteByte('"')
	if w.rfc7951 {
		if mod := sn.Module().Name.String(); mod != parentModule {
			w.WriteString(mod)
			w.WriteByte(':')
		}
	}
	w.WriteString(sn.Name())
	w.WriteString("\":")
}

func (w *writer) writeListMember(parentModule string, entries []data.Node) {
	l := entries[0].Schema().(*schema.List)
	w.writeName(parentModule, l)
	w.WriteByte('[')
	for i, e := range entries {
		if i != 0 {
			w.WriteByte(',')
		}
		b := e.(*data.Branch)
		w.WriteByte('{')
		w.writeChildren(l.Module().Name.String(), b.InstanceChildren())
		w.WriteByte('}')
	}
	w.WriteByte(']')
}

func (w *writer) writeMember(parentModule string, n data.Node) {
	sn := n.Schema()
	w.writeName(parentModule, sn)

	switch v := sn.(type) {
	case *schema.Container:
		w.WriteByte('{')
		b := n.(*data.Branch)
		w.writeChildren(v.Module().Name.String(), b.InstanceChildren())
		w.WriteByte('}')

	case *schema.Leaf:
		w.writeScalar(v.Type, n.Value())

	case *schema.LeafList:
		w.WriteByte('[')
		for i, val := range n.Values() {
			if i != 0 {
				w.WriteByte(',')
			}
			w.writeScalar(v.Type, val)
		}
		w.WriteByte(']')
	}
}

// writeScalar mirrors the teacher's JSONWriter.writeValue: numeric and
// boolean kinds are emitted as native JSON literals, everything else
// (including decimal64, which RFC 7951 §6.1 mandates be a string) as a
// quoted JSON string. RFC 7951 additionally quotes 64-bit integers,
// since JSON numbers aren't guaranteed 64 bits of precision.
func (w *writer) writeScalar(t *schema.TypeDescriptor, value string) {
	switch t.Kind {
	case schema.TEmpty:
		w.WriteString("[null]")
	case schema.TBoolean:
		w.WriteString(value)
	case schema.TInt8, schema.TInt16, schema.TInt32,
		schema.TUint8, schema.TUint16, schema.TUint32:
		w.WriteString(value)
	case schema.TInt64, schema.TUint64:
		if w.rfc7951 {
			buf, _ := json.Marshal(value)
			w.Write(buf)
		} else {
			w.WriteString(value)
		}
	default:
		buf, _ := json.Marshal(value)
		w.Write(buf)
	}
}
