// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Package xml is the reference XML instance adapter spec.md §2 names,
// grounded on the teacher's data/encoding package (unmarshaledXML's
// generic element tree plus its per-schema-kind unserializedChildren
// walk, and encodeXmlChildren's mirror on the way out). Generalized to
// build data.Node values directly against the new schema.Node kind set
// instead of the teacher's datanode.DataNode/schema.Container-interface
// pair. The teacher's identityref namespace-prefix rewriting
// (convertPrefixedValue/namespacePrefixes) has no counterpart here:
// this engine's TypeDescriptor carries identity bases as a resolved Go
// slice, not a colon-prefixed XML namespace lookup, so an identityref
// value already arrives and leaves as its plain lexical form.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/ysemantic/yangcore/data"
	"github.com/ysemantic/yangcore/schema"
)

type element struct {
	XMLName  xml.Name
	Chardata string     `xml:",chardata"`
	Children []*element `xml:",any"`
}

// Unmarshal decodes input, an XML document whose outermost element is
// ignored (it plays the role of the NETCONF <config>/<rpc> wrapper),
// against mod's top-level data definitions.
func Unmarshal(mod *schema.Module, input []byte) (*data.Branch, error) {
	var root element
	if err := xml.Unmarshal(input, &root); err != nil {
		return nil, err
	}

	out := data.NewBranch(nil, nil, true)
	for _, c := range root.Children {
		csn := mod.FindChild(c.XMLName.Local)
		if csn == nil {
			return nil, fmt.Errorf("no schema node named %q", c.XMLName.Local)
		}
		if err := decodeOne(out, csn, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// decodeOne appends the data node(s) el represents to parent. A list
// element is decoded as a single new entry; siblings with the same
// name are separate calls, mirroring how XML naturally repeats list
// entries as repeated elements rather than one array container.
func decodeOne(parent *data.Branch, csn schema.Node, el *element) error {
	switch v := csn.(type) {
	case *schema.Container:
		branch := data.NewBranch(v, parent, true)
		for _, c := range el.Children {
			childSn := findChild(v, c.XMLName.Local)
			if childSn == nil {
				return fmt.Errorf("%s: no schema node named %q", v.Name(), c.XMLName.Local)
			}
			if err := decodeOne(branch, childSn, c); err != nil {
				return err
			}
		}
		parent.AddChild(branch)

	case *schema.List:
		branch := data.NewBranch(v, parent, true)
		for _, c := range el.Children {
			childSn := findChild(v, c.XMLName.Local)
			if childSn == nil {
				return fmt.Errorf("%s: no schema node named %q", v.Name(), c.XMLName.Local)
			}
			if err := decodeOne(branch, childSn, c); err != nil {
				return err
			}
		}
		parent.AddChild(branch)

	case *schema.Leaf:
		canon, err := data.StoreValue(v.Type, el.Chardata)
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name(), err)
		}
		parent.AddChild(data.NewLeaf(v, parent, canon))

	case *schema.LeafList:
		// Each decodeOne call for a leaf-list sees one repeated element;
		// appendLeafListValue appends to an existing instance if the
		// caller already created one for an earlier sibling.
		canon, err := data.StoreValue(v.Type, el.Chardata)
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name(), err)
		}
		appendLeafListValue(parent, v, canon)

	default:
		return fmt.Errorf("%s: unsupported schema kind for XML decoding", csn.Name())
	}
	return nil
}

// appendLeafListValue finds the leaf-list instance already under
// parent for v, if decodeOne has already created one for an earlier
// repeated element, and appends canon to it; otherwise it creates one.
func appendLeafListValue(parent *data.Branch, v *schema.LeafList, canon string) {
	for _, c := range parent.InstanceChildren() {
		if ll, ok := c.(*data.LeafList); ok && ll.Schema() == schema.Node(v) {
			ll.AppendValue(canon)
			return
		}
	}
	parent.AddChild(data.NewLeafList(v, parent, []string{canon}))
}

func findChild(n schema.Node, name string) schema.Node {
	for _, c := range n.Children() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Marshal encodes root's children as a sequence of top-level elements,
// one per present instance (list entries repeat the element rather
// than nesting under a container of their own, matching the decode
// side and NETCONF's own wire convention).
func Marshal(root *data.Branch) ([]byte, error) {
	var b bytes.Buffer
	enc := xml.NewEncoder(&b)
	for _, c := range root.InstanceChildren() {
		if err := encodeOne(enc, c); err != nil {
			return nil, err
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func encodeOne(enc *xml.Encoder, n data.Node) error {
	name := xml.Name{Local: n.Name()}
	switch v := n.Schema().(type) {
	case *schema.Container:
		b := n.(*data.Branch)
		enc.EncodeToken(xml.StartElement{Name: name})
		for _, c := range b.InstanceChildren() {
			if err := encodeOne(enc, c); err != nil {
				return err
			}
		}
		enc.EncodeToken(xml.EndElement{Name: name})

	case *schema.List:
		b := n.(*data.Branch)
		enc.EncodeToken(xml.StartElement{Name: name})
		for _, c := range b.InstanceChildren() {
			if err := encodeOne(enc, c); err != nil {
				return err
			}
		}
		enc.EncodeToken(xml.EndElement{Name: name})

	case *schema.Leaf:
		enc.EncodeToken(xml.StartElement{Name: name})
		enc.EncodeToken(xml.CharData([]byte(n.Value())))
		enc.EncodeToken(xml.EndElement{Name: name})

	case *schema.LeafList:
		for _, val := range n.Values() {
			enc.EncodeToken(xml.StartElement{Name: name})
			enc.EncodeToken(xml.CharData([]byte(val)))
			enc.EncodeToken(xml.EndElement{Name: name})
		}

	default:
		_ = v
	}
	return nil
}
