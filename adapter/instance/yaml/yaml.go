// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Package yaml is the third reference instance adapter spec.md §2
// names, alongside json and xml. Grounded on the generic-interface{}
// walk the broader example pack's yangtree package uses for its own
// YAML support (decode into map[interface{}]interface{}/[]interface{}
// with gopkg.in/yaml.v2, then recurse per schema kind), rebuilt here
// against data.Node/schema.Node instead of that package's DataNode
// tree.
package yaml

import (
	"fmt"
	"strings"

	"github.com/ysemantic/yangcore/data"
	"github.com/ysemantic/yangcore/schema"
	yamlv2 "gopkg.in/yaml.v2"
)

// Unmarshal decodes a YAML document against mod's top-level data
// definitions, the same shape json.Unmarshal builds: one key per
// top-level present node, leaf-lists as YAML sequences, lists as a
// sequence of mappings.
func Unmarshal(mod *schema.Module, input []byte) (*data.Branch, error) {
	var decoded map[interface{}]interface{}
	if err := yamlv2.Unmarshal(input, &decoded); err != nil {
		return nil, err
	}

	root := data.NewBranch(nil, nil, true)
	for key, raw := range decoded {
		name := fmt.Sprint(key)
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

func decodeValue(val interface{}) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case int:
		return fmt.Sprintf("%d", v), nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	case float64:
		return fmt.Sprintf("%v", v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unrepresentable YAML scalar %v", val)
	}
}

// asMapping normalizes both yaml.v2's map[interface{}]interface{} and a
// plain map[string]interface{} (the shape a nested decode may already
// be in, since yaml.v2 keys a string-keyed mapping as the former only
// at the point it's freshly decoded) into string keys.
func asMapping(raw interface{}) (map[string]interface{}, bool) {
	switch m := raw.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	case map[string]interface{}:
		return m, true
	}
	return nil, false
}

func decodeInto(parent *data.Branch, csn schema.Node, raw interface{}) error {
	switch v := csn.(type) {
	case *schema.Container:
		m, ok := asMapping(raw)
		if !ok {
			return fmt.Errorf("%s: expected a YAML mapping", v.Name())
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
			return fmt.Errorf("%s: expected a YAML sequence", v.Name())
		}
		for _, e := range entries {
			m, ok := asMapping(e)
			if !ok {
				return fmt.Errorf("%s: expected a YAML mapping list entry", v.Name())
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
			return fmt.Errorf("%s: expected a YAML sequence", v.Name())
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
		return fmt.Errorf("%s: unsupported schema kind for YAML decoding", csn.Name())
	}
	return nil
}

func localName(qname string) string {
	if idx := strings.IndexByte(qname, ':'); idx != -1 {
		return qname[idx+1:]
	}
	return qname
}

func findChild(n schema.Node, name string) schema.Node {
	for _, c := range n.Children() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Marshal encodes root's children to a YAML mapping, one key per
// top-level node, consecutive list entries collapsed into one
// sequence the same way the JSON adapter groups them.
func Marshal(root *data.Branch) ([]byte, error) {
	doc := childrenToYAML(root.InstanceChildren())
	return yamlv2.Marshal(doc)
}

func childrenToYAML(children []data.Node) map[string]interface{} {
	out := map[string]interface{}{}
	i := 0
	for i < len(children) {
		c := children[i]
		if _, ok := c.Schema().(*schema.List); ok {
			name := c.Name()
			var entries []interface{}
			for i < len(children) && children[i].Name() == name {
				b := children[i].(*data.Branch)
				entries = append(entries, childrenToYAML(b.InstanceChildren()))
				i++
			}
			out[name] = entries
			continue
		}
		out[c.Name()] = valueToYAML(c)
		i++
	}
	return out
}

func valueToYAML(n data.Node) interface{} {
	switch v := n.Schema().(type) {
	case *schema.Container:
		b := n.(*data.Branch)
		return childrenToYAML(b.InstanceChildren())
	case *schema.LeafList:
		_ = v
		vals := make([]interface{}, len(n.Values()))
		for i, val := range n.Values() {
			vals[i] = val
		}
		return vals
	default:
		return n.Value()
	}
}
