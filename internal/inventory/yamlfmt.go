package inventory

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// parseStructured reads the hierarchical yaml format:
//
//	group:
//	  hosts:
//	    hostname: {var: value} | empty
//
// Decoding walks the document node so groups and hosts are visited in file
// order, which is what determines first-seen ordering in the registry.
// A group object without a hosts mapping is a hard error, not leniently
// skipped.
func parseStructured(data []byte) (*Registry, error) {
	reg := NewRegistry()

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse structured inventory: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		// empty document
		return reg, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("structured inventory root is not a mapping (line %d)", doc.Line)
	}

	for i := 0; i < len(doc.Content); i += 2 {
		groupNode, bodyNode := doc.Content[i], doc.Content[i+1]
		group := groupNode.Value

		hostsNode := mappingValue(bodyNode, "hosts")
		if hostsNode == nil || hostsNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("group %q (line %d): %w", group, groupNode.Line, ErrMissingHostsKey)
		}

		for j := 0; j < len(hostsNode.Content); j += 2 {
			hostNode, varsNode := hostsNode.Content[j], hostsNode.Content[j+1]
			rec := reg.ensure(hostNode.Value)

			if varsNode.Kind == yaml.MappingNode {
				for k := 0; k < len(varsNode.Content); k += 2 {
					var value any
					if err := varsNode.Content[k+1].Decode(&value); err != nil {
						return nil, fmt.Errorf("host %q variable %q: %w", hostNode.Value, varsNode.Content[k].Value, err)
					}
					rec.SetVariable(varsNode.Content[k].Value, value)
				}
			}
			rec.AddGroup(group)
		}
	}
	return reg, nil
}

// mappingValue returns the value node for key within a mapping node, or nil
// when node is not a mapping or the key is absent or null.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			value := node.Content[i+1]
			if value.Tag == "!!null" {
				return nil
			}
			return value
		}
	}
	return nil
}

// serializeStructured renders group -> hosts -> variables. A host without
// variables is emitted as an explicit empty mapping ({}), never a null
// token: downstream tooling distinguishes "no variables" from "absent", and
// rendering it structurally means no textual post-processing of the output.
func (g *Registry) serializeStructured() (string, error) {
	doc := map[string]any{}
	for _, group := range g.GroupNames() {
		hosts := map[string]any{}
		for _, rec := range g.HostsInGroup(group) {
			entry := map[string]any{}
			for _, key := range rec.variableKeys() {
				entry[key] = rec.vars[key]
			}
			if rec.User != "" {
				if _, ok := entry["ansible_user"]; !ok {
					entry["ansible_user"] = rec.User
				}
			}
			hosts[rec.Hostname] = entry
		}
		doc[group] = map[string]any{"hosts": hosts}
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("render structured inventory: %w", err)
	}
	return string(out), nil
}
