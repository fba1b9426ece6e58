/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commit

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Documents are edited as node trees rather than decoded into maps so that
// key order, comments and every other key survive the rewrite untouched.

// parseDocument accepts a stream holding exactly one document whose root is a
// mapping. Writing back a multi-document stream would drop every document
// after the first.
func parseDocument(data []byte) (*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	switch err := dec.Decode(&doc); {
	case errors.Is(err, io.EOF):
		return nil, ErrUnsupportedDocument
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedDocument, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, ErrUnsupportedDocument
	}

	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return &doc, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedDocument, err)
	default:
		return nil, fmt.Errorf("%w: stream holds more than one document", ErrUnsupportedDocument)
	}
}

func newDocument(property, value string) *yaml.Node {
	return &yaml.Node{
		Kind: yaml.DocumentNode,
		Content: []*yaml.Node{{
			Kind:    yaml.MappingNode,
			Tag:     "!!map",
			Content: []*yaml.Node{stringNode(property), stringNode(value)},
		}},
	}
}

func stringNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// lookup returns the index of property's value node in the root mapping, or -1.
func lookup(doc *yaml.Node, property string) int {
	m := doc.Content[0]
	for i := 0; i+1 < len(m.Content); i += 2 {
		if k := m.Content[i]; k.Kind == yaml.ScalarNode && k.Value == property {
			return i + 1
		}
	}
	return -1
}

// stringValue returns property's value when it is a string scalar.
func stringValue(doc *yaml.Node, property string) (string, bool) {
	i := lookup(doc, property)
	if i < 0 {
		return "", false
	}
	v := doc.Content[0].Content[i]
	if v.Kind == yaml.AliasNode && v.Alias != nil {
		v = v.Alias
	}
	if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!str" {
		return "", false
	}
	return v.Value, true
}

// setString sets property to value, appending the key if it is absent.
// Aliases elsewhere in the document that point into the replaced value are
// inlined first so none is left dangling.
func setString(doc *yaml.Node, property, value string) error {
	m := doc.Content[0]
	n := stringNode(value)
	i := lookup(doc, property)
	if i < 0 {
		m.Content = append(m.Content, stringNode(property), n)
		return nil
	}
	old := m.Content[i]
	targets := map[*yaml.Node]bool{}
	anchored(old, targets)
	if len(targets) > 0 {
		if err := inlineAliases(doc, old, targets); err != nil {
			return err
		}
	}
	n.HeadComment, n.LineComment, n.FootComment = old.HeadComment, old.LineComment, old.FootComment
	m.Content[i] = n
	return nil
}

// anchored collects n and its descendants that carry an anchor. Aliases are
// not followed.
func anchored(n *yaml.Node, into map[*yaml.Node]bool) {
	if n.Anchor != "" {
		into[n] = true
	}
	for _, c := range n.Content {
		anchored(c, into)
	}
}

// inlineAliases turns every alias outside skip that refers to one of targets
// into a copy of the scalar it names. Only scalars are inlined: an alias to a
// collection being replaced makes the document unsupported.
func inlineAliases(n, skip *yaml.Node, targets map[*yaml.Node]bool) error {
	if n == skip {
		return nil
	}
	if n.Kind == yaml.AliasNode && targets[n.Alias] {
		t := n.Alias
		if t.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: alias *%s refers to the value being replaced", ErrUnsupportedDocument, t.Anchor)
		}
		n.Kind, n.Tag, n.Style, n.Value, n.Alias = yaml.ScalarNode, t.Tag, t.Style, t.Value, nil
		return nil
	}
	for _, c := range n.Content {
		if err := inlineAliases(c, skip, targets); err != nil {
			return err
		}
	}
	return nil
}

func encodeDocument(doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return buf.Bytes(), nil
}
