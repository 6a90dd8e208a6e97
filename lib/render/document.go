// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"encoding/json"

	"github.com/memgrid/memgrid/lib/codec"
)

// Reserved document keys. Column values share the key space; a column
// with a reserved name shadows the reserved field.
const (
	LevelKey    = "level"
	ChildrenKey = "__children"
)

// Field is one column value of a document.
type Field struct {
	Name  string
	Value any
}

// Document is the flattened form of one grid node: coerced column
// values in column order, the optional indentation level, and the
// node's children in traversal order. A document owns its children.
type Document struct {
	Fields   []Field
	Children []*Document

	// Level is the depth rendered as repeated marker characters. It is
	// only meaningful when HasLevel is set (the table variant).
	Level    string
	HasLevel bool
}

// Get returns the value of the named column.
func (d *Document) Get(name string) (any, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// Count returns the number of documents in the subtree rooted at d,
// including d.
func (d *Document) Count() int {
	total := 1
	for _, child := range d.Children {
		total += child.Count()
	}
	return total
}

// Map returns the document as a plain nested map. Children appear
// under ChildrenKey as a []any of maps.
func (d *Document) Map() map[string]any {
	result := make(map[string]any, len(d.Fields)+2)
	if d.HasLevel {
		result[LevelKey] = d.Level
	}
	children := make([]any, len(d.Children))
	for index, child := range d.Children {
		children[index] = child.Map()
	}
	result[ChildrenKey] = children
	for _, field := range d.Fields {
		result[field.Name] = field.Value
	}
	return result
}

// MarshalJSON encodes the document as a JSON object with keys in a
// stable order: level, the columns in column order, then children.
func (d *Document) MarshalJSON() ([]byte, error) {
	shadowed := make(map[string]bool, len(d.Fields))
	for _, field := range d.Fields {
		shadowed[field.Name] = true
	}

	var buffer bytes.Buffer
	buffer.WriteByte('{')
	first := true
	writeMember := func(name string, value any) error {
		if !first {
			buffer.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buffer.Write(key)
		buffer.WriteByte(':')
		buffer.Write(encoded)
		return nil
	}

	if d.HasLevel && !shadowed[LevelKey] {
		if err := writeMember(LevelKey, d.Level); err != nil {
			return nil, err
		}
	}
	for _, field := range d.Fields {
		if err := writeMember(field.Name, field.Value); err != nil {
			return nil, err
		}
	}
	if !shadowed[ChildrenKey] {
		children := d.Children
		if children == nil {
			children = []*Document{}
		}
		if err := writeMember(ChildrenKey, children); err != nil {
			return nil, err
		}
	}

	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// MarshalCBOR encodes the document's map form with deterministic CBOR.
func (d *Document) MarshalCBOR() ([]byte, error) {
	return codec.Marshal(d.Map())
}
