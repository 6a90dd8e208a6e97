// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"
)

// DefaultLevelMarker is the character repeated to render node depth.
const DefaultLevelMarker = "*"

// Renderer flattens grids. The zero value uses DefaultLevelMarker.
type Renderer struct {
	LevelMarker string
}

// FlattenTable flattens grid with the default renderer, emitting the
// level field on every document.
func FlattenTable(grid Grid) ([]*Document, error) {
	return Renderer{}.Table(grid)
}

// FlattenTree flattens grid with the default renderer, without level
// fields.
func FlattenTree(grid Grid) ([]*Document, error) {
	return Renderer{}.Tree(grid)
}

// Table returns the root documents of grid, each carrying its
// descendants, with the level field set.
func (r Renderer) Table(grid Grid) ([]*Document, error) {
	return r.flatten(grid, true)
}

// Tree returns the root documents of grid, each carrying its
// descendants, without level fields.
func (r Renderer) Tree(grid Grid) ([]*Document, error) {
	return r.flatten(grid, false)
}

// Level renders depth as max(0, depth-1) repetitions of the marker.
func (r Renderer) Level(depth int) string {
	marker := r.LevelMarker
	if marker == "" {
		marker = DefaultLevelMarker
	}
	return strings.Repeat(marker, max(0, depth-1))
}

func (r Renderer) flatten(grid Grid, withLevel bool) ([]*Document, error) {
	columns := grid.Columns()

	roots := []*Document{}
	var arena []*Document
	index := make(map[string]int)

	visitor := func(node Node) error {
		if len(node.Values) != len(columns) {
			return &StructureError{
				Path:   node.Path,
				Parent: node.Parent,
				Reason: fmt.Sprintf("%d values for %d columns", len(node.Values), len(columns)),
			}
		}
		if _, duplicate := index[node.Path]; duplicate {
			return &StructureError{Path: node.Path, Parent: node.Parent, Reason: "path visited twice"}
		}

		document := &Document{
			Fields:   make([]Field, len(columns)),
			Children: []*Document{},
		}
		if withLevel {
			document.Level = r.Level(node.Depth)
			document.HasLevel = true
		}
		for position, column := range columns {
			document.Fields[position] = Field{
				Name:  column.Name,
				Value: Coerce(column.Type, node.Values[position]),
			}
		}

		if node.HasParent() {
			parentIndex, ok := index[node.Parent]
			if !ok {
				return &StructureError{Path: node.Path, Parent: node.Parent, Reason: "parent not visited before child"}
			}
			parent := arena[parentIndex]
			parent.Children = append(parent.Children, document)
		} else {
			roots = append(roots, document)
		}

		index[node.Path] = len(arena)
		arena = append(arena, document)
		return nil
	}

	var err error
	if grid.Populated() {
		err = grid.Visit(visitor)
	} else {
		err = grid.Populate(visitor)
	}
	if err != nil {
		return nil, fmt.Errorf("flattening grid: %w", err)
	}
	return roots, nil
}
