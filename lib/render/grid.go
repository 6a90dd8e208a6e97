// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"errors"
	"sync"
)

// Column is one typed column of a result grid.
type Column struct {
	Name string
	Type Kind
}

// Node is one entry of a result grid. Parent holds the parent's path
// and is empty for root nodes; it is a lookup key, never a reference.
// Values are positionally aligned with the grid's columns.
type Node struct {
	Path   string
	Parent string
	Depth  int
	Values []any
}

// HasParent reports whether the node is a child of another node.
func (n Node) HasParent() bool {
	return n.Parent != ""
}

// VisitFunc is called once per node in pre-order. Returning an error
// stops the traversal and the error is returned by Visit or Populate.
type VisitFunc func(node Node) error

// Grid is the result grid contract the flattening engine consumes.
//
// A populated grid has all of its nodes materialized and is traversed
// with Visit. An unpopulated grid produces its nodes on demand: Populate
// drives production and calls the visitor for each node as it appears.
type Grid interface {
	Columns() []Column
	Populated() bool
	Populate(visit VisitFunc) error
	Visit(visit VisitFunc) error
}

// ErrNotPopulated is returned by Visit on a grid whose nodes have not
// been produced yet.
var ErrNotPopulated = errors.New("grid is not populated")

// TreeGrid is a fully materialized grid. Nodes are stored in the order
// they were appended, which must be pre-order.
type TreeGrid struct {
	columns []Column
	nodes   []Node
}

// NewTreeGrid creates a materialized grid with the given columns and
// nodes.
func NewTreeGrid(columns []Column, nodes ...Node) *TreeGrid {
	return &TreeGrid{columns: columns, nodes: nodes}
}

// Append adds a node after all existing nodes.
func (g *TreeGrid) Append(node Node) {
	g.nodes = append(g.nodes, node)
}

// Columns returns the grid's column definitions.
func (g *TreeGrid) Columns() []Column { return g.columns }

// Len returns the number of nodes.
func (g *TreeGrid) Len() int { return len(g.nodes) }

// Populated is always true for a TreeGrid.
func (g *TreeGrid) Populated() bool { return true }

// Populate replays the stored nodes; a TreeGrid has nothing to produce.
func (g *TreeGrid) Populate(visit VisitFunc) error {
	return g.Visit(visit)
}

// Visit calls visit for every node in stored order.
func (g *TreeGrid) Visit(visit VisitFunc) error {
	return replay(g.nodes, visit)
}

// Producer generates a grid's nodes in pre-order by calling emit for
// each one. An error from emit must be returned unchanged.
type Producer func(emit func(Node) error) error

// LazyGrid produces its nodes on the first Populate call and records
// them, so later Visit calls replay the same sequence without running
// the producer again.
type LazyGrid struct {
	columns  []Column
	producer Producer

	mutex     sync.Mutex
	populated bool
	recorded  []Node
}

// NewLazyGrid creates an unpopulated grid backed by producer.
func NewLazyGrid(columns []Column, producer Producer) *LazyGrid {
	return &LazyGrid{columns: columns, producer: producer}
}

// Columns returns the grid's column definitions.
func (g *LazyGrid) Columns() []Column { return g.columns }

// Populated reports whether the producer has run to completion.
func (g *LazyGrid) Populated() bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.populated
}

// Populate runs the producer, calling visit for each node as it is
// produced. If the producer fails or visit returns an error, the grid
// stays unpopulated and the recorded prefix is discarded. On an already
// populated grid Populate replays like Visit.
func (g *LazyGrid) Populate(visit VisitFunc) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.populated {
		return replay(g.recorded, visit)
	}

	var recorded []Node
	err := g.producer(func(node Node) error {
		recorded = append(recorded, node)
		return visit(node)
	})
	if err != nil {
		return err
	}

	g.recorded = recorded
	g.populated = true
	return nil
}

// Visit replays the recorded nodes. It fails with ErrNotPopulated
// before Populate has completed.
func (g *LazyGrid) Visit(visit VisitFunc) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if !g.populated {
		return ErrNotPopulated
	}
	return replay(g.recorded, visit)
}

func replay(nodes []Node, visit VisitFunc) error {
	for _, node := range nodes {
		if err := visit(node); err != nil {
			return err
		}
	}
	return nil
}
