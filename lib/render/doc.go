// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package render turns result grids produced by the memory-forensics
// engine into plain nested documents.
//
// A result grid is an ordered set of typed [Column] definitions plus a
// forest of [Node] values visited in pre-order. Flattening walks the
// grid once and produces one [Document] per node: column values are
// coerced according to the column's [Kind], and each document is
// attached to its parent's children (or to the root sequence when the
// node has no parent).
//
// Two variants share the same coercion and linking logic:
//
//   - [FlattenTable] emits the reserved "level" field (depth rendered
//     as repeated marker characters) for flattened tabular display.
//   - [FlattenTree] omits it for pure nested-tree consumers.
//
// Parent links are resolved through a path-keyed index into an arena
// of documents built during the single pass. Documents never point at
// their parent, so the output is a plain ownership tree. A child whose
// parent has not been visited yet is a structural error ([ErrStructure]):
// the grid was not produced in pre-order and the caller's input is
// malformed.
//
// Absent values ([Absent]) render as null in every column, so consumers
// can tell "the engine could not determine this" apart from an empty
// string or a zero.
//
// [DecodeGrid] reads the JSON/JSONC wire form of a grid, used by the
// memgrid CLI and by fixtures.
package render
