// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package netgraph builds a deduplicated process/endpoint graph from the
// network connection rows of a memory image.
//
// Every connection contributes a process node keyed by pid, an endpoint
// node keyed by remote address, and an edge from the first to the
// second. Ports accumulate on their nodes as sets: feeding the same row
// twice, or rows for the same node in any order, yields the same graph.
// Process ids and remote addresses are separate key spaces, so a pid
// never collides with an address string.
//
// The serialized form is the one consumed by the investigation UI:
//
//	{"nodes": [{"id": 4, "Process": "System", "LocalAddr": "0.0.0.0", "LocalPorts": [445]},
//	           {"id": "10.0.0.5", "ForeignPorts": [50123]}],
//	 "edges": [{"from": 4, "to": "10.0.0.5"}]}
package netgraph

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/memgrid/memgrid/lib/artefact"
	"github.com/memgrid/memgrid/lib/codec"
)

// Record is one decoded connection row.
type Record struct {
	PID        int64
	Owner      string
	LocalAddr  string
	LocalPort  int64
	RemoteAddr string
	RemotePort int64
	Family     string
}

// ProcessLabel is the "Process" attribute of a process node. Windows
// rows label a process with its owner name; Linux rows carry no owner
// and label it with the raw process id, which serializes as a number.
type ProcessLabel struct {
	Name  string
	PID   int64
	ByPID bool
}

// MarshalJSON encodes the label as a number when ByPID is set, as null
// for an unknown owner, and as a string otherwise.
func (l ProcessLabel) MarshalJSON() ([]byte, error) {
	if l.ByPID {
		return strconv.AppendInt(nil, l.PID, 10), nil
	}
	if l.Name == "" {
		return []byte("null"), nil
	}
	return json.Marshal(l.Name)
}

// MarshalCBOR mirrors MarshalJSON: an unsigned or negative integer, nil
// or a text string.
func (l ProcessLabel) MarshalCBOR() ([]byte, error) {
	if l.ByPID {
		return codec.Marshal(l.PID)
	}
	if l.Name == "" {
		return codec.Marshal(nil)
	}
	return codec.Marshal(l.Name)
}

func (l ProcessLabel) String() string {
	if l.ByPID {
		return strconv.FormatInt(l.PID, 10)
	}
	return l.Name
}

// NodeKind distinguishes process nodes from remote endpoint nodes.
type NodeKind uint8

const (
	ProcessNode NodeKind = iota
	EndpointNode
)

// Node is one graph vertex. Process nodes use PID, Process, LocalAddr
// and LocalPorts; endpoint nodes use Address and ForeignPorts.
type Node struct {
	Kind NodeKind

	PID        int64
	Process    ProcessLabel
	LocalAddr  string
	LocalPorts []int64

	Address      string
	ForeignPorts []int64
}

// ID returns the node key as it appears in the serialized graph.
func (n *Node) ID() any {
	if n.Kind == ProcessNode {
		return n.PID
	}
	return n.Address
}

type processNodeJSON struct {
	ID         int64        `json:"id"`
	Process    ProcessLabel `json:"Process"`
	LocalAddr  string       `json:"LocalAddr"`
	LocalPorts []int64      `json:"LocalPorts"`
}

type endpointNodeJSON struct {
	ID           string  `json:"id"`
	ForeignPorts []int64 `json:"ForeignPorts"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	if n.Kind == ProcessNode {
		return json.Marshal(processNodeJSON{
			ID:         n.PID,
			Process:    n.Process,
			LocalAddr:  n.LocalAddr,
			LocalPorts: nonNil(n.LocalPorts),
		})
	}
	return json.Marshal(endpointNodeJSON{ID: n.Address, ForeignPorts: nonNil(n.ForeignPorts)})
}

// MarshalCBOR encodes the same map as MarshalJSON.
func (n *Node) MarshalCBOR() ([]byte, error) {
	if n.Kind == ProcessNode {
		return codec.Marshal(processNodeJSON{
			ID:         n.PID,
			Process:    n.Process,
			LocalAddr:  n.LocalAddr,
			LocalPorts: nonNil(n.LocalPorts),
		})
	}
	return codec.Marshal(endpointNodeJSON{ID: n.Address, ForeignPorts: nonNil(n.ForeignPorts)})
}

func nonNil(ports []int64) []int64 {
	if ports == nil {
		return []int64{}
	}
	return ports
}

// Edge links a process to a remote address.
type Edge struct {
	From int64  `json:"from"`
	To   string `json:"to"`
}

// Graph is the builder's output. Nodes and edges are in first-seen
// order.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []Edge  `json:"edges"`
}

// Builder accumulates connection records into a graph. The zero value
// is not usable; call NewBuilder.
type Builder struct {
	schema Schema

	nodes     []*Node
	processes map[int64]*Node
	endpoints map[string]*Node
	edges     []Edge
	edgeSet   map[Edge]struct{}
	rows      int
	orphans   int
}

// NewBuilder returns an empty builder for schema.
func NewBuilder(schema Schema) *Builder {
	return &Builder{
		schema:    schema,
		processes: make(map[int64]*Node),
		endpoints: make(map[string]*Node),
		edgeSet:   make(map[Edge]struct{}),
	}
}

// Add merges one decoded connection into the graph.
func (b *Builder) Add(record Record) {
	process, ok := b.processes[record.PID]
	if !ok {
		process = &Node{
			Kind:      ProcessNode,
			PID:       record.PID,
			Process:   ProcessLabel{Name: record.Owner, PID: record.PID, ByPID: b.schema.LabelByPID},
			LocalAddr: record.LocalAddr,
		}
		b.processes[record.PID] = process
		b.nodes = append(b.nodes, process)
	}
	process.LocalPorts = addPort(process.LocalPorts, record.LocalPort)

	endpoint, ok := b.endpoints[record.RemoteAddr]
	if !ok {
		endpoint = &Node{Kind: EndpointNode, Address: record.RemoteAddr}
		b.endpoints[record.RemoteAddr] = endpoint
		b.nodes = append(b.nodes, endpoint)
	}
	endpoint.ForeignPorts = addPort(endpoint.ForeignPorts, record.RemotePort)

	edge := Edge{From: record.PID, To: record.RemoteAddr}
	if _, seen := b.edgeSet[edge]; !seen {
		b.edgeSet[edge] = struct{}{}
		b.edges = append(b.edges, edge)
	}
}

func addPort(ports []int64, port int64) []int64 {
	if slices.Contains(ports, port) {
		return ports
	}
	return append(ports, port)
}

// AddRecord decodes raw with the builder's schema and merges it. It
// reports whether the row was included; rows excluded by the family
// filter, and rows whose process id is null, return false with no
// error. The engine reports a null process id for connections whose
// process has exited.
func (b *Builder) AddRecord(raw artefact.Record) (bool, error) {
	row := b.rows
	b.rows++
	if value, present := raw[b.schema.PID]; present && value == nil {
		b.orphans++
		return false, nil
	}
	record, included, err := b.schema.Decode(raw)
	if err != nil {
		return false, &FieldError{Schema: b.schema.Name, Row: row, Err: err}
	}
	if !included {
		return false, nil
	}
	b.Add(record)
	return true, nil
}

// Orphans returns how many rows were left out for a null process id.
func (b *Builder) Orphans() int {
	return b.orphans
}

// Graph returns the accumulated graph. The graph shares storage with
// the builder; take it once all records have been added.
func (b *Builder) Graph() *Graph {
	graph := &Graph{Nodes: b.nodes, Edges: b.edges}
	if graph.Nodes == nil {
		graph.Nodes = []*Node{}
	}
	if graph.Edges == nil {
		graph.Edges = []Edge{}
	}
	return graph
}

// Build decodes every record under schema and returns the graph. The
// first unreadable row aborts the build; rows with a null process id
// are skipped.
func Build(schema Schema, records []artefact.Record) (*Graph, error) {
	builder := NewBuilder(schema)
	for _, record := range records {
		if _, err := builder.AddRecord(record); err != nil {
			return nil, err
		}
	}
	return builder.Graph(), nil
}
