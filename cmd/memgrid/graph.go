// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/memgrid/memgrid/cmd/memgrid/cli"
	"github.com/memgrid/memgrid/lib/artefact"
	"github.com/memgrid/memgrid/lib/netgraph"
)

type graphParams struct {
	commonParams
	Platform string `json:"platform" flag:"platform" desc:"connection row schema" default:"windows" choices:"windows,linux"`
}

func (a *app) graphCommand() *cli.Command {
	var params graphParams

	return &cli.Command{
		Name:    "graph",
		Summary: "Build a process/endpoint graph from connection rows",
		Description: `Read network connection rows (a JSON array of objects) and build a
deduplicated graph: one node per process, one node per remote address,
and one edge per process/address pair. Ports accumulate on their nodes.

--platform selects the row schema: "windows" reads netscan rows,
"linux" reads sockstat rows and keeps only AF_INET sockets.`,
		Usage:  "memgrid graph [flags] <connections.json | ->",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Graph Windows netscan output",
				Command:     "memgrid graph netscan.json",
			},
			{
				Description: "Graph Linux sockets into the configured output directory",
				Command:     "memgrid graph --platform linux --export sockstat.json",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			input, err := singleInput("graph", args)
			if err != nil {
				return err
			}
			schema, err := netgraph.SchemaFor(params.Platform)
			if err != nil {
				return err
			}
			session, err := a.open("graph", params.commonParams)
			if err != nil {
				return err
			}

			data, err := a.readInput(input)
			if err != nil {
				return err
			}
			records, err := artefact.DecodeRecords(data)
			if err != nil {
				return fmt.Errorf("reading connections %s: %w", input, err)
			}
			builder := netgraph.NewBuilder(schema)
			for _, record := range records {
				if _, err := builder.AddRecord(record); err != nil {
					return err
				}
			}
			if orphans := builder.Orphans(); orphans > 0 {
				session.logger.Warn("connection rows without a process id skipped", "rows", orphans)
			}
			graph := builder.Graph()
			session.logger.Debug("graph built",
				"schema", schema.Name,
				"rows", len(records),
				"nodes", len(graph.Nodes),
				"edges", len(graph.Edges),
			)

			if err := session.emit(ctx, session.exportName(input, "graph"), graph); err != nil {
				return err
			}
			return session.finish(ctx)
		},
	}
}
