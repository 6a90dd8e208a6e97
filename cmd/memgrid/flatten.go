// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/memgrid/memgrid/cmd/memgrid/cli"
	"github.com/memgrid/memgrid/lib/render"
)

type flattenParams struct {
	commonParams
	Tree   bool   `json:"tree"   flag:"tree"   desc:"omit the level field (tree variant)"`
	Marker string `json:"marker" flag:"marker" desc:"level marker, overrides config"`
}

func (a *app) flattenCommand() *cli.Command {
	var params flattenParams

	return &cli.Command{
		Name:    "flatten",
		Summary: "Flatten a result grid into nested documents",
		Description: `Read a result grid (columns plus pre-order nodes, JSON or JSONC) and
flatten it into one nested document per root node.

Each document holds the node's coerced column values in column order
and its descendants under "__children". The table variant (default)
adds a "level" field rendering the node depth as repeated marker
characters; --tree leaves it out.`,
		Usage:  "memgrid flatten [flags] <grid.json | ->",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Flatten a process tree",
				Command:     "memgrid flatten pstree.json",
			},
			{
				Description: "Tree variant from stdin, exported as CBOR",
				Command:     "memgrid flatten --tree --format cbor -o ./out - < pstree.json",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			input, err := singleInput("flatten", args)
			if err != nil {
				return err
			}
			session, err := a.open("flatten", params.commonParams)
			if err != nil {
				return err
			}

			data, err := a.readInput(input)
			if err != nil {
				return err
			}
			grid, err := render.DecodeGrid(data)
			if err != nil {
				return fmt.Errorf("reading grid %s: %w", input, err)
			}

			renderer := render.Renderer{LevelMarker: session.config.Render.LevelMarker}
			if params.Marker != "" {
				renderer.LevelMarker = params.Marker
			}
			var documents []*render.Document
			if params.Tree {
				documents, err = renderer.Tree(grid)
			} else {
				documents, err = renderer.Table(grid)
			}
			if err != nil {
				return err
			}
			session.logger.Debug("grid flattened", "nodes", grid.Len(), "roots", len(documents))

			if err := session.emit(ctx, session.exportName(input, "grid"), documents); err != nil {
				return err
			}
			return session.finish(ctx)
		},
	}
}
