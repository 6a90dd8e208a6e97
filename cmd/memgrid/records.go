// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/memgrid/memgrid/cmd/memgrid/cli"
	"github.com/memgrid/memgrid/lib/artefact"
)

type recordsParams struct {
	commonParams
	PID      int64  `json:"pid"       flag:"pid"       desc:"keep only rows of this process" default:"-1"`
	PIDField string `json:"pid_field" flag:"pid-field" desc:"field holding the process id (default: PID, then Process ID)"`
	Start    int    `json:"start"     flag:"start"     desc:"index of the first row to return"`
	Length   int    `json:"length"    flag:"length"    desc:"number of rows to return (0: all remaining)"`
}

func (a *app) recordsCommand() *cli.Command {
	var params recordsParams

	return &cli.Command{
		Name:    "records",
		Summary: "Select and page flat artefact rows",
		Description: `Read flat artefact rows (a JSON array of objects), optionally keep only
the rows of one process, and return one page of the result.

Process ids are read from the "PID" field, falling back to
"Process ID", unless --pid-field names another.`,
		Usage:  "memgrid records [flags] <rows.json | ->",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Handles of process 1044, first 50",
				Command:     "memgrid records --pid 1044 --length 50 handles.json",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			input, err := singleInput("records", args)
			if err != nil {
				return err
			}
			session, err := a.open("records", params.commonParams)
			if err != nil {
				return err
			}

			data, err := a.readInput(input)
			if err != nil {
				return err
			}
			records, err := artefact.DecodeRecords(data)
			if err != nil {
				return fmt.Errorf("reading records %s: %w", input, err)
			}

			total := len(records)
			if params.PID >= 0 {
				records = artefact.FilterByPID(records, params.PIDField, params.PID)
			}
			page := artefact.Page(records, params.Start, params.Length)
			session.logger.Debug("records selected", "rows", total, "matched", len(records), "returned", len(page))

			if err := session.emit(ctx, session.exportName(input, "records"), page); err != nil {
				return err
			}
			return session.finish(ctx)
		},
	}
}
