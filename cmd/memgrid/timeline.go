// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/memgrid/memgrid/cmd/memgrid/cli"
	"github.com/memgrid/memgrid/lib/artefact"
	"github.com/memgrid/memgrid/lib/timeline"
)

type timelineParams struct {
	commonParams
	SkipPlugin  string `json:"skip_plugin"   flag:"skip-plugin"   desc:"plugin whose rows are ignored, overrides config"`
	NoSkip      bool   `json:"no_skip"       flag:"no-skip"       desc:"count rows from every plugin"`
	ByDay       bool   `json:"by_day"        flag:"by-day"        desc:"bucket by calendar day"`
	DropOpenRun bool   `json:"drop_open_run" flag:"drop-open-run" desc:"leave the final run out of the series"`
	Min         string `json:"min"           flag:"min"           desc:"earliest creation date to include (ISO 8601)"`
	Max         string `json:"max"           flag:"max"           desc:"latest creation date to include (ISO 8601)"`
}

func (a *app) timelineCommand() *cli.Command {
	var params timelineParams

	return &cli.Command{
		Name:    "timeline",
		Summary: "Condense timeliner rows into a date series",
		Description: `Read timeliner rows (a JSON array of objects with "Plugin" and
"Created Date") and condense runs of consecutive rows sharing a date
into [date, count] pairs, in input order.

Rows from the skipped plugin (MFTScan unless configured otherwise) are
ignored. --min and --max restrict the rows to a date window first.`,
		Usage:  "memgrid timeline [flags] <timeliner.json | ->",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Daily series for one week",
				Command:     "memgrid timeline --by-day --min 2024-03-01 --max 2024-03-07T23:59:59 timeliner.json",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			input, err := singleInput("timeline", args)
			if err != nil {
				return err
			}
			session, err := a.open("timeline", params.commonParams)
			if err != nil {
				return err
			}

			options := session.config.TimelineOptions()
			if params.SkipPlugin != "" {
				options.SkipPlugin = params.SkipPlugin
			}
			if params.NoSkip {
				options.SkipPlugin = ""
			}
			options.ByDay = options.ByDay || params.ByDay
			options.DropOpenRun = options.DropOpenRun || params.DropOpenRun

			data, err := a.readInput(input)
			if err != nil {
				return err
			}
			records, err := artefact.DecodeRecords(data)
			if err != nil {
				return fmt.Errorf("reading timeline %s: %w", input, err)
			}
			if params.Min != "" || params.Max != "" {
				records = timeline.Window(records, params.Min, params.Max)
			}

			buckets, err := timeline.BuildWith(records, options)
			if err != nil {
				return err
			}
			session.logger.Debug("timeline built", "rows", len(records), "buckets", len(buckets))

			if err := session.emit(ctx, session.exportName(input, "timeline"), buckets); err != nil {
				return err
			}
			return session.finish(ctx)
		},
	}
}
