// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/memgrid/memgrid/cmd/memgrid/cli"
	"github.com/memgrid/memgrid/lib/codec"
	"github.com/memgrid/memgrid/lib/export"
)

type inspectParams struct {
	Diag bool `json:"diag" flag:"diag" desc:"print CBOR exports in diagnostic notation instead of JSON"`
}

func (a *app) inspectCommand() *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Print an exported result as JSON",
		Description: `Read a file written by --export and print its content as JSON.

Compression is detected from the .zst or .lz4 extension and the format
from the .json or .cbor extension beneath it. With --diag, CBOR
exports are printed in CBOR diagnostic notation (RFC 8949), which
preserves types JSON cannot express.`,
		Usage:  "memgrid inspect [flags] <export-file>",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Read back a compressed CBOR graph",
				Command:     "memgrid inspect out/sockstat.cbor.zst",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("inspect takes exactly one export file, got %d arguments", len(args))
			}
			path := args[0]

			data, err := readExport(path)
			if err != nil {
				return err
			}

			compression := export.CompressionForPath(path)
			stem := strings.TrimSuffix(path, compression.Extension())
			if !strings.HasSuffix(stem, export.CBOR.Extension()) {
				_, err := a.stdout.Write(data)
				return err
			}

			if params.Diag {
				notation, err := codec.Diagnose(data)
				if err != nil {
					return fmt.Errorf("diagnosing %s: %w", path, err)
				}
				_, err = fmt.Fprintln(a.stdout, notation)
				return err
			}

			var value any
			if err := codec.Unmarshal(data, &value); err != nil {
				return fmt.Errorf("decoding %s: %w", path, err)
			}
			return cli.WriteJSON(a.stdout, value)
		},
	}
}

// readExport returns the decompressed content of an export file.
func readExport(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader, err := export.Decompress(file, export.CompressionForPath(path))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
