// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/memgrid/memgrid/cmd/memgrid/cli"
	"github.com/memgrid/memgrid/lib/binhash"
	"github.com/memgrid/memgrid/lib/version"
)

type versionParams struct {
	JSON      bool   `json:"json"      flag:"json"      desc:"print build information and the binary digest as JSON"`
	Algorithm string `json:"algorithm" flag:"algorithm" desc:"digest algorithm for --json" default:"sha256" choices:"sha256,blake3"`
}

func (a *app) versionCommand() *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if !params.JSON {
				_, err := fmt.Fprintln(a.stdout, version.Stamp().Details())
				return err
			}
			algorithm, err := binhash.ParseAlgorithm(params.Algorithm)
			if err != nil {
				return err
			}
			build, err := version.Current(algorithm)
			if err != nil {
				return err
			}
			return cli.WriteJSON(a.stdout, build)
		},
	}
}
