// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/memgrid/memgrid/cmd/memgrid/cli"
	"github.com/memgrid/memgrid/lib/binhash"
)

type hashParams struct {
	commonParams
	Algorithm string `json:"algorithm" flag:"algorithm" desc:"digest algorithm, overrides config" choices:"sha256,blake3"`
	Verify    string `json:"verify"    flag:"verify"    desc:"expected hex digest; exit 1 if the file does not match"`
}

// fingerprint is one line of hash output.
type fingerprint struct {
	Path      string            `json:"path"`
	Algorithm binhash.Algorithm `json:"algorithm"`
	Digest    string            `json:"digest"`
}

func (a *app) hashCommand() *cli.Command {
	var params hashParams

	return &cli.Command{
		Name:    "hash",
		Summary: "Fingerprint evidence files",
		Description: `Compute the content digest of each file. A file that cannot be read
gets the digest "error" rather than failing the whole run.

With --verify, exactly one file is hashed and compared against the
given digest; a mismatch exits with status 1.`,
		Usage:  "memgrid hash [flags] <file>...",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Fingerprint a memory image with BLAKE3",
				Command:     "memgrid hash --algorithm blake3 /cases/17/memory.raw",
			},
			{
				Description: "Check an image against its recorded digest",
				Command:     "memgrid hash --verify 9f86d081...0f00a08 memory.raw",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("hash requires at least one file")
			}
			if params.Verify != "" && len(args) != 1 {
				return fmt.Errorf("--verify takes exactly one file, got %d", len(args))
			}
			session, err := a.open("hash", params.commonParams)
			if err != nil {
				return err
			}

			name := session.config.Hash.Algorithm
			if params.Algorithm != "" {
				name = params.Algorithm
			}
			algorithm, err := binhash.ParseAlgorithm(name)
			if err != nil {
				return err
			}

			var expected [32]byte
			if params.Verify != "" {
				expected, err = binhash.ParseDigest(params.Verify)
				if err != nil {
					return err
				}
			}

			results := make([]fingerprint, 0, len(args))
			for _, path := range args {
				digest := binhash.FingerprintWith(path, algorithm)
				if digest == binhash.ErrorDigest {
					session.logger.Warn("file could not be hashed", "path", path)
				}
				results = append(results, fingerprint{Path: path, Algorithm: algorithm, Digest: digest})
			}

			if err := session.emit(ctx, session.exportName("", "fingerprints"), results); err != nil {
				return err
			}
			if err := session.finish(ctx); err != nil {
				return err
			}

			if params.Verify != "" && results[0].Digest != binhash.FormatDigest(expected) {
				fmt.Fprintf(a.stderr, "digest mismatch for %s: got %s, want %s\n",
					results[0].Path, results[0].Digest, binhash.FormatDigest(expected))
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}
