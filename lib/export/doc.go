// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package export persists analysis results (flattened grids, network
// graphs, timelines) as files in the output directory.
//
// A [Writer] encodes each value as JSON or CBOR, optionally streams it
// through zstd or LZ4, and commits it through [outputfile.Handler] so
// the export appears atomically under its final name. Each committed
// file is fingerprinted with [binhash] and recorded as an [Artifact];
// [Writer.WriteManifest] lists them in manifest.json.
//
// [CompressionAuto] probes each export with zstd and picks zstd, LZ4
// or no compression by the achieved ratio. [Decompress] and
// [CompressionForPath] read exports back.
package export
