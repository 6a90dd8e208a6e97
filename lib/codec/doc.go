// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds memgrid's CBOR configuration.
//
// Flattened documents, graphs and timelines are exported either as JSON
// (for the investigation UI and for people) or as CBOR (compact, for
// archival next to the evidence). Every package that produces CBOR goes
// through this package so that the same value always encodes to the
// same bytes, which keeps export fingerprints stable across runs.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types carrying `json` tags need no `cbor` tags: fxamacker/cbor reads
// `json` tags when `cbor` tags are absent, so one tag controls both
// formats. Use `cbor` tags only for CBOR-specific layout such as
// `toarray`.
package codec
