// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash fingerprints evidence files and exported artifacts.
//
// Memory images run to tens of gigabytes, so files are streamed through
// the hash in fixed 64 KiB chunks and memory use stays constant.
//
//   - [HashFile] and [HashFileWith] return the digest or an error.
//   - [Fingerprint] and [FingerprintWith] return the lowercase hex
//     digest, or [ErrorDigest] when the file cannot be read. They serve
//     best-effort integrity checks that must not block the caller.
//   - [FormatDigest] and [ParseDigest] convert between digests and
//     their hex form.
//
// SHA-256 is the default algorithm; BLAKE3 is available for export
// manifests where hashing speed matters.
package binhash
