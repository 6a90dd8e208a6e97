// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for memgrid packages.
//
// [RequireReceive] wraps the select-with-timeout pattern so tests that
// fan work out to goroutines never hang on a lost result.
//
// [UniqueID] generates distinct names for files created by concurrent
// test goroutines.
//
// [WriteFile] and [DirEntries] set up and inspect output directories.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
