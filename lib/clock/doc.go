// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that stamps its output with the current time (export manifests,
// committed-at fields) takes a Clock instead of calling time.Now, so
// tests can assert exact timestamps:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	writer := export.NewWriter(handler, export.Options{Clock: c})
//	// ... write artifacts ...
//	c.Advance(5 * time.Second)
package clock
