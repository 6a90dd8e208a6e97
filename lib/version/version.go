// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package version

// Set with -ldflags -X at build time.
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

// Short returns the semantic version alone, for log attributes.
func Short() string {
	return Version
}
