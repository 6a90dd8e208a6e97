// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for memgrid.
//
// Configuration is loaded from a single file named by either the
// MEMGRID_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search. Commands run
// without either use [Default].
//
// The file may contain environment-specific sections (development,
// staging, production) that override output, export and log settings
// when [Config].Environment matches. Production defaults to 0640 for
// committed files.
//
// ${HOME} and ${VAR:-default} are expanded in output.directory after
// loading. No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- output, render, timeline, export, hash and log sections
//   - [Default] -- a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.ExportOptions], [Config.TimelineOptions] -- typed views
//     for the packages they configure
package config
