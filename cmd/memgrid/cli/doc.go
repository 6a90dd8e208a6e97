// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the memgrid
// binary.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory (or a
// tagged params struct, see [BindFlags]), and a Run function. Commands
// are assembled into a tree in cmd/memgrid and dispatched via
// [Command.Execute], which handles flag parsing, subcommand routing, and
// structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// [NewCommandLogger] builds the slog logger commands log through,
// [WriteJSON] writes results, and [ExitError] carries a deliberate
// non-zero exit status.
package cli
