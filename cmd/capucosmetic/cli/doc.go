// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command-line framework behind the capucosmetic
// binary.
//
// A [Command] is a named node with optional [Command.Subcommands], a
// lazily built [pflag.FlagSet], and a Run function. The tree is
// dispatched by [Command.Execute], which parses flags, routes
// subcommands and prints help. Unknown commands and flags get a
// closest-match suggestion (Levenshtein distance of at most 3).
//
// Flags are usually declared as tagged struct fields and bound with
// [FlagsFromParams]; [JSONOutput] adds a --json flag to any params
// struct. [NewLogger] builds the slog logger commands log through.
package cli
