// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the packager's YAML configuration.
//
// Configuration comes from a single file named by the --config flag or
// the CAPUCOSMETIC_CONFIG environment variable ([Resolve]). There is no
// discovery and no search path: with neither set, [Default] applies.
// Command-line flags override whatever the file says; that layering is
// the CLI's job, not this package's.
//
// Variable expansion is performed on path and compiler fields after
// loading: ${HOME}, ${CONFIG_DIR} (the directory holding the config
// file), and ${VAR:-default} patterns are expanded.
//
// Key exports:
//
//   - [Config] -- master struct with Paths, Bundle, Compiler, Log
//   - [Default] -- the configuration used when no file is given
//   - [Resolve] and [LoadFile] -- the entry points for loading
package config
