// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the capucosmetic command tree.
package commands

import (
	"io"

	"github.com/capucosmetics/capucosmetic/cmd/capucosmetic/cli"
)

// streams are the writers commands print to. Reports go to stdout,
// logs and progress to stderr.
type streams struct {
	stdout io.Writer
	stderr io.Writer
}

// Root returns the top-level command writing to stdout and stderr.
func Root(stdout, stderr io.Writer) *cli.Command {
	out := streams{stdout: stdout, stderr: stderr}
	return &cli.Command{
		Name:    "capucosmetic",
		Summary: "Package custom cosmetics into .capucosmetic archives",
		Description: `Package a cosmetic asset and its metadata into a .capucosmetic archive.

A build stages the source asset, runs the configured bundle compiler,
writes metadata.json, and assembles and verifies the archive. The
staging directory is removed afterwards whether the build succeeded or
not.`,
		Subcommands: []*cli.Command{
			buildCommand(out),
			inspectCommand(out),
			metadataCommand(out),
			versionCommand(out),
		},
	}
}
