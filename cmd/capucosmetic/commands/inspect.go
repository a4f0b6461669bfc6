// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/capucosmetics/capucosmetic/cmd/capucosmetic/cli"
	"github.com/capucosmetics/capucosmetic/lib/archive"
	"github.com/capucosmetics/capucosmetic/lib/cosmetic"
)

type inspectParams struct {
	cli.JSONOutput
	NoColor bool `flag:"no-color" desc:"disable colored output"`
}

// inspection is the --json form of the inspect report.
type inspection struct {
	Manifest archive.Manifest  `json:"manifest"`
	Metadata cosmetic.Metadata `json:"metadata"`
}

func inspectCommand(out streams) *cli.Command {
	var params inspectParams
	return &cli.Command{
		Name:    "inspect",
		Summary: "Show the entries and metadata of an archive",
		Description: `Read a .capucosmetic archive and show its entries (size, compression,
BLAKE3 digest) and the decoded metadata.json. Every entry is read in
full, so a truncated or corrupt archive is reported as an error.`,
		Usage: "capucosmetic inspect <archive> [flags]",
		Examples: []cli.Example{
			{
				Description: "Inspect a built cosmetic",
				Command:     `capucosmetic inspect "Builds/Capucosmetics/Top Hat.capucosmetic"`,
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("inspect", &params)
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: capucosmetic inspect <archive>")
			}
			path := args[0]

			manifest, err := archive.Inspect(path)
			if err != nil {
				return err
			}
			data, err := archive.ReadEntry(path, cosmetic.MetadataEntryName)
			if err != nil {
				return err
			}
			metadata, err := cosmetic.Unmarshal(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			if done, err := params.EmitJSON(out.stdout, inspection{Manifest: manifest, Metadata: metadata}); done {
				return err
			}
			newReportStyles(out.stdout, params.NoColor).renderInspection(out.stdout, manifest, metadata)
			return nil
		},
	}
}
