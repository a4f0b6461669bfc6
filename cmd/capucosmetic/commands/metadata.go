// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/pflag"

	"github.com/capucosmetics/capucosmetic/cmd/capucosmetic/cli"
	"github.com/capucosmetics/capucosmetic/lib/cosmetic"
)

// defaultMetadataPath is where "metadata init" writes without an
// argument.
const defaultMetadataPath = "cosmetic.jsonc"

func metadataCommand(out streams) *cli.Command {
	return &cli.Command{
		Name:    "metadata",
		Summary: "Create and check metadata authoring files",
		Description: `Metadata authoring files are JSONC: JSON with // line comments,
/* block comments */, and trailing commas. Fields left out of the file
keep their default values.`,
		Subcommands: []*cli.Command{
			metadataInitCommand(out),
			metadataValidateCommand(out),
		},
	}
}

type metadataInitParams struct {
	Name   string `flag:"name" desc:"cosmetic name to put in the template"`
	Author string `flag:"author" desc:"author to put in the template"`
	Force  bool   `flag:"force,f" desc:"overwrite an existing file"`
}

func metadataInitCommand(out streams) *cli.Command {
	var params metadataInitParams
	return &cli.Command{
		Name:    "init",
		Summary: "Write a commented metadata template",
		Usage:   "capucosmetic metadata init [path] [flags]",
		Examples: []cli.Example{
			{
				Description: "Start a new cosmetic",
				Command:     `capucosmetic metadata init tophat.jsonc --name "Top Hat" --author monke`,
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("init", &params)
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("usage: capucosmetic metadata init [path]")
			}
			path := defaultMetadataPath
			if len(args) == 1 {
				path = args[0]
			}

			metadata := cosmetic.Default()
			if params.Name != "" {
				metadata.Name = params.Name
			}
			if params.Author != "" {
				metadata.Author = params.Author
			}
			if err := metadata.Validate(); err != nil {
				return err
			}

			flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if params.Force {
				flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			file, err := os.OpenFile(path, flags, 0o644)
			if errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err != nil {
				return err
			}
			if _, err := file.Write(cosmetic.Template(metadata)); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}

			fmt.Fprintf(out.stdout, "wrote %s\n", path)
			return nil
		},
	}
}

func metadataValidateCommand(out streams) *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Summary: "Check a metadata file and print its canonical JSON",
		Description: `Parse and validate a JSONC metadata file, then print the exact
metadata.json a build would package.`,
		Usage: "capucosmetic metadata validate <path>",
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: capucosmetic metadata validate <path>")
			}
			metadata, err := cosmetic.ReadFile(args[0])
			if err != nil {
				return err
			}
			encoded, err := cosmetic.Marshal(metadata)
			if err != nil {
				return err
			}
			fmt.Fprintf(out.stdout, "%s\n", encoded)
			return nil
		},
	}
}
