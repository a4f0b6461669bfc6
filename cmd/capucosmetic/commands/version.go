// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/capucosmetics/capucosmetic/cmd/capucosmetic/cli"
	"github.com/capucosmetics/capucosmetic/lib/version"
)

type versionParams struct {
	cli.JSONOutput
	Verbose bool `flag:"verbose,v" desc:"include Go version and platform"`
}

func versionCommand(out streams) *cli.Command {
	var params versionParams
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("version", &params)
		},
		Run: func(_ context.Context, args []string) error {
			if done, err := params.EmitJSON(out.stdout, version.Details()); done {
				return err
			}
			if params.Verbose {
				fmt.Fprintln(out.stdout, version.Full())
			} else {
				fmt.Fprintln(out.stdout, version.Info())
			}
			return nil
		},
	}
}
